package worker

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/distsched/distsched/internal/transport/workerclient"
)

// Pool owns every core goroutine this worker process advertises.
type Pool struct {
	cores []*Core
	wg    sync.WaitGroup
}

func NewPool(workerID string, numCores int, speedup float64, client *workerclient.Client, log *logrus.Logger) *Pool {
	cores := make([]*Core, numCores)
	for i := range cores {
		cores[i] = NewCore(workerID, i, speedup, client, log)
	}
	return &Pool{cores: cores}
}

// Start launches one goroutine per core and returns immediately.
func (p *Pool) Start(ctx context.Context) {
	for _, c := range p.cores {
		p.wg.Add(1)
		go func(c *Core) {
			defer p.wg.Done()
			c.Run(ctx)
		}(c)
	}
}

// Wait blocks until every core goroutine has returned (i.e. ctx was
// cancelled).
func (p *Pool) Wait() {
	p.wg.Wait()
}
