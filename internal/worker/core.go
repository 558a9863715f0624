// Package worker drives one worker process's cores: each core is a
// goroutine that sequentially long-polls the scheduler for work,
// simulates running it by sleeping a speedup-scaled wall-clock
// duration, and reports completion.
//
// Grounded on the teacher's sched.Pool worker goroutines (one goroutine
// per slot, blocking receive, execute, report), simplified from three
// priority sub-queues down to one dispatch source per core since the
// scheduler — not the worker — now owns scheduling order.
package worker

import (
	"context"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/distsched/distsched/internal/transport/workerclient"
)

const (
	longPollMs     = 20000
	idleBackoff    = 200 * time.Millisecond
	baseRetryDelay = 250 * time.Millisecond
	maxRetryDelay  = 5 * time.Second
)

// Core drives one advertised core slot.
type Core struct {
	workerID string
	coreID   int
	speedup  float64
	client   *workerclient.Client
	log      *logrus.Logger
}

func NewCore(workerID string, coreID int, speedup float64, client *workerclient.Client, log *logrus.Logger) *Core {
	return &Core{workerID: workerID, coreID: coreID, speedup: speedup, client: client, log: log}
}

// Run loops until ctx is cancelled. It never calls /next again before the
// previous call's /done completes, satisfying the protocol's one
// in-flight request per core requirement.
func (c *Core) Run(ctx context.Context) {
	retryDelay := baseRetryDelay
	for {
		if ctx.Err() != nil {
			return
		}

		reply, err := c.client.Next(c.workerID, c.coreID, longPollMs)
		if err != nil {
			c.log.WithError(err).WithField("core_id", c.coreID).Warn("next_failed")
			sleepCtx(ctx, retryDelay)
			retryDelay = minDuration(retryDelay*2, maxRetryDelay)
			continue
		}
		retryDelay = baseRetryDelay

		switch reply.Status {
		case "ok":
			c.execute(ctx, reply)
		case "wait", "no_run", "done":
			sleepCtx(ctx, idleBackoff)
		default:
			sleepCtx(ctx, idleBackoff)
		}
	}
}

func (c *Core) execute(ctx context.Context, reply workerclient.NextReply) {
	startedWall := time.Now().UnixMilli()

	var simMs, remainingAfter int64
	if reply.SliceMs > 0 {
		simMs = reply.SliceMs
		remainingAfter = reply.RemainingMs - reply.SliceMs
		if remainingAfter < 0 {
			remainingAfter = 0
		}
	} else {
		simMs = reply.ExecutionMs
	}

	wallMs := float64(simMs) / c.speedup
	sleepCtx(ctx, time.Duration(wallMs*float64(time.Millisecond)))

	finishedWall := time.Now().UnixMilli()
	cpu, mem := sampleUsage()

	err := c.client.Done(c.workerID, c.coreID, workerclient.DoneReport{
		JobID:            reply.JobID,
		StartedWallMs:    startedWall,
		FinishedWallMs:   finishedWall,
		RanMs:            simMs,
		RemainingAfterMs: remainingAfter,
		CPUPercent:       cpu,
		MemoryMB:         mem,
	})
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"core_id": c.coreID,
			"job_id":  reply.JobID,
		}).Warn("done_failed")
	}
}

// sampleUsage is a synthetic per-slice resource reading. There is no real
// process to sample on a simulated core, so this stands in for telemetry
// a production worker would pull from the OS.
func sampleUsage() (*float64, *float64) {
	cpu := 40 + rand.Float64()*55
	mem := 64 + rand.Float64()*448
	return &cpu, &mem
}

func sleepCtx(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
