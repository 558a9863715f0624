// Package runstate owns the active run: admission, arrival promotion,
// dispatch, completion accounting and finalization. It is the Run Engine
// of spec.md %4.2, serialized by one mutex + one condition variable per
// spec.md %5 — here a mutex plus a channel-broadcast "wake" primitive,
// since Go's sync.Cond has no native timed wait and the spec explicitly
// allows a channel-based equivalent that can express "wake any waiter"
// plus a bounded timed wait.
package runstate

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/distsched/distsched/internal/dataset"
	"github.com/distsched/distsched/internal/model"
	"github.com/distsched/distsched/internal/policy"
	"github.com/distsched/distsched/internal/registry"
	"github.com/distsched/distsched/internal/results"
	"github.com/distsched/distsched/internal/util"
)

// Engine is the scheduler's single active-run container. At most one run
// is active at a time; Start atomically replaces whatever came before it
// (spec.md %3: "replace previous run").
type Engine struct {
	mu   sync.Mutex
	wake chan struct{}

	registry   *registry.Registry
	dataDir    string
	resultsDir string
	log        *logrus.Logger

	active   *RunState
	cancelBG context.CancelFunc

	dispatchWait runningStat
}

func NewEngine(reg *registry.Registry, dataDir, resultsDir string, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{
		wake:       make(chan struct{}),
		registry:   reg,
		dataDir:    dataDir,
		resultsDir: resultsDir,
		log:        log,
	}
}

// broadcastLocked wakes every blocked /next caller. Must be called with
// e.mu held.
func (e *Engine) broadcastLocked() {
	close(e.wake)
	e.wake = make(chan struct{})
}

// StartRequest is the admission input, spec.md %4.2.1.
type StartRequest struct {
	DatasetFile string
	Speedup     float64
	MinSlots    int
	QuantumMs   int64
	Kind        model.Kind
}

// Start loads a dataset, installs a fresh run as active, and launches its
// arrivals-promotion/lease-sweep background task. It never blocks on I/O
// while holding e.mu: the dataset loads before the run is installed.
func (e *Engine) Start(req StartRequest) (string, error) {
	if req.Speedup <= 0 {
		req.Speedup = 1
	}

	slots := e.registry.TotalAliveSlots()
	if slots < req.MinSlots {
		return "", fmt.Errorf("%w: %d alive slots, need %d", ErrInsufficientSlots, slots, req.MinSlots)
	}

	path := filepath.Join(e.dataDir, req.DatasetFile)
	rows, err := dataset.Load(path, req.Kind)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrDatasetInvalid, err)
	}

	run := &RunState{
		RunID:       util.NewRunID(),
		DatasetFile: req.DatasetFile,
		Speedup:     req.Speedup,
		MinSlots:    req.MinSlots,
		QuantumMs:   req.QuantumMs,
		Kind:        req.Kind,
		StartWallMs: nowWallMs(),
		Jobs:        make(map[string]*model.Job, len(rows)),
		TotalJobs:   len(rows),
		Policy:      policy.New(req.Kind, req.QuantumMs),
		Pending:     policy.NewPendingSet(),
		inflight:    make(map[inflightKey]inflightEntry),
	}
	for _, row := range rows {
		run.Jobs[row.JobID] = &model.Job{
			JobID:       row.JobID,
			ServiceMs:   row.ServiceMs,
			ArrivalMs:   row.ArrivalMs,
			Priority:    row.Priority,
			RemainingMs: row.ServiceMs,
		}
	}
	// Admit in dataset row order: this is the FIFO same-instant tie-break
	// and the source of every job's admission sequence.
	for _, row := range rows {
		run.admit(run.Jobs[row.JobID])
	}

	e.mu.Lock()
	if e.cancelBG != nil {
		e.cancelBG()
	}
	e.active = run
	e.broadcastLocked()
	ctx, cancel := context.WithCancel(context.Background())
	e.cancelBG = cancel
	e.mu.Unlock()

	go e.backgroundLoop(ctx, run)

	e.log.WithFields(logrus.Fields{
		"run_id":  run.RunID,
		"dataset": run.DatasetFile,
		"kind":    run.Kind,
		"jobs":    run.TotalJobs,
	}).Info("run_started")

	return run.RunID, nil
}

// StatusReply is the union spec.md %4.2.5 describes.
type StatusReply struct {
	Status      string // "no_run" | "running" | "done"
	RunID       string
	Completed   int
	Total       int
	ReadyLen    int
	PendingLen  int
	Summary     *results.Summary
	JobsCSV     string
	RunCSV      string
}

func (e *Engine) Status() StatusReply {
	e.mu.Lock()
	defer e.mu.Unlock()

	run := e.active
	if run == nil {
		return StatusReply{Status: "no_run"}
	}
	if run.Done {
		return StatusReply{
			Status:  "done",
			RunID:   run.RunID,
			Summary: run.Summary,
			JobsCSV: run.JobsCSV,
			RunCSV:  run.RunCSV,
		}
	}
	return StatusReply{
		Status:     "running",
		RunID:      run.RunID,
		Completed:  run.Completed,
		Total:      run.TotalJobs,
		ReadyLen:   run.Policy.Len(),
		PendingLen: run.Pending.Len(),
	}
}
