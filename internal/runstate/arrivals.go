package runstate

import (
	"context"
	"time"
)

// backgroundLoop is the arrivals-promotion task of spec.md %4.2.2, scoped
// to one run's lifetime and cancelled on finalize or replacement. It also
// carries the lease-sweep that recovers jobs lost to a dead worker
// (spec.md %9, strategy (a)). Ticking at ~10ms keeps arrival latency
// bounded without spinning under the lock.
func (e *Engine) backgroundLoop(ctx context.Context, run *RunState) {
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if e.tick(run) {
				return
			}
		}
	}
}

// tick advances current_sim_ms, promotes arrivals and sweeps stale
// in-flight leases. It returns true once the run this loop was launched
// for is no longer the active one, so the goroutine can exit.
func (e *Engine) tick(run *RunState) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.active != run {
		return true
	}
	if run.Done {
		return true
	}

	nowSim := run.SimMs(nowWallMs())
	if nowSim > run.CurrentSimMs {
		run.CurrentSimMs = nowSim
	}

	promoted := run.promoteArrivals(run.CurrentSimMs)
	requeued := e.sweepLeasesLocked(run)
	if promoted || requeued {
		e.broadcastLocked()
	}
	return false
}

// sweepLeasesLocked returns in-flight dispatches whose (worker, core)
// registry entry has gone stale back to the ready set. Must be called
// with e.mu held.
func (e *Engine) sweepLeasesLocked(run *RunState) bool {
	var any bool
	for key, inf := range run.inflight {
		if e.registry.IsAlive(key.workerID, key.coreID) {
			continue
		}
		delete(run.inflight, key)
		job, ok := run.Jobs[inf.jobID]
		if !ok {
			continue
		}
		run.Policy.Push(job)
		any = true
		leasesRecoveredTotal.Inc()
		e.log.WithFields(map[string]any{
			"run_id":    run.RunID,
			"worker_id": key.workerID,
			"core_id":   key.coreID,
			"job_id":    inf.jobID,
		}).Warn("lease_recovered")
	}
	return any
}
