package runstate

import "github.com/distsched/distsched/internal/model"

// DoneRequest is a worker core's completion report, spec.md %4.2.4.
type DoneRequest struct {
	WorkerID string
	CoreID   int
	JobID    string
	Report   model.CompletionReport
}

// DoneReply mirrors the possible /done outcomes.
type DoneReply struct {
	Status string // "ok" | "done" | "no_run"
}

// Done records one core's completion report, advances the policy's state
// machine for that job, and finalizes the run once every job has
// finished. The first Done a job ever produces stamps its StartMs; every
// policy's Complete relies on that being set before it runs.
func (e *Engine) Done(req DoneRequest) (DoneReply, error) {
	if !e.registry.IsAlive(req.WorkerID, req.CoreID) {
		return DoneReply{}, ErrUnknownWorker
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	run := e.active
	if run == nil {
		return DoneReply{Status: "no_run"}, nil
	}
	if run.Done {
		return DoneReply{Status: "done"}, nil
	}

	job, ok := run.Jobs[req.JobID]
	if !ok {
		return DoneReply{}, ErrUnknownJob
	}

	delete(run.inflight, inflightKey{req.WorkerID, req.CoreID})

	if !job.HasStarted() {
		startSim := run.SimMs(req.Report.StartedWallMs)
		job.StartMs = &startSim
	}
	if req.Report.CPUPercent != nil {
		job.CPUPercent = req.Report.CPUPercent
	}
	if req.Report.MemoryMB != nil {
		job.MemoryMB = req.Report.MemoryMB
	}

	finished := run.Policy.Complete(job, req.Report, run)
	if finished {
		run.Completed++
		if job.FinishMs != nil && *job.FinishMs > run.CurrentSimMs {
			run.CurrentSimMs = *job.FinishMs
		}
		completionsTotal.WithLabelValues("true").Inc()
	} else {
		run.Policy.Push(job)
		completionsTotal.WithLabelValues("false").Inc()
	}

	if run.Completed >= run.TotalJobs {
		e.finalizeLocked(run)
	}
	// Every Done frees or re-offers a slot; waking all blocked /next
	// callers is the channel-broadcast stand-in for "signal one" — each
	// waiter re-checks under the lock, so spurious wakeups just loop.
	e.broadcastLocked()

	return DoneReply{Status: "ok"}, nil
}
