package runstate

import (
	"time"

	"github.com/distsched/distsched/internal/model"
)

// NextRequest is a worker core's pull request, spec.md %4.2.3.
type NextRequest struct {
	WorkerID  string
	CoreID    int
	TimeoutMs int64
}

// NextReply mirrors the union /next can answer with.
type NextReply struct {
	Status   string // "ok" | "wait" | "done" | "no_run"
	Dispatch model.DispatchFields
}

// Next blocks until a job is ready for (WorkerID, CoreID), the run
// finishes, or TimeoutMs elapses, whichever comes first. It re-derives
// current_sim_ms and promotes arrivals on every wake, so a /next call on
// an otherwise idle scheduler is itself what advances pending jobs into
// ready.
func (e *Engine) Next(req NextRequest) (NextReply, error) {
	if !e.registry.IsAlive(req.WorkerID, req.CoreID) {
		return NextReply{}, ErrUnknownWorker
	}

	waitStart := time.Now()
	deadline := waitStart.Add(time.Duration(req.TimeoutMs) * time.Millisecond)

	for {
		e.mu.Lock()
		run := e.active
		if run == nil {
			e.mu.Unlock()
			return NextReply{Status: "no_run"}, nil
		}
		if run.Done {
			e.mu.Unlock()
			return NextReply{Status: "done"}, nil
		}

		nowSim := run.SimMs(nowWallMs())
		if nowSim > run.CurrentSimMs {
			run.CurrentSimMs = nowSim
		}
		run.promoteArrivals(run.CurrentSimMs)

		if jobID, ok := run.Policy.Pop(); ok {
			job := run.Jobs[jobID]
			dispatch := run.Policy.BuildDispatch(job)
			run.inflight[inflightKey{req.WorkerID, req.CoreID}] = inflightEntry{jobID: jobID}
			e.mu.Unlock()
			e.dispatchWait.add(float64(time.Since(waitStart).Milliseconds()))
			dispatchesTotal.WithLabelValues("ok").Inc()
			return NextReply{Status: "ok", Dispatch: dispatch}, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			e.mu.Unlock()
			dispatchesTotal.WithLabelValues("wait").Inc()
			return NextReply{Status: "wait"}, nil
		}

		waitFor := remaining
		if run.Pending.Len() > 0 {
			deltaSim := run.Pending.PeekArrivalMs() - run.CurrentSimMs
			if deltaSim < 0 {
				deltaSim = 0
			}
			wallWait := time.Duration(float64(deltaSim)/run.Speedup*float64(time.Millisecond)) + time.Millisecond
			if wallWait < waitFor {
				waitFor = wallWait
			}
		}
		waitCh := e.wake
		e.mu.Unlock()

		timer := time.NewTimer(waitFor)
		select {
		case <-waitCh:
			timer.Stop()
		case <-timer.C:
		}
	}
}
