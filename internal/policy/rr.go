package policy

import "github.com/distsched/distsched/internal/model"

// rrPolicy dispatches the head of a FIFO queue for at most quantumMs of
// simulated work at a time; a job that still has remaining work after a
// slice re-enters at the tail.
type rrPolicy struct {
	ready     []string
	quantumMs int64
}

func newRRPolicy(quantumMs int64) *rrPolicy {
	if quantumMs <= 0 {
		quantumMs = 1
	}
	return &rrPolicy{quantumMs: quantumMs}
}

func (p *rrPolicy) Kind() model.Kind { return model.RR }

func (p *rrPolicy) Push(job *model.Job) {
	p.ready = append(p.ready, job.JobID)
}

func (p *rrPolicy) Pop() (string, bool) {
	if len(p.ready) == 0 {
		return "", false
	}
	id := p.ready[0]
	p.ready = p.ready[1:]
	return id, true
}

func (p *rrPolicy) Len() int { return len(p.ready) }

func (p *rrPolicy) BuildDispatch(job *model.Job) model.DispatchFields {
	slice := p.quantumMs
	if job.RemainingMs < slice {
		slice = job.RemainingMs
	}
	return model.DispatchFields{
		JobID:       job.JobID,
		SliceMs:     slice,
		RemainingMs: job.RemainingMs,
		ArrivalMs:   job.ArrivalMs,
	}
}

// Complete computes finish_ms from the worker's reported wall-clock finish
// time (converted to simulated time by clock), per spec.md %4.2.4 — unlike
// FIFO/Priority, RR does not derive it from start+service, since a job's
// total response time is the sum of possibly-interrupted slices.
func (p *rrPolicy) Complete(job *model.Job, report model.CompletionReport, clock SimClock) bool {
	finishedSim := clock.SimMs(report.FinishedWallMs)

	job.Slices++
	remaining := report.RemainingAfterMs
	if remaining < 0 {
		remaining = 0
	}
	job.RemainingMs = remaining

	if remaining == 0 {
		job.FinishMs = &finishedSim
		return true
	}
	job.Preemptions++
	return false
}
