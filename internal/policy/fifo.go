package policy

import "github.com/distsched/distsched/internal/model"

// fifoPolicy dispatches jobs strictly in the order they entered the ready
// structure. Ties at the same arrival instant resolve by dataset row order,
// which callers establish by pushing jobs in that order at admission time.
type fifoPolicy struct {
	ready []string
}

func newFIFOPolicy() *fifoPolicy {
	return &fifoPolicy{}
}

func (p *fifoPolicy) Kind() model.Kind { return model.FIFO }

func (p *fifoPolicy) Push(job *model.Job) {
	p.ready = append(p.ready, job.JobID)
}

func (p *fifoPolicy) Pop() (string, bool) {
	if len(p.ready) == 0 {
		return "", false
	}
	id := p.ready[0]
	p.ready = p.ready[1:]
	return id, true
}

func (p *fifoPolicy) Len() int { return len(p.ready) }

func (p *fifoPolicy) BuildDispatch(job *model.Job) model.DispatchFields {
	return model.DispatchFields{
		JobID:       job.JobID,
		ExecutionMs: job.ServiceMs,
		ArrivalMs:   job.ArrivalMs,
	}
}

// Complete is single-shot: FIFO never preempts, so every completion is
// final. finish_ms is derived from the recorded start plus nominal service
// time, not from the worker's reported wall-clock finish, to preserve
// simulated-time fidelity under speedup. The engine has already stamped
// job.StartMs before calling Complete.
func (p *fifoPolicy) Complete(job *model.Job, _ model.CompletionReport, _ SimClock) bool {
	finish := *job.StartMs + job.ServiceMs
	job.FinishMs = &finish
	return true
}
