// Package policy implements the three interchangeable ready-set disciplines
// (FIFO, static priority, round-robin) the run engine dispatches against.
// The engine is policy-agnostic: it only ever pushes jobs in, pops one out,
// and asks the policy to interpret a completion report.
package policy

import "github.com/distsched/distsched/internal/model"

// SimClock converts a wall-clock millisecond timestamp into simulated
// milliseconds for the active run. Policies that need to interpret a
// worker's reported wall-clock finish time (round-robin) take one of these
// instead of reaching into the engine directly.
type SimClock interface {
	SimMs(wallMs int64) int64
}

// Policy is the strategy interface factored out of the run engine, per the
// spec's "push / pop_one / handle_completion" decomposition. Implementations
// are not safe for concurrent use on their own — the engine serializes all
// access under its run lock.
type Policy interface {
	Kind() model.Kind

	// Push admits a job into the ready structure: either its first entry
	// (after admission or arrival promotion) or, for RR, a requeue at the
	// tail after a preempted slice.
	Push(job *model.Job)

	// Pop removes and returns the next job id to dispatch, per the
	// discipline's ordering. ok is false if the ready structure is empty.
	Pop() (jobID string, ok bool)

	Len() int

	// BuildDispatch fills in the policy-relevant fields of a /next reply
	// for a job that Pop just returned.
	BuildDispatch(job *model.Job) model.DispatchFields

	// Complete applies a worker's /done report to job. The engine has
	// already stamped job.StartMs (from the job's first completion report)
	// before calling this.
	// It returns true once the job has no more work outstanding (i.e.
	// should count toward `completed`). When it returns false (RR slice
	// with remaining work), the caller is responsible for calling Push
	// again to requeue the job.
	Complete(job *model.Job, report model.CompletionReport, clock SimClock) (finished bool)
}

// New constructs the policy named by kind. quantumMs is only meaningful for
// RR and ignored otherwise.
func New(kind model.Kind, quantumMs int64) Policy {
	switch kind {
	case model.Priority:
		return newPriorityPolicy()
	case model.RR:
		return newRRPolicy(quantumMs)
	default:
		return newFIFOPolicy()
	}
}
