// Package model holds the data types shared between the run engine and the
// scheduling policies, kept separate so neither package needs to import the
// other.
package model

// Kind identifies one of the three scheduling disciplines.
type Kind string

const (
	FIFO     Kind = "fifo"
	Priority Kind = "priority"
	RR       Kind = "rr"
)

// Job is one unit of simulated work, identified by a stable job_id.
//
// Timestamps are in simulated milliseconds (see the sim_ms mapping in
// runstate), not wall-clock. StartMs is nil until the first /done report
// for the job arrives (it is stamped from that report's started_wall_ms);
// FinishMs is nil until the job has completed.
type Job struct {
	JobID      string
	ServiceMs  int64
	ArrivalMs  int64
	Priority   int64 // smaller = higher priority; only meaningful for Priority policy
	Sequence   int64 // admission-sequence, assigned once on first entry into any set

	StartMs  *int64
	FinishMs *int64

	// RR-only execution state.
	RemainingMs int64
	Slices      int
	Preemptions int

	CPUPercent *float64
	MemoryMB   *float64
}

// HasStarted reports whether a start time has been recorded, which happens
// on the job's first /done report rather than at dispatch.
func (j *Job) HasStarted() bool { return j.StartMs != nil }

// HasFinished reports whether the job has reached completion.
func (j *Job) HasFinished() bool { return j.FinishMs != nil }

// DispatchFields carries the policy-specific payload returned by /next.
type DispatchFields struct {
	JobID        string
	ExecutionMs  int64 // FIFO/Priority: full service time
	SliceMs      int64 // RR: min(quantum, remaining)
	RemainingMs  int64 // RR: remaining before this slice
	Priority     *int64
	ArrivalMs    int64
}

// CompletionReport is what a worker supplies to /done.
type CompletionReport struct {
	StartedWallMs   int64
	FinishedWallMs  int64
	RanMs           int64 // RR only, informational
	RemainingAfterMs int64 // RR only
	CPUPercent      *float64
	MemoryMB        *float64
}
