package runstate

import (
	"math"
	"time"

	"github.com/distsched/distsched/internal/model"
	"github.com/distsched/distsched/internal/policy"
	"github.com/distsched/distsched/internal/results"
)

// inflightKey identifies one outstanding dispatch, used by the lease-sweep
// to recover jobs handed to a worker that then dies (spec.md %9, strategy
// (a)).
type inflightKey struct {
	workerID string
	coreID   int
}

type inflightEntry struct {
	jobID string
}

// RunState is everything spec.md %3 says a run owns. It is only ever
// touched while the owning Engine's lock is held.
type RunState struct {
	RunID       string
	DatasetFile string
	Speedup     float64
	MinSlots    int
	QuantumMs   int64
	Kind        model.Kind

	StartWallMs int64

	Jobs      map[string]*model.Job
	TotalJobs int
	Completed int
	Done      bool

	Policy       policy.Policy
	Pending      *policy.PendingSet
	NextSequence int64
	CurrentSimMs int64

	inflight map[inflightKey]inflightEntry

	JobsCSV string
	RunCSV  string
	Summary *results.Summary
}

// SimMs implements policy.SimClock: it converts a wall-clock millisecond
// timestamp into simulated milliseconds for this run (spec.md %3).
func (r *RunState) SimMs(wallMs int64) int64 {
	delta := float64(wallMs-r.StartWallMs) * r.Speedup
	return int64(math.Round(delta))
}

func nowWallMs() int64 {
	return time.Now().UnixMilli()
}

// nextSequence assigns the monotonic admission-sequence a job receives the
// moment it first enters any set (ready or pending).
func (r *RunState) nextSequence() int64 {
	s := r.NextSequence
	r.NextSequence++
	return s
}

// admit places a freshly-loaded job into ready (arrival <= 0) or pending
// (arrival > 0), per spec.md %4.2.1.
func (r *RunState) admit(job *model.Job) {
	job.Sequence = r.nextSequence()
	if job.ArrivalMs <= 0 {
		r.Policy.Push(job)
	} else {
		r.Pending.Push(job.JobID, job.ArrivalMs, job.Sequence)
	}
}

// promoteArrivals moves every pending job whose arrival has elapsed into
// the ready structure, and reports whether anything moved.
func (r *RunState) promoteArrivals(uptoSimMs int64) bool {
	ids := r.Pending.PromoteUpTo(uptoSimMs)
	for _, id := range ids {
		r.Policy.Push(r.Jobs[id])
	}
	return len(ids) > 0
}
