package policy

import (
	"container/heap"

	"github.com/distsched/distsched/internal/model"
)

type priorityEntry struct {
	priority int64
	arrival  int64
	sequence int64
	jobID    string
}

type priorityHeap []priorityEntry

func (h priorityHeap) Len() int { return len(h) }
func (h priorityHeap) Less(i, j int) bool {
	if h[i].priority != h[j].priority {
		return h[i].priority < h[j].priority
	}
	if h[i].arrival != h[j].arrival {
		return h[i].arrival < h[j].arrival
	}
	return h[i].sequence < h[j].sequence
}
func (h priorityHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *priorityHeap) Push(x any)   { *h = append(*h, x.(priorityEntry)) }
func (h *priorityHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// priorityPolicy dispatches the job with the strictly smallest
// (priority, arrival_ms, admission-sequence) tuple. Non-preemptive: once
// popped a job runs to completion.
type priorityPolicy struct {
	h priorityHeap
}

func newPriorityPolicy() *priorityPolicy {
	return &priorityPolicy{}
}

func (p *priorityPolicy) Kind() model.Kind { return model.Priority }

func (p *priorityPolicy) Push(job *model.Job) {
	heap.Push(&p.h, priorityEntry{
		priority: job.Priority,
		arrival:  job.ArrivalMs,
		sequence: job.Sequence,
		jobID:    job.JobID,
	})
}

func (p *priorityPolicy) Pop() (string, bool) {
	if p.h.Len() == 0 {
		return "", false
	}
	e := heap.Pop(&p.h).(priorityEntry)
	return e.jobID, true
}

func (p *priorityPolicy) Len() int { return p.h.Len() }

func (p *priorityPolicy) BuildDispatch(job *model.Job) model.DispatchFields {
	prio := job.Priority
	return model.DispatchFields{
		JobID:       job.JobID,
		ExecutionMs: job.ServiceMs,
		Priority:    &prio,
		ArrivalMs:   job.ArrivalMs,
	}
}

func (p *priorityPolicy) Complete(job *model.Job, _ model.CompletionReport, _ SimClock) bool {
	finish := *job.StartMs + job.ServiceMs
	job.FinishMs = &finish
	return true
}
