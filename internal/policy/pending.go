package policy

import "container/heap"

// pendingEntry is one not-yet-arrived job, ordered by (arrival_ms, sequence).
type pendingEntry struct {
	jobID     string
	arrivalMs int64
	sequence  int64
}

type pendingHeap []pendingEntry

func (h pendingHeap) Len() int { return len(h) }
func (h pendingHeap) Less(i, j int) bool {
	if h[i].arrivalMs != h[j].arrivalMs {
		return h[i].arrivalMs < h[j].arrivalMs
	}
	return h[i].sequence < h[j].sequence
}
func (h pendingHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *pendingHeap) Push(x any)   { *h = append(*h, x.(pendingEntry)) }
func (h *pendingHeap) Pop() any {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// PendingSet holds jobs whose arrival time has not yet elapsed, in
// increasing (arrival_ms, sequence) order. It is shared across all three
// disciplines: arrival admission is policy-independent.
type PendingSet struct {
	h pendingHeap
}

func NewPendingSet() *PendingSet {
	return &PendingSet{}
}

func (p *PendingSet) Push(jobID string, arrivalMs, sequence int64) {
	heap.Push(&p.h, pendingEntry{jobID: jobID, arrivalMs: arrivalMs, sequence: sequence})
}

func (p *PendingSet) Len() int { return len(p.h) }

// PeekArrivalMs returns the arrival time of the earliest pending job.
// Only valid when Len() > 0.
func (p *PendingSet) PeekArrivalMs() int64 { return p.h[0].arrivalMs }

// PromoteUpTo pops every pending job whose arrival_ms <= uptoSimMs and
// returns their ids in arrival order.
func (p *PendingSet) PromoteUpTo(uptoSimMs int64) []string {
	var promoted []string
	for p.h.Len() > 0 && p.h[0].arrivalMs <= uptoSimMs {
		e := heap.Pop(&p.h).(pendingEntry)
		promoted = append(promoted, e.jobID)
	}
	return promoted
}
