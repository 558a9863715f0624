package runstate

import (
	"math"
	"sync"
)

// runningStat is a Welford online mean/variance accumulator, adapted from
// the teacher's sched.Pool latency stat. Here it tracks how long /next
// callers actually waited before a dispatch decision, purely as an
// operational figure; it is not registered with Prometheus, so /metrics
// does not expose it. It plays no role in the simulated-time bookkeeping.
type runningStat struct {
	mu   sync.Mutex
	n    int64
	mean float64
	m2   float64
}

func (s *runningStat) add(x float64) {
	s.mu.Lock()
	s.n++
	delta := x - s.mean
	s.mean += delta / float64(s.n)
	delta2 := x - s.mean
	s.m2 += delta * delta2
	s.mu.Unlock()
}

func (s *runningStat) snapshot() (count int64, mean, stddev float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	count = s.n
	mean = s.mean
	if s.n > 1 {
		variance := s.m2 / float64(s.n-1)
		if variance > 0 {
			stddev = math.Sqrt(variance)
		}
	}
	return
}
