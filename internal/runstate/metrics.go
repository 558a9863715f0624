package runstate

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Domain metrics, registered into the default Prometheus registry and
// served by the ambient /metrics endpoint. Grounded on the
// client_golang counter/gauge usage in the retrieved pack's worker
// examples (one counter per terminal outcome).
var (
	dispatchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distsched_dispatches_total",
		Help: "Total /next replies, by status.",
	}, []string{"status"})

	completionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "distsched_completions_total",
		Help: "Total /done reports, by whether the job finished.",
	}, []string{"finished"})

	leasesRecoveredTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "distsched_leases_recovered_total",
		Help: "Jobs requeued after their dispatched worker went stale.",
	})
)
