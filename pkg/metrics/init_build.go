package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initBuildMetrics() {
	r.BuildNodesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fimmgo_build_nodes_total",
			Help: "Engine nodes created, by node kind",
		},
		[]string{"kind"},
	)

	r.BuildDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fimmgo_build_duration_seconds",
			Help:    "Duration of node build operations in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	r.BuildIdempotent = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fimmgo_build_idempotent_hits_total",
			Help: "Build calls satisfied as registry lookups without engine commands",
		},
	)

	r.BuildNameConflict = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fimmgo_build_name_conflicts_total",
			Help: "Build calls rejected because the name was taken under the parent",
		},
	)
}
