package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initSolveMetrics() {
	r.SolveRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fimmgo_solve_runs_total",
			Help: "Mode-solve runs issued to the engine",
		},
		[]string{"status"},
	)

	r.SolveDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fimmgo_solve_duration_seconds",
			Help:    "Duration of solve runs in seconds",
			Buckets: []float64{0.1, 0.5, 1.0, 5.0, 30.0, 120.0, 600.0},
		},
	)

	r.SolveModesFound = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fimmgo_solve_modes_found",
			Help:    "Number of modes returned per solve run",
			Buckets: []float64{1, 2, 5, 10, 20, 50, 100},
		},
	)

	r.FieldReadsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fimmgo_field_reads_total",
			Help: "Field component reads, by component",
		},
		[]string{"component"},
	)
}
