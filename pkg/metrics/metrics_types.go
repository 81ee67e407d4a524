package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for a session
type Registry struct {
	// Wire Metrics
	WireCommandsTotal    *prometheus.CounterVec
	WireCommandDuration  prometheus.Histogram
	WireBytesSentTotal   prometheus.Counter
	WireBytesRecvTotal   prometheus.Counter
	WireEngineErrors     prometheus.Counter
	WireProtocolErrors   prometheus.Counter
	WireTransportErrors  prometheus.Counter
	WireChannelConnected prometheus.Gauge

	// Build Metrics
	BuildNodesTotal   *prometheus.CounterVec
	BuildDuration     prometheus.Histogram
	BuildIdempotent   prometheus.Counter
	BuildNameConflict prometheus.Counter

	// Solve Metrics
	SolveRunsTotal  *prometheus.CounterVec
	SolveDuration   prometheus.Histogram
	SolveModesFound prometheus.Histogram
	FieldReadsTotal *prometheus.CounterVec

	registry *prometheus.Registry
	mu       sync.RWMutex
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		registry: reg,
	}

	// Initialize all metrics
	r.initWireMetrics()
	r.initBuildMetrics()
	r.initSolveMetrics()

	return r
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}
