package metrics

import (
	"time"
)

// RecordCommand records a command round-trip with its duration
func (r *Registry) RecordCommand(status string, duration time.Duration, sent, received int) {
	r.WireCommandsTotal.WithLabelValues(status).Inc()
	r.WireCommandDuration.Observe(duration.Seconds())
	r.WireBytesSentTotal.Add(float64(sent))
	r.WireBytesRecvTotal.Add(float64(received))
}

// RecordEngineError records a reply the engine reported as an error
func (r *Registry) RecordEngineError() {
	r.WireEngineErrors.Inc()
}

// RecordProtocolError records a decode failure
func (r *Registry) RecordProtocolError() {
	r.WireProtocolErrors.Inc()
}

// RecordTransportError records a channel-fatal failure
func (r *Registry) RecordTransportError() {
	r.WireTransportErrors.Inc()
}

// SetConnected updates the channel connectivity gauge
func (r *Registry) SetConnected(connected bool) {
	if connected {
		r.WireChannelConnected.Set(1)
	} else {
		r.WireChannelConnected.Set(0)
	}
}

// RecordBuild records a completed node build
func (r *Registry) RecordBuild(kind string, duration time.Duration) {
	r.BuildNodesTotal.WithLabelValues(kind).Inc()
	r.BuildDuration.Observe(duration.Seconds())
}

// RecordBuildIdempotent records a build request satisfied from the registry
func (r *Registry) RecordBuildIdempotent() {
	r.BuildIdempotent.Inc()
}

// RecordBuildConflict records a build rejected by a name conflict
func (r *Registry) RecordBuildConflict() {
	r.BuildNameConflict.Inc()
}

// RecordSolve records a solve run
func (r *Registry) RecordSolve(status string, duration time.Duration, modes int) {
	r.SolveRunsTotal.WithLabelValues(status).Inc()
	r.SolveDuration.Observe(duration.Seconds())
	if modes > 0 {
		r.SolveModesFound.Observe(float64(modes))
	}
}

// RecordFieldRead records a field component read
func (r *Registry) RecordFieldRead(component string) {
	r.FieldReadsTotal.WithLabelValues(component).Inc()
}
