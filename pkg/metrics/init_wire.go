package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initWireMetrics() {
	r.WireCommandsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "fimmgo_wire_commands_total",
			Help: "Total number of commands sent over the engine channel",
		},
		[]string{"status"},
	)

	r.WireCommandDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "fimmgo_wire_command_duration_seconds",
			Help:    "Round-trip duration of engine commands in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0, 30.0},
		},
	)

	r.WireBytesSentTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fimmgo_wire_bytes_sent_total",
			Help: "Total bytes written to the engine channel",
		},
	)

	r.WireBytesRecvTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fimmgo_wire_bytes_received_total",
			Help: "Total bytes read from the engine channel",
		},
	)

	r.WireEngineErrors = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fimmgo_wire_engine_errors_total",
			Help: "Replies the engine reported as errors",
		},
	)

	r.WireProtocolErrors = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fimmgo_wire_protocol_errors_total",
			Help: "Replies that failed to decode into the expected shape",
		},
	)

	r.WireTransportErrors = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "fimmgo_wire_transport_errors_total",
			Help: "Channel-fatal transport failures (dial, reset, timeout)",
		},
	)

	r.WireChannelConnected = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "fimmgo_wire_channel_connected",
			Help: "Whether the engine channel is currently connected (1) or not (0)",
		},
	)
}
