package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "streamsift"

// Metrics contains all platform-level metrics shared across pipelines.
// Per-component metrics live with their components.
type Metrics struct {
	// Pipeline metrics
	PipelineStatus *prometheus.GaugeVec
	EventsReceived *prometheus.CounterVec
	EventsPassed   *prometheus.CounterVec
	EventsDropped  *prometheus.CounterVec
	EvalDuration   *prometheus.HistogramVec
	ErrorsTotal    *prometheus.CounterVec

	// NATS metrics
	NATSConnected  prometheus.Gauge
	NATSRTT        prometheus.Gauge
	NATSReconnects prometheus.Counter
}

// NewMetrics creates a new Metrics instance with all platform metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		PipelineStatus: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "status",
				Help:      "Pipeline status (0=stopped, 1=running)",
			},
			[]string{"pipeline"},
		),

		EventsReceived: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "received_total",
				Help:      "Total number of events received",
			},
			[]string{"pipeline"},
		),

		EventsPassed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "passed_total",
				Help:      "Total number of events that satisfied every condition",
			},
			[]string{"pipeline"},
		),

		EventsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "events",
				Name:      "dropped_total",
				Help:      "Total number of events dropped, by reason",
			},
			[]string{"pipeline", "reason"},
		),

		EvalDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "pipeline",
				Name:      "eval_duration_seconds",
				Help:      "Condition chain evaluation duration in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.000001, 4, 12),
			},
			[]string{"pipeline"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors, by type",
			},
			[]string{"pipeline", "type"},
		),

		NATSConnected: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "nats",
				Name:      "connected",
				Help:      "NATS connection status (0=disconnected, 1=connected)",
			},
		),

		NATSRTT: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "nats",
				Name:      "rtt_milliseconds",
				Help:      "NATS round-trip time in milliseconds",
			},
		),

		NATSReconnects: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "nats",
				Name:      "reconnects_total",
				Help:      "Total number of NATS reconnections",
			},
		),
	}
}

// RecordPipelineStatus updates the pipeline status gauge.
func (m *Metrics) RecordPipelineStatus(pipeline string, running bool) {
	value := 0.0
	if running {
		value = 1.0
	}
	m.PipelineStatus.WithLabelValues(pipeline).Set(value)
}

// RecordEventReceived increments the received event counter.
func (m *Metrics) RecordEventReceived(pipeline string) {
	m.EventsReceived.WithLabelValues(pipeline).Inc()
}

// RecordEventPassed increments the passed event counter.
func (m *Metrics) RecordEventPassed(pipeline string) {
	m.EventsPassed.WithLabelValues(pipeline).Inc()
}

// RecordEventDropped increments the dropped event counter for a reason
// such as "filtered", "parse" or "overflow".
func (m *Metrics) RecordEventDropped(pipeline, reason string) {
	m.EventsDropped.WithLabelValues(pipeline, reason).Inc()
}

// RecordEvalDuration records one condition chain evaluation.
func (m *Metrics) RecordEvalDuration(pipeline string, duration time.Duration) {
	m.EvalDuration.WithLabelValues(pipeline).Observe(duration.Seconds())
}

// RecordError increments the error counter.
func (m *Metrics) RecordError(pipeline, errorType string) {
	m.ErrorsTotal.WithLabelValues(pipeline, errorType).Inc()
}

// RecordNATSStatus updates the NATS connection status gauge.
func (m *Metrics) RecordNATSStatus(connected bool) {
	value := 0.0
	if connected {
		value = 1.0
	}
	m.NATSConnected.Set(value)
}

// RecordNATSRTT updates the NATS round-trip time gauge.
func (m *Metrics) RecordNATSRTT(rtt time.Duration) {
	m.NATSRTT.Set(float64(rtt.Milliseconds()))
}

// RecordNATSReconnect increments the reconnection counter.
func (m *Metrics) RecordNATSReconnect() {
	m.NATSReconnects.Inc()
}
