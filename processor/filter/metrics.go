package filter

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/c360/streamsift/metric"
)

// filterMetrics holds Prometheus metrics for filter processor operations.
// All record methods tolerate a nil receiver so the processor runs without
// a registry.
type filterMetrics struct {
	received *prometheus.CounterVec // by pipeline
	matched  *prometheus.CounterVec // by pipeline
	dropped  *prometheus.CounterVec // by pipeline and reason (filtered/parse/overflow)
	errors   *prometheus.CounterVec // by pipeline and error_type

	evaluationDuration *prometheus.HistogramVec // by pipeline
}

// newFilterMetrics creates and registers filter metrics with the provided
// registry. A nil registry disables metrics.
func newFilterMetrics(registry *metric.Registry, pipeline string) (*filterMetrics, error) {
	if registry == nil {
		return nil, nil
	}

	m := &filterMetrics{
		received: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamsift",
			Subsystem: "filter",
			Name:      "received_total",
			Help:      "Total number of events received by the filter",
		}, []string{"pipeline"}),

		matched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamsift",
			Subsystem: "filter",
			Name:      "matched_total",
			Help:      "Total number of events that satisfied the condition chain",
		}, []string{"pipeline"}),

		dropped: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamsift",
			Subsystem: "filter",
			Name:      "dropped_total",
			Help:      "Total number of events dropped, by reason",
		}, []string{"pipeline", "reason"}),

		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "streamsift",
			Subsystem: "filter",
			Name:      "errors_total",
			Help:      "Total number of filter processing errors",
		}, []string{"pipeline", "error_type"}),

		evaluationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "streamsift",
			Subsystem: "filter",
			Name:      "evaluation_duration_seconds",
			Help:      "Condition chain evaluation duration in seconds",
			Buckets:   []float64{0.000001, 0.00001, 0.0001, 0.001, 0.01, 0.1},
		}, []string{"pipeline"}),
	}

	owner := "filter-" + pipeline
	if err := registry.Register(owner, "received_total", m.received); err != nil {
		return nil, err
	}
	if err := registry.Register(owner, "matched_total", m.matched); err != nil {
		return nil, err
	}
	if err := registry.Register(owner, "dropped_total", m.dropped); err != nil {
		return nil, err
	}
	if err := registry.Register(owner, "errors_total", m.errors); err != nil {
		return nil, err
	}
	if err := registry.Register(owner, "evaluation_duration", m.evaluationDuration); err != nil {
		return nil, err
	}

	return m, nil
}

func (m *filterMetrics) recordReceived(pipeline string) {
	if m == nil {
		return
	}
	m.received.WithLabelValues(pipeline).Inc()
}

func (m *filterMetrics) recordEvaluation(pipeline string, matched bool, duration time.Duration) {
	if m == nil {
		return
	}
	if matched {
		m.matched.WithLabelValues(pipeline).Inc()
	}
	m.evaluationDuration.WithLabelValues(pipeline).Observe(duration.Seconds())
}

func (m *filterMetrics) recordDrop(pipeline, reason string) {
	if m == nil {
		return
	}
	m.dropped.WithLabelValues(pipeline, reason).Inc()
}

func (m *filterMetrics) recordError(pipeline, errorType string) {
	if m == nil {
		return
	}
	m.errors.WithLabelValues(pipeline, errorType).Inc()
}
