package component

import (
	"log/slog"

	"github.com/c360/streamsift/metric"
	"github.com/c360/streamsift/natsclient"
	"github.com/c360/streamsift/trace"
)

// Dependencies provides all external dependencies needed by components.
// Factories receive this bundle instead of individual fields.
type Dependencies struct {
	NATSClient      *natsclient.Client // NATS client for event transport
	MetricsRegistry *metric.Registry   // Metrics registry for Prometheus (can be nil)
	Tracer          trace.Tracer       // Condition trace sink (can be nil)
	Logger          *slog.Logger       // Structured logger (can be nil, defaults to slog.Default())
}

// GetLogger returns the configured logger, or the default logger when none
// is provided.
func (d *Dependencies) GetLogger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

// GetTracer returns the configured tracer, or a no-op tracer when none is
// provided.
func (d *Dependencies) GetTracer() trace.Tracer {
	if d.Tracer != nil {
		return d.Tracer
	}
	return trace.Nop()
}
