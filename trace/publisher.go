package trace

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Entry is the structured form of one trace message as published to NATS.
// Consumers (debug UIs, trace collectors) subscribe to the pipeline's trace
// subject to observe condition decisions in real time.
type Entry struct {
	Timestamp string `json:"timestamp"` // RFC3339 format
	Pipeline  string `json:"pipeline"`
	Message   string `json:"message"`
}

// SlogTracer writes traces to a structured logger at debug level.
type SlogTracer struct {
	logger   *slog.Logger
	pipeline string
}

// NewSlogTracer creates a Tracer backed by the given logger.
func NewSlogTracer(logger *slog.Logger, pipeline string) *SlogTracer {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogTracer{logger: logger, pipeline: pipeline}
}

// Trace implements Tracer.
func (t *SlogTracer) Trace(msg string) {
	t.logger.Debug(msg, "pipeline", t.pipeline)
}

// Publisher publishes traces to a NATS subject for remote consumption while
// also logging locally. Publish failures are logged and dropped: the trace
// channel must never affect evaluation.
type Publisher struct {
	pipeline string
	nc       *nats.Conn
	logger   *slog.Logger
	enabled  bool
}

// NewPublisher creates a NATS-backed Tracer. A nil connection disables
// publishing; traces then only reach the local logger.
func NewPublisher(pipeline string, nc *nats.Conn, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		pipeline: pipeline,
		nc:       nc,
		logger:   logger,
		enabled:  nc != nil,
	}
}

// Trace implements Tracer.
func (p *Publisher) Trace(msg string) {
	p.logger.Debug(msg, "pipeline", p.pipeline)

	if !p.enabled {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Pipeline:  p.pipeline,
		Message:   msg,
	}

	data, err := json.Marshal(entry)
	if err != nil {
		p.logger.Error("Failed to marshal trace entry", "error", err)
		return
	}

	subject := fmt.Sprintf("traces.%s", p.pipeline)
	if err := p.nc.Publish(subject, data); err != nil {
		p.logger.Error("Failed to publish trace", "error", err, "subject", subject)
	}
}
