package filter

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/c360/streamsift/component"
	"github.com/c360/streamsift/errors"
	"github.com/c360/streamsift/event"
	"github.com/c360/streamsift/natsclient"
	"github.com/c360/streamsift/operator"
	"github.com/c360/streamsift/pipeline"
	"github.com/c360/streamsift/pkg/buffer"
	"github.com/c360/streamsift/trace"
)

// Config holds configuration for the filter processor.
type Config struct {
	Pipeline       string          `json:"pipeline"`        // pipeline name, used for metrics and trace subject
	InputSubject   string          `json:"input_subject"`   // NATS subject to consume raw events from
	OutputSubjects []string        `json:"output_subjects"` // NATS subjects for surviving events
	Conditions     json.RawMessage `json:"conditions"`      // ordered single-member condition objects
	BufferSize     int             `json:"buffer_size"`     // intake ring capacity
	Overflow       string          `json:"overflow"`        // "drop_oldest" or "drop_newest"
	TraceEnabled   bool            `json:"trace_enabled"`   // publish condition traces to traces.<pipeline>
}

// DefaultConfig returns the default configuration for the filter processor.
func DefaultConfig() Config {
	return Config{
		Pipeline:       "default",
		InputSubject:   "events.raw",
		OutputSubjects: []string{"events.filtered"},
		BufferSize:     1024,
		Overflow:       "drop_oldest",
	}
}

// intakeItem pairs a parsed event with the raw bytes it arrived as, so
// survivors can be republished byte-for-byte.
type intakeItem struct {
	ev  *event.Event
	raw []byte
}

// Processor implements the event filter component.
type Processor struct {
	name       string
	pipeline   string
	inSubject  string
	outSubjs   []string
	chain      []*operator.Compiled
	natsClient *natsclient.Client
	logger     *slog.Logger
	tracer     trace.Tracer
	traceOn    bool

	ring   *buffer.Ring[intakeItem]
	notify chan struct{}

	// Lifecycle management
	shutdown    chan struct{}
	running     bool
	startTime   time.Time
	mu          sync.RWMutex
	lifecycleMu sync.Mutex
	wg          sync.WaitGroup

	// Atomic counters for DataFlow
	eventsReceived int64
	eventsPassed   int64
	eventsDropped  int64
	errorCount     int64
	lastActivity   atomic.Int64 // unix nanos

	metrics *filterMetrics
}

// NewProcessor creates a filter processor from raw configuration. The
// condition chain compiles here so a bad directive fails component creation
// instead of surfacing at runtime.
func NewProcessor(rawConfig json.RawMessage, deps component.Dependencies) (component.Discoverable, error) {
	config := DefaultConfig()
	if len(rawConfig) > 0 {
		if err := json.Unmarshal(rawConfig, &config); err != nil {
			return nil, errors.WrapInvalid(err, "FilterProcessor", "NewProcessor", "config unmarshal")
		}
	}

	if config.InputSubject == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig,
			"FilterProcessor", "NewProcessor", "input subject required")
	}
	if config.Pipeline == "" {
		config.Pipeline = "default"
	}
	if config.BufferSize <= 0 {
		config.BufferSize = 1024
	}

	var policy buffer.OverflowPolicy
	switch config.Overflow {
	case "", "drop_oldest":
		policy = buffer.DropOldest
	case "drop_newest":
		policy = buffer.DropNewest
	default:
		return nil, errors.WrapInvalid(
			fmt.Errorf("unknown overflow policy %q", config.Overflow),
			"FilterProcessor", "NewProcessor", "overflow policy")
	}

	logger := deps.GetLogger()

	tracer := deps.GetTracer()
	if config.TraceEnabled && deps.NATSClient != nil {
		tracer = trace.NewPublisher(config.Pipeline, deps.NATSClient.Conn(), logger)
	}

	conditions, err := pipeline.ParseConditions(defaultConditions(config.Conditions))
	if err != nil {
		return nil, errors.Wrap(err, "FilterProcessor", "NewProcessor", "parse conditions")
	}
	chain, err := pipeline.Build(conditions, tracer)
	if err != nil {
		return nil, errors.Wrap(err, "FilterProcessor", "NewProcessor", "compile conditions")
	}

	metrics, err := newFilterMetrics(deps.MetricsRegistry, config.Pipeline)
	if err != nil {
		logger.Error("Failed to initialize filter metrics", "error", err)
		metrics = nil // Continue without metrics
	}

	p := &Processor{
		name:       "filter-processor",
		pipeline:   config.Pipeline,
		inSubject:  config.InputSubject,
		outSubjs:   config.OutputSubjects,
		chain:      chain,
		natsClient: deps.NATSClient,
		logger:     logger,
		tracer:     tracer,
		traceOn:    config.TraceEnabled,
		notify:     make(chan struct{}, 1),
		shutdown:   make(chan struct{}),
		metrics:    metrics,
	}

	p.ring, err = buffer.NewRing(config.BufferSize, policy, func(intakeItem) {
		atomic.AddInt64(&p.eventsDropped, 1)
		p.metrics.recordDrop(p.pipeline, "overflow")
	})
	if err != nil {
		return nil, errors.Wrap(err, "FilterProcessor", "NewProcessor", "create intake ring")
	}

	return p, nil
}

func defaultConditions(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage(`[]`)
	}
	return raw
}

// Initialize prepares the processor. No I/O happens here.
func (p *Processor) Initialize() error {
	return nil
}

// Start subscribes to the input subject and launches the evaluation worker.
func (p *Processor) Start(ctx context.Context) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if p.isRunning() {
		return errors.WrapFatal(errors.ErrAlreadyStarted, "FilterProcessor", "Start", "check running state")
	}
	if p.natsClient == nil {
		return errors.WrapFatal(errors.ErrMissingConfig, "FilterProcessor", "Start", "NATS client required")
	}

	if err := p.natsClient.Subscribe(ctx, p.inSubject, p.handleMessage); err != nil {
		return errors.WrapTransient(err, "FilterProcessor", "Start",
			fmt.Sprintf("subscribe to %s", p.inSubject))
	}

	p.wg.Add(1)
	go p.evalLoop(ctx)

	p.mu.Lock()
	p.running = true
	p.startTime = time.Now()
	p.mu.Unlock()

	p.logger.Info("Filter processor started",
		"component", p.name,
		"pipeline", p.pipeline,
		"input_subject", p.inSubject,
		"output_subjects", p.outSubjs,
		"conditions", len(p.chain),
		"trace_enabled", p.traceOn)

	return nil
}

// Stop drains the worker and stops the processor.
func (p *Processor) Stop(timeout time.Duration) error {
	p.lifecycleMu.Lock()
	defer p.lifecycleMu.Unlock()

	if !p.isRunning() {
		return nil
	}

	close(p.shutdown)

	waitCh := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
	case <-time.After(timeout):
		return errors.WrapTransient(
			fmt.Errorf("shutdown timeout after %v", timeout),
			"FilterProcessor", "Stop", "graceful shutdown")
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

func (p *Processor) isRunning() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.running
}

// handleMessage parses an incoming event and queues it for evaluation.
// Parse failures are dropped without disturbing the stream.
func (p *Processor) handleMessage(_ context.Context, data []byte) {
	atomic.AddInt64(&p.eventsReceived, 1)
	p.lastActivity.Store(time.Now().UnixNano())
	p.metrics.recordReceived(p.pipeline)

	ev, err := event.Parse(data)
	if err != nil {
		atomic.AddInt64(&p.errorCount, 1)
		p.metrics.recordDrop(p.pipeline, "parse")
		p.logger.Debug("Dropping unparsable event",
			"component", p.name,
			"pipeline", p.pipeline,
			"error", err)
		return
	}

	p.ring.Write(intakeItem{ev: ev, raw: data})

	select {
	case p.notify <- struct{}{}:
	default:
	}
}

// evalLoop is the single evaluation goroutine: it drains the intake ring in
// FIFO order so survivors are published in arrival order.
func (p *Processor) evalLoop(ctx context.Context) {
	defer p.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.shutdown:
			// Drain whatever is queued before exiting.
			p.drain(ctx)
			return
		case <-p.notify:
			p.drain(ctx)
		}
	}
}

func (p *Processor) drain(ctx context.Context) {
	for {
		batch := p.ring.ReadBatch(64)
		if len(batch) == 0 {
			return
		}
		for _, item := range batch {
			p.evaluate(ctx, item)
		}
	}
}

// evaluate runs the condition chain and republishes the raw event when
// every condition holds.
func (p *Processor) evaluate(ctx context.Context, item intakeItem) {
	start := time.Now()
	matched := p.matches(item.ev)
	p.metrics.recordEvaluation(p.pipeline, matched, time.Since(start))

	if !matched {
		atomic.AddInt64(&p.eventsDropped, 1)
		p.metrics.recordDrop(p.pipeline, "filtered")
		return
	}

	atomic.AddInt64(&p.eventsPassed, 1)
	for _, subject := range p.outSubjs {
		if subject == "" {
			continue
		}
		if err := p.natsClient.Publish(ctx, subject, item.raw); err != nil {
			atomic.AddInt64(&p.errorCount, 1)
			p.metrics.recordError(p.pipeline, "publish")
			p.logger.Error("Failed to publish filtered event",
				"component", p.name,
				"pipeline", p.pipeline,
				"output_subject", subject,
				"error", err)
		}
	}
}

// matches applies the chain in order with short-circuit on the first miss.
// An empty chain passes everything.
func (p *Processor) matches(ev *event.Event) bool {
	for _, op := range p.chain {
		if !op.Eval(ev.Doc) {
			return false
		}
	}
	return true
}

// Meta returns metadata describing this processor component.
func (p *Processor) Meta() component.Metadata {
	return component.Metadata{
		Name:        p.name,
		Type:        "processor",
		Description: "JSON event filter with directive condition chains",
		Version:     "0.1.0",
	}
}

// Health returns the current health status of this processor.
func (p *Processor) Health() component.HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()

	status := component.HealthStatus{
		Healthy:    p.running,
		LastCheck:  time.Now(),
		ErrorCount: int(atomic.LoadInt64(&p.errorCount)),
	}
	if p.running {
		status.Uptime = time.Since(p.startTime)
	}
	return status
}

// DataFlow returns current data flow metrics for this processor.
func (p *Processor) DataFlow() component.FlowMetrics {
	received := atomic.LoadInt64(&p.eventsReceived)
	errorCount := atomic.LoadInt64(&p.errorCount)

	var errorRate float64
	if received > 0 {
		errorRate = float64(errorCount) / float64(received)
	}

	var last time.Time
	if nanos := p.lastActivity.Load(); nanos > 0 {
		last = time.Unix(0, nanos)
	}

	return component.FlowMetrics{
		ErrorRate:    errorRate,
		LastActivity: last,
	}
}

// Register registers the filter processor factory with the given registry.
func Register(registry *component.Registry) error {
	return registry.RegisterWithConfig(component.RegistrationConfig{
		Name:        "filter",
		Factory:     NewProcessor,
		Type:        "processor",
		Description: "JSON event filter with directive condition chains",
		Version:     "0.1.0",
	})
}
