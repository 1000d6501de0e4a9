// Package trace provides the observability side-channel for compiled
// operators. Traces are fire-and-forget diagnostics: they are emitted
// synchronously from the evaluating goroutine and are never consulted for
// control flow.
package trace

import "sync"

// Tracer receives human-readable condition success/failure messages.
type Tracer interface {
	Trace(msg string)
}

// Func adapts a plain function into a Tracer.
type Func func(msg string)

// Trace implements Tracer.
func (f Func) Trace(msg string) {
	f(msg)
}

// nop discards all traces.
type nop struct{}

func (nop) Trace(string) {}

// Nop returns a Tracer that discards everything.
func Nop() Tracer {
	return nop{}
}

// Recorder is a Tracer that captures messages in order, for tests and
// interactive debugging of pipeline definitions.
type Recorder struct {
	mu       sync.Mutex
	messages []string
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Trace implements Tracer.
func (r *Recorder) Trace(msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
}

// Messages returns a copy of everything traced so far, in arrival order.
func (r *Recorder) Messages() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.messages))
	copy(out, r.messages)
	return out
}

// Reset discards all captured messages.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = nil
}
