package stream

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/c360/streamsift/event"
	"github.com/c360/streamsift/operator"
)

// Stage transforms a stream of events. Implementations own the returned
// channel and close it once the input channel is drained or the context is
// cancelled, whichever comes first.
type Stage func(ctx context.Context, in <-chan *event.Event) <-chan *event.Event

// Predicate decides whether an event survives a filter stage.
type Predicate func(ev *event.Event) bool

// TransformFunc rewrites an event for a Map stage. Returning an error drops
// the event without disturbing the rest of the stream.
type TransformFunc func(ev *event.Event) (*event.Event, error)

// Filter lifts a compiled operator into a stage. Events whose document
// satisfies the operator are forwarded unchanged and in arrival order;
// everything else is dropped. Nil events and events without a document are
// never forwarded.
func Filter(op *operator.Compiled) Stage {
	return FilterFunc(func(ev *event.Event) bool {
		return op.Eval(ev.Doc)
	})
}

// FilterChain lifts an ordered operator chain into a single stage. All
// operators must hold for an event to survive; evaluation short-circuits on
// the first miss.
func FilterChain(ops []*operator.Compiled) Stage {
	return FilterFunc(func(ev *event.Event) bool {
		for _, op := range ops {
			if !op.Eval(ev.Doc) {
				return false
			}
		}
		return true
	})
}

// FilterFunc lifts an arbitrary predicate into a stage. A panicking
// predicate drops the offending event and the stage keeps running.
func FilterFunc(pred Predicate) Stage {
	return func(ctx context.Context, in <-chan *event.Event) <-chan *event.Event {
		out := make(chan *event.Event)
		go func() {
			defer close(out)
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-in:
					if !ok {
						return
					}
					if ev == nil || ev.Doc == nil {
						continue
					}
					if !evalSafe(pred, ev) {
						continue
					}
					select {
					case out <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
		return out
	}
}

// Map lifts a transform function into a stage with the same ordering and
// completion guarantees as Filter. Transform errors and panics drop the
// event.
func Map(fn TransformFunc) Stage {
	return func(ctx context.Context, in <-chan *event.Event) <-chan *event.Event {
		out := make(chan *event.Event)
		go func() {
			defer close(out)
			for {
				select {
				case <-ctx.Done():
					return
				case ev, ok := <-in:
					if !ok {
						return
					}
					if ev == nil || ev.Doc == nil {
						continue
					}
					mapped, err := transformSafe(fn, ev)
					if err != nil {
						slog.Debug("Transform dropped event",
							"event_id", ev.ID,
							"error", err)
						continue
					}
					if mapped == nil {
						continue
					}
					select {
					case out <- mapped:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
		return out
	}
}

// Compose chains stages left to right: the output of stages[0] feeds
// stages[1], and so on. Composing zero stages yields a pass-through.
func Compose(stages ...Stage) Stage {
	return func(ctx context.Context, in <-chan *event.Event) <-chan *event.Event {
		ch := in
		for _, stage := range stages {
			ch = stage(ctx, ch)
		}
		return ch
	}
}

// evalSafe runs the predicate, converting a panic into a miss. A single bad
// event must never take the stage down.
func evalSafe(pred Predicate, ev *event.Event) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Predicate panic, dropping event",
				"event_id", ev.ID,
				"panic", r)
			ok = false
		}
	}()
	return pred(ev)
}

func transformSafe(fn TransformFunc, ev *event.Event) (mapped *event.Event, err error) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("Transform panic, dropping event",
				"event_id", ev.ID,
				"panic", r)
			mapped, err = nil, fmt.Errorf("transform panic: %v", r)
		}
	}()
	return fn(ev)
}
