package stream

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/streamsift/event"
	"github.com/c360/streamsift/operator"
)

func makeEvents(t *testing.T, docs ...map[string]any) []*event.Event {
	t.Helper()
	events := make([]*event.Event, len(docs))
	for i, d := range docs {
		events[i] = event.New(d)
	}
	return events
}

func feed(events []*event.Event) <-chan *event.Event {
	in := make(chan *event.Event, len(events))
	for _, ev := range events {
		in <- ev
	}
	close(in)
	return in
}

func collect(t *testing.T, out <-chan *event.Event) []*event.Event {
	t.Helper()
	var got []*event.Event
	deadline := time.After(5 * time.Second)
	for {
		select {
		case ev, ok := <-out:
			if !ok {
				return got
			}
			got = append(got, ev)
		case <-deadline:
			t.Fatal("stage did not complete in time")
		}
	}
}

func TestFilterOrderingAndCompletion(t *testing.T) {
	op, err := operator.Build("keep", "+s_eq/yes", nil)
	require.NoError(t, err)

	events := makeEvents(t,
		map[string]any{"name": "A", "keep": "yes"},
		map[string]any{"name": "B", "keep": "no"},
		map[string]any{"name": "C", "keep": "yes"},
		map[string]any{"name": "D", "keep": "no"},
	)

	out := Filter(op)(context.Background(), feed(events))
	got := collect(t, out)

	require.Len(t, got, 2)
	// Survivors keep arrival order and pass through untouched.
	assert.Same(t, events[0], got[0])
	assert.Same(t, events[2], got[1])
}

func TestFilterChainShortCircuits(t *testing.T) {
	a, err := operator.Build("level", "+i_ge/3", nil)
	require.NoError(t, err)
	b, err := operator.Build("source", "+s_eq/auth", nil)
	require.NoError(t, err)

	events := makeEvents(t,
		map[string]any{"level": 5, "source": "auth"}, // both hold
		map[string]any{"level": 1, "source": "auth"}, // first misses
		map[string]any{"level": 7, "source": "cron"}, // second misses
		map[string]any{"level": 3, "source": "auth"}, // both hold
	)

	out := FilterChain([]*operator.Compiled{a, b})(context.Background(), feed(events))
	got := collect(t, out)

	require.Len(t, got, 2)
	assert.Same(t, events[0], got[0])
	assert.Same(t, events[3], got[1])
}

func TestFilterDropsNilAndDoclessEvents(t *testing.T) {
	op, err := operator.Build("keep", "+exists", nil)
	require.NoError(t, err)

	good := event.New(map[string]any{"keep": true})
	in := make(chan *event.Event, 3)
	in <- nil
	in <- &event.Event{ID: "docless"}
	in <- good
	close(in)

	got := collect(t, Filter(op)(context.Background(), in))
	require.Len(t, got, 1)
	assert.Same(t, good, got[0])
}

func TestFilterFuncIsolatesPanics(t *testing.T) {
	events := makeEvents(t,
		map[string]any{"name": "A"},
		map[string]any{"name": "boom"},
		map[string]any{"name": "C"},
	)

	stage := FilterFunc(func(ev *event.Event) bool {
		name, err := ev.Doc.GetString("name")
		if err != nil {
			return false
		}
		if name == "boom" {
			panic("bad predicate")
		}
		return true
	})

	got := collect(t, stage(context.Background(), feed(events)))
	require.Len(t, got, 2)
	assert.Same(t, events[0], got[0])
	assert.Same(t, events[2], got[1])
}

func TestMapTransformsAndDrops(t *testing.T) {
	events := makeEvents(t,
		map[string]any{"name": "A"},
		map[string]any{"name": "skip"},
		map[string]any{"name": "C"},
	)

	stage := Map(func(ev *event.Event) (*event.Event, error) {
		name, err := ev.Doc.GetString("name")
		if err != nil {
			return nil, err
		}
		if name == "skip" {
			return nil, nil
		}
		if err := ev.Doc.Set("tagged", true); err != nil {
			return nil, err
		}
		return ev, nil
	})

	got := collect(t, stage(context.Background(), feed(events)))
	require.Len(t, got, 2)
	for _, ev := range got {
		assert.True(t, ev.Doc.Exists("tagged"))
	}
}

func TestComposeChainsStages(t *testing.T) {
	keep, err := operator.Build("keep", "+s_eq/yes", nil)
	require.NoError(t, err)

	tag := Map(func(ev *event.Event) (*event.Event, error) {
		return ev, ev.Doc.Set("stage", "tagged")
	})

	events := makeEvents(t,
		map[string]any{"name": "A", "keep": "yes"},
		map[string]any{"name": "B", "keep": "no"},
		map[string]any{"name": "C", "keep": "yes"},
	)

	out := Compose(Filter(keep), tag)(context.Background(), feed(events))
	got := collect(t, out)

	require.Len(t, got, 2)
	for _, ev := range got {
		tagVal, err := ev.Doc.GetString("stage")
		require.NoError(t, err)
		assert.Equal(t, "tagged", tagVal)
	}
}

func TestComposeEmptyIsPassThrough(t *testing.T) {
	events := makeEvents(t, map[string]any{"a": 1}, map[string]any{"b": 2})
	out := Compose()(context.Background(), feed(events))

	got := collect(t, out)
	require.Len(t, got, 2)
	assert.Same(t, events[0], got[0])
	assert.Same(t, events[1], got[1])
}

func TestStageStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	in := make(chan *event.Event) // never fed, never closed
	out := FilterFunc(func(*event.Event) bool { return true })(ctx, in)

	cancel()

	select {
	case _, ok := <-out:
		assert.False(t, ok, "output should close without delivering events")
	case <-time.After(5 * time.Second):
		t.Fatal("stage did not stop after cancellation")
	}
}
