package pipeline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/streamsift/errors"
	"github.com/c360/streamsift/event"
	"github.com/c360/streamsift/trace"
)

func TestParseConditions(t *testing.T) {
	t.Run("valid list preserves order", func(t *testing.T) {
		raw := json.RawMessage(`[
			{"source": "+s_eq/auth"},
			{"severity": "+i_ge/3"},
			{"client.ip": "+ip_cidr/10.0.0.0/8"}
		]`)

		conditions, err := ParseConditions(raw)
		require.NoError(t, err)
		require.Len(t, conditions, 3)
		assert.Equal(t, Condition{Field: "source", Directive: "+s_eq/auth"}, conditions[0])
		assert.Equal(t, Condition{Field: "severity", Directive: "+i_ge/3"}, conditions[1])
		assert.Equal(t, Condition{Field: "client.ip", Directive: "+ip_cidr/10.0.0.0/8"}, conditions[2])
	})

	t.Run("multi-member object rejected", func(t *testing.T) {
		raw := json.RawMessage(`[{"a": "+exists", "b": "+exists"}]`)
		_, err := ParseConditions(raw)
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrMalformedDirective))
	})

	t.Run("empty object rejected", func(t *testing.T) {
		_, err := ParseConditions(json.RawMessage(`[{}]`))
		require.Error(t, err)
		assert.True(t, stderrors.Is(err, errors.ErrMalformedDirective))
	})

	t.Run("non-array rejected", func(t *testing.T) {
		_, err := ParseConditions(json.RawMessage(`{"a": "+exists"}`))
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
	})

	t.Run("empty array is valid", func(t *testing.T) {
		conditions, err := ParseConditions(json.RawMessage(`[]`))
		require.NoError(t, err)
		assert.Empty(t, conditions)
	})
}

func TestBuild(t *testing.T) {
	t.Run("compiles chain in order", func(t *testing.T) {
		ops, err := Build([]Condition{
			{Field: "source", Directive: "+s_eq/auth"},
			{Field: "severity", Directive: "+i_ge/3"},
		}, nil)
		require.NoError(t, err)
		require.Len(t, ops, 2)
		assert.Equal(t, "/source", ops[0].Field())
		assert.Equal(t, "/severity", ops[1].Field())
	})

	t.Run("stops on first build error", func(t *testing.T) {
		_, err := Build([]Condition{
			{Field: "ok", Directive: "+exists"},
			{Field: "bad", Directive: "+r_match/(unclosed"},
			{Field: "never", Directive: "+nonsense"},
		}, nil)
		require.Error(t, err)

		// The regex failure surfaces, not the later unknown operator.
		assert.True(t, stderrors.Is(err, errors.ErrRegexCompile))
		assert.False(t, stderrors.Is(err, errors.ErrMalformedDirective))
		assert.Contains(t, err.Error(), "+r_match/(unclosed")

		var buildErr *errors.BuildError
		require.True(t, stderrors.As(err, &buildErr))
		assert.Equal(t, "/bad", buildErr.Field)
	})

	t.Run("empty chain is valid", func(t *testing.T) {
		ops, err := Build(nil, nil)
		require.NoError(t, err)
		assert.Empty(t, ops)
	})
}

func TestStage(t *testing.T) {
	rec := trace.NewRecorder()
	stage, err := Stage([]Condition{
		{Field: "source", Directive: "+s_eq/auth"},
		{Field: "severity", Directive: "+i_ge/3"},
	}, rec)
	require.NoError(t, err)

	events := []*event.Event{
		event.New(map[string]any{"source": "auth", "severity": 5}),
		event.New(map[string]any{"source": "cron", "severity": 5}),
		event.New(map[string]any{"source": "auth", "severity": 1}),
	}

	in := make(chan *event.Event, len(events))
	for _, ev := range events {
		in <- ev
	}
	close(in)

	out := stage(context.Background(), in)

	var got []*event.Event
	deadline := time.After(5 * time.Second)
collect:
	for {
		select {
		case ev, ok := <-out:
			if !ok {
				break collect
			}
			got = append(got, ev)
		case <-deadline:
			t.Fatal("stage did not complete in time")
		}
	}

	require.Len(t, got, 1)
	assert.Same(t, events[0], got[0])
	assert.NotEmpty(t, rec.Messages())
}
