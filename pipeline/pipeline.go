// Package pipeline compiles ordered condition lists into operator chains
// and filter stages.
//
// A condition is a single-member JSON object mapping a field path to a
// directive string, e.g. {"event.severity": "+i_ge/3"}. Conditions compile
// in list order and compilation stops on the first invalid directive, so a
// bad pipeline definition never half-loads.
package pipeline

import (
	"encoding/json"
	"fmt"

	"github.com/c360/streamsift/errors"
	"github.com/c360/streamsift/operator"
	"github.com/c360/streamsift/stream"
	"github.com/c360/streamsift/trace"
)

// Condition pairs a target field path with the directive applied to it.
type Condition struct {
	Field     string
	Directive string
}

// ParseConditions decodes a JSON array of single-member condition objects,
// preserving array order. Objects with zero or multiple members are
// rejected.
func ParseConditions(raw json.RawMessage) ([]Condition, error) {
	var objs []map[string]string
	if err := json.Unmarshal(raw, &objs); err != nil {
		return nil, errors.WrapInvalid(err, "Pipeline", "ParseConditions", "decode condition list")
	}

	conditions := make([]Condition, 0, len(objs))
	for i, obj := range objs {
		if len(obj) != 1 {
			return nil, errors.NewBuild(errors.ErrMalformedDirective, "", "",
				fmt.Sprintf("condition %d must have exactly one member, got %d", i, len(obj)))
		}
		for field, directive := range obj {
			conditions = append(conditions, Condition{Field: field, Directive: directive})
		}
	}
	return conditions, nil
}

// Build compiles each condition in order against the shared tracer. It
// returns the compiled chain, or the first build error annotated with the
// offending condition. The input is never modified.
func Build(conditions []Condition, tracer trace.Tracer) ([]*operator.Compiled, error) {
	ops := make([]*operator.Compiled, 0, len(conditions))
	for i, cond := range conditions {
		op, err := operator.Build(cond.Field, cond.Directive, tracer)
		if err != nil {
			return nil, errors.Wrap(err, "Pipeline", "Build",
				fmt.Sprintf("compile condition %d %q", i, cond.Directive))
		}
		ops = append(ops, op)
	}
	return ops, nil
}

// Stage compiles the conditions and lifts the resulting chain into a single
// stream stage. An event survives only when every condition holds.
func Stage(conditions []Condition, tracer trace.Tracer) (stream.Stage, error) {
	ops, err := Build(conditions, tracer)
	if err != nil {
		return nil, err
	}
	return stream.FilterChain(ops), nil
}
