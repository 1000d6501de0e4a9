// Package errors provides standardized error handling patterns for StreamSift.
//
// # Overview
//
// The package separates the two disjoint error worlds of a directive-driven
// filtering engine:
//
//   - Build-time errors: a directive that cannot be compiled (malformed
//     syntax, wrong arity, bad regex, bad integer literal, bad network spec).
//     These are fatal and non-retryable; pipeline construction stops on the
//     first one. They are represented by *BuildError wrapping a sentinel kind
//     so callers can report precisely which directive failed and why.
//
//   - Infrastructure errors: transport and configuration failures around the
//     engine. These use the three-class scheme (Transient / Invalid / Fatal)
//     with classification-aware wrapping in the
//     "component.method: action failed: %w" format.
//
// Runtime evaluation misses (missing field, type mismatch, unparsable value)
// are deliberately NOT errors. A compiled operator resolves them to false and
// at most records a failure trace; no error value ever crosses the evaluator
// boundary.
//
// # Build errors
//
//	op, err := operator.Build("source.ip", "+ip_cidr/192.168.0.0", tracer)
//	if err != nil {
//	    var be *errors.BuildError
//	    if stderrors.As(err, &be) {
//	        log.Printf("directive %q on field %q: %v", be.Directive, be.Field, be)
//	    }
//	    if stderrors.Is(err, errors.ErrInvalidArity) {
//	        // arity mismatch specifically
//	    }
//	}
//
// # Wrapping
//
// All infrastructure wrapping follows the standardized format:
//
//	errors.Wrap(err, "FilterProcessor", "Start", "subscription")
//	errors.WrapTransient(err, "Client", "Publish", "NATS publish")
//	errors.WrapInvalid(err, "Config", "Load", "schema validation")
//
// Classification survives wrapping chains and integrates with errors.Is/As.
package errors
