// Package streamsift is a condition/transform compiler and streaming filter
// engine for structured log and security events.
//
// StreamSift turns a small declarative directive language, embedded as string
// values inside JSON configuration objects, into compiled predicates and
// transforms, then composes them into stages of a push-based pipeline that
// filters and rewrites a continuous sequence of events.
//
// # Architecture
//
//	┌─────────────────────────────────────┐
//	│        Pipeline Builder             │  compiles condition objects,
//	│  (directive parse + operator build) │  fails fast on bad directives
//	└─────────────────────────────────────┘
//	           ↓ produces
//	┌─────────────────────────────────────┐
//	│      Compiled Operators             │  immutable, reusable, shared
//	│  (exists, s_*, i_*, r_*, ip_cidr)   │  read-only across pipelines
//	└─────────────────────────────────────┘
//	           ↓ lifted into
//	┌─────────────────────────────────────┐
//	│        Stream Stages                │  in-order filtering/rewriting,
//	│   (filter, map, compose)            │  per-event fault isolation
//	└─────────────────────────────────────┘
//	           ↓ fed by
//	┌─────────────────────────────────────┐
//	│        NATS Messaging               │  event delivery in/out,
//	│   (pub/sub subjects, trace sink)    │  trace side-channel
//	└─────────────────────────────────────┘
//
// A directive has the form "+name/arg1/arg2". An argument whose first
// character is '$' is a reference to another field of the same event; any
// other argument is a literal. Conditions are single-member JSON objects
// binding a field path to a directive, e.g.
//
//	{"source.ip": "+ip_cidr/192.168.0.0/16"}
//	{"test.field": "+s_eq/$other.field"}
//	{"message": "+r_match/login failed"}
//
// All directive validation (arity, literal syntax, regex and network
// compilation) happens when the pipeline is built. Evaluation of a compiled
// operator never produces a build-class error: missing fields, type
// mismatches, and unparsable runtime values resolve to a soft miss (false),
// optionally visible on the trace side-channel.
//
// Package layout:
//   - event: slash/dot addressed structured value store and the Event unit
//   - directive: directive grammar parser and operand resolution
//   - operator: per-family compilers and the evaluation engine
//   - stream: channel-based stages with ordering/completion guarantees
//   - pipeline: condition-list compilation into a composed stage
//   - trace: tracer sinks (nop, func, slog, NATS)
//   - processor/filter: NATS-connected filter component with metrics/health
package streamsift
