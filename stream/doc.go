// Package stream provides push-based pipeline stages over channels.
//
// A Stage consumes events from an input channel and delivers results on an
// output channel it owns. Stages guarantee arrival-order delivery, close
// their output only after every upstream event has been handled, and treat
// per-event problems (nil events, malformed documents, predicate misses) as
// drops rather than stream aborts.
//
// Filter lifts a compiled operator into a stage; Map lifts a transform
// function; Compose chains stages left to right.
package stream
