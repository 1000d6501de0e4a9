// Package filter provides the event filter processor: it subscribes to a
// NATS input subject, evaluates each JSON event against a compiled condition
// chain, and republishes survivors unchanged to the output subjects.
//
// Events flow through a fixed-capacity ring buffer into a single evaluation
// goroutine per processor, so surviving events keep their arrival order.
// Malformed events and evaluation misses are counted and dropped; they never
// stop the stream.
package filter
