// Package buffer provides a thread-safe ring buffer with configurable
// overflow policies, used to absorb bursts between event intake and
// pipeline evaluation.
package buffer

import (
	"sync"

	"github.com/c360/streamsift/errors"
)

// OverflowPolicy defines behavior when a write hits a full ring.
type OverflowPolicy int

const (
	// DropOldest evicts the oldest item to make room for the new one.
	DropOldest OverflowPolicy = iota

	// DropNewest rejects the incoming item when the ring is full.
	DropNewest
)

// String returns a human-readable representation of the overflow policy.
func (p OverflowPolicy) String() string {
	switch p {
	case DropOldest:
		return "DropOldest"
	case DropNewest:
		return "DropNewest"
	default:
		return "Unknown"
	}
}

// DropFunc observes items evicted or rejected by the overflow policy.
type DropFunc[T any] func(item T)

// Ring is a fixed-capacity FIFO ring buffer. All methods are safe for
// concurrent use.
type Ring[T any] struct {
	mu      sync.Mutex
	items   []T
	head    int // next read position
	count   int
	policy  OverflowPolicy
	onDrop  DropFunc[T]
	written uint64
	read    uint64
	dropped uint64
}

// NewRing creates a ring with the given capacity and overflow policy.
// onDrop may be nil.
func NewRing[T any](capacity int, policy OverflowPolicy, onDrop DropFunc[T]) (*Ring[T], error) {
	if capacity <= 0 {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "Ring", "NewRing",
			"capacity must be positive")
	}
	return &Ring[T]{
		items:  make([]T, capacity),
		policy: policy,
		onDrop: onDrop,
	}, nil
}

// Write adds an item, applying the overflow policy when the ring is full.
// It reports whether the item was stored.
func (r *Ring[T]) Write(item T) bool {
	r.mu.Lock()

	if r.count == len(r.items) {
		if r.policy == DropNewest {
			r.dropped++
			onDrop := r.onDrop
			r.mu.Unlock()
			if onDrop != nil {
				onDrop(item)
			}
			return false
		}
		// DropOldest: evict the head slot and reuse it.
		evicted := r.items[r.head]
		r.head = (r.head + 1) % len(r.items)
		r.count--
		r.dropped++
		defer func() {
			if r.onDrop != nil {
				r.onDrop(evicted)
			}
		}()
	}

	tail := (r.head + r.count) % len(r.items)
	r.items[tail] = item
	r.count++
	r.written++
	r.mu.Unlock()
	return true
}

// Read removes and returns the oldest item. The second return value is
// false when the ring is empty.
func (r *Ring[T]) Read() (T, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	if r.count == 0 {
		return zero, false
	}

	item := r.items[r.head]
	r.items[r.head] = zero
	r.head = (r.head + 1) % len(r.items)
	r.count--
	r.read++
	return item, true
}

// ReadBatch removes and returns up to max items in FIFO order.
func (r *Ring[T]) ReadBatch(max int) []T {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := min(max, r.count)
	if n <= 0 {
		return nil
	}

	var zero T
	batch := make([]T, 0, n)
	for i := 0; i < n; i++ {
		batch = append(batch, r.items[r.head])
		r.items[r.head] = zero
		r.head = (r.head + 1) % len(r.items)
		r.count--
		r.read++
	}
	return batch
}

// Size returns the current number of buffered items.
func (r *Ring[T]) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.count
}

// Capacity returns the fixed capacity of the ring.
func (r *Ring[T]) Capacity() int {
	return len(r.items)
}

// Dropped returns the number of items lost to the overflow policy.
func (r *Ring[T]) Dropped() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.dropped
}

// Clear discards all buffered items.
func (r *Ring[T]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	var zero T
	for i := range r.items {
		r.items[i] = zero
	}
	r.head = 0
	r.count = 0
}
