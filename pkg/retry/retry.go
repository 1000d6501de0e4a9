// Package retry provides exponential backoff retry driven by error
// classification: transient errors retry, invalid and fatal errors stop
// immediately.
package retry

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/c360/streamsift/errors"
)

var (
	// Thread-safe random source for jitter
	randMu     sync.Mutex
	randSource = rand.New(rand.NewSource(time.Now().UnixNano()))
)

// Policy controls backoff behavior.
type Policy struct {
	MaxAttempts  int           // Maximum number of attempts (<=0 means run once)
	InitialDelay time.Duration // Delay before the second attempt
	MaxDelay     time.Duration // Delay ceiling
	Multiplier   float64       // Backoff multiplier (typically 2.0)
	Jitter       bool          // Add up to 25% randomness to each delay
}

// DefaultPolicy returns sensible defaults for most operations.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     5 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

// Startup returns a policy for fast retries while dependencies come up.
func Startup() Policy {
	return Policy{
		MaxAttempts:  10,
		InitialDelay: 50 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   1.5,
		Jitter:       true,
	}
}

// Persistent returns a policy for long-running retries against critical
// resources such as the NATS connection.
func Persistent() Policy {
	return Policy{
		MaxAttempts:  30,
		InitialDelay: 200 * time.Millisecond,
		MaxDelay:     10 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

func (p *Policy) normalize() {
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = 1
	}
	if p.InitialDelay <= 0 {
		p.InitialDelay = 100 * time.Millisecond
	}
	if p.MaxDelay <= 0 {
		p.MaxDelay = 5 * time.Second
	}
	if p.MaxDelay < p.InitialDelay {
		p.MaxDelay = p.InitialDelay
	}
	if p.Multiplier <= 0 {
		p.Multiplier = 2.0
	}
	if p.Multiplier > 1000 {
		p.Multiplier = 1000
	}
}

// retryable reports whether err is worth another attempt. Errors classified
// invalid or fatal never retry; transient and unclassified errors do.
func retryable(err error) bool {
	return !errors.IsInvalid(err) && !errors.IsFatal(err)
}

// Do executes fn with exponential backoff until it succeeds, the policy is
// exhausted, the context is cancelled, or fn returns a non-transient error.
func Do(ctx context.Context, policy Policy, fn func() error) error {
	policy.normalize()

	var lastErr error
	delay := policy.InitialDelay

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err

		if !retryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return fmt.Errorf("retry cancelled before attempt %d: %w", attempt, ctx.Err())
		}
		if attempt == policy.MaxAttempts {
			break
		}

		sleep := delay
		if policy.Jitter {
			randMu.Lock()
			sleep += time.Duration(randSource.Int63n(int64(delay/4) + 1))
			randMu.Unlock()
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("retry cancelled during backoff for attempt %d: %w", attempt+1, ctx.Err())
		case <-timer.C:
		}

		next := float64(delay) * policy.Multiplier
		if next > float64(policy.MaxDelay) {
			delay = policy.MaxDelay
		} else {
			delay = time.Duration(next)
		}
	}

	return fmt.Errorf("retry failed after %d attempts: %w", policy.MaxAttempts, lastErr)
}

// DoWithResult executes fn with retry and returns both result and error.
func DoWithResult[T any](ctx context.Context, policy Policy, fn func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, policy, func() error {
		var innerErr error
		result, innerErr = fn()
		return innerErr
	})
	return result, err
}
