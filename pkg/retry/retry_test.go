package retry

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/c360/streamsift/errors"
)

func TestRetry_Success(t *testing.T) {
	ctx := context.Background()
	policy := Policy{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       false, // Disable for predictable tests
	}

	attempts := 0
	err := Do(ctx, policy, func() error {
		attempts++
		if attempts < 3 {
			return stderrors.New("not ready")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_AllAttemptsFail(t *testing.T) {
	ctx := context.Background()
	policy := Policy{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       false,
	}

	attempts := 0
	err := Do(ctx, policy, func() error {
		attempts++
		return stderrors.New("persistent failure")
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
	assert.Equal(t, 3, attempts)
}

func TestRetry_StopsOnFatal(t *testing.T) {
	ctx := context.Background()

	attempts := 0
	err := Do(ctx, DefaultPolicy(), func() error {
		attempts++
		return errors.WrapFatal(errors.ErrInvalidConfig, "Test", "Do", "check config")
	})

	assert.Error(t, err)
	assert.True(t, errors.IsFatal(err))
	assert.Equal(t, 1, attempts)
}

func TestRetry_StopsOnInvalid(t *testing.T) {
	ctx := context.Background()

	attempts := 0
	err := Do(ctx, DefaultPolicy(), func() error {
		attempts++
		return errors.WrapInvalid(errors.ErrParsingFailed, "Test", "Do", "parse payload")
	})

	assert.Error(t, err)
	assert.True(t, errors.IsInvalid(err))
	assert.Equal(t, 1, attempts)
}

func TestRetry_RetriesTransient(t *testing.T) {
	ctx := context.Background()
	policy := Policy{
		MaxAttempts:  3,
		InitialDelay: 5 * time.Millisecond,
		MaxDelay:     20 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       false,
	}

	attempts := 0
	err := Do(ctx, policy, func() error {
		attempts++
		if attempts < 2 {
			return errors.WrapTransient(errors.ErrNoConnection, "Test", "Do", "connect")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	policy := Policy{
		MaxAttempts:  5,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     time.Second,
		Multiplier:   2.0,
		Jitter:       false,
	}

	attempts := 0
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	err := Do(ctx, policy, func() error {
		attempts++
		return stderrors.New("still failing")
	})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "retry cancelled")
	assert.Less(t, attempts, 5)
}

func TestRetry_MaxDelayCaps(t *testing.T) {
	ctx := context.Background()
	policy := Policy{
		MaxAttempts:  4,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     25 * time.Millisecond,
		Multiplier:   10.0,
		Jitter:       false,
	}

	start := time.Now()
	_ = Do(ctx, policy, func() error {
		return stderrors.New("failure")
	})
	elapsed := time.Since(start)

	// Delays: 10ms + 25ms (capped) + 25ms (capped) = 60ms minimum.
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
	assert.Less(t, elapsed, 300*time.Millisecond)
}

func TestRetry_WithResult(t *testing.T) {
	ctx := context.Background()
	policy := Policy{
		MaxAttempts:  3,
		InitialDelay: 10 * time.Millisecond,
		MaxDelay:     100 * time.Millisecond,
		Multiplier:   2.0,
		Jitter:       false,
	}

	attempts := 0
	result, err := DoWithResult(ctx, policy, func() (string, error) {
		attempts++
		if attempts < 3 {
			return "", stderrors.New("not ready")
		}
		return "success", nil
	})

	assert.NoError(t, err)
	assert.Equal(t, "success", result)
	assert.Equal(t, 3, attempts)
}

func TestRetry_Presets(t *testing.T) {
	def := DefaultPolicy()
	assert.Equal(t, 3, def.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, def.InitialDelay)
	assert.Equal(t, 5*time.Second, def.MaxDelay)

	startup := Startup()
	assert.Equal(t, 10, startup.MaxAttempts)
	assert.Equal(t, 50*time.Millisecond, startup.InitialDelay)

	persistent := Persistent()
	assert.Equal(t, 30, persistent.MaxAttempts)
	assert.Equal(t, 10*time.Second, persistent.MaxDelay)
}

func TestRetry_ZeroAttemptsRunsOnce(t *testing.T) {
	attempts := 0
	err := Do(context.Background(), Policy{}, func() error {
		attempts++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, attempts)
}
