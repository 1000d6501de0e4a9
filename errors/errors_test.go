package errors

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildError(t *testing.T) {
	t.Run("wraps kind sentinel", func(t *testing.T) {
		err := NewBuild(ErrInvalidArity, "field", "+s_eq", "2 parameters expected")

		assert.True(t, stderrors.Is(err, ErrInvalidArity))
		assert.False(t, stderrors.Is(err, ErrMalformedDirective))
		assert.Contains(t, err.Error(), "+s_eq")
		assert.Contains(t, err.Error(), "2 parameters expected")
	})

	t.Run("wraps underlying cause", func(t *testing.T) {
		cause := stderrors.New("missing closing )")
		err := NewBuildCause(ErrRegexCompile, "field", `+r_match/(\w{`, cause)

		assert.True(t, stderrors.Is(err, ErrRegexCompile))
		assert.True(t, stderrors.Is(err, cause))
		assert.Contains(t, err.Error(), "missing closing )")
	})

	t.Run("inspectable via errors.As", func(t *testing.T) {
		wrapped := Wrap(
			NewBuild(ErrInvalidNetworkSpec, "ip", "+ip_cidr/x/16", ""),
			"Pipeline", "Build", "condition 3")

		var be *BuildError
		require.True(t, stderrors.As(wrapped, &be))
		assert.Equal(t, "ip", be.Field)
		assert.Equal(t, "+ip_cidr/x/16", be.Directive)
	})

	t.Run("build errors are fatal", func(t *testing.T) {
		err := NewBuild(ErrMalformedDirective, "f", "bad", "")
		assert.True(t, IsBuild(err))
		assert.True(t, IsFatal(err))
		assert.False(t, IsTransient(err))
	})
}

func TestClassification(t *testing.T) {
	base := stderrors.New("boom")

	t.Run("transient wrapping", func(t *testing.T) {
		err := WrapTransient(base, "Client", "Publish", "NATS publish")
		assert.True(t, IsTransient(err))
		assert.False(t, IsInvalid(err))
		assert.True(t, stderrors.Is(err, base))
		assert.Contains(t, err.Error(), "Client.Publish: NATS publish failed")
	})

	t.Run("invalid wrapping", func(t *testing.T) {
		err := WrapInvalid(base, "Config", "Load", "schema validation")
		assert.True(t, IsInvalid(err))
		assert.False(t, IsTransient(err))
	})

	t.Run("fatal wrapping", func(t *testing.T) {
		err := WrapFatal(base, "Engine", "Start", "pipeline build")
		assert.True(t, IsFatal(err))
	})

	t.Run("sentinel classification", func(t *testing.T) {
		assert.True(t, IsTransient(ErrConnectionLost))
		assert.True(t, IsInvalid(ErrInvalidConfig))
		assert.False(t, IsTransient(nil))
		assert.False(t, IsInvalid(nil))
		assert.False(t, IsFatal(nil))
	})

	t.Run("nil passthrough", func(t *testing.T) {
		assert.NoError(t, Wrap(nil, "a", "b", "c"))
		assert.NoError(t, WrapTransient(nil, "a", "b", "c"))
		assert.NoError(t, WrapInvalid(nil, "a", "b", "c"))
		assert.NoError(t, WrapFatal(nil, "a", "b", "c"))
	})
}
