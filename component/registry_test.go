package component

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeComponent struct {
	name string
}

func (f *fakeComponent) Meta() Metadata {
	return Metadata{Name: f.name, Type: "processor", Version: "0.1.0"}
}

func (f *fakeComponent) Health() HealthStatus {
	return HealthStatus{Healthy: true, LastCheck: time.Now()}
}

func (f *fakeComponent) DataFlow() FlowMetrics {
	return FlowMetrics{}
}

func fakeFactory(_ json.RawMessage, _ Dependencies) (Discoverable, error) {
	return &fakeComponent{name: "fake"}, nil
}

func TestValidateName(t *testing.T) {
	valid := []string{"filter", "filter-processor", "udp_input", "a", "Pipe2"}
	for _, name := range valid {
		assert.NoError(t, ValidateName(name), "name=%q", name)
	}

	invalid := []string{"", "-leading", "_leading", "has space", "has/slash",
		strings.Repeat("a", 70)}
	for _, name := range invalid {
		assert.Error(t, ValidateName(name), "name=%q", name)
	}
}

func TestRegistry_RegisterWithConfig(t *testing.T) {
	registry := NewRegistry()

	err := registry.RegisterWithConfig(RegistrationConfig{
		Name:        "filter",
		Factory:     fakeFactory,
		Type:        "processor",
		Description: "test factory",
		Version:     "0.1.0",
	})
	require.NoError(t, err)

	t.Run("duplicate rejected", func(t *testing.T) {
		err := registry.RegisterWithConfig(RegistrationConfig{
			Name:    "filter",
			Factory: fakeFactory,
			Type:    "processor",
		})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "already registered")
	})

	t.Run("nil factory rejected", func(t *testing.T) {
		err := registry.RegisterWithConfig(RegistrationConfig{
			Name: "broken",
			Type: "processor",
		})
		assert.Error(t, err)
	})

	t.Run("missing type rejected", func(t *testing.T) {
		err := registry.RegisterWithConfig(RegistrationConfig{
			Name:    "untyped",
			Factory: fakeFactory,
		})
		assert.Error(t, err)
	})

	assert.Len(t, registry.Factories(), 1)
}

func TestRegistry_CreateComponent(t *testing.T) {
	registry := NewRegistry()
	require.NoError(t, registry.RegisterWithConfig(RegistrationConfig{
		Name:    "filter",
		Factory: fakeFactory,
		Type:    "processor",
	}))

	comp, err := registry.CreateComponent("filter-main", "filter", nil, Dependencies{})
	require.NoError(t, err)
	assert.Equal(t, "fake", comp.Meta().Name)

	got, ok := registry.Instance("filter-main")
	require.True(t, ok)
	assert.Same(t, comp, got)

	t.Run("unknown factory", func(t *testing.T) {
		_, err := registry.CreateComponent("x", "nonexistent", nil, Dependencies{})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "unknown component factory")
	})

	t.Run("duplicate instance name", func(t *testing.T) {
		_, err := registry.CreateComponent("filter-main", "filter", nil, Dependencies{})
		assert.Error(t, err)
	})

	registry.UnregisterInstance("filter-main")
	_, ok = registry.Instance("filter-main")
	assert.False(t, ok)
}

func TestDependencies_Defaults(t *testing.T) {
	deps := Dependencies{}
	assert.NotNil(t, deps.GetLogger())
	assert.NotNil(t, deps.GetTracer())

	// The nop tracer must accept messages without a sink.
	deps.GetTracer().Trace("ignored")
}

func TestAsLifecycleComponent(t *testing.T) {
	_, ok := AsLifecycleComponent(&fakeComponent{})
	assert.False(t, ok)
}
