package component

import (
	"context"
	"time"
)

// Discoverable is the interface components expose for inspection by the
// management layer.
type Discoverable interface {
	// Meta returns basic component information.
	Meta() Metadata

	// Health returns current health status.
	Health() HealthStatus

	// DataFlow returns current data flow metrics.
	DataFlow() FlowMetrics
}

// Metadata describes what a component is.
type Metadata struct {
	Name        string `json:"name"`
	Type        string `json:"type"` // "input", "processor", "output"
	Description string `json:"description"`
	Version     string `json:"version"`
}

// HealthStatus describes the current health state of a component.
type HealthStatus struct {
	Healthy    bool          `json:"healthy"`
	LastCheck  time.Time     `json:"last_check"`
	ErrorCount int           `json:"error_count"`
	LastError  string        `json:"last_error,omitempty"`
	Uptime     time.Duration `json:"uptime"`
}

// FlowMetrics describes the current data flow through a component.
type FlowMetrics struct {
	EventsPerSecond float64   `json:"events_per_second"`
	ErrorRate       float64   `json:"error_rate"`
	LastActivity    time.Time `json:"last_activity"`
}

// State represents the current lifecycle state of a component.
type State int

const (
	// StateCreated indicates the component was created but not initialized.
	StateCreated State = iota
	// StateInitialized indicates the component was initialized but not started.
	StateInitialized
	// StateStarted indicates the component is running.
	StateStarted
	// StateStopped indicates the component was stopped.
	StateStopped
	// StateFailed indicates the component failed during a lifecycle operation.
	StateFailed
)

// String returns a string representation of the component state.
func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateInitialized:
		return "initialized"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// LifecycleComponent defines components that support full lifecycle
// management. Initialize performs setup only; Start receives the component
// context as a parameter and never stores it; Stop takes a timeout for
// graceful shutdown.
type LifecycleComponent interface {
	Discoverable
	Initialize() error
	Start(ctx context.Context) error
	Stop(timeout time.Duration) error
}

// AsLifecycleComponent safely casts a component to LifecycleComponent.
func AsLifecycleComponent(comp Discoverable) (LifecycleComponent, bool) {
	lc, ok := comp.(LifecycleComponent)
	return lc, ok
}
