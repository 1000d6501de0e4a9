package health

import (
	"encoding/json"
	"net/http"
	"sort"
	"sync"

	"github.com/c360/streamsift/component"
)

// Monitor tracks the latest health status per pipeline and serves the
// aggregate over HTTP.
type Monitor struct {
	name     string
	registry *component.Registry
	mu       sync.RWMutex
	statuses map[string]Status
}

// NewMonitor creates a monitor for the given process name. When a component
// registry is provided, each snapshot refreshes from its live instances;
// manual Update calls supplement or replace that.
func NewMonitor(name string, registry *component.Registry) *Monitor {
	return &Monitor{
		name:     name,
		registry: registry,
		statuses: make(map[string]Status),
	}
}

// Update records the health status for a named pipeline.
func (m *Monitor) Update(name string, status Status) {
	status.Component = name
	m.mu.Lock()
	m.statuses[name] = status
	m.mu.Unlock()
}

// Remove drops a pipeline from monitoring.
func (m *Monitor) Remove(name string) {
	m.mu.Lock()
	delete(m.statuses, name)
	m.mu.Unlock()
}

// Get returns the last recorded status for a pipeline.
func (m *Monitor) Get(name string) (Status, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	status, ok := m.statuses[name]
	return status, ok
}

// Snapshot refreshes from the component registry and returns the aggregate
// process status with per-pipeline detail sorted by name.
func (m *Monitor) Snapshot() Status {
	if m.registry != nil {
		for name, inst := range m.registry.Instances() {
			m.Update(name, FromComponent(name, inst.Health()))
		}
	}

	m.mu.RLock()
	pipelines := make([]Status, 0, len(m.statuses))
	for _, status := range m.statuses {
		pipelines = append(pipelines, status)
	}
	m.mu.RUnlock()

	sort.Slice(pipelines, func(i, j int) bool {
		return pipelines[i].Component < pipelines[j].Component
	})

	return Aggregate(m.name, pipelines)
}

// ServeHTTP serves the aggregate status as JSON. Unhealthy aggregates get
// 503 so orchestrator probes fail; degraded still returns 200.
func (m *Monitor) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	status := m.Snapshot()

	code := http.StatusOK
	if status.Level == LevelUnhealthy {
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(status)
}
