package component

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sync"

	"github.com/c360/streamsift/errors"
)

// Factory creates a component instance from raw JSON configuration. The
// factory parses its own config and returns an initialized component;
// all I/O belongs in the component's Start method.
type Factory func(rawConfig json.RawMessage, deps Dependencies) (Discoverable, error)

// Registration holds the factory and metadata for a component type.
type Registration struct {
	Name        string  `json:"name"`
	Type        string  `json:"type"` // "input", "processor", "output"
	Description string  `json:"description"`
	Version     string  `json:"version"`
	Factory     Factory `json:"-"`
}

// RegistrationConfig is the argument bundle for RegisterWithConfig. It maps
// 1:1 to Registration fields.
type RegistrationConfig struct {
	Name        string
	Factory     Factory
	Type        string
	Description string
	Version     string
}

// Registry manages component factories and running instances. All methods
// are safe for concurrent use.
type Registry struct {
	factories map[string]*Registration
	instances map[string]Discoverable
	mu        sync.RWMutex
}

// NewRegistry creates an empty component registry.
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]*Registration),
		instances: make(map[string]Discoverable),
	}
}

var namePattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9_-]{0,63}$`)

// ValidateName checks component and instance names: alphanumeric start,
// then alphanumerics, hyphens or underscores, at most 64 characters.
func ValidateName(name string) error {
	if !namePattern.MatchString(name) {
		return errors.WrapInvalid(
			fmt.Errorf("invalid component name %q", name),
			"Registry", "ValidateName", "name validation")
	}
	return nil
}

// RegisterWithConfig registers a component factory.
func (r *Registry) RegisterWithConfig(cfg RegistrationConfig) error {
	if err := ValidateName(cfg.Name); err != nil {
		return err
	}
	if cfg.Factory == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Registry", "RegisterWithConfig", "factory function validation")
	}
	if cfg.Type == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Registry", "RegisterWithConfig", "component type validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[cfg.Name]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("factory %q is already registered", cfg.Name),
			"Registry", "RegisterWithConfig", "duplicate factory check")
	}

	r.factories[cfg.Name] = &Registration{
		Name:        cfg.Name,
		Type:        cfg.Type,
		Description: cfg.Description,
		Version:     cfg.Version,
		Factory:     cfg.Factory,
	}
	return nil
}

// Factories returns metadata for all registered factories.
func (r *Registry) Factories() []Registration {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Registration, 0, len(r.factories))
	for _, reg := range r.factories {
		out = append(out, *reg)
	}
	return out
}

// CreateComponent builds a component instance from the named factory and
// registers it under instanceName.
func (r *Registry) CreateComponent(
	instanceName, factoryName string, rawConfig json.RawMessage, deps Dependencies,
) (Discoverable, error) {
	if err := ValidateName(instanceName); err != nil {
		return nil, errors.Wrap(err, "Registry", "CreateComponent", "instance name validation")
	}
	if err := ValidateName(factoryName); err != nil {
		return nil, errors.Wrap(err, "Registry", "CreateComponent", "factory name validation")
	}

	r.mu.RLock()
	registration, exists := r.factories[factoryName]
	r.mu.RUnlock()

	if !exists {
		return nil, errors.WrapInvalid(
			fmt.Errorf("unknown component factory %q", factoryName),
			"Registry", "CreateComponent", "factory lookup")
	}

	comp, err := registration.Factory(rawConfig, deps)
	if err != nil {
		return nil, errors.Wrap(err, "Registry", "CreateComponent", "factory execution")
	}

	if err := r.RegisterInstance(instanceName, comp); err != nil {
		return nil, errors.Wrap(err, "Registry", "CreateComponent", "instance registration")
	}
	return comp, nil
}

// RegisterInstance registers a running component instance for discovery.
func (r *Registry) RegisterInstance(name string, comp Discoverable) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if comp == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig,
			"Registry", "RegisterInstance", "component validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.instances[name]; exists {
		return errors.WrapInvalid(
			fmt.Errorf("instance %q is already registered", name),
			"Registry", "RegisterInstance", "duplicate instance check")
	}
	r.instances[name] = comp
	return nil
}

// UnregisterInstance removes a component instance from the registry.
func (r *Registry) UnregisterInstance(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.instances, name)
}

// Instance looks up a running component by name.
func (r *Registry) Instance(name string) (Discoverable, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	comp, ok := r.instances[name]
	return comp, ok
}

// Instances returns all running component instances keyed by name.
func (r *Registry) Instances() map[string]Discoverable {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]Discoverable, len(r.instances))
	for name, comp := range r.instances {
		out[name] = comp
	}
	return out
}
