// Package config loads and validates the streamsift configuration file.
//
// Configuration is JSON, validated against an embedded schema before any
// semantic checks run, so malformed files fail with precise field paths.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/c360/streamsift/errors"
)

// Config represents the complete application configuration.
type Config struct {
	Version   string                    `json:"version"` // semantic version of the config format
	Logging   LoggingConfig             `json:"logging,omitempty"`
	NATS      NATSConfig                `json:"nats"`
	Metrics   MetricsConfig             `json:"metrics,omitempty"`
	Pipelines map[string]PipelineConfig `json:"pipelines"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `json:"level,omitempty"`  // debug, info, warn, error
	Format string `json:"format,omitempty"` // text or json
}

// NATSConfig holds connection settings for the NATS server.
type NATSConfig struct {
	URL           string `json:"url"`
	Name          string `json:"name,omitempty"`
	Username      string `json:"username,omitempty"`
	Password      string `json:"password,omitempty"`
	Token         string `json:"token,omitempty"`
	MaxReconnects int    `json:"max_reconnects,omitempty"` // negative means forever
	ReconnectWait Dur    `json:"reconnect_wait,omitempty"`
	Timeout       Dur    `json:"timeout,omitempty"`
	DrainTimeout  Dur    `json:"drain_timeout,omitempty"`
	TLSCertFile   string `json:"tls_cert_file,omitempty"`
	TLSKeyFile    string `json:"tls_key_file,omitempty"`
	TLSCAFile     string `json:"tls_ca_file,omitempty"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	Enabled bool   `json:"enabled,omitempty"`
	Port    int    `json:"port,omitempty"`
	Path    string `json:"path,omitempty"`
}

// PipelineConfig defines one named filter pipeline.
type PipelineConfig struct {
	InputSubject   string          `json:"input_subject"`
	OutputSubjects []string        `json:"output_subjects"`
	Conditions     json.RawMessage `json:"conditions,omitempty"`
	BufferSize     int             `json:"buffer_size,omitempty"`
	Overflow       string          `json:"overflow,omitempty"`
	TraceEnabled   bool            `json:"trace_enabled,omitempty"`
}

// Dur is a time.Duration that unmarshals from JSON duration strings such as
// "5s" or "200ms".
type Dur time.Duration

// UnmarshalJSON implements json.Unmarshaler.
func (d *Dur) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Dur(parsed)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d Dur) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Duration returns the underlying time.Duration.
func (d Dur) Duration() time.Duration {
	return time.Duration(d)
}

// DefaultConfig returns a configuration with sensible defaults and no
// pipelines.
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0.0",
		Logging: LoggingConfig{Level: "info", Format: "json"},
		NATS: NATSConfig{
			URL:           "nats://localhost:4222",
			Name:          "streamsift",
			MaxReconnects: -1,
			ReconnectWait: Dur(2 * time.Second),
			Timeout:       Dur(5 * time.Second),
			DrainTimeout:  Dur(30 * time.Second),
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Pipelines: map[string]PipelineConfig{},
	}
}

// Load reads, schema-validates and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFatal(err, "Config", "Load", fmt.Sprintf("read %s", path))
	}
	return Parse(data)
}

// Parse schema-validates and parses raw configuration bytes. Defaults are
// applied for any omitted field.
func Parse(data []byte) (*Config, error) {
	if err := validateSchema(data); err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.WrapInvalid(err, "Config", "Parse", "unmarshal config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate performs semantic checks the JSON schema cannot express.
func (c *Config) Validate() error {
	if c.NATS.URL == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
			"nats.url is required")
	}

	for name, p := range c.Pipelines {
		if p.InputSubject == "" {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				fmt.Sprintf("pipeline %q: input_subject is required", name))
		}
		if len(p.OutputSubjects) == 0 {
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				fmt.Sprintf("pipeline %q: at least one output subject is required", name))
		}
		switch p.Overflow {
		case "", "drop_oldest", "drop_newest":
		default:
			return errors.WrapInvalid(errors.ErrInvalidConfig, "Config", "Validate",
				fmt.Sprintf("pipeline %q: unknown overflow policy %q", name, p.Overflow))
		}
	}
	return nil
}
