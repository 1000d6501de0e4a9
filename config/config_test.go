package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/streamsift/errors"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "1.0.0", cfg.Version)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "nats://localhost:4222", cfg.NATS.URL)
	assert.Equal(t, -1, cfg.NATS.MaxReconnects)
	assert.Equal(t, 2*time.Second, cfg.NATS.ReconnectWait.Duration())
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 9090, cfg.Metrics.Port)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.Empty(t, cfg.Pipelines)

	require.NoError(t, cfg.Validate())
}

func TestParse(t *testing.T) {
	t.Run("FullConfig", func(t *testing.T) {
		data := []byte(`{
			"version": "2.1.0",
			"logging": {"level": "debug", "format": "text"},
			"nats": {
				"url": "nats://broker:4222",
				"name": "sift-prod",
				"max_reconnects": 10,
				"reconnect_wait": "500ms",
				"timeout": "3s"
			},
			"metrics": {"enabled": true, "port": 8080, "path": "/prom"},
			"pipelines": {
				"auth": {
					"input_subject": "events.auth",
					"output_subjects": ["alerts.auth", "archive.auth"],
					"conditions": [
						{"user": "+exists"},
						{"srcip": "+ip_cidr/10.0.0.0/8"}
					],
					"buffer_size": 512,
					"overflow": "drop_newest",
					"trace_enabled": true
				}
			}
		}`)

		cfg, err := Parse(data)
		require.NoError(t, err)

		assert.Equal(t, "2.1.0", cfg.Version)
		assert.Equal(t, "debug", cfg.Logging.Level)
		assert.Equal(t, "nats://broker:4222", cfg.NATS.URL)
		assert.Equal(t, 10, cfg.NATS.MaxReconnects)
		assert.Equal(t, 500*time.Millisecond, cfg.NATS.ReconnectWait.Duration())
		assert.Equal(t, 3*time.Second, cfg.NATS.Timeout.Duration())
		assert.Equal(t, 8080, cfg.Metrics.Port)

		p, ok := cfg.Pipelines["auth"]
		require.True(t, ok)
		assert.Equal(t, "events.auth", p.InputSubject)
		assert.Equal(t, []string{"alerts.auth", "archive.auth"}, p.OutputSubjects)
		assert.Equal(t, 512, p.BufferSize)
		assert.Equal(t, "drop_newest", p.Overflow)
		assert.True(t, p.TraceEnabled)
		assert.JSONEq(t,
			`[{"user": "+exists"}, {"srcip": "+ip_cidr/10.0.0.0/8"}]`,
			string(p.Conditions))
	})

	t.Run("MinimalConfigGetsDefaults", func(t *testing.T) {
		cfg, err := Parse([]byte(`{"nats": {"url": "nats://broker:4222"}}`))
		require.NoError(t, err)

		assert.Equal(t, "nats://broker:4222", cfg.NATS.URL)
		assert.Equal(t, "info", cfg.Logging.Level)
		assert.Equal(t, 9090, cfg.Metrics.Port)
		assert.Equal(t, 30*time.Second, cfg.NATS.DrainTimeout.Duration())
	})

	t.Run("InvalidJSON", func(t *testing.T) {
		_, err := Parse([]byte(`{not json`))
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
	})

	t.Run("MissingNATS", func(t *testing.T) {
		_, err := Parse([]byte(`{"version": "1.0.0"}`))
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
		assert.Contains(t, err.Error(), "nats")
	})

	t.Run("UnknownTopLevelKey", func(t *testing.T) {
		_, err := Parse([]byte(`{"nats": {"url": "n"}, "pipeline": {}}`))
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
	})

	t.Run("BadOverflowPolicy", func(t *testing.T) {
		_, err := Parse([]byte(`{
			"nats": {"url": "nats://x:4222"},
			"pipelines": {
				"p": {
					"input_subject": "in",
					"output_subjects": ["out"],
					"overflow": "reject"
				}
			}
		}`))
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
	})

	t.Run("EmptyOutputSubjects", func(t *testing.T) {
		_, err := Parse([]byte(`{
			"nats": {"url": "nats://x:4222"},
			"pipelines": {
				"p": {"input_subject": "in", "output_subjects": []}
			}
		}`))
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
	})

	t.Run("BadDuration", func(t *testing.T) {
		_, err := Parse([]byte(`{"nats": {"url": "n", "timeout": "fast"}}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid duration")
	})
}

func TestLoad(t *testing.T) {
	t.Run("FromFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.json")
		err := os.WriteFile(path, []byte(`{
			"nats": {"url": "nats://file:4222"},
			"pipelines": {
				"main": {"input_subject": "events.raw", "output_subjects": ["events.filtered"]}
			}
		}`), 0o600)
		require.NoError(t, err)

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "nats://file:4222", cfg.NATS.URL)
		assert.Len(t, cfg.Pipelines, 1)
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
		assert.True(t, errors.IsFatal(err))
	})
}

func TestValidate(t *testing.T) {
	t.Run("MissingInputSubject", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.Pipelines["p"] = PipelineConfig{OutputSubjects: []string{"out"}}
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "input_subject")
	})

	t.Run("EmptyNATSURL", func(t *testing.T) {
		cfg := DefaultConfig()
		cfg.NATS.URL = ""
		err := cfg.Validate()
		require.Error(t, err)
		assert.True(t, errors.IsInvalid(err))
	})
}
