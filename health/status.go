package health

import (
	"regexp"
	"strings"
	"time"

	"github.com/c360/streamsift/component"
)

// Levels reported for a pipeline or the whole process.
const (
	LevelHealthy   = "healthy"
	LevelDegraded  = "degraded"
	LevelUnhealthy = "unhealthy"
)

// Patterns scrubbed from error messages before they are exposed.
var (
	urlRegex        = regexp.MustCompile(`(?:https?|nats|wss?)://\S+`)
	unixPathRegex   = regexp.MustCompile(`/[a-zA-Z0-9/_.-]+`)
	ipAddrRegex     = regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)
	portRegex       = regexp.MustCompile(`:\d{2,5}\b`)
	credentialRegex = regexp.MustCompile(`(?i)(password|token|key|secret|credential)[^a-zA-Z]*[:=][^,\s}]+`)
)

// Status is the externally visible health of one pipeline or the process.
type Status struct {
	Component  string        `json:"component"`
	Level      string        `json:"level"`
	Message    string        `json:"message,omitempty"`
	Timestamp  time.Time     `json:"timestamp"`
	ErrorCount int           `json:"error_count,omitempty"`
	Uptime     time.Duration `json:"uptime,omitempty"`
	Pipelines  []Status      `json:"pipelines,omitempty"`
}

// IsHealthy reports whether the level is healthy.
func (s Status) IsHealthy() bool {
	return s.Level == LevelHealthy
}

// FromComponent converts a component health report into a leveled Status.
// A healthy component with recorded errors is reported as degraded. The
// last error message is sanitized before exposure.
func FromComponent(name string, ch component.HealthStatus) Status {
	level := LevelUnhealthy
	switch {
	case ch.Healthy && ch.ErrorCount == 0:
		level = LevelHealthy
	case ch.Healthy:
		level = LevelDegraded
	}

	var message string
	if ch.LastError != "" {
		message = sanitizeErrorMessage(ch.LastError)
	}

	timestamp := ch.LastCheck
	if timestamp.IsZero() {
		timestamp = time.Now()
	}

	return Status{
		Component:  name,
		Level:      level,
		Message:    message,
		Timestamp:  timestamp,
		ErrorCount: ch.ErrorCount,
		Uptime:     ch.Uptime,
	}
}

// Aggregate folds pipeline statuses into a single process status at the
// worst level observed. No pipelines means healthy.
func Aggregate(name string, pipelines []Status) Status {
	level := LevelHealthy
	for _, p := range pipelines {
		switch p.Level {
		case LevelUnhealthy:
			level = LevelUnhealthy
		case LevelDegraded:
			if level == LevelHealthy {
				level = LevelDegraded
			}
		}
	}

	message := "all pipelines healthy"
	switch level {
	case LevelUnhealthy:
		message = "pipelines unhealthy"
	case LevelDegraded:
		message = "pipelines degraded"
	}

	return Status{
		Component: name,
		Level:     level,
		Message:   message,
		Timestamp: time.Now(),
		Pipelines: pipelines,
	}
}

// sanitizeErrorMessage scrubs URLs, file paths, addresses and credentials
// from a message before it is exposed on the health endpoint.
func sanitizeErrorMessage(err string) string {
	if err == "" {
		return ""
	}

	sanitized := urlRegex.ReplaceAllString(err, "[URL]")
	sanitized = unixPathRegex.ReplaceAllString(sanitized, "[PATH]")
	sanitized = ipAddrRegex.ReplaceAllString(sanitized, "[IP]")
	sanitized = portRegex.ReplaceAllString(sanitized, "[PORT]")

	lower := strings.ToLower(sanitized)
	if strings.Contains(lower, "password") || strings.Contains(lower, "token") ||
		strings.Contains(lower, "key") || strings.Contains(lower, "secret") ||
		strings.Contains(lower, "credential") {
		sanitized = credentialRegex.ReplaceAllString(sanitized, "[REDACTED]")
	}

	return sanitized
}
