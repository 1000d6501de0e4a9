package natsclient

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/c360/streamsift/metric"
)

// Option configures a Client.
type Option func(*Client) error

// WithMaxReconnects sets the maximum number of reconnect attempts.
// Negative means reconnect forever.
func WithMaxReconnects(max int) Option {
	return func(c *Client) error {
		c.maxReconnects = max
		return nil
	}
}

// WithReconnectWait sets the wait between reconnect attempts.
func WithReconnectWait(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("reconnect wait must be positive, got %v", d)
		}
		c.reconnectWait = d
		return nil
	}
}

// WithPingInterval sets the server ping interval.
func WithPingInterval(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("ping interval must be positive, got %v", d)
		}
		c.pingInterval = d
		return nil
	}
}

// WithTimeout sets the connection timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", d)
		}
		c.timeout = d
		return nil
	}
}

// WithDrainTimeout sets the drain timeout used during Close.
func WithDrainTimeout(d time.Duration) Option {
	return func(c *Client) error {
		if d <= 0 {
			return fmt.Errorf("drain timeout must be positive, got %v", d)
		}
		c.drainTimeout = d
		return nil
	}
}

// WithName sets the client name reported to the server.
func WithName(name string) Option {
	return func(c *Client) error {
		c.clientName = name
		return nil
	}
}

// WithCredentials sets username/password authentication.
func WithCredentials(username, password string) Option {
	return func(c *Client) error {
		c.username = username
		c.password = password
		return nil
	}
}

// WithToken sets token authentication.
func WithToken(token string) Option {
	return func(c *Client) error {
		c.token = token
		return nil
	}
}

// WithTLS sets client certificate and CA files.
func WithTLS(certFile, keyFile, caFile string) Option {
	return func(c *Client) error {
		c.tlsCertFile = certFile
		c.tlsKeyFile = keyFile
		c.tlsCAFile = caFile
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) error {
		if logger == nil {
			return fmt.Errorf("logger must not be nil")
		}
		c.logger = logger
		return nil
	}
}

// WithMetrics wires connection health into the core metrics.
func WithMetrics(metrics *metric.Metrics) Option {
	return func(c *Client) error {
		c.metrics = metrics
		return nil
	}
}

// WithDisconnectCallback registers a callback invoked on disconnect.
func WithDisconnectCallback(fn func(error)) Option {
	return func(c *Client) error {
		c.onDisconnect = fn
		return nil
	}
}

// WithReconnectCallback registers a callback invoked after reconnect.
func WithReconnectCallback(fn func()) Option {
	return func(c *Client) error {
		c.onReconnect = fn
		return nil
	}
}
