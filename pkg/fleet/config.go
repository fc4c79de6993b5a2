package fleet

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/openfleet/go-fleetapi/internal/httpc"
	"github.com/openfleet/go-fleetapi/internal/log"
)

// Config holds client configuration.
// Use functional options (WithXxx) to set these values.
type Config struct {
	// Timeout bounds each request, including body read.
	Timeout time.Duration

	// HTTPClient overrides the default shared client. When set, Timeout
	// is ignored.
	HTTPClient *http.Client

	// Logger receives request diagnostics. Defaults to the global logger.
	Logger *slog.Logger
}

// Option is a functional option for configuring the client.
type Option func(*Config)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Config) {
		c.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Config) {
		c.HTTPClient = hc
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) {
		c.Logger = logger
	}
}

// newConfig applies options over the defaults.
func newConfig(opts ...Option) Config {
	cfg := Config{
		Timeout: httpc.DefaultTimeout,
		Logger:  log.L(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.HTTPClient == nil {
		if cfg.Timeout == httpc.DefaultTimeout {
			cfg.HTTPClient = httpc.Client
		} else {
			cfg.HTTPClient = httpc.NewClient(cfg.Timeout)
		}
	}
	return cfg
}
