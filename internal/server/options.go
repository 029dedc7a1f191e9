package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Options contains optional configuration for the listing server.
// NewOptions should be used to create instances of Options.
type Options struct {
	// CORS configuration for cross-origin requests.
	CORS CORSConfig

	// RefreshInterval is how often the listing is rebuilt. Zero disables refreshing.
	RefreshInterval time.Duration

	// ShutdownTimeout specifies how long to wait for graceful shutdown.
	ShutdownTimeout time.Duration

	// Version is reported in the OpenAPI document.
	Version string
}

// CORSConfig defines Cross-Origin Resource Sharing settings for the server.
type CORSConfig struct {
	// Enabled determines whether CORS headers are added to responses.
	Enabled bool

	// AllowOrigins specifies which origins can access the listing.
	// Use ["*"] to allow all origins.
	AllowOrigins []string

	// AllowMethods specifies which HTTP methods are permitted.
	AllowMethods []string

	// AllowedHeaders specifies which headers the client can include in requests.
	AllowedHeaders []string

	// MaxAge specifies how long browsers can cache preflight responses.
	MaxAge time.Duration
}

// Option defines a functional option for configuring Options.
type Option func(*Options) error

// NewOptions creates Options with defaults, then applies opts in order.
func NewOptions(opts ...Option) (Options, error) {
	options := Options{
		CORS: CORSConfig{
			AllowMethods:   DefaultCORSAllowMethods(),
			AllowedHeaders: DefaultCORSAllowHeaders(),
			MaxAge:         DefaultCORSMaxAge(),
		},
		ShutdownTimeout: DefaultShutdownTimeout(),
		Version:         "dev",
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&options); err != nil {
			return Options{}, err
		}
	}

	return options, nil
}

// WithCORSAllowOrigins enables CORS for the given origins. An empty list disables CORS.
func WithCORSAllowOrigins(origins []string) Option {
	return func(o *Options) error {
		cleaned := make([]string, 0, len(origins))
		for _, origin := range origins {
			if origin = strings.TrimSpace(origin); origin != "" {
				cleaned = append(cleaned, origin)
			}
		}
		o.CORS.Enabled = len(cleaned) > 0
		o.CORS.AllowOrigins = cleaned
		return nil
	}
}

// WithRefreshInterval rebuilds the listing periodically.
func WithRefreshInterval(interval time.Duration) Option {
	return func(o *Options) error {
		if interval < 0 {
			return fmt.Errorf("refresh interval cannot be negative, got %v", interval)
		}
		o.RefreshInterval = interval
		return nil
	}
}

// WithShutdownTimeout configures how long to wait for graceful shutdown.
func WithShutdownTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("shutdown timeout must be positive, got %v", timeout)
		}
		o.ShutdownTimeout = timeout
		return nil
	}
}

// WithVersion sets the version reported in the OpenAPI document.
func WithVersion(version string) Option {
	return func(o *Options) error {
		version = strings.TrimSpace(version)
		if version == "" {
			return fmt.Errorf("version cannot be empty")
		}
		o.Version = version
		return nil
	}
}

// DefaultCORSAllowHeaders returns the request headers allowed by default.
func DefaultCORSAllowHeaders() []string {
	return []string{
		"Accept",
		"Content-Type",
	}
}

// DefaultCORSAllowMethods returns the methods allowed by default. The server is read-only.
func DefaultCORSAllowMethods() []string {
	return []string{
		http.MethodGet,
		http.MethodHead,
		http.MethodOptions,
	}
}

// DefaultCORSMaxAge returns how long preflight responses may be cached by default.
func DefaultCORSMaxAge() time.Duration {
	return 5 * time.Minute
}

// DefaultShutdownTimeout returns the default graceful shutdown timeout.
func DefaultShutdownTimeout() time.Duration {
	return 5 * time.Second
}
