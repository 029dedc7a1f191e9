package github

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// DefaultAPIBase is the public GitHub REST API endpoint.
	DefaultAPIBase = "https://api.github.com"

	// DefaultTimeout bounds every individual request made by the client.
	DefaultTimeout = 30 * time.Second

	// DefaultUserAgent identifies API calls made by this client.
	DefaultUserAgent = "pkglisting"
)

// Option defines a functional option for configuring Client.
type Option func(*Options) error

// Options contains optional configuration for the client.
type Options struct {
	// apiBase is the REST API root, without a trailing slash.
	apiBase string

	// token is sent as a bearer token to the API when non-empty.
	token string

	// timeout bounds each request.
	timeout time.Duration

	// userAgent is sent on API calls (asset downloads use caller-supplied headers).
	userAgent string

	// httpClient is used for all requests, when nil one is created with timeout.
	httpClient *http.Client
}

// NewOptions applies opts on top of the defaults.
func NewOptions(opts ...Option) (Options, error) {
	o := Options{
		apiBase:   DefaultAPIBase,
		timeout:   DefaultTimeout,
		userAgent: DefaultUserAgent,
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&o); err != nil {
			return Options{}, err
		}
	}

	return o, nil
}

// WithAPIBase overrides the REST API root, e.g. for GitHub Enterprise or tests.
func WithAPIBase(base string) Option {
	return func(o *Options) error {
		base = strings.TrimRight(strings.TrimSpace(base), "/")
		if base == "" {
			return fmt.Errorf("API base cannot be empty")
		}
		u, err := url.Parse(base)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("invalid API base URL '%s'", base)
		}
		o.apiBase = base
		return nil
	}
}

// WithToken sets the token used to authenticate API calls.
func WithToken(token string) Option {
	return func(o *Options) error {
		o.token = strings.TrimSpace(token)
		return nil
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(o *Options) error {
		if timeout <= 0 {
			return fmt.Errorf("timeout must be positive, got %v", timeout)
		}
		o.timeout = timeout
		return nil
	}
}

// WithUserAgent sets the User-Agent for API calls.
func WithUserAgent(ua string) Option {
	return func(o *Options) error {
		ua = strings.TrimSpace(ua)
		if ua == "" {
			return fmt.Errorf("user agent cannot be empty")
		}
		o.userAgent = ua
		return nil
	}
}

// WithHTTPClient supplies the *http.Client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(o *Options) error {
		if c == nil {
			return fmt.Errorf("http client cannot be nil")
		}
		o.httpClient = c
		return nil
	}
}
