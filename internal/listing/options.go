package listing

import (
	"fmt"
	"strings"
	"time"

	"github.com/pkglisting/pkglisting/internal/manifest"
)

const (
	// DownloadUserAgent is sent on every asset download.
	// The CDN in front of release assets blocks requests without it (error 1020).
	DownloadUserAgent = "VCCBootstrap 1.0"

	// DefaultWorkers is the number of concurrent asset downloads.
	DefaultWorkers = 4

	// DefaultRequestTimeout bounds a single asset download.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultDeadline bounds a whole build, including listing releases.
	DefaultDeadline = 10 * time.Minute
)

// Option defines a functional option for configuring Builder.
type Option func(*Options) error

// Options contains optional configuration for a Builder.
type Options struct {
	// Metadata is written into the top level of the listing.
	Metadata Metadata

	// Workers is the maximum number of concurrent downloads.
	Workers int

	// Policy decides what happens when a release cannot be included.
	Policy Policy

	// RequestTimeout bounds each asset download.
	RequestTimeout time.Duration

	// Deadline bounds the whole build.
	Deadline time.Duration

	// UserAgent is sent with each asset download.
	UserAgent string

	// AssetName is the release asset holding the manifest.
	AssetName string

	// OnListed, when set, is called with the number of releases before any download starts.
	OnListed func(count int)

	// OnFetched, when set, is called once per release after its outcome is known.
	// It may be called concurrently.
	OnFetched func(Outcome)
}

// NewOptions applies opts on top of the defaults.
func NewOptions(opts ...Option) (Options, error) {
	o := Options{
		Metadata:       DefaultMetadata(),
		Workers:        DefaultWorkers,
		Policy:         DefaultPolicy,
		RequestTimeout: DefaultRequestTimeout,
		Deadline:       DefaultDeadline,
		UserAgent:      DownloadUserAgent,
		AssetName:      manifest.Filename,
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

// WithMetadata sets the listing metadata. Empty fields keep their defaults.
func WithMetadata(md Metadata) Option {
	return func(o *Options) error {
		if v := strings.TrimSpace(md.Name); v != "" {
			o.Metadata.Name = v
		}
		if v := strings.TrimSpace(md.Author); v != "" {
			o.Metadata.Author = v
		}
		if v := strings.TrimSpace(md.URL); v != "" {
			o.Metadata.URL = v
		}
		return nil
	}
}

// WithWorkers sets the number of concurrent downloads. One downloads strictly sequentially.
func WithWorkers(n int) Option {
	return func(o *Options) error {
		if n < 1 {
			return fmt.Errorf("workers must be at least 1, got %d", n)
		}
		o.Workers = n
		return nil
	}
}

// WithPolicy sets the failure policy.
func WithPolicy(p Policy) Option {
	return func(o *Options) error {
		if err := p.Set(string(p)); err != nil {
			return err
		}
		o.Policy = p
		return nil
	}
}

// WithRequestTimeout sets the per-download timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(o *Options) error {
		if d <= 0 {
			return fmt.Errorf("request timeout must be positive, got %v", d)
		}
		o.RequestTimeout = d
		return nil
	}
}

// WithDeadline sets the overall build deadline.
func WithDeadline(d time.Duration) Option {
	return func(o *Options) error {
		if d <= 0 {
			return fmt.Errorf("deadline must be positive, got %v", d)
		}
		o.Deadline = d
		return nil
	}
}

// WithUserAgent overrides the User-Agent sent with asset downloads.
func WithUserAgent(ua string) Option {
	return func(o *Options) error {
		ua = strings.TrimSpace(ua)
		if ua == "" {
			return fmt.Errorf("user agent cannot be empty")
		}
		o.UserAgent = ua
		return nil
	}
}

// WithAssetName overrides the name of the manifest asset looked up on each release.
func WithAssetName(name string) Option {
	return func(o *Options) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return fmt.Errorf("asset name cannot be empty")
		}
		o.AssetName = name
		return nil
	}
}

// WithOnListed registers a callback invoked once the releases have been listed.
func WithOnListed(fn func(count int)) Option {
	return func(o *Options) error {
		o.OnListed = fn
		return nil
	}
}

// WithOnFetched registers a callback invoked after each release is processed.
func WithOnFetched(fn func(Outcome)) Option {
	return func(o *Options) error {
		o.OnFetched = fn
		return nil
	}
}
