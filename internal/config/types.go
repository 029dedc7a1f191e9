package config

import (
	"time"

	"github.com/pkglisting/pkglisting/internal/listing"
)

var _ Provider = (*DefaultLoader)(nil)

type Loader interface {
	Load(path string) (*Config, error)
}

type Initializer interface {
	Init(path string) error
}

type Provider interface {
	Initializer
	Loader
}

type DefaultLoader struct{}

// Config represents the .pkglisting.toml file structure.
// Every field is optional, command line flags take precedence over values set here.
type Config struct {
	Listing    listing.Metadata `toml:"listing"`
	Package    PackageConfig    `toml:"package"`
	Repository RepositoryConfig `toml:"repository"`
	Fetch      FetchConfig      `toml:"fetch"`
	Serve      ServeConfig      `toml:"serve"`

	configFilePath string `toml:"-"`
}

// PackageConfig identifies the package a listing is built for.
type PackageConfig struct {
	// Name is the key the package's versions are stored under, e.g. 'com.acme.widget'.
	Name string `toml:"name"`

	// Path is the directory containing the package manifest.
	Path string `toml:"path"`
}

// RepositoryConfig identifies the repository whose releases are listed.
// When unset, the GitHub Actions environment is used.
type RepositoryConfig struct {
	Owner string `toml:"owner"`
	Name  string `toml:"name"`

	// APIBase overrides the GitHub API endpoint, e.g. for GitHub Enterprise.
	APIBase string `toml:"api_base"`
}

// FetchConfig tunes how release manifests are downloaded.
type FetchConfig struct {
	Workers        int           `toml:"workers"`
	Policy         string        `toml:"policy"`
	RequestTimeout time.Duration `toml:"request_timeout"`
	Deadline       time.Duration `toml:"deadline"`
}

// ServeConfig configures the serve command.
type ServeConfig struct {
	Addr            string        `toml:"addr"`
	RefreshInterval time.Duration `toml:"refresh_interval"`
	CORSOrigins     []string      `toml:"cors_origins"`
}

// Path returns the file this configuration was loaded from, empty when it was not loaded from a file.
func (c *Config) Path() string {
	return c.configFilePath
}
