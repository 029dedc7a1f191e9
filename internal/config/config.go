package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/pkglisting/pkglisting/internal/files"
	"github.com/pkglisting/pkglisting/internal/listing"
	"github.com/pkglisting/pkglisting/internal/perms"
)

const skeleton = `# pkglisting configuration.
# Command line flags take precedence over values set here.

[listing]
name = "%s"
author = "%s"
url = "%s"

[package]
# name = "com.example.package"
# path = "Packages/com.example.package"

[repository]
# owner = "example"
# name = "package-repo"

[fetch]
workers = %d
policy = "%s"
request_timeout = "%s"
deadline = "%s"
`

// Init creates the base skeleton configuration file.
func (d *DefaultLoader) Init(path string) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}

	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	md := listing.DefaultMetadata()
	content := fmt.Sprintf(
		skeleton,
		md.Name,
		md.Author,
		md.URL,
		listing.DefaultWorkers,
		listing.DefaultPolicy,
		listing.DefaultRequestTimeout,
		listing.DefaultDeadline,
	)

	if err := files.WriteFileAtomic(path, []byte(content), perms.RegularFile); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// Load decodes and validates the configuration file at path.
// A missing file is reported with an error wrapping both ErrConfigLoadFailed and os.ErrNotExist.
func (d *DefaultLoader) Load(path string) (*Config, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("%w: path cannot be empty", ErrConfigLoadFailed)
	}

	_, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to stat config file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	var cfg Config
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to decode config from file (%s): %w", ErrConfigLoadFailed, path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("%w: unknown keys in config file (%s): %v", ErrConfigLoadFailed, path, undecoded)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("%w: failed to validate config (%s): %w", ErrConfigLoadFailed, path, err)
	}

	// Update the path that loaded this file to track it.
	cfg.configFilePath = path

	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Fetch.Workers < 0 {
		return NewErrInvalidValue("fetch.workers", fmt.Sprint(c.Fetch.Workers))
	}

	if c.Fetch.Policy != "" {
		var p listing.Policy
		if err := p.Set(c.Fetch.Policy); err != nil {
			return fmt.Errorf("%w: %w", NewErrInvalidValue("fetch.policy", c.Fetch.Policy), err)
		}
	}

	if c.Fetch.RequestTimeout < 0 {
		return NewErrInvalidValue("fetch.request_timeout", c.Fetch.RequestTimeout.String())
	}

	if c.Fetch.Deadline < 0 {
		return NewErrInvalidValue("fetch.deadline", c.Fetch.Deadline.String())
	}

	if c.Serve.RefreshInterval < 0 {
		return NewErrInvalidValue("serve.refresh_interval", c.Serve.RefreshInterval.String())
	}

	return nil
}
