package cmd

import (
	stdErrors "errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"github.com/pkglisting/pkglisting/internal/config"
	"github.com/pkglisting/pkglisting/internal/errors"
	"github.com/pkglisting/pkglisting/internal/flags"
	"github.com/pkglisting/pkglisting/internal/host/github"
	"github.com/pkglisting/pkglisting/internal/listing"
)

const (
	flagNamePackageName    = "package-name"
	flagNamePackagePath    = "package-path"
	flagNameRepository     = "repository"
	flagNameOwner          = "owner"
	flagNameAPIBase        = "api-base"
	flagNameWorkers        = "workers"
	flagNamePolicy         = "policy"
	flagNameRequestTimeout = "request-timeout"
	flagNameDeadline       = "deadline"
	flagNameListingName    = "name"
	flagNameListingAuthor  = "author"
	flagNameListingURL     = "url"

	// defaultPackagePath is used when no package directory is configured.
	defaultPackagePath = "."
)

// listingFlags are the flags shared by commands that build a listing.
type listingFlags struct {
	PackageName    string
	PackagePath    string
	Repository     string
	Owner          string
	APIBase        string
	Workers        int
	Policy         listing.Policy
	RequestTimeout time.Duration
	Deadline       time.Duration
	ListingName    string
	ListingAuthor  string
	ListingURL     string
}

// listingSettings is the outcome of resolving flags, environment, config file and defaults, in that order.
type listingSettings struct {
	PackageName    string
	PackagePath    string
	Owner          string
	Repo           string
	APIBase        string
	Metadata       listing.Metadata
	Workers        int
	Policy         listing.Policy
	RequestTimeout time.Duration
	Deadline       time.Duration
}

func (f *listingFlags) register(fs *pflag.FlagSet) {
	f.Policy = listing.DefaultPolicy

	fs.StringVar(
		&f.PackageName,
		flagNamePackageName,
		"",
		fmt.Sprintf("Name of the package the listing is built for (env: %s)", flags.EnvVarPackageName),
	)
	fs.StringVar(
		&f.PackagePath,
		flagNamePackagePath,
		"",
		fmt.Sprintf(
			"Directory containing the package manifest (env: %s, default '%s')",
			flags.EnvVarPackagePath,
			defaultPackagePath,
		),
	)
	fs.StringVar(
		&f.Repository,
		flagNameRepository,
		"",
		fmt.Sprintf("Repository whose releases are listed, as owner/name (env: %s)", github.EnvVarRepository),
	)
	fs.StringVar(
		&f.Owner,
		flagNameOwner,
		"",
		fmt.Sprintf("Owner of the repository, used with --%s", flagNameRepository),
	)
	fs.StringVar(
		&f.APIBase,
		flagNameAPIBase,
		"",
		"GitHub API endpoint, e.g. for GitHub Enterprise",
	)
	fs.IntVar(
		&f.Workers,
		flagNameWorkers,
		listing.DefaultWorkers,
		"Number of concurrent manifest downloads",
	)
	allowed := listing.AllowedPolicies()
	fs.Var(
		&f.Policy,
		flagNamePolicy,
		fmt.Sprintf("What to do when a release cannot be included (one of: %s)", allowed.String()),
	)
	fs.DurationVar(
		&f.RequestTimeout,
		flagNameRequestTimeout,
		listing.DefaultRequestTimeout,
		"Timeout for each manifest download",
	)
	fs.DurationVar(
		&f.Deadline,
		flagNameDeadline,
		listing.DefaultDeadline,
		"Timeout for the whole build",
	)
	fs.StringVar(&f.ListingName, flagNameListingName, "", "Listing name (default '"+listing.DefaultName+"')")
	fs.StringVar(&f.ListingAuthor, flagNameListingAuthor, "", "Listing author (default '"+listing.DefaultAuthor+"')")
	fs.StringVar(&f.ListingURL, flagNameListingURL, "", "Listing URL (default '"+listing.DefaultURL+"')")
}

// resolve combines flags with the environment, the config file and defaults.
func (f *listingFlags) resolve(fs *pflag.FlagSet, cfg *config.Config) (listingSettings, error) {
	const op = "resolve settings"

	if cfg == nil {
		cfg = &config.Config{}
	}

	s := listingSettings{
		PackageName: pick(fs, flagNamePackageName, f.PackageName, os.Getenv(flags.EnvVarPackageName), cfg.Package.Name),
		PackagePath: pick(fs, flagNamePackagePath, f.PackagePath, os.Getenv(flags.EnvVarPackagePath), cfg.Package.Path),
		APIBase:     pick(fs, flagNameAPIBase, f.APIBase, "", cfg.Repository.APIBase),
		Metadata: listing.Metadata{
			Name:   pick(fs, flagNameListingName, f.ListingName, "", cfg.Listing.Name),
			Author: pick(fs, flagNameListingAuthor, f.ListingAuthor, "", cfg.Listing.Author),
			URL:    pick(fs, flagNameListingURL, f.ListingURL, "", cfg.Listing.URL),
		},
		Workers:        listing.DefaultWorkers,
		Policy:         listing.DefaultPolicy,
		RequestTimeout: listing.DefaultRequestTimeout,
		Deadline:       listing.DefaultDeadline,
	}

	if s.PackageName == "" {
		return listingSettings{}, errors.Configuration(
			op,
			"package name is required (--%s, %s or [package] name)",
			flagNamePackageName,
			flags.EnvVarPackageName,
		)
	}
	if s.PackagePath == "" {
		s.PackagePath = defaultPackagePath
	}

	owner, repo, err := f.repository(fs, cfg)
	if err != nil {
		return listingSettings{}, errors.New(errors.KindConfiguration, op, err)
	}
	s.Owner, s.Repo = owner, repo

	switch {
	case fs.Changed(flagNameWorkers):
		s.Workers = f.Workers
	case cfg.Fetch.Workers > 0:
		s.Workers = cfg.Fetch.Workers
	}

	switch {
	case fs.Changed(flagNamePolicy):
		s.Policy = f.Policy
	case cfg.Fetch.Policy != "":
		if err := s.Policy.Set(cfg.Fetch.Policy); err != nil {
			return listingSettings{}, errors.New(errors.KindConfiguration, op, err)
		}
	}

	switch {
	case fs.Changed(flagNameRequestTimeout):
		s.RequestTimeout = f.RequestTimeout
	case cfg.Fetch.RequestTimeout > 0:
		s.RequestTimeout = cfg.Fetch.RequestTimeout
	}

	switch {
	case fs.Changed(flagNameDeadline):
		s.Deadline = f.Deadline
	case cfg.Fetch.Deadline > 0:
		s.Deadline = cfg.Fetch.Deadline
	}

	return s, nil
}

// repository resolves the repository owner and name.
func (f *listingFlags) repository(fs *pflag.FlagSet, cfg *config.Config) (string, string, error) {
	owner := strings.TrimSpace(f.Owner)

	if fs.Changed(flagNameRepository) {
		full := strings.TrimSpace(f.Repository)
		// A bare name is allowed when the owner is given separately.
		if owner != "" && full != "" && !strings.Contains(full, "/") {
			return owner, full, nil
		}
		return github.SplitRepository(full, owner)
	}

	if fs.Changed(flagNameOwner) {
		return "", "", fmt.Errorf("--%s requires --%s", flagNameOwner, flagNameRepository)
	}

	if strings.TrimSpace(os.Getenv(github.EnvVarRepository)) != "" {
		return github.RepositoryFromEnv()
	}

	cfgOwner := strings.TrimSpace(cfg.Repository.Owner)
	cfgName := strings.TrimSpace(cfg.Repository.Name)
	switch {
	case cfgOwner != "" && cfgName != "":
		return cfgOwner, cfgName, nil
	case cfgOwner != "" || cfgName != "":
		return "", "", fmt.Errorf("[repository] owner and name must be set together")
	}

	return "", "", stdErrors.New(
		"repository is required (--" + flagNameRepository + ", " + github.EnvVarRepository + " or [repository] owner and name)",
	)
}

// options converts the settings into listing build options.
func (s listingSettings) options() []listing.Option {
	return []listing.Option{
		listing.WithMetadata(s.Metadata),
		listing.WithWorkers(s.Workers),
		listing.WithPolicy(s.Policy),
		listing.WithRequestTimeout(s.RequestTimeout),
		listing.WithDeadline(s.Deadline),
	}
}

// pick returns the flag value when the flag was set, otherwise the first non-blank fallback.
func pick(fs *pflag.FlagSet, flagName string, flagValue string, fallbacks ...string) string {
	if fs.Changed(flagName) {
		return strings.TrimSpace(flagValue)
	}
	for _, v := range fallbacks {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// loadConfig loads the config file, tolerating a missing file at the default location.
func loadConfig(loader config.Loader) (*config.Config, error) {
	path := strings.TrimSpace(flags.ConfigFile)
	if path == "" {
		path = flags.DefaultConfigFile
	}

	cfg, err := loader.Load(path)
	if err != nil {
		if stdErrors.Is(err, os.ErrNotExist) && path == flags.DefaultConfigFile {
			return &config.Config{}, nil
		}
		return nil, errors.New(errors.KindConfiguration, "load config", err)
	}

	return cfg, nil
}
