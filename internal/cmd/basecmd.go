package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"

	"github.com/pkglisting/pkglisting/internal/files"
	"github.com/pkglisting/pkglisting/internal/flags"
	"github.com/pkglisting/pkglisting/internal/host"
	"github.com/pkglisting/pkglisting/internal/host/github"
	"github.com/pkglisting/pkglisting/internal/perms"
)

// Ensure BaseCmd can build host clients.
var _ host.Builder = (*BaseCmd)(nil)

type BaseCmd struct {
	mu     sync.Mutex
	logger hclog.Logger
}

// SetLogger updates the command's logger.
func (c *BaseCmd) SetLogger(logger hclog.Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger = logger
}

// Logger returns the current logger for the command, creating one from flags and environment when unset.
func (c *BaseCmd) Logger() (hclog.Logger, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.logger != nil {
		return c.logger, nil
	}

	logger, err := NewLogger(flags.LogPath, flags.LogLevel)
	if err != nil {
		return nil, err
	}
	c.logger = logger

	return c.logger, nil
}

// NewLogger builds the application logger.
// Flag values take precedence, then environment variables, then defaults.
// An empty log path logs to stderr so that stdout only carries command output.
func NewLogger(logPath string, logLevel string) (hclog.Logger, error) {
	logLevel = strings.ToLower(strings.TrimSpace(logLevel))
	if logLevel == "" {
		logLevel = strings.ToLower(strings.TrimSpace(os.Getenv(flags.EnvVarLogLevel)))
	}
	if logLevel == "" {
		logLevel = flags.DefaultLogLevel
	}

	level := hclog.LevelFromString(logLevel)
	if level == hclog.NoLevel {
		return nil, fmt.Errorf("invalid log level '%s', must be one of trace, debug, info, warn, error, off", logLevel)
	}

	logPath = strings.TrimSpace(logPath)
	if logPath == "" {
		logPath = strings.TrimSpace(os.Getenv(flags.EnvVarLogPath))
	}

	var output io.Writer = os.Stderr
	if logPath != "" {
		if err := files.EnsureParentDir(logPath); err != nil {
			return nil, fmt.Errorf("failed to prepare log file (%s): %w", logPath, err)
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, perms.RegularFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file (%s): %w", logPath, err)
		}
		output = f
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:   files.AppDirName(),
		Level:  level,
		Output: output,
	}), nil
}

// Build creates a GitHub client authenticated with the token found in the environment, if any.
func (c *BaseCmd) Build(apiBase string) (host.Client, error) {
	logger, err := c.Logger()
	if err != nil {
		return nil, err
	}

	opts := []github.Option{github.WithToken(github.TokenFromEnv())}
	if apiBase = strings.TrimSpace(apiBase); apiBase != "" {
		opts = append(opts, github.WithAPIBase(apiBase))
	}

	client, err := github.NewClient(logger, opts...)
	if err != nil {
		return nil, err
	}

	return client, nil
}
