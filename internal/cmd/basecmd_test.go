package cmd

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/pkglisting/pkglisting/internal/flags"
)

func TestNewLogger_Levels(t *testing.T) {
	tests := []struct {
		name     string
		flag     string
		env      string
		expected hclog.Level
	}{
		{name: "default", expected: hclog.Info},
		{name: "flag", flag: "debug", expected: hclog.Debug},
		{name: "flag upper case", flag: " WARN ", expected: hclog.Warn},
		{name: "env fallback", env: "trace", expected: hclog.Trace},
		{name: "flag wins over env", flag: "error", env: "trace", expected: hclog.Error},
		{name: "off", flag: "off", expected: hclog.Off},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(flags.EnvVarLogLevel, tc.env)
			t.Setenv(flags.EnvVarLogPath, "")

			logger, err := NewLogger("", tc.flag)
			require.NoError(t, err)
			require.Equal(t, tc.expected, logger.GetLevel())
			require.Equal(t, "pkglisting", logger.Name())
		})
	}
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	t.Setenv(flags.EnvVarLogLevel, "")

	_, err := NewLogger("", "loud")
	require.ErrorContains(t, err, "invalid log level 'loud'")
}

func TestNewLogger_LogFile(t *testing.T) {
	t.Setenv(flags.EnvVarLogLevel, "")

	path := filepath.Join(t.TempDir(), "logs", "pkglisting.log")
	logger, err := NewLogger(path, "info")
	require.NoError(t, err)

	logger.Info("Found package version", "version", "1.2.3")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "Found package version")
	require.Contains(t, string(data), "version=1.2.3")
}

func TestNewLogger_LogPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env.log")
	t.Setenv(flags.EnvVarLogPath, path)
	t.Setenv(flags.EnvVarLogLevel, "")

	logger, err := NewLogger("", "")
	require.NoError(t, err)
	logger.Warn("hello")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
}

func TestBaseCmd_Logger_UsesSetLogger(t *testing.T) {
	t.Parallel()

	want := hclog.NewNullLogger()
	c := &BaseCmd{}
	c.SetLogger(want)

	got, err := c.Logger()
	require.NoError(t, err)
	require.Equal(t, want, got)
}

func TestBaseCmd_Build(t *testing.T) {
	t.Parallel()

	c := &BaseCmd{}
	c.SetLogger(hclog.NewNullLogger())

	client, err := c.Build("")
	require.NoError(t, err)
	require.NotNil(t, client)

	client, err = c.Build("https://ghe.example.com/api/v3/")
	require.NoError(t, err)
	require.NotNil(t, client)

	_, err = c.Build("not a url")
	require.Error(t, err)
}

func TestBaseCmd_Build_LoggerName(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = fmt.Fprint(w, `[]`)
	}))
	defer srv.Close()

	var buf bytes.Buffer
	c := &BaseCmd{}
	c.SetLogger(hclog.New(&hclog.LoggerOptions{
		Name:   "pkglisting",
		Output: &buf,
		Level:  hclog.Debug,
	}))

	client, err := c.Build(srv.URL)
	require.NoError(t, err)

	_, err = client.ListReleases(context.Background(), "acme", "widget")
	require.NoError(t, err)
	require.Contains(t, buf.String(), "pkglisting.github:")
	require.NotContains(t, buf.String(), "github.github")
}
