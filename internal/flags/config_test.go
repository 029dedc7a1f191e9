package flags

import (
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestConfig_InitConfigFile_EnvVars(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected string
	}{
		{
			name:     "env var value with extra white space",
			value:    "  /custom/path/config.toml  ",
			expected: "/custom/path/config.toml",
		},
		{
			name:     "env var missing",
			value:    "", // Implementation uses os.Getenv which returns an empty string when missing.
			expected: DefaultConfigFile,
		},
		{
			name:     "env var only white space",
			value:    "   ",
			expected: DefaultConfigFile,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVarConfigFile, tc.value)
			t.Cleanup(func() {
				// Reset global variable
				ConfigFile = ""
			})

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

			initConfigFile(fs)

			require.Equal(t, tc.expected, ConfigFile)
			flag := fs.Lookup(FlagNameConfigFile)
			require.NotNil(t, flag)
			require.Equal(t, tc.expected, flag.Value.String())
		})
	}
}

func TestConfig_InitLogger_EnvVars(t *testing.T) {
	tests := []struct {
		name          string
		logPath       string
		logLevel      string
		expectedPath  string
		expectedLevel string
	}{
		{
			name:          "defaults",
			expectedPath:  DefaultLogPath,
			expectedLevel: DefaultLogLevel,
		},
		{
			name:          "env vars trimmed and level lower cased",
			logPath:       "  /tmp/pkglisting.log ",
			logLevel:      " DEBUG ",
			expectedPath:  "/tmp/pkglisting.log",
			expectedLevel: "debug",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv(EnvVarLogPath, tc.logPath)
			t.Setenv(EnvVarLogLevel, tc.logLevel)
			t.Cleanup(func() {
				LogPath = ""
				LogLevel = ""
			})

			fs := pflag.NewFlagSet("test", pflag.ContinueOnError)

			initLogger(fs)

			require.Equal(t, tc.expectedPath, LogPath)
			require.Equal(t, tc.expectedLevel, LogLevel)
			require.NotNil(t, fs.Lookup(FlagNameLogPath))
			require.NotNil(t, fs.Lookup(FlagNameLogLevel))
		})
	}
}

func TestConfig_FlagOverridesEnv(t *testing.T) {
	t.Setenv(EnvVarLogLevel, "warn")
	t.Cleanup(func() {
		LogPath = ""
		LogLevel = ""
		ConfigFile = ""
	})

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	InitFlags(fs)
	require.Equal(t, "warn", LogLevel)

	require.NoError(t, fs.Parse([]string{"--log-level", "trace", "--config-file", "other.toml"}))
	require.Equal(t, "trace", LogLevel)
	require.Equal(t, "other.toml", ConfigFile)
}
