package manifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"

	"github.com/pkglisting/pkglisting/internal/errors"
	"github.com/pkglisting/pkglisting/internal/perms"
)

func writeManifest(t *testing.T, content string) string {
	t.Helper()

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, Filename), []byte(content), perms.RegularFile)
	require.NoError(t, err)
	return dir
}

func TestReadVersion(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		content  string
		expected string
	}{
		{
			name:     "simple version",
			content:  `{"name": "com.acme.widget", "version": "1.2.3"}`,
			expected: "1.2.3",
		},
		{
			name:     "prerelease version",
			content:  `{"version": "2.0.0-beta.1+build.5"}`,
			expected: "2.0.0-beta.1+build.5",
		},
		{
			name:     "version returned exactly, surrounding whitespace kept",
			content:  `{"version": " 1.0.0 "}`,
			expected: " 1.0.0 ",
		},
		{
			name:     "extra fields ignored",
			content:  `{"version": "0.0.1", "dependencies": {"a": "1.0.0"}, "unity": "2022.3"}`,
			expected: "0.0.1",
		},
		{
			name:     "leading byte order mark",
			content:  "\xef\xbb\xbf{\"name\": \"com.acme.widget\", \"version\": \"1.0.0\"}",
			expected: "1.0.0",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := writeManifest(t, tc.content)
			got, err := ReadVersion(hclog.NewNullLogger(), dir)
			require.NoError(t, err)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestReadVersion_ConfigurationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		errText string
	}{
		{name: "invalid JSON", content: `{"version": `, errText: "failed to parse"},
		{name: "not an object", content: `["1.0.0"]`, errText: "failed to parse"},
		{name: "missing version", content: `{"name": "com.acme.widget"}`, errText: "version"},
		{name: "empty version", content: `{"version": ""}`, errText: "could not find package version"},
		{name: "whitespace version", content: `{"version": "  \t "}`, errText: "could not find package version"},
		{name: "numeric version", content: `{"version": 1}`, errText: "invalid manifest"},
		{name: "null version", content: `{"version": null}`, errText: "invalid manifest"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			dir := writeManifest(t, tc.content)
			_, err := ReadVersion(hclog.NewNullLogger(), dir)
			require.Error(t, err)
			require.ErrorIs(t, err, errors.ErrConfiguration)
			require.Equal(t, errors.KindConfiguration, errors.KindOf(err))
			require.Contains(t, err.Error(), tc.errText)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(t.TempDir())
	require.ErrorIs(t, err, errors.ErrConfiguration)
	require.Contains(t, err.Error(), "failed to read")
}

func TestLoad_EmptyPath(t *testing.T) {
	t.Parallel()

	_, err := Load("  ")
	require.ErrorIs(t, err, errors.ErrConfiguration)
}

func TestLoad_Fields(t *testing.T) {
	t.Parallel()

	content := `{"name": "com.acme.widget", "version": "1.0.0"}`
	dir := writeManifest(t, content)

	m, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "com.acme.widget", m.Name)
	require.Equal(t, "1.0.0", m.Version)
	require.Equal(t, filepath.Join(dir, Filename), m.Path)
	require.Equal(t, content, string(m.Raw))
}
