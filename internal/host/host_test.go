package host

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRelease_FindAsset(t *testing.T) {
	t.Parallel()

	rel := Release{
		TagName: "v1.0.0",
		Assets: []Asset{
			{Name: "package.json.sig", BrowserDownloadURL: "https://example.com/sig"},
			{Name: "Package.json", BrowserDownloadURL: "https://example.com/upper"},
			{Name: "package.json", BrowserDownloadURL: "https://example.com/manifest"},
		},
	}

	a, ok := rel.FindAsset("package.json")
	require.True(t, ok)
	require.Equal(t, "https://example.com/manifest", a.BrowserDownloadURL)

	_, ok = rel.FindAsset("missing.json")
	require.False(t, ok)

	_, ok = Release{TagName: "empty"}.FindAsset("package.json")
	require.False(t, ok)
}
