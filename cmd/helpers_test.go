package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/pkglisting/pkglisting/internal/cmd"
	cmdopts "github.com/pkglisting/pkglisting/internal/cmd/options"
	"github.com/pkglisting/pkglisting/internal/config"
	"github.com/pkglisting/pkglisting/internal/host"
	"github.com/pkglisting/pkglisting/internal/host/github"
	"github.com/pkglisting/pkglisting/internal/listing"
	"github.com/pkglisting/pkglisting/internal/perms"
)

// fakeGitHub serves a releases endpoint and the manifest assets it references.
type fakeGitHub struct {
	server *httptest.Server

	// tags lists releases in the order the API returns them.
	tags []string

	// missing holds tags whose release has no package.json asset.
	missing map[string]bool

	listCalls     atomic.Int32
	downloadCalls atomic.Int32
	badUserAgent  atomic.Int32
}

func newFakeGitHub(t *testing.T, tags ...string) *fakeGitHub {
	t.Helper()

	f := &fakeGitHub{tags: tags, missing: map[string]bool{}}

	mux := http.NewServeMux()
	mux.HandleFunc("/repos/acme/widget/releases", func(w http.ResponseWriter, r *http.Request) {
		f.listCalls.Add(1)

		releases := make([]host.Release, 0, len(f.tags))
		for _, tag := range f.tags {
			rel := host.Release{TagName: tag}
			if !f.missing[tag] {
				rel.Assets = []host.Asset{{
					Name:               "package.json",
					BrowserDownloadURL: f.server.URL + "/download/" + tag + "/package.json",
				}}
			}
			releases = append(releases, rel)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(releases)
	})
	mux.HandleFunc("/download/", func(w http.ResponseWriter, r *http.Request) {
		f.downloadCalls.Add(1)
		if r.Header.Get("User-Agent") != listing.DownloadUserAgent {
			f.badUserAgent.Add(1)
			http.Error(w, "error code: 1020", http.StatusForbidden)
			return
		}
		tag := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/download/"), "/package.json")
		_, _ = fmt.Fprint(w, manifestText(tag))
	})

	f.server = httptest.NewServer(mux)
	t.Cleanup(f.server.Close)

	return f
}

func manifestText(tag string) string {
	return fmt.Sprintf(`{"name":"com.acme.widget","version":"%s"}`, strings.TrimPrefix(tag, "v"))
}

// Build implements host.Builder, pointing a real GitHub client at the fake server.
func (f *fakeGitHub) Build(_ string) (host.Client, error) {
	return github.NewClient(hclog.NewNullLogger(), github.WithAPIBase(f.server.URL))
}

// fakeLoader returns a fixed config, or err.
type fakeLoader struct {
	cfg *config.Config
	err error
}

func (f *fakeLoader) Load(_ string) (*config.Config, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.cfg == nil {
		return &config.Config{}, nil
	}
	return f.cfg, nil
}

// writePackage creates a package directory holding a package.json with the given version.
func writePackage(t *testing.T, version string) string {
	t.Helper()

	dir := t.TempDir()
	content := fmt.Sprintf(`{"name":"com.acme.widget","version":%q}`, version)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "package.json"), []byte(content), perms.RegularFile))
	return dir
}

func newBaseCmd() *cmd.BaseCmd {
	base := &cmd.BaseCmd{}
	base.SetLogger(hclog.NewNullLogger())
	return base
}

// execute runs the command built by newCmd with args, returning stdout and stderr.
func execute(
	t *testing.T,
	newCmd func(*cmd.BaseCmd, ...cmdopts.CmdOption) (*cobra.Command, error),
	args []string,
	opt ...cmdopts.CmdOption,
) (string, string, error) {
	t.Helper()

	c, err := newCmd(newBaseCmd(), opt...)
	require.NoError(t, err)

	var stdout, stderr bytes.Buffer
	c.SetOut(&stdout)
	c.SetErr(&stderr)
	c.SetArgs(args)

	err = c.Execute()
	return stdout.String(), stderr.String(), err
}
