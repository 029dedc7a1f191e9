package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/pkglisting/pkglisting/internal/errors"
	"github.com/pkglisting/pkglisting/internal/host"
)

const (
	// EnvVarToken takes precedence over EnvVarGitHubToken.
	EnvVarToken = "PKGLISTING_GITHUB_TOKEN"

	// EnvVarGitHubToken is the token GitHub Actions exposes to workflows.
	EnvVarGitHubToken = "GITHUB_TOKEN"

	// EnvVarRepository is the "owner/name" of the repository running the workflow.
	EnvVarRepository = "GITHUB_REPOSITORY"

	// EnvVarRepositoryOwner is the owner of the repository running the workflow.
	EnvVarRepositoryOwner = "GITHUB_REPOSITORY_OWNER"

	// releasesPerPage is the maximum page size the releases endpoint accepts.
	releasesPerPage = 100

	// maxAssetBytes bounds a downloaded manifest.
	maxAssetBytes = 4 << 20

	// maxPageBytes bounds one page of the releases endpoint.
	maxPageBytes = 32 << 20

	// maxErrorBody limits how much of an error response body ends up in an error message.
	maxErrorBody = 512

	// edgeBlockCode is the code the CDN in front of release assets returns for requests it considers automated.
	edgeBlockCode = "1020"
)

// Ensure Client implements host.Client.
var _ host.Client = (*Client)(nil)

// Client talks to the GitHub REST API.
// NewClient should be used to create instances of Client.
type Client struct {
	logger     hclog.Logger
	httpClient *http.Client
	apiBase    string
	token      string
	userAgent  string
}

// NewClient creates a GitHub client.
func NewClient(logger hclog.Logger, opt ...Option) (*Client, error) {
	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	hc := opts.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: opts.timeout}
	}

	return &Client{
		logger:     logger.Named("github"),
		httpClient: hc,
		apiBase:    opts.apiBase,
		token:      opts.token,
		userAgent:  opts.userAgent,
	}, nil
}

// TokenFromEnv returns the token to use for API calls, if any.
func TokenFromEnv() string {
	if tok := strings.TrimSpace(os.Getenv(EnvVarToken)); tok != "" {
		return tok
	}
	return strings.TrimSpace(os.Getenv(EnvVarGitHubToken))
}

// RepositoryFromEnv derives the repository owner and name from the GitHub Actions environment.
// GITHUB_REPOSITORY_OWNER is preferred for the owner, falling back to the prefix of GITHUB_REPOSITORY.
func RepositoryFromEnv() (owner string, name string, err error) {
	full := strings.TrimSpace(os.Getenv(EnvVarRepository))
	if full == "" {
		return "", "", fmt.Errorf("%s is not set", EnvVarRepository)
	}

	return SplitRepository(full, strings.TrimSpace(os.Getenv(EnvVarRepositoryOwner)))
}

// SplitRepository splits "owner/name" into its parts. When owner is supplied, it must prefix full.
func SplitRepository(full string, owner string) (string, string, error) {
	full = strings.TrimSpace(full)
	if owner != "" {
		name, found := strings.CutPrefix(full, owner+"/")
		if !found || name == "" || strings.Contains(name, "/") {
			return "", "", fmt.Errorf("repository '%s' does not belong to owner '%s'", full, owner)
		}
		return owner, name, nil
	}

	o, n, found := strings.Cut(full, "/")
	if !found || o == "" || n == "" || strings.Contains(n, "/") {
		return "", "", fmt.Errorf("repository must be in the form owner/name, got '%s'", full)
	}
	return o, n, nil
}

// ListReleases returns every release for owner/repo, following pagination until exhausted.
func (c *Client) ListReleases(ctx context.Context, owner string, repo string) ([]host.Release, error) {
	const op = "list releases"

	next := fmt.Sprintf(
		"%s/repos/%s/%s/releases?per_page=%d",
		c.apiBase,
		url.PathEscape(owner),
		url.PathEscape(repo),
		releasesPerPage,
	)

	var all []host.Release
	seen := map[string]struct{}{}
	for page := 1; next != ""; page++ {
		if _, ok := seen[next]; ok {
			return nil, errors.Network(op, fmt.Errorf("%s/%s page %d: pagination repeated '%s'", owner, repo, page, next))
		}
		seen[next] = struct{}{}

		c.logger.Debug("Fetching releases page", "owner", owner, "repo", repo, "page", page)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, next, nil)
		if err != nil {
			return nil, errors.Network(op, err)
		}
		req.Header.Set("Accept", "application/vnd.github+json")
		req.Header.Set("User-Agent", c.userAgent)
		if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}

		var releases []host.Release
		next, err = c.doJSON(req, &releases)
		if err != nil {
			return nil, errors.Network(op, fmt.Errorf("%s/%s page %d: %w", owner, repo, page, err))
		}
		all = append(all, releases...)
	}

	c.logger.Debug("Fetched releases", "owner", owner, "repo", repo, "count", len(all))

	return all, nil
}

// DownloadText fetches url and returns its body unmodified.
// No Authorization header is added: asset URLs are public and redirect to a CDN.
func (c *Client) DownloadText(ctx context.Context, url string, headers http.Header) (string, error) {
	const op = "download asset"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Network(op, err)
	}
	for k, vs := range headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	// #nosec G107 -- url comes from the release payload returned by the API.
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", errors.Network(op, fmt.Errorf("failed to fetch '%s': %w", url, err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := readBody(resp.Body, maxAssetBytes)
	if err != nil {
		return "", errors.Network(op, fmt.Errorf("failed to read response body from '%s': %w", url, err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", errors.Network(op, statusError(url, resp.StatusCode, body))
	}

	return string(body), nil
}

// doJSON executes req, decodes a JSON body into target and returns the URL of the next page, if any.
func (c *Client) doJSON(req *http.Request, target any) (string, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := readBody(resp.Body, maxPageBytes)
	if err != nil {
		return "", fmt.Errorf("failed to read response body from '%s': %w", req.URL, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", statusError(req.URL.String(), resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, target); err != nil {
		return "", fmt.Errorf("failed to unmarshal JSON from '%s': %w", req.URL, err)
	}

	return nextPage(resp.Header.Get("Link")), nil
}

// readBody reads r, failing when it holds more than limit bytes.
func readBody(r io.Reader, limit int64) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(body)) > limit {
		return nil, fmt.Errorf("body exceeds %d bytes", limit)
	}
	return body, nil
}

func statusError(url string, status int, body []byte) error {
	excerpt := strings.TrimSpace(string(body))
	if len(excerpt) > maxErrorBody {
		excerpt = excerpt[:maxErrorBody] + "..."
	}

	if status == http.StatusForbidden && strings.Contains(excerpt, edgeBlockCode) {
		return fmt.Errorf("request to '%s' blocked by edge network (error %s)", url, edgeBlockCode)
	}

	return fmt.Errorf("received non-OK HTTP status from '%s': %d: %s", url, status, excerpt)
}

// nextPage extracts the rel="next" target from an RFC 8288 Link header.
func nextPage(link string) string {
	for part := range strings.SplitSeq(link, ",") {
		target, params, ok := strings.Cut(strings.TrimSpace(part), ";")
		if !ok {
			continue
		}
		for p := range strings.SplitSeq(params, ";") {
			if strings.TrimSpace(p) == `rel="next"` {
				return strings.Trim(strings.TrimSpace(target), "<>")
			}
		}
	}
	return ""
}
