package listing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/pkglisting/pkglisting/internal/errors"
	"github.com/pkglisting/pkglisting/internal/host"
)

// Outcome is the result of processing one release.
type Outcome struct {
	// Index is the position of the release in the order returned by the host.
	Index int

	// Tag is the release tag.
	Tag string

	// Text is the downloaded manifest, set only when Err is nil.
	Text string

	// Err is a KindAssetNotFound or KindNetwork error when the release could not be processed.
	Err error
}

// Builder assembles listings from the releases of a repository.
// NewBuilder should be used to create instances of Builder.
type Builder struct {
	logger hclog.Logger
	client host.Client
	opts   Options
}

// NewBuilder creates a Builder that uses client for all calls to the host.
func NewBuilder(logger hclog.Logger, client host.Client, opt ...Option) (*Builder, error) {
	if client == nil {
		return nil, fmt.Errorf("host client cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	return &Builder{
		logger: logger.Named("listing"),
		client: client,
		opts:   opts,
	}, nil
}

// BuildListing builds the listing for packageName from every release of owner/repo.
func BuildListing(
	ctx context.Context,
	logger hclog.Logger,
	packageName string,
	owner string,
	repo string,
	client host.Client,
	opt ...Option,
) (*Listing, error) {
	b, err := NewBuilder(logger, client, opt...)
	if err != nil {
		return nil, errors.New(errors.KindConfiguration, "build listing", err)
	}
	return b.Build(ctx, packageName, owner, repo)
}

// Build lists every release of owner/repo, downloads each release's manifest asset,
// and returns the listing with versions in the order the host returned the releases.
// Failing to list releases is always fatal; a failing release is handled according to the configured Policy.
func (b *Builder) Build(ctx context.Context, packageName string, owner string, repo string) (*Listing, error) {
	const op = "build listing"

	packageName = strings.TrimSpace(packageName)
	owner = strings.TrimSpace(owner)
	repo = strings.TrimSpace(repo)
	switch {
	case packageName == "":
		return nil, errors.Configuration(op, "package name cannot be empty")
	case owner == "" || repo == "":
		return nil, errors.Configuration(op, "repository owner and name are required")
	}

	ctx, cancel := context.WithTimeout(ctx, b.opts.Deadline)
	defer cancel()

	l := New(b.opts.Metadata, packageName)

	b.logger.Info("Listing releases", "owner", owner, "repo", repo)
	releases, err := b.client.ListReleases(ctx, owner, repo)
	if err != nil {
		if errors.KindOf(err) == errors.KindUnknown {
			err = errors.Network("list releases", err)
		}
		return nil, err
	}
	b.logger.Info("Found releases", "count", len(releases), "workers", b.opts.Workers, "policy", b.opts.Policy)
	if b.opts.OnListed != nil {
		b.opts.OnListed(len(releases))
	}

	outcomes := b.fetchAll(ctx, releases)

	// Check the deadline before applying the policy so a timed out build is never mistaken for a partial one.
	if err := ctx.Err(); err != nil {
		return nil, errors.Network(op, fmt.Errorf("build did not complete: %w", err))
	}

	versions := l.Versions(packageName)
	for _, o := range outcomes {
		if o.Err == nil {
			versions.Set(o.Tag, o.Text)
			continue
		}

		if b.opts.Policy == PolicyAbort {
			b.logger.Error("Release failed, aborting", "tag", o.Tag, "error", o.Err)
			return nil, o.Err
		}

		b.logger.Warn("Skipping release", "tag", o.Tag, "error", o.Err)
		l.Skipped = append(l.Skipped, SkippedRelease{Tag: o.Tag, Kind: errors.KindOf(o.Err), Reason: o.Err})
	}

	if err := l.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rendered, err := l.JSON()
	if err != nil {
		return nil, err
	}
	b.logger.Info(
		"Made repository listing",
		"versions", versions.Len(),
		"skipped", len(l.Skipped),
		"listing", string(rendered),
	)

	return l, nil
}

// fetchAll processes every release on a bounded pool of workers.
// Outcomes are stored at their release index, so the returned slice is in host order
// regardless of completion order. Every release is attempted so a failure never hides an earlier one.
func (b *Builder) fetchAll(ctx context.Context, releases []host.Release) []Outcome {
	outcomes := make([]Outcome, len(releases))

	var g errgroup.Group
	g.SetLimit(b.opts.Workers)

	for i, rel := range releases {
		g.Go(func() error {
			outcomes[i] = b.fetch(ctx, i, rel)
			if b.opts.OnFetched != nil {
				b.opts.OnFetched(outcomes[i])
			}
			return nil
		})
	}

	_ = g.Wait()

	return outcomes
}

// fetch locates the manifest asset on rel and downloads it.
func (b *Builder) fetch(ctx context.Context, idx int, rel host.Release) Outcome {
	out := Outcome{Index: idx, Tag: rel.TagName}

	asset, ok := rel.FindAsset(b.opts.AssetName)
	if !ok {
		out.Err = errors.AssetNotFound(
			"locate asset",
			"release '%s' has no asset named '%s'",
			rel.TagName,
			b.opts.AssetName,
		)
		return out
	}

	if err := ctx.Err(); err != nil {
		out.Err = errors.Network("download asset", err)
		return out
	}

	reqCtx, cancel := context.WithTimeout(ctx, b.opts.RequestTimeout)
	defer cancel()

	headers := http.Header{}
	headers.Set("User-Agent", b.opts.UserAgent)

	b.logger.Debug("Downloading manifest", "tag", rel.TagName, "url", asset.BrowserDownloadURL)
	text, err := b.client.DownloadText(reqCtx, asset.BrowserDownloadURL, headers)
	if err != nil {
		if errors.KindOf(err) == errors.KindUnknown {
			err = errors.Network("download asset", err)
		}
		out.Err = fmt.Errorf("release '%s': %w", rel.TagName, err)
		return out
	}

	// JSON output cannot carry invalid UTF-8 unchanged.
	if !utf8.ValidString(text) {
		out.Err = errors.Network(
			"download asset",
			fmt.Errorf("release '%s': manifest at '%s' is not valid UTF-8", rel.TagName, asset.BrowserDownloadURL),
		)
		return out
	}

	out.Text = text
	return out
}
