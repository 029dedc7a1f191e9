package host

import (
	"context"
	"net/http"
)

// Release is the subset of a hosted release payload that is needed to build a listing.
type Release struct {
	TagName string  `json:"tag_name"`
	Assets  []Asset `json:"assets"`
}

// Asset is the subset of a hosted release asset payload that is needed to build a listing.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// ReleaseLister lists every release of a repository, in the order returned by the host.
type ReleaseLister interface {
	ListReleases(ctx context.Context, owner string, repo string) ([]Release, error)
}

// TextDownloader downloads the body at url as text, sending the supplied headers.
type TextDownloader interface {
	DownloadText(ctx context.Context, url string, headers http.Header) (string, error)
}

// Client is everything a listing build needs from a release-hosting service.
type Client interface {
	ReleaseLister
	TextDownloader
}

// FindAsset returns the asset whose name exactly equals name, or false when absent.
func (r Release) FindAsset(name string) (Asset, bool) {
	for _, a := range r.Assets {
		if a.Name == name {
			return a, true
		}
	}
	return Asset{}, false
}

// Builder creates a Client for the service reachable at apiBase.
// An empty apiBase selects the service's default endpoint.
type Builder interface {
	Build(apiBase string) (Client, error)
}
