package server

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/pkglisting/pkglisting/internal/listing"
)

// APIPathPrefix is the path all API routes are grouped under.
const APIPathPrefix = "/api/v1"

const (
	HealthStatusOK    HealthStatus = "ok"
	HealthStatusStale HealthStatus = "stale"
)

// HealthStatus represents whether the served listing reflects the latest build attempt.
type HealthStatus string

// Listing is the API representation of a listing.
type Listing struct {
	Name     string             `doc:"Listing name"                   json:"name"`
	Author   string             `doc:"Listing author"                 json:"author"`
	URL      string             `doc:"Listing URL"                    json:"url"`
	Packages map[string]Package `doc:"Packages keyed by package name" json:"packages"`
}

// Package is the API representation of a package's versions.
// JSON objects are unordered, so Tags carries the release order.
type Package struct {
	Tags     []string          `doc:"Release tags in the order the host returned them" json:"tags"`
	Versions map[string]string `doc:"Raw package manifest text keyed by release tag"   json:"versions"`
}

// ListingResponse is the response for GET /listing.
type ListingResponse struct {
	Body Listing
}

// Health describes the state of the served listing.
type Health struct {
	Status    HealthStatus `doc:"ok, or stale when the latest refresh failed" json:"status"`
	BuiltAt   *time.Time   `doc:"When the served listing was built"         json:"builtAt,omitempty"`
	Versions  int          `doc:"Number of versions in the served listing"   json:"versions"`
	LastError string       `doc:"Error from the latest failed refresh"       json:"lastError,omitempty"`
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Body Health
}

// registerRoutes sets up the API endpoint routes.
func (s *Server) registerRoutes(api huma.API) {
	tags := []string{"Listing"}

	huma.Register(
		api,
		huma.Operation{
			OperationID: "getListing",
			Method:      http.MethodGet,
			Path:        "/listing",
			Summary:     "Get the current package listing",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*ListingResponse, error) {
			return s.handleListing()
		},
	)

	huma.Register(
		api,
		huma.Operation{
			OperationID: "getHealth",
			Method:      http.MethodGet,
			Path:        "/health",
			Summary:     "Get the state of the served listing",
			Tags:        tags,
		},
		func(ctx context.Context, _ *struct{}) (*HealthResponse, error) {
			return s.handleHealth()
		},
	)
}

func (s *Server) handleListing() (*ListingResponse, error) {
	l, _, _, _ := s.snapshot()
	if l == nil {
		return nil, mapError(s.logger, ErrListingUnavailable)
	}

	resp := &ListingResponse{}
	resp.Body = toAPIListing(l)

	return resp, nil
}

func (s *Server) handleHealth() (*HealthResponse, error) {
	l, _, builtAt, lastErr := s.snapshot()
	if l == nil {
		if lastErr != nil {
			return nil, mapError(s.logger, lastErr)
		}
		return nil, mapError(s.logger, ErrListingUnavailable)
	}

	resp := &HealthResponse{}
	resp.Body.Status = HealthStatusOK
	resp.Body.BuiltAt = &builtAt
	resp.Body.Versions = l.VersionCount()
	if lastErr != nil {
		resp.Body.Status = HealthStatusStale
		resp.Body.LastError = lastErr.Error()
	}

	return resp, nil
}

func toAPIListing(l *listing.Listing) Listing {
	out := Listing{
		Name:     l.Name,
		Author:   l.Author,
		URL:      l.URL,
		Packages: make(map[string]Package, len(l.Packages)),
	}

	for name := range l.Packages {
		v := l.Versions(name)
		pkg := Package{
			Tags:     v.Tags(),
			Versions: make(map[string]string, v.Len()),
		}
		if pkg.Tags == nil {
			pkg.Tags = []string{}
		}
		for _, tag := range pkg.Tags {
			text, _ := v.Get(tag)
			pkg.Versions[tag] = text
		}
		out.Packages[name] = pkg
	}

	return out
}
