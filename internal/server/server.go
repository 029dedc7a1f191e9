package server

import (
	"context"
	stdErrors "errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/hashicorp/go-hclog"

	"github.com/pkglisting/pkglisting/internal/errors"
	"github.com/pkglisting/pkglisting/internal/listing"
)

// IndexPath is where the raw listing document is served.
const IndexPath = "/index.json"

// ErrListingUnavailable is returned when no listing has been built yet.
var ErrListingUnavailable = stdErrors.New("listing unavailable")

// BuildFunc builds a fresh listing.
type BuildFunc func(ctx context.Context) (*listing.Listing, error)

// Server serves the most recently built listing over HTTP.
// NewServer should be used to create instances of Server.
type Server struct {
	logger hclog.Logger
	addr   string
	build  BuildFunc
	opts   Options

	mu        sync.RWMutex
	current   *listing.Listing
	indexJSON []byte
	builtAt   time.Time
	lastErr   error
}

// NewServer creates a Server that listens on addr and obtains listings from build.
func NewServer(logger hclog.Logger, addr string, build BuildFunc, opt ...Option) (*Server, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}
	if build == nil {
		return nil, fmt.Errorf("build function cannot be nil")
	}

	opts, err := NewOptions(opt...)
	if err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}

	return &Server{
		logger: logger.Named("server"),
		addr:   addr,
		build:  build,
		opts:   opts,
	}, nil
}

// Refresh builds a new listing and makes it current.
// On failure the previously built listing, if any, keeps being served.
func (s *Server) Refresh(ctx context.Context) error {
	l, err := s.build(ctx)
	if err == nil {
		var data []byte
		data, err = l.JSON()
		if err == nil {
			s.mu.Lock()
			s.current = l
			s.indexJSON = data
			s.builtAt = time.Now().UTC()
			s.lastErr = nil
			s.mu.Unlock()

			s.logger.Info("Listing refreshed", "packages", len(l.Packages), "skipped", len(l.Skipped))
			return nil
		}
	}

	s.mu.Lock()
	s.lastErr = err
	hasListing := s.current != nil
	s.mu.Unlock()

	if hasListing {
		s.logger.Error("Failed to refresh listing, serving last good listing", "error", err)
	} else {
		s.logger.Error("Failed to build listing", "error", err)
	}

	return err
}

// snapshot returns the current listing state.
func (s *Server) snapshot() (*listing.Listing, []byte, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current, s.indexJSON, s.builtAt, s.lastErr
}

// Handler returns the HTTP handler serving the listing and the API.
func (s *Server) Handler() http.Handler {
	mux, _ := s.routes()
	return mux
}

// OpenAPI returns the OpenAPI document describing the API routes.
func (s *Server) OpenAPI() *huma.OpenAPI {
	_, api := s.routes()
	return api.OpenAPI()
}

func (s *Server) routes() (*chi.Mux, huma.API) {
	mux := chi.NewMux()
	mux.Use(middleware.StripSlashes)

	if s.opts.CORS.Enabled {
		s.applyCORS(mux)
	}

	mux.Get(IndexPath, s.handleIndex)

	config := huma.DefaultConfig("pkglisting docs", s.opts.Version)
	router := humachi.New(mux, config)

	v1 := huma.NewGroup(router, APIPathPrefix)
	s.registerRoutes(v1)

	return mux, router
}

// Start builds the initial listing, then serves until ctx is canceled or an error occurs.
// Failing to build the initial listing is fatal.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("Starting listing server", "address", s.addr, "index", IndexPath, "prefix", APIPathPrefix)
		if s.opts.CORS.Enabled {
			s.logger.Info("CORS enabled", "origins", s.opts.CORS.AllowOrigins)
		}
		if err := srv.ListenAndServe(); err != nil && !stdErrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	var wg sync.WaitGroup
	refreshCtx, cancelRefresh := context.WithCancel(ctx)
	defer func() {
		cancelRefresh()
		wg.Wait()
	}()

	if s.opts.RefreshInterval > 0 {
		wg.Go(func() {
			s.refreshLoop(refreshCtx, s.opts.RefreshInterval)
		})
	}

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		s.logger.Info("Shutting down listing server...")
		_ = srv.Shutdown(shutdownCtx)
		s.logger.Info("Shutdown complete")
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

func (s *Server) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Errors are logged by Refresh and the last good listing stays current.
			_ = s.Refresh(ctx)
		}
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	_, data, _, _ := s.snapshot()
	if data == nil {
		http.Error(w, ErrListingUnavailable.Error(), http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(data); err != nil {
		s.logger.Warn("Failed to write listing", "error", err)
	}
}

// applyCORS applies CORS middleware to the router based on the configured options.
func (s *Server) applyCORS(mux *chi.Mux) {
	s.logger.Info("Enabling CORS", "origins", s.opts.CORS.AllowOrigins)

	corsOptions := cors.Options{
		AllowedOrigins: s.opts.CORS.AllowOrigins,
		AllowedMethods: s.opts.CORS.AllowMethods,
		AllowedHeaders: s.opts.CORS.AllowedHeaders,
		MaxAge:         int(s.opts.CORS.MaxAge.Seconds()),
	}

	for _, origin := range corsOptions.AllowedOrigins {
		if origin == "*" {
			corsOptions.AllowedOrigins = []string{"*"}
			break
		}
	}

	mux.Use(cors.Handler(corsOptions))
}

// mapError maps listing errors to HTTP status codes.
//
// Mapping guidelines:
//   - 404: Asset not found
//   - 502: Release host failures
//   - 503: No listing built yet
//   - 500: Configuration and unexpected errors (default case)
func mapError(logger hclog.Logger, err error) huma.StatusError {
	switch {
	case stdErrors.Is(err, ErrListingUnavailable):
		return huma.Error503ServiceUnavailable(err.Error())
	case stdErrors.Is(err, errors.ErrAssetNotFound):
		return huma.Error404NotFound(err.Error())
	case stdErrors.Is(err, errors.ErrNetwork):
		logger.Error("Release host error", "error", err)
		return huma.Error502BadGateway("Release host error", err)
	default:
		logger.Error("Unexpected error serving listing", "error", err)
		return huma.Error500InternalServerError("Internal server error", err)
	}
}
