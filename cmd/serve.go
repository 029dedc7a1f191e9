package cmd

import (
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pkglisting/pkglisting/internal/cmd"
	cmdopts "github.com/pkglisting/pkglisting/internal/cmd/options"
	"github.com/pkglisting/pkglisting/internal/config"
	"github.com/pkglisting/pkglisting/internal/errors"
	"github.com/pkglisting/pkglisting/internal/host"
	"github.com/pkglisting/pkglisting/internal/listing"
	"github.com/pkglisting/pkglisting/internal/manifest"
	"github.com/pkglisting/pkglisting/internal/server"
)

const (
	flagNameAddr            = "addr"
	flagNameRefreshInterval = "refresh-interval"
	flagNameCORSOrigin      = "cors-origin"

	defaultServeAddr = "localhost:8080"
)

// ServeCmd should be used to represent the 'serve' command.
type ServeCmd struct {
	*cmd.BaseCmd
	listingFlags
	Addr            string
	RefreshInterval time.Duration
	CORSOrigins     []string
	cfgLoader       config.Loader
	clientBuilder   host.Builder
}

// NewServeCmd creates a newly configured (Cobra) command.
func NewServeCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &ServeCmd{
		BaseCmd:       baseCmd,
		cfgLoader:     opts.ConfigLoader,
		clientBuilder: opts.ClientBuilder,
	}

	cobraCommand := &cobra.Command{
		Use:   "serve",
		Short: "Builds the package listing and serves it over HTTP",
		Long:  c.longDescription(),
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	c.register(cobraCommand.Flags())

	cobraCommand.Flags().StringVar(
		&c.Addr,
		flagNameAddr,
		defaultServeAddr,
		"Address for the server to bind",
	)

	cobraCommand.Flags().DurationVar(
		&c.RefreshInterval,
		flagNameRefreshInterval,
		0,
		"Rebuild the listing at this interval, 0 disables refreshing",
	)

	cobraCommand.Flags().StringArrayVar(
		&c.CORSOrigins,
		flagNameCORSOrigin,
		nil,
		"Origin allowed to fetch the listing from a browser (can be repeated, '*' allows all)",
	)

	return cobraCommand, nil
}

func (c *ServeCmd) longDescription() string {
	return fmt.Sprintf(
		"Builds the package listing once, then serves it:\n\n"+
			"  %s\t\tthe listing document\n"+
			"  %s/listing\tthe listing with release order as an explicit tag list\n"+
			"  %s/health\tthe state of the served listing\n"+
			"  /docs\t\t\tOpenAPI documentation\n\n"+
			"With --%s the listing is rebuilt periodically; a failed rebuild keeps serving the last good listing.",
		server.IndexPath,
		server.APIPathPrefix,
		server.APIPathPrefix,
		flagNameRefreshInterval,
	)
}

func (c *ServeCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	settings, err := c.resolve(cobraCmd.Flags(), cfg)
	if err != nil {
		return err
	}

	addr := pick(cobraCmd.Flags(), flagNameAddr, c.Addr, cfg.Serve.Addr)
	if addr == "" {
		addr = defaultServeAddr
	}

	refresh := c.RefreshInterval
	if !cobraCmd.Flags().Changed(flagNameRefreshInterval) {
		refresh = cfg.Serve.RefreshInterval
	}

	origins := c.CORSOrigins
	if !cobraCmd.Flags().Changed(flagNameCORSOrigin) {
		origins = cfg.Serve.CORSOrigins
	}

	if _, err := manifest.ReadVersion(logger.Named("manifest"), settings.PackagePath); err != nil {
		return err
	}

	client, err := c.clientBuilder.Build(settings.APIBase)
	if err != nil {
		return errors.New(errors.KindConfiguration, "create client", err)
	}

	build := func(ctx context.Context) (*listing.Listing, error) {
		return listing.BuildListing(
			ctx,
			logger,
			settings.PackageName,
			settings.Owner,
			settings.Repo,
			client,
			settings.options()...,
		)
	}

	srv, err := server.NewServer(
		logger,
		strings.TrimSpace(addr),
		build,
		server.WithRefreshInterval(refresh),
		server.WithCORSAllowOrigins(origins),
		server.WithVersion(cmd.Version()),
	)
	if err != nil {
		return errors.New(errors.KindConfiguration, "create server", err)
	}

	// Create the signal handling context for the application.
	ctx, cancel := signal.NotifyContext(
		cobraCmd.Context(),
		os.Interrupt,
		syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	if err := srv.Start(ctx); err != nil && !stdErrors.Is(err, context.Canceled) {
		return err
	}

	return nil
}
