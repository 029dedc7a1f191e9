package cmd

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/pkglisting/pkglisting/internal/cmd"
	cmdopts "github.com/pkglisting/pkglisting/internal/cmd/options"
	"github.com/pkglisting/pkglisting/internal/cmd/output"
	"github.com/pkglisting/pkglisting/internal/config"
	"github.com/pkglisting/pkglisting/internal/errors"
	"github.com/pkglisting/pkglisting/internal/files"
	"github.com/pkglisting/pkglisting/internal/host"
	"github.com/pkglisting/pkglisting/internal/listing"
	"github.com/pkglisting/pkglisting/internal/manifest"
	"github.com/pkglisting/pkglisting/internal/perms"
)

// BuildCmd should be used to represent the 'build' command.
type BuildCmd struct {
	*cmd.BaseCmd
	listingFlags
	Output        string
	Format        cmd.OutputFormat
	Progress      bool
	cfgLoader     config.Loader
	clientBuilder host.Builder
	printer       output.Printer[*listing.Listing]
}

// NewBuildCmd creates a newly configured (Cobra) command.
func NewBuildCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &BuildCmd{
		BaseCmd:       baseCmd,
		Format:        cmd.FormatJSON,
		cfgLoader:     opts.ConfigLoader,
		clientBuilder: opts.ClientBuilder,
		printer:       opts.Printer,
	}

	cobraCommand := &cobra.Command{
		Use:   "build",
		Short: "Builds the package listing from every release of the repository",
		Long:  c.longDescription(),
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}

	c.register(cobraCommand.Flags())

	cobraCommand.Flags().StringVarP(
		&c.Output,
		"output",
		"o",
		"",
		"Write the listing to this file instead of stdout",
	)

	allowed := cmd.AllowedOutputFormats()
	cobraCommand.Flags().Var(
		&c.Format,
		"format",
		fmt.Sprintf(
			"Specify the output format (one of: %s), inferred from the --output extension when not set",
			allowed.String(),
		),
	)

	cobraCommand.Flags().BoolVar(
		&c.Progress,
		"progress",
		false,
		"Show download progress on stderr",
	)

	return cobraCommand, nil
}

func (c *BuildCmd) longDescription() string {
	return "Reads the package version from the local package manifest, then lists every release of the " +
		"repository, downloads the package manifest attached to each release, and writes a listing " +
		"with one entry per release tag, in the order the releases were returned.\n\n" +
		"Settings are taken from flags, then environment variables, then the config file, then defaults."
}

// run is configured (via NewBuildCmd) to be called by the Cobra framework when the command is executed.
func (c *BuildCmd) run(cobraCmd *cobra.Command, _ []string) error {
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

	format, err := c.outputFormat(cobraCmd)
	if err != nil {
		return err
	}

	// The manifest is checked before any network activity.
	if _, err := manifest.ReadVersion(logger.Named("manifest"), settings.PackagePath); err != nil {
		return err
	}

	client, err := c.clientBuilder.Build(settings.APIBase)
	if err != nil {
		return errors.New(errors.KindConfiguration, "create client", err)
	}

	buildOpts := settings.options()
	if c.Progress {
		buildOpts = append(buildOpts, progressOptions(cobraCmd.ErrOrStderr())...)
	}

	l, err := listing.BuildListing(
		cobraCmd.Context(),
		logger,
		settings.PackageName,
		settings.Owner,
		settings.Repo,
		client,
		buildOpts...,
	)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	handler, err := cmd.FormatHandler(&buf, format, c.printer)
	if err != nil {
		return err
	}
	if err := handler.HandleResult(l); err != nil {
		return fmt.Errorf("failed to render listing: %w", err)
	}

	if c.Output == "" {
		_, err = io.Copy(cobraCmd.OutOrStdout(), &buf)
		return err
	}

	path := strings.TrimSpace(c.Output)
	if err := files.EnsureParentDir(path); err != nil {
		return err
	}
	if err := files.WriteFileAtomic(path, buf.Bytes(), perms.RegularFile); err != nil {
		return fmt.Errorf("failed to write listing: %w", err)
	}
	logger.Info("Wrote listing", "path", path, "format", format.String())

	return nil
}

// outputFormat returns the --format value, or infers it from the --output extension when not set.
func (c *BuildCmd) outputFormat(cobraCmd *cobra.Command) (cmd.OutputFormat, error) {
	if cobraCmd.Flags().Changed("format") || c.Output == "" {
		return c.Format, nil
	}

	if f, ok := cmd.FormatFromPath(c.Output); ok {
		return f, nil
	}

	return c.Format, nil
}

// progressOptions reports download progress on w.
func progressOptions(w io.Writer) []listing.Option {
	var (
		mu  sync.Mutex
		bar *progressbar.ProgressBar
	)

	return []listing.Option{
		listing.WithOnListed(func(count int) {
			if count == 0 {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			bar = progressbar.NewOptions(count,
				progressbar.OptionSetWriter(w),
				progressbar.OptionSetDescription("Downloading manifests"),
				progressbar.OptionShowDescriptionAtLineEnd(),
				progressbar.OptionSetWidth(30),
				progressbar.OptionShowCount(),
				progressbar.OptionThrottle(200*time.Millisecond),
				progressbar.OptionClearOnFinish(),
			)
		}),
		listing.WithOnFetched(func(o listing.Outcome) {
			mu.Lock()
			defer mu.Unlock()
			if bar == nil {
				return
			}
			bar.Describe(o.Tag)
			_ = bar.Add(1)
		}),
	}
}
