package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pkglisting/pkglisting/internal/cmd"
	cmdopts "github.com/pkglisting/pkglisting/internal/cmd/options"
	"github.com/pkglisting/pkglisting/internal/config"
	"github.com/pkglisting/pkglisting/internal/flags"
	"github.com/pkglisting/pkglisting/internal/manifest"
)

// VersionCmd should be used to represent the 'version' command.
type VersionCmd struct {
	*cmd.BaseCmd
	PackagePath string
	cfgLoader   config.Loader
}

// NewVersionCmd creates a newly configured (Cobra) command.
func NewVersionCmd(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	opts, err := cmdopts.NewOptions(opt...)
	if err != nil {
		return nil, err
	}

	c := &VersionCmd{
		BaseCmd:   baseCmd,
		cfgLoader: opts.ConfigLoader,
	}

	cobraCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints the version of the local package",
		Long: fmt.Sprintf(
			"Prints the version found in the local %s. Use --version for the version of this tool.",
			manifest.Filename,
		),
		Args: cobra.NoArgs,
		RunE: c.run,
	}

	cobraCommand.Flags().StringVar(
		&c.PackagePath,
		flagNamePackagePath,
		"",
		fmt.Sprintf(
			"Directory containing the package manifest (env: %s, default '%s')",
			flags.EnvVarPackagePath,
			defaultPackagePath,
		),
	)

	return cobraCommand, nil
}

func (c *VersionCmd) run(cobraCmd *cobra.Command, _ []string) error {
	logger, err := c.Logger()
	if err != nil {
		return err
	}

	cfg, err := loadConfig(c.cfgLoader)
	if err != nil {
		return err
	}

	path := pick(cobraCmd.Flags(), flagNamePackagePath, c.PackagePath, os.Getenv(flags.EnvVarPackagePath), cfg.Package.Path)
	if strings.TrimSpace(path) == "" {
		path = defaultPackagePath
	}

	version, err := manifest.ReadVersion(logger.Named("manifest"), path)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(cobraCmd.OutOrStdout(), version)
	return err
}
