package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/pkglisting/pkglisting/internal/cmd"
	cmdopts "github.com/pkglisting/pkglisting/internal/cmd/options"
	"github.com/pkglisting/pkglisting/internal/errors"
	"github.com/pkglisting/pkglisting/internal/flags"
)

// Exit codes reported for each error kind.
const (
	ExitCodeFailure       = 1
	ExitCodeConfiguration = 2
	ExitCodeAssetNotFound = 3
	ExitCodeNetwork       = 4
)

type RootCmd struct {
	*cmd.BaseCmd
}

// Execute runs the root command against the process arguments.
func Execute(ctx context.Context) error {
	rootCmd, err := NewRootCmd(&cmd.BaseCmd{})
	if err != nil {
		return err
	}

	return rootCmd.ExecuteContext(ctx)
}

func NewRootCmd(c *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error) {
	rootCmd := &cobra.Command{
		Use:           "pkglisting <command> [args]",
		Short:         "'pkglisting' builds the package listing served to package manager clients.",
		Long:          (&RootCmd{BaseCmd: c}).longDescription(),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       cmd.Version(),
	}

	// Global flags
	flags.InitFlags(rootCmd.PersistentFlags())

	fns := []func(baseCmd *cmd.BaseCmd, opt ...cmdopts.CmdOption) (*cobra.Command, error){
		NewBuildCmd,
		NewInitCmd,
		NewServeCmd,
		NewVersionCmd,
	}

	for _, fn := range fns {
		tempCmd, err := fn(c, opt...)
		if err != nil {
			return nil, err
		}
		rootCmd.AddCommand(tempCmd)
	}

	return rootCmd, nil
}

func (c *RootCmd) longDescription() string {
	return `The 'pkglisting' CLI builds a package repository listing: one JSON document holding
the package manifest of every release of a GitHub repository, keyed by release tag.`
}

// ExitCode returns the process exit code for err.
func ExitCode(err error) int {
	switch errors.KindOf(err) {
	case errors.KindConfiguration:
		return ExitCodeConfiguration
	case errors.KindAssetNotFound:
		return ExitCodeAssetNotFound
	case errors.KindNetwork:
		return ExitCodeNetwork
	default:
		return ExitCodeFailure
	}
}
