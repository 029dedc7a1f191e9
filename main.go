package main

import (
	"context"
	"fmt"
	"os"

	"github.com/pkglisting/pkglisting/cmd"
)

func main() {
	// Execute the root command.
	if err := cmd.Execute(context.Background()); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(cmd.ExitCode(err))
	}
}
