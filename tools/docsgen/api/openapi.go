//go:build docsgen_api
// +build docsgen_api

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	internalcmd "github.com/pkglisting/pkglisting/internal/cmd"
	"github.com/pkglisting/pkglisting/internal/files"
	"github.com/pkglisting/pkglisting/internal/listing"
	"github.com/pkglisting/pkglisting/internal/perms"
	"github.com/pkglisting/pkglisting/internal/server"
)

// main generates the OpenAPI specification for the serve command's API.
// It assumes it is run from the repository root.
func main() {
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "pkglisting.docsgen.api",
		Level:  hclog.Info,
		Output: os.Stderr,
	})

	// Output path for the OpenAPI spec, relative to the repository root.
	outputPath := "./docs/api/openapi.yaml"

	// The OpenAPI spec generation only needs the route definitions, no listing is ever built.
	stub := func(context.Context) (*listing.Listing, error) {
		return nil, fmt.Errorf("not available during docs generation")
	}

	srv, err := server.NewServer(logger, "", stub, server.WithVersion(internalcmd.Version()))
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	yamlBytes, err := srv.OpenAPI().YAML()
	if err != nil {
		logger.Error("failed to generate OpenAPI YAML", "error", err)
		os.Exit(1)
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), perms.RegularDir); err != nil {
		logger.Error("failed to create docs directory", "path", filepath.Dir(outputPath), "error", err)
		os.Exit(1)
	}

	if err := files.WriteFileAtomic(outputPath, yamlBytes, perms.RegularFile); err != nil {
		logger.Error("failed to write OpenAPI spec", "path", outputPath, "error", err)
		os.Exit(1)
	}

	logger.Info("OpenAPI spec generated", "path", outputPath, "size", fmt.Sprintf("%d bytes", len(yamlBytes)))
}
