//go:build validate_listing
// +build validate_listing

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/pkglisting/pkglisting/internal/listing"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: go run -tags=validate_listing ./tools/validate/listing.go <index.json>\n")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading listing file: %v\n", err)
		os.Exit(1)
	}

	var l listing.Listing
	if err := json.Unmarshal(data, &l); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing listing file: %v\n", err)
		os.Exit(1)
	}

	if err := l.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Listing is valid: %d packages, %d versions\n", len(l.Packages), l.VersionCount())
}
