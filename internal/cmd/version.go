package cmd

// version is set at build time using -ldflags "-X github.com/pkglisting/pkglisting/internal/cmd.version=...".
var version = "dev"

// Version returns the version of the binary.
func Version() string {
	return version
}
