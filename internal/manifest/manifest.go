package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/hashicorp/go-hclog"
	"github.com/xeipuuv/gojsonschema"

	"github.com/pkglisting/pkglisting/internal/errors"
)

const (
	// Filename is the name of the package manifest, both on disk and as a release asset.
	Filename = "package.json"

	// VersionProperty is the manifest field holding the package version.
	VersionProperty = "version"

	op = "read manifest"
)

// utf8BOM is ignored at the start of a manifest.
var utf8BOM = []byte("\xef\xbb\xbf")

//go:embed schema/package.schema.json
var packageSchemaJSON []byte

var packageSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(packageSchemaJSON))
})

// Manifest is a parsed package manifest.
type Manifest struct {
	// Path is the file the manifest was read from.
	Path string

	// Name is the package identifier declared by the manifest, may be empty.
	Name string

	// Version is the declared package version, never blank.
	Version string

	// Raw is the unmodified file content.
	Raw []byte
}

// Load reads and validates the manifest inside dir.
// Any failure is returned as a configuration error.
func Load(dir string) (Manifest, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return Manifest{}, errors.Configuration(op, "package path cannot be empty")
	}

	path := filepath.Join(dir, Filename)

	// #nosec G304 -- path is supplied by the operator.
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, errors.Configuration(op, "failed to read '%s': %w", path, err)
	}

	content := bytes.TrimPrefix(data, utf8BOM)

	var doc map[string]any
	if err := json.Unmarshal(content, &doc); err != nil {
		return Manifest{}, errors.Configuration(op, "failed to parse '%s' as a JSON object: %w", path, err)
	}

	if err := validate(content); err != nil {
		return Manifest{}, errors.Configuration(op, "invalid manifest '%s': %w", path, err)
	}

	version, _ := doc[VersionProperty].(string)
	if strings.TrimSpace(version) == "" {
		return Manifest{}, errors.Configuration(op, "could not find package version in %s", Filename)
	}

	name, _ := doc["name"].(string)

	return Manifest{
		Path:    path,
		Name:    name,
		Version: version,
		Raw:     data,
	}, nil
}

// ReadVersion returns the version declared by the manifest inside dir.
// It fails with a configuration error when the manifest is missing, is not JSON,
// or declares no version (or only whitespace).
func ReadVersion(logger hclog.Logger, dir string) (string, error) {
	logger.Info("Reading package manifest", "path", dir)

	m, err := Load(dir)
	if err != nil {
		return "", err
	}

	logger.Info("Found package version", "version", m.Version, "manifest", m.Path)

	return m.Version, nil
}

func validate(data []byte) error {
	schema, err := packageSchema()
	if err != nil {
		return fmt.Errorf("failed to compile manifest schema: %w", err)
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return err
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}

	return fmt.Errorf("%s", strings.Join(problems, "; "))
}
