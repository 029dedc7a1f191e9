package listing

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema/listing.schema.json
var listingSchemaJSON []byte

var listingSchema = sync.OnceValues(func() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewBytesLoader(listingSchemaJSON))
})

// Validate checks the listing against the listing document schema.
func (l *Listing) Validate() error {
	schema, err := listingSchema()
	if err != nil {
		return fmt.Errorf("failed to compile listing schema: %w", err)
	}

	data, err := l.JSON()
	if err != nil {
		return err
	}

	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("failed to validate listing: %w", err)
	}
	if result.Valid() {
		return nil
	}

	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, fmt.Sprintf("%s: %s", e.Field(), e.Description()))
	}

	return fmt.Errorf("invalid listing: %s", strings.Join(problems, "; "))
}
