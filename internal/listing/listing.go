package listing

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/pkglisting/pkglisting/internal/errors"
)

const (
	// DefaultName is the listing name used when none is configured.
	DefaultName = "MyRepoName"

	// DefaultAuthor is the listing author used when none is configured.
	DefaultAuthor = "developer@vrchat.com"

	// DefaultURL is the listing URL used when none is configured.
	DefaultURL = "https://urlParameter"
)

// Metadata holds the static, descriptive fields of a listing.
type Metadata struct {
	Name   string `json:"name"   toml:"name"   yaml:"name"`
	Author string `json:"author" toml:"author" yaml:"author"`
	URL    string `json:"url"    toml:"url"    yaml:"url"`
}

// DefaultMetadata returns the metadata used when nothing is configured.
func DefaultMetadata() Metadata {
	return Metadata{
		Name:   DefaultName,
		Author: DefaultAuthor,
		URL:    DefaultURL,
	}
}

// Listing is a package repository listing: every published version of each package, keyed by release tag.
type Listing struct {
	Name     string              `json:"name"     yaml:"name"`
	Author   string              `json:"author"   yaml:"author"`
	URL      string              `json:"url"      yaml:"url"`
	Packages map[string]*Package `json:"packages" yaml:"packages"`

	// Skipped lists releases that could not be included. It is not part of the emitted document.
	Skipped []SkippedRelease `json:"-" yaml:"-"`
}

// Package holds the versions of a single package.
type Package struct {
	Versions *Versions `json:"versions" yaml:"versions"`
}

// SkippedRelease records a release left out of the listing and why.
type SkippedRelease struct {
	Tag    string
	Kind   errors.Kind
	Reason error
}

// Versions maps release tags to raw manifest text, preserving insertion order when serialized.
// The zero value is ready to use.
type Versions struct {
	tags  []string
	texts map[string]string
}

// New returns an empty listing for packageName.
func New(md Metadata, packageName string) *Listing {
	return &Listing{
		Name:   md.Name,
		Author: md.Author,
		URL:    md.URL,
		Packages: map[string]*Package{
			packageName: {Versions: &Versions{}},
		},
	}
}

// Versions returns the versions of packageName, or nil when the package is not in the listing.
func (l *Listing) Versions(packageName string) *Versions {
	p, ok := l.Packages[packageName]
	if !ok || p == nil {
		return nil
	}
	return p.Versions
}

// VersionCount returns the number of versions across every package.
func (l *Listing) VersionCount() int {
	var n int
	for name := range l.Packages {
		n += l.Versions(name).Len()
	}
	return n
}

// JSON renders the listing as indented JSON.
func (l *Listing) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(l, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal listing: %w", err)
	}
	return data, nil
}

// Set stores text under tag. Setting an existing tag replaces its text but keeps its position.
func (v *Versions) Set(tag string, text string) {
	if v.texts == nil {
		v.texts = make(map[string]string)
	}
	if _, ok := v.texts[tag]; !ok {
		v.tags = append(v.tags, tag)
	}
	v.texts[tag] = text
}

// Get returns the text stored under tag.
func (v *Versions) Get(tag string) (string, bool) {
	if v == nil {
		return "", false
	}
	t, ok := v.texts[tag]
	return t, ok
}

// Tags returns the tags in insertion order.
func (v *Versions) Tags() []string {
	if v == nil {
		return nil
	}
	out := make([]string, len(v.tags))
	copy(out, v.tags)
	return out
}

// Len returns the number of versions.
func (v *Versions) Len() int {
	if v == nil {
		return 0
	}
	return len(v.tags)
}

// MarshalJSON implements json.Marshaler, writing tags in insertion order.
// Invalid UTF-8 is replaced with U+FFFD as encoding/json does, Builder skips such manifests before they get here.
func (v *Versions) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, tag := range v.Tags() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(tag)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.texts[tag])
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON implements json.Unmarshaler, keeping the document order of tags.
func (v *Versions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("versions must be a JSON object")
	}

	*v = Versions{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		tag, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected versions key %v", tok)
		}
		var text string
		if err := dec.Decode(&text); err != nil {
			return fmt.Errorf("version '%s': %w", tag, err)
		}
		v.Set(tag, text)
	}

	_, err = dec.Token()
	return err
}

// MarshalYAML implements yaml.Marshaler, writing tags in insertion order.
func (v *Versions) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, tag := range v.Tags() {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: tag},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: v.texts[tag]},
		)
	}
	return node, nil
}
