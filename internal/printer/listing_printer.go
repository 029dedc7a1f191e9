package printer

import (
	"fmt"
	"io"
	"slices"

	"github.com/pkglisting/pkglisting/internal/cmd/output"
	"github.com/pkglisting/pkglisting/internal/listing"
)

var _ output.Printer[*listing.Listing] = (*ListingPrinter)(nil)

// ListingPrinter renders a listing for humans: metadata, then each package with its version tags.
type ListingPrinter struct {
	headerFunc output.WriteFunc[*listing.Listing]
	footerFunc output.WriteFunc[*listing.Listing]
}

func (p *ListingPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *ListingPrinter) SetHeader(fn output.WriteFunc[*listing.Listing]) {
	p.headerFunc = fn
}

func (p *ListingPrinter) Item(w io.Writer, l *listing.Listing) error {
	if l == nil {
		return fmt.Errorf("listing cannot be nil")
	}

	_, _ = fmt.Fprintf(w, "Listing '%s' by %s\n", l.Name, l.Author)
	_, _ = fmt.Fprintf(w, "URL: %s\n", l.URL)

	names := make([]string, 0, len(l.Packages))
	for name := range l.Packages {
		names = append(names, name)
	}
	slices.Sort(names)

	for _, name := range names {
		versions := l.Versions(name)
		_, _ = fmt.Fprintf(w, "Package '%s' (%d versions):\n", name, versions.Len())

		if versions.Len() == 0 {
			_, _ = fmt.Fprintln(w, "  (No versions found)")
			continue
		}

		// Tags are printed in release order.
		for _, tag := range versions.Tags() {
			text, _ := versions.Get(tag)
			_, _ = fmt.Fprintf(w, "  %s (%d bytes)\n", tag, len(text))
		}
	}

	if len(l.Skipped) > 0 {
		_, _ = fmt.Fprintf(w, "Skipped releases (%d):\n", len(l.Skipped))
		for _, s := range l.Skipped {
			_, _ = fmt.Fprintf(w, "  %s: %v\n", s.Tag, s.Reason)
		}
	}

	return nil
}

func (p *ListingPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *ListingPrinter) SetFooter(fn output.WriteFunc[*listing.Listing]) {
	p.footerFunc = fn
}

// Count returns the number of versions across every package in the listing.
func (p *ListingPrinter) Count(l *listing.Listing) int {
	if l == nil {
		return 0
	}

	return l.VersionCount()
}
