package printer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkglisting/pkglisting/internal/listing"
)

func testListing() *listing.Listing {
	l := listing.New(listing.DefaultMetadata(), "com.acme.widget")
	v := l.Versions("com.acme.widget")
	v.Set("v1.1.0", `{"version":"1.1.0"}`)
	v.Set("v1.0.0", `{"version":"1.0.0"}`)
	return l
}

func TestListingPrinter_Item(t *testing.T) {
	t.Parallel()

	skipped := testListing()
	skipped.Skipped = []listing.SkippedRelease{
		{Tag: "v0.9.0", Reason: errors.New("release 'v0.9.0' has no asset named 'package.json'")},
	}

	tests := []struct {
		name     string
		listing  *listing.Listing
		expected string
	}{
		{
			name:    "versions in release order",
			listing: testListing(),
			expected: "Listing 'MyRepoName' by developer@vrchat.com\n" +
				"URL: https://urlParameter\n" +
				"Package 'com.acme.widget' (2 versions):\n" +
				"  v1.1.0 (19 bytes)\n" +
				"  v1.0.0 (19 bytes)\n",
		},
		{
			name:    "no versions",
			listing: listing.New(listing.DefaultMetadata(), "com.acme.empty"),
			expected: "Listing 'MyRepoName' by developer@vrchat.com\n" +
				"URL: https://urlParameter\n" +
				"Package 'com.acme.empty' (0 versions):\n" +
				"  (No versions found)\n",
		},
		{
			name:    "skipped releases",
			listing: skipped,
			expected: "Listing 'MyRepoName' by developer@vrchat.com\n" +
				"URL: https://urlParameter\n" +
				"Package 'com.acme.widget' (2 versions):\n" +
				"  v1.1.0 (19 bytes)\n" +
				"  v1.0.0 (19 bytes)\n" +
				"Skipped releases (1):\n" +
				"  v0.9.0: release 'v0.9.0' has no asset named 'package.json'\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			p := &ListingPrinter{}

			require.NoError(t, p.Item(&buf, tc.listing))
			require.Equal(t, tc.expected, buf.String())
		})
	}
}

func TestListingPrinter_Item_Nil(t *testing.T) {
	t.Parallel()

	p := &ListingPrinter{}
	require.Error(t, p.Item(io.Discard, nil))
	require.Zero(t, p.Count(nil))
}

func TestListingPrinter_Count(t *testing.T) {
	t.Parallel()

	p := &ListingPrinter{}
	require.Equal(t, 2, p.Count(testListing()))
	require.Equal(t, 0, p.Count(listing.New(listing.DefaultMetadata(), "com.acme.empty")))
}

func TestListingPrinter_HeaderFooter(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := &ListingPrinter{}

	// Without functions set nothing is written.
	p.Header(&buf, 2)
	p.Footer(&buf, 2)
	require.Empty(t, buf.String())

	p.SetHeader(func(w io.Writer, count int) {
		_, _ = fmt.Fprintf(w, "header %d\n", count)
	})
	p.SetFooter(func(w io.Writer, count int) {
		_, _ = fmt.Fprintf(w, "footer %d\n", count)
	})

	p.Header(&buf, 2)
	p.Footer(&buf, 2)
	require.Equal(t, "header 2\nfooter 2\n", buf.String())
}
