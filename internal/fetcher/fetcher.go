package fetcher

import (
	"context"
)

// Request describes one page fetch.
type Request struct {
	// URL is the page to fetch.
	URL string

	// WaitSelector, when set, is the CSS selector the browser fetcher
	// waits for before reading the document. A wait timeout is not an
	// error; the page is read as-is.
	WaitSelector string
}

// Fetcher retrieves the rendered HTML for a page.
type Fetcher interface {
	// Fetch returns the document text for the request URL.
	Fetch(ctx context.Context, req Request) (string, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the fetcher type identifier.
	Type() string
}
