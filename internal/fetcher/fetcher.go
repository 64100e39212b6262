// Package fetcher downloads bulletin documents over HTTP with per-host
// rate limiting.
package fetcher

import (
	"context"
)

// Fetcher defines the interface for retrieving remote documents.
type Fetcher interface {
	// Fetch downloads the URL and returns the response body. A non-200
	// status is a hard failure for that document.
	Fetch(ctx context.Context, url string) ([]byte, error)
}
