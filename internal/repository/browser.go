package repository

import (
	"context"
	"errors"
)

var (
	// ErrFetchTimeout indicates the page did not load within the per-domain
	// budget.
	ErrFetchTimeout = errors.New("page load timed out")
	// ErrFetchUnreachable indicates DNS, TLS, connection, or HTTP-level
	// failure reaching the target.
	ErrFetchUnreachable = errors.New("target unreachable")
)

// PageSession is the navigable-browser capability the site fetcher and the
// profile discovery agent depend on. Implementations must not be shared
// between goroutines; each worker drives its own session.
type PageSession interface {
	// Navigate loads the URL and waits for the document to be ready.
	Navigate(ctx context.Context, url string) error
	// HTML returns the current document's outer HTML.
	HTML(ctx context.Context) (string, error)
	// Title returns the current document title.
	Title(ctx context.Context) (string, error)
	// StatusCode returns the HTTP status of the last main-document response,
	// or 0 when none has been observed yet.
	StatusCode() int
	// Close releases the underlying browser resources.
	Close()
}

// BrowserPool hands out isolated page sessions. NewSession must never return
// a session concurrently in use by another caller.
type BrowserPool interface {
	// NewSession opens a fresh, isolated browser session. headless=false
	// surfaces a visible browser window for manual anti-bot resolution.
	NewSession(ctx context.Context, headless bool) (PageSession, error)
	// Close tears down all pooled browser resources.
	Close()
}
