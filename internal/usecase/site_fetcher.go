package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/user/contact-finder/internal/repository"
)

// SiteFetcher loads a company homepage through a browser session and returns
// its raw HTML. It never retries; retry policy belongs to the scheduler.
type SiteFetcher struct {
	timeout time.Duration
}

// NewSiteFetcher creates a fetcher with the given per-page-load budget.
func NewSiteFetcher(timeout time.Duration) *SiteFetcher {
	return &SiteFetcher{timeout: timeout}
}

// Fetch navigates to the domain, preferring https and falling back to http
// on connection failure, and returns the page HTML with the base URL actually
// used. Errors are classified as ErrFetchTimeout or ErrFetchUnreachable.
func (f *SiteFetcher) Fetch(ctx context.Context, sess repository.PageSession, domain string) (string, *url.URL, error) {
	var lastErr error
	for _, scheme := range []string{"https", "http"} {
		target := scheme + "://" + domain

		navCtx, cancel := context.WithTimeout(ctx, f.timeout)
		err := sess.Navigate(navCtx, target)
		if err == nil {
			// An error page loads fine in the browser; the document status
			// tells it apart from a real homepage.
			if status := sess.StatusCode(); status >= http.StatusBadRequest {
				cancel()
				lastErr = fmt.Errorf("http status %d", status)
				slog.Debug("error status, trying next scheme", "url", target, "status", status)
				continue
			}
			html, htmlErr := sess.HTML(navCtx)
			cancel()
			if htmlErr != nil {
				lastErr = htmlErr
				continue
			}
			base, _ := url.Parse(target)
			return html, base, nil
		}
		cancel()

		if timedOut(ctx, err) {
			// A slow host will be just as slow over http; report immediately.
			return "", nil, fmt.Errorf("%w: %s: %v", repository.ErrFetchTimeout, target, err)
		}
		slog.Debug("navigation failed, trying next scheme", "url", target, "error", err)
		lastErr = err
	}
	return "", nil, fmt.Errorf("%w: %s: %v", repository.ErrFetchUnreachable, domain, lastErr)
}

func timedOut(parent context.Context, err error) bool {
	if parent.Err() != nil {
		// The overall domain budget expired, not just this navigation.
		return errors.Is(parent.Err(), context.DeadlineExceeded)
	}
	return errors.Is(err, context.DeadlineExceeded)
}
