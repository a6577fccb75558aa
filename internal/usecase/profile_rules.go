package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/user/contact-finder/internal/entity"
)

// searchQueries holds the fixed per-platform query templates. Site-restricted
// quoted-name queries keep result noise down and make the first organic
// result a strong candidate.
var searchQueries = map[entity.Platform]string{
	entity.PlatformLinkedIn:  `"%s" CEO site:linkedin.com/in/`,
	entity.PlatformTwitter:   `"%s" CEO site:x.com`,
	entity.PlatformInstagram: `"%s" CEO site:instagram.com`,
	entity.PlatformTikTok:    `"%s" CEO site:tiktok.com`,
}

// excludedHosts are never accepted as profile candidates: the search engine's
// own properties plus people-data aggregators and directories that shadow
// real profiles in results.
var excludedHosts = []string{
	"google.com",
	"google.co",
	"googleusercontent.com",
	"gstatic.com",
	"webcache.googleusercontent.com",
	"rocketreach.co",
	"zoominfo.com",
	"theorg.com",
	"crunchbase.com",
	"signalhire.com",
	"apollo.io",
	"contactout.com",
}

// Handles that are platform navigation, not profiles.
var (
	twitterReservedHandles   = map[string]bool{"highlights": true, "status": true, "search": true, "i": true, "home": true, "notifications": true, "messages": true, "explore": true}
	instagramReservedHandles = map[string]bool{"p": true, "reel": true, "reels": true, "tv": true, "explore": true, "stories": true, "accounts": true}
	tiktokReservedHandles    = map[string]bool{"discover": true, "video": true, "search": true, "trending": true, "following": true, "foryou": true}
)

// buildSearchURL renders the platform query for a company into a search
// engine URL.
func buildSearchURL(platform entity.Platform, companyName string) string {
	query := fmt.Sprintf(searchQueries[platform], companyName)
	return "https://www.google.com/search?q=" + url.QueryEscape(query)
}

// unwrapRedirect extracts the destination from a search engine redirect URL
// (/url?q=... or /url?url=...); other URLs pass through unchanged.
func unwrapRedirect(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	if !strings.Contains(u.Hostname(), "google.") || u.Path != "/url" {
		return raw
	}
	q := u.Query()
	for _, key := range []string{"url", "q"} {
		if dest := q.Get(key); dest != "" {
			return dest
		}
	}
	return raw
}

// validProfileURL reports whether a candidate URL path-matches the target
// platform's personal-profile pattern and is not an excluded host.
func validProfileURL(platform entity.Platform, raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	for _, excluded := range excludedHosts {
		if host == excluded || strings.HasSuffix(host, "."+excluded) {
			return false
		}
	}

	path := strings.TrimSuffix(strings.ToLower(u.Path), "/")

	switch platform {
	case entity.PlatformLinkedIn:
		if host != "linkedin.com" && !strings.HasSuffix(host, ".linkedin.com") {
			return false
		}
		// Personal profiles only: linkedin.com/in/<slug>, never /company/.
		slug, ok := strings.CutPrefix(path, "/in/")
		return ok && len(slug) >= 2 && !strings.Contains(slug, "/")
	case entity.PlatformTwitter:
		if host != "x.com" && host != "twitter.com" {
			return false
		}
		handle := singleSegmentHandle(path)
		return handle != "" && !twitterReservedHandles[handle]
	case entity.PlatformInstagram:
		if host != "instagram.com" && !strings.HasSuffix(host, ".instagram.com") {
			return false
		}
		handle := singleSegmentHandle(path)
		return handle != "" && !instagramReservedHandles[handle]
	case entity.PlatformTikTok:
		if host != "tiktok.com" && !strings.HasSuffix(host, ".tiktok.com") {
			return false
		}
		handle, ok := strings.CutPrefix(path, "/@")
		if !ok || len(handle) < 2 || strings.Contains(handle, "/") {
			return false
		}
		return !tiktokReservedHandles[handle]
	}
	return false
}

// singleSegmentHandle returns the handle when path is exactly "/<handle>"
// with at least two characters, and "" otherwise.
func singleSegmentHandle(path string) string {
	handle, ok := strings.CutPrefix(path, "/")
	if !ok || len(handle) < 2 || strings.Contains(handle, "/") {
		return ""
	}
	return handle
}
