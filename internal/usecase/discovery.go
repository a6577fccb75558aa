package usecase

import (
	"context"
	"errors"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/contact-finder/internal/entity"
	"github.com/user/contact-finder/internal/repository"
	"github.com/user/contact-finder/pkg/metrics"
)

// DiscoveryState tracks the per-platform search flow.
type DiscoveryState string

const (
	StateIdle         DiscoveryState = "idle"
	StateSearching    DiscoveryState = "searching"
	StateAntiBot      DiscoveryState = "antibot_detected"
	StateWaiting      DiscoveryState = "waiting_for_manual_resolution"
	StateProfileFound DiscoveryState = "profile_found"
	StateNoResults    DiscoveryState = "no_results"
	StateExtracting   DiscoveryState = "extracting"
	StateDone         DiscoveryState = "done"
	StateAborted      DiscoveryState = "aborted"
)

// Page signatures of search engine block/challenge pages. Matching any of
// them flips the flow into the anti-bot state.
var antiBotSignatures = []string{
	"recaptcha",
	"g-recaptcha",
	"unusual activity",
	"verify you",
	"detected unusual traffic",
	"not a robot",
}

var antiBotTitles = []string{
	"before you continue",
	"sorry...",
}

// Organic result container markers. Their presence confirms a real results
// page after a challenge has been cleared.
const resultMarkupSelector = `div.g, div[data-hveid] h3, div#search a[href]`

// DiscoveryAgent locates executive social profiles for a company by driving
// a browser session through a fixed per-platform search query sequence,
// handling anti-bot challenges via the gate.
type DiscoveryAgent struct {
	gate          *AntiBotGate
	delayMin      time.Duration
	delayMax      time.Duration
	antiBotWindow time.Duration
}

// NewDiscoveryAgent creates an agent. delayMin/delayMax bound the randomized
// human-like pauses between navigations; omitting them measurably increases
// block rate.
func NewDiscoveryAgent(gate *AntiBotGate, delayMin, delayMax, antiBotWindow time.Duration) *DiscoveryAgent {
	return &DiscoveryAgent{
		gate:          gate,
		delayMin:      delayMin,
		delayMax:      delayMax,
		antiBotWindow: antiBotWindow,
	}
}

// Discover runs one search flow per platform in fixed priority order and
// returns the discovered profiles. A blocked or failed platform yields a
// record with a populated Error; it never aborts the remaining platforms.
func (a *DiscoveryAgent) Discover(ctx context.Context, sess repository.PageSession, sessionID, companyName string) []entity.ExecutiveProfile {
	var profiles []entity.ExecutiveProfile

	for _, platform := range entity.DiscoveryPlatforms {
		if ctx.Err() != nil {
			break
		}
		profile := a.discoverPlatform(ctx, sess, sessionID, companyName, platform)
		if profile != nil {
			profiles = append(profiles, *profile)
		}
	}
	return profiles
}

// discoverPlatform runs the state machine for one platform. A nil return
// means the search completed with no results, which is not an error.
func (a *DiscoveryAgent) discoverPlatform(ctx context.Context, sess repository.PageSession, sessionID, companyName string, platform entity.Platform) *entity.ExecutiveProfile {
	step := func(state DiscoveryState) {
		slog.Debug("discovery state", "session_id", sessionID, "platform", platform, "state", state)
	}

	step(StateSearching)
	searchURL := buildSearchURL(platform, companyName)

	a.humanDelay(ctx)
	if err := sess.Navigate(ctx, searchURL); err != nil {
		return &entity.ExecutiveProfile{
			Platform: platform,
			Error:    "search navigation failed: " + err.Error(),
		}
	}
	a.humanDelay(ctx)

	html, title, err := readPage(ctx, sess)
	if err != nil {
		return &entity.ExecutiveProfile{Platform: platform, Error: "search page read failed: " + err.Error()}
	}

	if isAntiBotPage(html, title) {
		step(StateAntiBot)
		metrics.AntiBotDetections.WithLabelValues(string(platform), "detected").Inc()
		slog.Warn("anti-bot challenge detected, waiting for manual resolution",
			"session_id", sessionID, "platform", platform, "window", a.antiBotWindow)

		step(StateWaiting)
		if waitErr := a.gate.Wait(ctx, sessionID, a.antiBotWindow); waitErr != nil {
			step(StateAborted)
			metrics.AntiBotDetections.WithLabelValues(string(platform), "aborted").Inc()
			return &entity.ExecutiveProfile{
				Platform: platform,
				Error:    "anti-bot challenge unresolved: " + waitErr.Error(),
			}
		}
		metrics.AntiBotDetections.WithLabelValues(string(platform), "resolved").Inc()

		// The operator solved the challenge in the visible browser; the page
		// now shows real results.
		step(StateSearching)
		html, title, err = readPage(ctx, sess)
		if err != nil {
			return &entity.ExecutiveProfile{Platform: platform, Error: "search page read failed: " + err.Error()}
		}
		if isAntiBotPage(html, title) {
			step(StateAborted)
			return &entity.ExecutiveProfile{Platform: platform, Error: "anti-bot challenge still present after resolution"}
		}
	}

	candidate := firstProfileCandidate(html, platform)
	if candidate == "" {
		step(StateNoResults)
		return nil
	}
	step(StateProfileFound)

	profile := &entity.ExecutiveProfile{Platform: platform, ProfileURL: candidate}
	metrics.ProfilesDiscovered.WithLabelValues(string(platform)).Inc()

	step(StateExtracting)
	a.humanDelay(ctx)
	name, headline := a.extractMetadata(ctx, sess, platform, candidate)
	profile.DisplayName = name
	profile.Headline = headline

	step(StateDone)
	return profile
}

// extractMetadata navigates to the profile page and pulls display name and
// headline where visible without authentication. Failure leaves the fields
// empty; the URL itself stays valid.
func (a *DiscoveryAgent) extractMetadata(ctx context.Context, sess repository.PageSession, platform entity.Platform, profileURL string) (name, headline string) {
	if err := sess.Navigate(ctx, profileURL); err != nil {
		slog.Debug("profile navigation failed", "url", profileURL, "error", err)
		return "", ""
	}
	html, title, err := readPage(ctx, sess)
	if err != nil {
		return "", ""
	}
	return parseProfileMetadata(platform, html, title)
}

func (a *DiscoveryAgent) humanDelay(ctx context.Context) {
	if a.delayMax <= a.delayMin {
		return
	}
	d := a.delayMin + time.Duration(rand.Int63n(int64(a.delayMax-a.delayMin)))
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
}

func readPage(ctx context.Context, sess repository.PageSession) (html, title string, err error) {
	html, err = sess.HTML(ctx)
	if err != nil {
		return "", "", err
	}
	title, err = sess.Title(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		// Title is best-effort; the HTML is what matters.
		title = ""
	}
	return html, title, nil
}

// isAntiBotPage matches known block/captcha signatures: challenge widgets,
// block-page phrases, and the block-page titles.
func isAntiBotPage(html, title string) bool {
	lowTitle := strings.ToLower(title)
	for _, t := range antiBotTitles {
		if strings.HasPrefix(lowTitle, t) {
			return true
		}
	}
	low := strings.ToLower(html)
	for _, sig := range antiBotSignatures {
		if strings.Contains(low, sig) {
			return true
		}
	}
	return false
}

// firstProfileCandidate parses the results page and returns the first anchor
// that survives redirect unwrapping, platform path matching, and the
// exclusion list.
func firstProfileCandidate(html string, platform entity.Platform) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return ""
	}

	candidate := ""
	doc.Find(resultMarkupSelector).Find("a[href]").AddSelection(doc.Find("a[href]")).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		href = unwrapRedirect(strings.TrimSpace(href))
		if validProfileURL(platform, href) {
			candidate = href
			return false
		}
		return true
	})
	return candidate
}

// parseProfileMetadata applies per-platform selectors, falling back to the
// "Name | Headline | Site" document title convention.
func parseProfileMetadata(platform entity.Platform, html, title string) (name, headline string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err == nil {
		switch platform {
		case entity.PlatformTwitter:
			name = firstText(doc, `[data-testid="UserName"] span`)
			headline = firstText(doc, `[data-testid="UserDescription"]`)
		case entity.PlatformLinkedIn:
			name = firstText(doc, "h1")
			headline = firstText(doc, "div.text-body-medium")
		case entity.PlatformInstagram:
			name = firstText(doc, "header h2, header h1")
			headline = firstText(doc, "header section span")
		case entity.PlatformTikTok:
			name = firstText(doc, `[data-e2e="user-title"]`)
			headline = firstText(doc, `[data-e2e="user-bio"]`)
		}
	}

	if name == "" && title != "" {
		parts := strings.SplitN(title, "|", 3)
		if len(parts) >= 2 {
			name = strings.TrimSpace(parts[0])
			if headline == "" {
				headline = strings.TrimSpace(parts[1])
			}
		}
	}
	return clampText(name, 100), clampText(headline, 200)
}

func firstText(doc *goquery.Document, selector string) string {
	return strings.TrimSpace(doc.Find(selector).First().Text())
}

func clampText(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}
