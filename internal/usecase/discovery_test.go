package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/contact-finder/internal/entity"
)

const searchResultsHTML = `<html><body><div id="search">
  <div class="g"><a href="https://www.google.com/url?q=https://www.linkedin.com/in/jane-doe&amp;sa=U"><h3>Jane Doe - CEO - Acme</h3></a></div>
  <div class="g"><a href="https://rocketreach.co/jane-doe"><h3>Jane Doe contact info</h3></a></div>
</div></body></html>`

const linkedinProfileHTML = `<html><head><title>Jane Doe | CEO at Acme | LinkedIn</title></head>
<body><h1>Jane Doe</h1><div class="text-body-medium">CEO at Acme</div></body></html>`

const emptyResultsHTML = `<html><body><div id="search"></div></body></html>`

const captchaHTML = `<html><head><title>Before you continue</title></head>
<body><div class="g-recaptcha">Our systems have detected unusual traffic.</div></body></html>`

func newTestAgent(gate *AntiBotGate, window time.Duration) *DiscoveryAgent {
	return NewDiscoveryAgent(gate, 0, 0, window)
}

func TestDiscoverFindsProfileAndMetadata(t *testing.T) {
	pool := newFakeBrowserPool()
	pool.setPage("https://www.google.com/search", fakePage{html: searchResultsHTML})
	pool.setPage("https://www.linkedin.com/in/jane-doe", fakePage{
		html:  linkedinProfileHTML,
		title: "Jane Doe | CEO at Acme | LinkedIn",
	})
	sess, err := pool.NewSession(context.Background(), true)
	require.NoError(t, err)

	agent := newTestAgent(NewAntiBotGate(), time.Second)
	profiles := agent.Discover(context.Background(), sess, "sess-1", "Acme")

	// Only linkedin yields a valid candidate; the other platforms find
	// nothing and produce no record.
	require.Len(t, profiles, 1)
	p := profiles[0]
	assert.Equal(t, entity.PlatformLinkedIn, p.Platform)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", p.ProfileURL)
	assert.Equal(t, "Jane Doe", p.DisplayName)
	assert.Equal(t, "CEO at Acme", p.Headline)
	assert.Empty(t, p.Error)
}

func TestDiscoverNoResultsYieldsNoRecords(t *testing.T) {
	pool := newFakeBrowserPool()
	pool.setPage("https://www.google.com/search", fakePage{html: emptyResultsHTML})
	sess, err := pool.NewSession(context.Background(), true)
	require.NoError(t, err)

	agent := newTestAgent(NewAntiBotGate(), time.Second)
	profiles := agent.Discover(context.Background(), sess, "sess-1", "Acme")

	assert.Empty(t, profiles)
}

func TestDiscoverAntiBotUnresolvedRecordsErrors(t *testing.T) {
	pool := newFakeBrowserPool()
	pool.setPage("https://www.google.com/search", fakePage{html: captchaHTML, title: "Before you continue"})
	sess, err := pool.NewSession(context.Background(), true)
	require.NoError(t, err)

	agent := newTestAgent(NewAntiBotGate(), 10*time.Millisecond)
	profiles := agent.Discover(context.Background(), sess, "sess-1", "Acme")

	// Every platform hits the challenge, waits out the window, and records
	// the failure without a URL. Later platforms are still attempted.
	require.Len(t, profiles, len(entity.DiscoveryPlatforms))
	for i, platform := range entity.DiscoveryPlatforms {
		assert.Equal(t, platform, profiles[i].Platform)
		assert.Empty(t, profiles[i].ProfileURL)
		assert.Contains(t, profiles[i].Error, "anti-bot challenge unresolved")
	}
}

func TestDiscoverAntiBotResolvedContinues(t *testing.T) {
	pool := newFakeBrowserPool()
	pool.setPage("https://www.google.com/search", fakePage{html: captchaHTML, title: "Before you continue"})
	pool.setPage("https://www.linkedin.com/in/jane-doe", fakePage{html: linkedinProfileHTML})
	sess, err := pool.NewSession(context.Background(), true)
	require.NoError(t, err)

	gate := NewAntiBotGate()
	agent := newTestAgent(gate, 5*time.Second)

	done := make(chan []entity.ExecutiveProfile, 1)
	go func() {
		done <- agent.Discover(context.Background(), sess, "sess-1", "Acme")
	}()

	// Simulate the operator: wait until a worker blocks, fix the page, then
	// signal resolution.
	require.Eventually(t, func() bool {
		return gate.Waiting("sess-1")
	}, 2*time.Second, 5*time.Millisecond)
	pool.setPage("https://www.google.com/search", fakePage{html: searchResultsHTML})
	require.True(t, gate.Resolve("sess-1"))

	// After the first resolution the remaining platforms see clean result
	// pages, so only one challenge round happens.
	profiles := <-done
	require.Len(t, profiles, 1)
	assert.Equal(t, entity.PlatformLinkedIn, profiles[0].Platform)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", profiles[0].ProfileURL)
	assert.Empty(t, profiles[0].Error)
}

func TestDiscoverMetadataFailureKeepsURL(t *testing.T) {
	pool := newFakeBrowserPool()
	pool.setPage("https://www.google.com/search", fakePage{html: searchResultsHTML})
	pool.setNavError("https://www.linkedin.com/in/jane-doe", context.DeadlineExceeded)
	sess, err := pool.NewSession(context.Background(), true)
	require.NoError(t, err)

	agent := newTestAgent(NewAntiBotGate(), time.Second)
	profiles := agent.Discover(context.Background(), sess, "sess-1", "Acme")

	require.Len(t, profiles, 1)
	assert.Equal(t, "https://www.linkedin.com/in/jane-doe", profiles[0].ProfileURL)
	assert.Empty(t, profiles[0].DisplayName)
	assert.Empty(t, profiles[0].Headline)
	assert.Empty(t, profiles[0].Error)
}
