package usecase

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrResolutionTimeout is returned when no operator resolves an anti-bot
// challenge within the wait window.
var ErrResolutionTimeout = errors.New("anti-bot resolution window expired")

// AntiBotGate coordinates the manual captcha-resolution handshake. A worker
// that detects a challenge blocks on Wait; an external control call to
// Resolve releases every waiter for that session.
type AntiBotGate struct {
	mu      sync.Mutex
	waiters map[string][]chan struct{}
}

// NewAntiBotGate creates an empty gate.
func NewAntiBotGate() *AntiBotGate {
	return &AntiBotGate{waiters: map[string][]chan struct{}{}}
}

// Wait blocks until Resolve is called for the session, the window expires, or
// the context is cancelled. This is the one deliberately long blocking point
// in the pipeline; the window bounds it.
func (g *AntiBotGate) Wait(ctx context.Context, sessionID string, window time.Duration) error {
	ch := make(chan struct{})
	g.mu.Lock()
	g.waiters[sessionID] = append(g.waiters[sessionID], ch)
	g.mu.Unlock()

	timer := time.NewTimer(window)
	defer timer.Stop()
	defer g.remove(sessionID, ch)

	select {
	case <-ch:
		return nil
	case <-timer.C:
		return ErrResolutionTimeout
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Resolve signals every waiter for the session that the operator has cleared
// the challenge. Returns false when nothing was waiting.
func (g *AntiBotGate) Resolve(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	chans := g.waiters[sessionID]
	if len(chans) == 0 {
		return false
	}
	for _, ch := range chans {
		close(ch)
	}
	delete(g.waiters, sessionID)
	return true
}

// Waiting reports whether any worker in the session is blocked on manual
// resolution.
func (g *AntiBotGate) Waiting(sessionID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.waiters[sessionID]) > 0
}

func (g *AntiBotGate) remove(sessionID string, ch chan struct{}) {
	g.mu.Lock()
	defer g.mu.Unlock()
	chans := g.waiters[sessionID]
	for i, c := range chans {
		if c == ch {
			g.waiters[sessionID] = append(chans[:i], chans[i+1:]...)
			break
		}
	}
	if len(g.waiters[sessionID]) == 0 {
		delete(g.waiters, sessionID)
	}
}
