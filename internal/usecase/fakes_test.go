package usecase

import (
	"context"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/user/contact-finder/internal/entity"
	"github.com/user/contact-finder/internal/repository"
	"github.com/user/contact-finder/pkg/metrics"
)

func TestMain(m *testing.M) {
	metrics.Init()
	os.Exit(m.Run())
}

type fakePage struct {
	html   string
	title  string
	status int
}

// fakeSession serves canned pages by longest URL prefix match. HTML and Title
// resolve against the last navigated URL at call time, so swapping a page in
// the pool simulates live DOM changes (an operator solving a challenge).
type fakeSession struct {
	pool    *fakeBrowserPool
	lastURL string
	mu      sync.Mutex
	closed  bool
}

func (s *fakeSession) Navigate(ctx context.Context, url string) error {
	s.pool.recordNavigation(url)

	if hold := s.pool.holdNav; hold != nil {
		select {
		case <-hold:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := s.pool.errFor(url); err != nil {
		return err
	}
	s.mu.Lock()
	s.lastURL = url
	s.mu.Unlock()
	return nil
}

func (s *fakeSession) HTML(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.pageFor(s.lastURL).html, nil
}

func (s *fakeSession) Title(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pool.pageFor(s.lastURL).title, nil
}

func (s *fakeSession) StatusCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if status := s.pool.pageFor(s.lastURL).status; status != 0 {
		return status
	}
	return http.StatusOK
}

func (s *fakeSession) Close() {
	s.mu.Lock()
	closed := s.closed
	s.closed = true
	s.mu.Unlock()
	if !closed {
		s.pool.sessionClosed()
	}
}

// fakeBrowserPool hands out fakeSessions over a shared page table and tracks
// how many sessions are open at once.
type fakeBrowserPool struct {
	mu     sync.Mutex
	pages  map[string]fakePage
	navErr map[string]error

	holdNav chan struct{}

	navigations []string
	active      int32
	maxActive   int32
}

func newFakeBrowserPool() *fakeBrowserPool {
	return &fakeBrowserPool{
		pages:  map[string]fakePage{},
		navErr: map[string]error{},
	}
}

func (p *fakeBrowserPool) NewSession(ctx context.Context, headless bool) (repository.PageSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	active := atomic.AddInt32(&p.active, 1)
	for {
		max := atomic.LoadInt32(&p.maxActive)
		if active <= max || atomic.CompareAndSwapInt32(&p.maxActive, max, active) {
			break
		}
	}
	return &fakeSession{pool: p}, nil
}

func (p *fakeBrowserPool) Close() {}

func (p *fakeBrowserPool) sessionClosed() {
	atomic.AddInt32(&p.active, -1)
}

func (p *fakeBrowserPool) setPage(prefix string, page fakePage) {
	p.mu.Lock()
	p.pages[prefix] = page
	p.mu.Unlock()
}

func (p *fakeBrowserPool) setNavError(prefix string, err error) {
	p.mu.Lock()
	p.navErr[prefix] = err
	p.mu.Unlock()
}

func (p *fakeBrowserPool) recordNavigation(url string) {
	p.mu.Lock()
	p.navigations = append(p.navigations, url)
	p.mu.Unlock()
}

func (p *fakeBrowserPool) navigationCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.navigations)
}

func (p *fakeBrowserPool) errFor(url string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	var best string
	var bestErr error
	for prefix, err := range p.navErr {
		if strings.HasPrefix(url, prefix) && len(prefix) > len(best) {
			best, bestErr = prefix, err
		}
	}
	return bestErr
}

func (p *fakeBrowserPool) pageFor(url string) fakePage {
	p.mu.Lock()
	defer p.mu.Unlock()
	var best string
	var page fakePage
	for prefix, pg := range p.pages {
		if strings.HasPrefix(url, prefix) && len(prefix) >= len(best) {
			best, page = prefix, pg
		}
	}
	return page
}

// collectSink records events and signals when a terminal session event
// arrives.
type collectSink struct {
	mu       sync.Mutex
	events   []entity.ProgressEvent
	terminal chan struct{}
	once     sync.Once
}

func newCollectSink() *collectSink {
	return &collectSink{terminal: make(chan struct{})}
}

func (c *collectSink) Publish(event entity.ProgressEvent) {
	c.mu.Lock()
	c.events = append(c.events, event)
	c.mu.Unlock()
	if event.Type == entity.EventCompleted || event.Type == entity.EventPaused {
		c.once.Do(func() { close(c.terminal) })
	}
}

func (c *collectSink) byType(et entity.EventType) []entity.ProgressEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []entity.ProgressEvent
	for _, e := range c.events {
		if e.Type == et {
			out = append(out, e)
		}
	}
	return out
}

// memoryArchive is an in-process ResultArchive.
type memoryArchive struct {
	mu      sync.Mutex
	results map[string]map[string]*entity.DomainResult
	order   map[string][]string
}

func newMemoryArchive() *memoryArchive {
	return &memoryArchive{
		results: map[string]map[string]*entity.DomainResult{},
		order:   map[string][]string{},
	}
}

func (a *memoryArchive) Save(_ context.Context, sessionID string, result *entity.DomainResult) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.results[sessionID] == nil {
		a.results[sessionID] = map[string]*entity.DomainResult{}
	}
	if _, exists := a.results[sessionID][result.Domain]; !exists {
		a.order[sessionID] = append(a.order[sessionID], result.Domain)
	}
	a.results[sessionID][result.Domain] = result
	return nil
}

func (a *memoryArchive) FindBySession(_ context.Context, sessionID string) ([]*entity.DomainResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []*entity.DomainResult
	for _, domain := range a.order[sessionID] {
		out = append(out, a.results[sessionID][domain])
	}
	return out, nil
}

// jitterArchive delays each save by a random few milliseconds, staggering
// concurrently finishing workers the way real database writes do.
type jitterArchive struct {
	*memoryArchive
	maxDelay time.Duration
}

func newJitterArchive(maxDelay time.Duration) *jitterArchive {
	return &jitterArchive{memoryArchive: newMemoryArchive(), maxDelay: maxDelay}
}

func (a *jitterArchive) Save(ctx context.Context, sessionID string, result *entity.DomainResult) error {
	time.Sleep(time.Duration(rand.Int63n(int64(a.maxDelay))))
	return a.memoryArchive.Save(ctx, sessionID, result)
}
