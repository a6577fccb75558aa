package chromedp_browser

import (
	"context"
	"math/rand"
	"sync"
	"sync/atomic"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/user/contact-finder/internal/repository"
)

// A small rotation of common desktop user agents. Each new session picks one
// at random, which lowers the block rate on search pages.
var userAgents = []string{
	`Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36`,
	`Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36`,
	`Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36`,
}

// BrowserPoolImpl provides a concrete implementation for the BrowserPool
// interface using chromedp. It keeps two allocator pools: headless for bulk
// homepage fetches, headful for search sessions that an operator may need to
// interact with.
type BrowserPoolImpl struct {
	headlessPool *sync.Pool
	headfulPool  *sync.Pool

	mu         sync.Mutex
	allocStops []context.CancelFunc
	closed     bool
}

// NewBrowserPool creates a pool pre-warmed with maxConcurrency headless
// allocator contexts.
func NewBrowserPool(maxConcurrency int) (*BrowserPoolImpl, error) {
	p := &BrowserPoolImpl{}
	p.headlessPool = p.newAllocatorPool(true)
	p.headfulPool = p.newAllocatorPool(false)

	for i := 0; i < maxConcurrency; i++ {
		allocCtx := p.headlessPool.Get().(context.Context)
		p.headlessPool.Put(allocCtx)
	}
	return p, nil
}

func (p *BrowserPoolImpl) newAllocatorPool(headless bool) *sync.Pool {
	return &sync.Pool{
		New: func() interface{} {
			opts := append(chromedp.DefaultExecAllocatorOptions[:],
				chromedp.Flag("headless", headless),
				chromedp.Flag("disable-gpu", true),
				chromedp.Flag("no-sandbox", true),
				chromedp.Flag("disable-dev-shm-usage", true),
				chromedp.Flag("disable-blink-features", "AutomationControlled"),
				chromedp.UserAgent(userAgents[rand.Intn(len(userAgents))]),
			)
			allocCtx, stop := chromedp.NewExecAllocator(context.Background(), opts...)
			p.mu.Lock()
			p.allocStops = append(p.allocStops, stop)
			p.mu.Unlock()
			return allocCtx
		},
	}
}

// NewSession opens a fresh browser context from the matching allocator pool.
// The session owns its browser tab until Close.
func (p *BrowserPoolImpl) NewSession(ctx context.Context, headless bool) (repository.PageSession, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, context.Canceled
	}
	p.mu.Unlock()

	pool := p.headlessPool
	if !headless {
		pool = p.headfulPool
	}
	allocCtx := pool.Get().(context.Context)

	taskCtx, cancel := chromedp.NewContext(allocCtx)

	sess := &pageSession{
		ctx:    taskCtx,
		cancel: cancel,
		release: func() {
			pool.Put(allocCtx)
		},
	}

	// Track the main-document response status so fetchers can tell an error
	// page apart from a real homepage.
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Type == network.ResourceTypeDocument {
			atomic.StoreInt64(&sess.status, resp.Response.Status)
		}
	})

	// Plain automation defaults ship without an Accept-Language header, which
	// some block heuristics key on.
	if err := chromedp.Run(taskCtx,
		network.Enable(),
		network.SetExtraHTTPHeaders(network.Headers{"Accept-Language": "en-US,en;q=0.9"}),
	); err != nil {
		cancel()
		pool.Put(allocCtx)
		return nil, err
	}

	return sess, nil
}

// Close stops every allocator the pool has created, terminating their browser
// processes.
func (p *BrowserPoolImpl) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	for _, stop := range p.allocStops {
		stop()
	}
	p.allocStops = nil
}

// pageSession is one isolated browser tab.
type pageSession struct {
	ctx     context.Context
	cancel  context.CancelFunc
	release func()
	once    sync.Once
	status  int64
}

// Navigate loads the URL and waits for the document body to be ready.
func (s *pageSession) Navigate(ctx context.Context, url string) error {
	runCtx, cancel := bindContext(s.ctx, ctx)
	defer cancel()
	return chromedp.Run(runCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady("body"),
	)
}

// HTML returns the current document's outer HTML.
func (s *pageSession) HTML(ctx context.Context) (string, error) {
	runCtx, cancel := bindContext(s.ctx, ctx)
	defer cancel()
	var html string
	err := chromedp.Run(runCtx, chromedp.OuterHTML("html", &html))
	return html, err
}

// Title returns the current document title.
func (s *pageSession) Title(ctx context.Context) (string, error) {
	runCtx, cancel := bindContext(s.ctx, ctx)
	defer cancel()
	var title string
	err := chromedp.Run(runCtx, chromedp.Title(&title))
	return title, err
}

// StatusCode returns the HTTP status of the last main-document response.
func (s *pageSession) StatusCode() int {
	return int(atomic.LoadInt64(&s.status))
}

// Close tears down the browser tab and returns the allocator to its pool.
func (s *pageSession) Close() {
	s.once.Do(func() {
		s.cancel()
		s.release()
	})
}

// bindContext derives a run context from the session's chromedp context that
// is also cancelled when the caller's context is. chromedp actions must run
// on the session context chain, but callers carry deadlines on their own.
func bindContext(sessionCtx, callerCtx context.Context) (context.Context, context.CancelFunc) {
	runCtx, cancel := context.WithCancel(sessionCtx)
	stop := context.AfterFunc(callerCtx, cancel)
	return runCtx, func() {
		stop()
		cancel()
	}
}
