package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/user/contact-finder/internal/entity"
	"github.com/user/contact-finder/internal/extractor"
	"github.com/user/contact-finder/internal/repository"
	"github.com/user/contact-finder/pkg/metrics"
	"github.com/user/contact-finder/pkg/utils"
)

// ErrSessionActive is returned when a start is requested for a session that
// already has a live run.
var ErrSessionActive = errors.New("session already running")

// Scheduler owns the worker pool that drives a session's domain tasks to
// terminal states. One live run per session; the session entity is mutated
// only under the run's lock and persisted after every transition.
type Scheduler struct {
	store     repository.SessionStore
	archive   repository.ResultArchive
	browser   repository.BrowserPool
	fetcher   *SiteFetcher
	discovery *DiscoveryAgent
	sink      repository.EventSink
	gate      *AntiBotGate

	concurrency      int
	domainBudget     time.Duration
	dispatchInterval time.Duration
	searchHeadless   bool

	mu     sync.Mutex
	active map[string]*run
}

// run is the control block for one live session run.
type run struct {
	cancel context.CancelFunc
	done   chan struct{}

	mu      sync.Mutex
	session *entity.Session
	pausing bool
}

// NewScheduler wires the scheduler with its collaborators and tuning knobs.
func NewScheduler(
	store repository.SessionStore,
	archive repository.ResultArchive,
	browser repository.BrowserPool,
	fetcher *SiteFetcher,
	discovery *DiscoveryAgent,
	sink repository.EventSink,
	gate *AntiBotGate,
	concurrency int,
	domainBudget, dispatchInterval time.Duration,
	searchHeadless bool,
) *Scheduler {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Scheduler{
		store:            store,
		archive:          archive,
		browser:          browser,
		fetcher:          fetcher,
		discovery:        discovery,
		sink:             sink,
		gate:             gate,
		concurrency:      concurrency,
		domainBudget:     domainBudget,
		dispatchInterval: dispatchInterval,
		searchHeadless:   searchHeadless,
		active:           map[string]*run{},
	}
}

// Start launches the worker pool for a session. Tasks left in the running
// state by an interrupted run are reset to pending first, so starting a
// loaded session resumes exactly where it stopped. Returns ErrSessionActive
// when a run is already live for the session.
func (s *Scheduler) Start(ctx context.Context, session *entity.Session) error {
	s.mu.Lock()
	if _, ok := s.active[session.ID]; ok {
		s.mu.Unlock()
		return ErrSessionActive
	}

	for i := range session.Tasks {
		if session.Tasks[i].Status == entity.TaskRunning {
			session.Tasks[i].Status = entity.TaskPending
		}
	}
	session.Paused = false

	runCtx, cancel := context.WithCancel(context.Background())
	r := &run{cancel: cancel, done: make(chan struct{}), session: session}
	s.active[session.ID] = r
	s.mu.Unlock()

	if err := s.store.Save(ctx, session); err != nil {
		s.dropRun(session.ID)
		cancel()
		return fmt.Errorf("persisting session before start: %w", err)
	}

	go s.runPool(runCtx, r)
	return nil
}

// Pause asks a live run to stop claiming new tasks. In-flight tasks finish
// normally; the pool drains and the session is persisted paused. Returns
// false when no run is live.
func (s *Scheduler) Pause(sessionID string) bool {
	s.mu.Lock()
	r, ok := s.active[sessionID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	r.mu.Lock()
	r.pausing = true
	r.mu.Unlock()
	return true
}

// Cancel aborts a live run immediately. In-flight tasks are interrupted and
// reset to pending so a later start can retry them. Returns false when no run
// is live.
func (s *Scheduler) Cancel(ctx context.Context, sessionID string) bool {
	s.mu.Lock()
	r, ok := s.active[sessionID]
	s.mu.Unlock()
	if !ok {
		return false
	}
	r.cancel()
	<-r.done

	r.mu.Lock()
	for i := range r.session.Tasks {
		if r.session.Tasks[i].Status == entity.TaskRunning {
			r.session.Tasks[i].Status = entity.TaskPending
		}
	}
	r.mu.Unlock()

	if err := s.store.Save(ctx, r.session); err != nil {
		slog.Error("persisting session after cancel", "session_id", sessionID, "error", err)
	}
	return true
}

// Active reports whether the session has a live run.
func (s *Scheduler) Active(sessionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.active[sessionID]
	return ok
}

// ResolveAntiBot releases workers blocked on a manual challenge for the
// session. Returns false when none were waiting.
func (s *Scheduler) ResolveAntiBot(sessionID string) bool {
	return s.gate.Resolve(sessionID)
}

// AwaitingResolution reports whether any worker in the session is blocked on
// a manual anti-bot challenge.
func (s *Scheduler) AwaitingResolution(sessionID string) bool {
	return s.gate.Waiting(sessionID)
}

func (s *Scheduler) dropRun(sessionID string) {
	s.mu.Lock()
	delete(s.active, sessionID)
	s.mu.Unlock()
}

// runPool spawns the workers, waits for them to drain, and emits the terminal
// session event.
func (s *Scheduler) runPool(ctx context.Context, r *run) {
	defer close(r.done)
	defer s.dropRun(r.session.ID)

	s.publish(entity.ProgressEvent{
		SessionID: r.session.ID,
		Type:      entity.EventStarted,
		Timestamp: time.Now().UTC(),
		Total:     len(r.session.Tasks),
		Completed: r.session.CompletedCount(),
	})

	// One shared limiter spaces task dispatches across all workers.
	limiter := rate.NewLimiter(rate.Every(s.dispatchInterval), 1)

	var wg sync.WaitGroup
	for i := 0; i < s.concurrency; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			s.workerLoop(ctx, r, limiter, workerID)
		}(i)
	}
	wg.Wait()

	r.mu.Lock()
	done := r.session.Done()
	paused := r.pausing && !done
	if paused {
		r.session.Paused = true
	}
	r.mu.Unlock()

	if err := s.store.Save(context.Background(), r.session); err != nil {
		slog.Error("persisting session at run end", "session_id", r.session.ID, "error", err)
	}

	switch {
	case done:
		s.publish(entity.ProgressEvent{
			SessionID: r.session.ID,
			Type:      entity.EventCompleted,
			Timestamp: time.Now().UTC(),
			Total:     len(r.session.Tasks),
			Completed: r.session.CompletedCount(),
			Succeeded: r.session.SuccessCount(),
			Failed:    r.session.CompletedCount() - r.session.SuccessCount(),
		})
	case paused:
		s.publish(entity.ProgressEvent{
			SessionID: r.session.ID,
			Type:      entity.EventPaused,
			Timestamp: time.Now().UTC(),
			Total:     len(r.session.Tasks),
			Completed: r.session.CompletedCount(),
		})
	}
}

// workerLoop claims and processes pending tasks until none remain, the run is
// pausing, or the context is cancelled.
func (s *Scheduler) workerLoop(ctx context.Context, r *run, limiter *rate.Limiter, workerID int) {
	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		idx, ok := s.claimNext(ctx, r)
		if !ok {
			return
		}

		r.mu.Lock()
		domain := r.session.Tasks[idx].Domain
		r.mu.Unlock()

		slog.Info("processing domain", "session_id", r.session.ID, "worker", workerID, "domain", domain)
		metrics.TasksInFlight.Inc()
		started := time.Now()

		result := s.processDomain(ctx, r.session.ID, domain, &r.session.Tasks[idx], r)

		metrics.TasksInFlight.Dec()
		metrics.DomainDuration.Observe(time.Since(started).Seconds())

		if ctx.Err() != nil && result == nil {
			// Interrupted mid-task; Cancel resets the claim to pending.
			return
		}
		s.finishTask(r, idx, result)
	}
}

// claimNext atomically claims the first pending task and persists the running
// status before the worker touches the network. Returns false when nothing is
// claimable.
func (s *Scheduler) claimNext(ctx context.Context, r *run) (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if ctx.Err() != nil || r.pausing {
		return 0, false
	}
	for i := range r.session.Tasks {
		if r.session.Tasks[i].Status == entity.TaskPending {
			r.session.Tasks[i].Status = entity.TaskRunning
			if err := s.store.Save(ctx, r.session); err != nil {
				slog.Error("persisting claim", "session_id", r.session.ID, "error", err)
			}
			return i, true
		}
	}
	return 0, false
}

// finishTask records the terminal outcome, persists, archives, and emits the
// domain_result event exactly once.
func (s *Scheduler) finishTask(r *run, idx int, result *entity.DomainResult) {
	r.mu.Lock()
	task := &r.session.Tasks[idx]
	task.Status = result.Status
	task.Error = result.Error
	r.session.Results[result.Domain] = result
	completed := r.session.CompletedCount()
	total := len(r.session.Tasks)
	succeeded := r.session.SuccessCount()
	if err := s.store.Save(context.Background(), r.session); err != nil {
		slog.Error("persisting task result", "session_id", r.session.ID, "domain", result.Domain, "error", err)
	}
	// Published under the lock: events from concurrently finishing workers
	// must carry completed counts in emission order, so consumers never see
	// the counter go backwards. The sink contract is non-blocking.
	s.publish(entity.ProgressEvent{
		SessionID: r.session.ID,
		Type:      entity.EventDomainResult,
		Timestamp: time.Now().UTC(),
		Domain:    result.Domain,
		Result:    result,
		Completed: completed,
		Total:     total,
		Succeeded: succeeded,
		Failed:    completed - succeeded,
	})
	r.mu.Unlock()

	if err := s.archive.Save(context.Background(), r.session.ID, result); err != nil {
		slog.Error("archiving result", "session_id", r.session.ID, "domain", result.Domain, "error", err)
	}

	errType := ""
	if result.Status != entity.TaskSuccess {
		errType = classifyError(result.Error)
	}
	metrics.DomainsTotal.WithLabelValues(string(result.Status), errType).Inc()
}

// processDomain runs the full per-domain pipeline inside the domain budget:
// homepage fetch with one retry on transient failure, contact extraction,
// then executive profile discovery. Returns nil only when interrupted by run
// cancellation before reaching a terminal outcome.
func (s *Scheduler) processDomain(ctx context.Context, sessionID, domain string, task *entity.DomainTask, r *run) *entity.DomainResult {
	budgetCtx, cancel := context.WithTimeout(ctx, s.domainBudget)
	defer cancel()

	result := &entity.DomainResult{Domain: domain}

	html, base, fetchErr := s.fetchWithRetry(budgetCtx, r, task, domain)
	if fetchErr != nil {
		if ctx.Err() != nil {
			return nil
		}
		result.Status = entity.TaskFailed
		result.Error = fetchErr.Error()
		result.CompletedAt = time.Now().UTC()
		return result
	}

	result.Contact = extractor.Extract(html, base)

	companyName := utils.CompanyNameFromDomain(domain)
	searchSess, err := s.browser.NewSession(budgetCtx, s.searchHeadless)
	if err != nil {
		slog.Error("opening search session", "session_id", sessionID, "domain", domain, "error", err)
		result.Error = "profile discovery unavailable: " + err.Error()
	} else {
		result.Profiles = s.discovery.Discover(budgetCtx, searchSess, sessionID, companyName)
		searchSess.Close()
	}
	if ctx.Err() != nil {
		return nil
	}

	result.Status = entity.TaskSuccess
	result.CompletedAt = time.Now().UTC()
	return result
}

// fetchWithRetry opens a headless session and loads the homepage, retrying
// exactly once on timeout or unreachable classification. Each attempt counts
// toward the task's attempt total. The dispatch interval doubles as the
// backoff before the second attempt.
func (s *Scheduler) fetchWithRetry(ctx context.Context, r *run, task *entity.DomainTask, domain string) (string, *url.URL, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(s.dispatchInterval):
			case <-ctx.Done():
				return "", nil, ctx.Err()
			}
		}
		if ctx.Err() != nil {
			return "", nil, ctx.Err()
		}
		r.mu.Lock()
		task.AttemptCount++
		r.mu.Unlock()

		sess, err := s.browser.NewSession(ctx, true)
		if err != nil {
			lastErr = fmt.Errorf("opening fetch session: %w", err)
			continue
		}
		html, baseURL, err := s.fetcher.Fetch(ctx, sess, domain)
		sess.Close()
		if err == nil {
			return html, baseURL, nil
		}
		lastErr = err
		if attempt > 0 || (!errors.Is(err, repository.ErrFetchTimeout) && !errors.Is(err, repository.ErrFetchUnreachable)) {
			break
		}
		slog.Warn("fetch attempt failed", "domain", domain, "attempt", attempt+1, "error", err)
		s.publish(entity.ProgressEvent{
			SessionID: r.session.ID,
			Type:      entity.EventLog,
			Timestamp: time.Now().UTC(),
			Domain:    domain,
			Message:   fmt.Sprintf("fetch attempt %d failed: %v", attempt+1, err),
		})
	}
	return "", nil, lastErr
}

func (s *Scheduler) publish(event entity.ProgressEvent) {
	if s.sink != nil {
		s.sink.Publish(event)
	}
}

// classifyError maps an error message onto the coarse taxonomy used for the
// failure metric.
func classifyError(msg string) string {
	switch {
	case msg == "":
		return "unknown"
	case strings.Contains(msg, repository.ErrFetchTimeout.Error()):
		return "timeout"
	case strings.Contains(msg, repository.ErrFetchUnreachable.Error()):
		return "unreachable"
	case strings.Contains(msg, "anti-bot"):
		return "antibot"
	default:
		return "internal"
	}
}
