package export

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/user/contact-finder/internal/entity"
)

// Recorder consumes progress events and maintains one rolling CSV file per
// session, so an interrupted run still leaves a usable export on disk. It
// implements the event sink contract: Publish never blocks on I/O errors, it
// logs and drops.
type Recorder struct {
	dir string

	mu      sync.Mutex
	writers map[string]*sessionFile
}

type sessionFile struct {
	file    *os.File
	rolling *RollingWriter
}

// NewRecorder creates a recorder writing per-session CSV files under dir.
func NewRecorder(dir string) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating export directory: %w", err)
	}
	return &Recorder{dir: dir, writers: map[string]*sessionFile{}}, nil
}

// Publish appends a row for every terminal domain result and closes the
// session file when the run completes.
func (r *Recorder) Publish(event entity.ProgressEvent) {
	switch event.Type {
	case entity.EventDomainResult:
		if event.Result == nil {
			return
		}
		r.mu.Lock()
		sf, err := r.writerFor(event.SessionID)
		if err == nil {
			err = sf.rolling.Append(event.Result)
		}
		r.mu.Unlock()
		if err != nil {
			slog.Error("rolling export write failed",
				"session_id", event.SessionID, "domain", event.Domain, "error", err)
		}
	case entity.EventCompleted:
		r.closeSession(event.SessionID)
	}
}

// Close flushes and closes every open session file.
func (r *Recorder) Close() {
	r.mu.Lock()
	ids := make([]string, 0, len(r.writers))
	for id := range r.writers {
		ids = append(ids, id)
	}
	r.mu.Unlock()
	for _, id := range ids {
		r.closeSession(id)
	}
}

// Path returns the export file location for a session.
func (r *Recorder) Path(sessionID string) string {
	return filepath.Join(r.dir, "contacts-"+sessionID+".csv")
}

func (r *Recorder) writerFor(sessionID string) (*sessionFile, error) {
	if sf, ok := r.writers[sessionID]; ok {
		return sf, nil
	}
	f, err := os.OpenFile(r.Path(sessionID), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("opening export file: %w", err)
	}
	sf := &sessionFile{file: f, rolling: NewRollingWriter(f)}
	// A resumed session appends to its existing file; don't repeat the header.
	if info, err := f.Stat(); err == nil && info.Size() > 0 {
		sf.rolling.headerDone = true
	}
	r.writers[sessionID] = sf
	return sf, nil
}

func (r *Recorder) closeSession(sessionID string) {
	r.mu.Lock()
	sf, ok := r.writers[sessionID]
	delete(r.writers, sessionID)
	r.mu.Unlock()
	if ok {
		if err := sf.file.Close(); err != nil {
			slog.Error("closing export file", "session_id", sessionID, "error", err)
		}
	}
}
