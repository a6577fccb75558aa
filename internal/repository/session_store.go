package repository

import (
	"context"
	"errors"

	"github.com/user/contact-finder/internal/entity"
)

var (
	// ErrSessionNotFound is returned when no record exists for the session ID.
	ErrSessionNotFound = errors.New("session not found")
	// ErrSessionCorrupt is returned when a persisted session fails to
	// deserialize. Fatal for that session only, never for the process.
	ErrSessionCorrupt = errors.New("persisted session is corrupt")
)

// SessionStore defines the interface for durable session persistence. Save is
// called after every task status transition so a crash loses at most the
// in-flight task.
type SessionStore interface {
	// Save writes the full session record, replacing any previous version.
	Save(ctx context.Context, session *entity.Session) error
	// Load retrieves a session by ID. Returns ErrSessionNotFound or
	// ErrSessionCorrupt as appropriate.
	Load(ctx context.Context, sessionID string) (*entity.Session, error)
	// Delete removes a session record.
	Delete(ctx context.Context, sessionID string) error
}
