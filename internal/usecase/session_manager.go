package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/user/contact-finder/internal/entity"
	"github.com/user/contact-finder/internal/repository"
	"github.com/user/contact-finder/pkg/utils"
)

// ErrNoDomains is returned when session creation receives no usable domains
// after normalization.
var ErrNoDomains = errors.New("no valid domains provided")

// SessionManager creates and loads sessions. Run control lives in the
// scheduler; this type owns only the session records themselves.
type SessionManager struct {
	store repository.SessionStore
}

// NewSessionManager creates a session manager backed by the given store.
func NewSessionManager(store repository.SessionStore) *SessionManager {
	return &SessionManager{store: store}
}

// Create normalizes the input domains, drops empties and duplicates while
// preserving first-seen order, and persists a new session with one pending
// task per domain.
func (m *SessionManager) Create(ctx context.Context, domains []string) (*entity.Session, error) {
	seen := map[string]bool{}
	var normalized []string
	for _, d := range domains {
		nd := utils.NormalizeDomain(d)
		if nd == "" || seen[nd] {
			continue
		}
		seen[nd] = true
		normalized = append(normalized, nd)
	}
	if len(normalized) == 0 {
		return nil, ErrNoDomains
	}

	session := entity.NewSession(uuid.NewString(), normalized)
	if err := m.store.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("persisting new session: %w", err)
	}
	return session, nil
}

// Get loads a session by ID.
func (m *SessionManager) Get(ctx context.Context, sessionID string) (*entity.Session, error) {
	return m.store.Load(ctx, sessionID)
}

// Delete removes a session record.
func (m *SessionManager) Delete(ctx context.Context, sessionID string) error {
	return m.store.Delete(ctx, sessionID)
}
