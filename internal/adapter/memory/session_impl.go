package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/user/contact-finder/internal/entity"
	"github.com/user/contact-finder/internal/repository"
)

// SessionStoreImpl is an in-process SessionStore for single-node deployments
// and tests. It stores serialized snapshots so callers never share mutable
// state with the store.
type SessionStoreImpl struct {
	mu       sync.RWMutex
	sessions map[string][]byte
}

// NewSessionStore creates an empty in-memory store.
func NewSessionStore() *SessionStoreImpl {
	return &SessionStoreImpl{sessions: map[string][]byte{}}
}

// Save writes the full session record, replacing any previous version.
func (s *SessionStoreImpl) Save(_ context.Context, session *entity.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshaling session %s: %w", session.ID, err)
	}
	s.mu.Lock()
	s.sessions[session.ID] = payload
	s.mu.Unlock()
	return nil
}

// Load retrieves a session by ID.
func (s *SessionStoreImpl) Load(_ context.Context, sessionID string) (*entity.Session, error) {
	s.mu.RLock()
	payload, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", repository.ErrSessionNotFound, sessionID)
	}

	var session entity.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", repository.ErrSessionCorrupt, sessionID, err)
	}
	if session.Results == nil {
		session.Results = map[string]*entity.DomainResult{}
	}
	return &session, nil
}

// Delete removes a session record.
func (s *SessionStoreImpl) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	return nil
}
