package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/user/contact-finder/internal/entity"
	"github.com/user/contact-finder/internal/repository"
)

const sessionKeyPrefix = "session:"

// SessionStoreImpl provides a concrete implementation for the SessionStore
// interface using Redis. Sessions are stored as one JSON document per key.
type SessionStoreImpl struct {
	client *redis.Client
}

// NewSessionStore creates a new instance of SessionStoreImpl.
func NewSessionStore(client *redis.Client) *SessionStoreImpl {
	return &SessionStoreImpl{client: client}
}

func sessionKey(sessionID string) string {
	return sessionKeyPrefix + sessionID
}

// Save writes the full session record, replacing any previous version.
func (s *SessionStoreImpl) Save(ctx context.Context, session *entity.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshaling session %s: %w", session.ID, err)
	}
	return s.client.Set(ctx, sessionKey(session.ID), payload, 0).Err()
}

// Load retrieves a session by ID. A missing key maps to ErrSessionNotFound
// and an undecodable payload to ErrSessionCorrupt.
func (s *SessionStoreImpl) Load(ctx context.Context, sessionID string) (*entity.Session, error) {
	payload, err := s.client.Get(ctx, sessionKey(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("%w: %s", repository.ErrSessionNotFound, sessionID)
		}
		return nil, err
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
func (s *SessionStoreImpl) Delete(ctx context.Context, sessionID string) error {
	return s.client.Del(ctx, sessionKey(sessionID)).Err()
}
