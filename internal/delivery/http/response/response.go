package response

import (
	"time"

	"github.com/user/contact-finder/internal/entity"
)

type CreateSessionResponse struct {
	Status    string   `json:"status"`
	SessionID string   `json:"session_id"`
	Domains   []string `json:"domains"`
}

// SessionStatusResponse is a DTO for session progress, mirroring entity.Session.
type SessionStatusResponse struct {
	SessionID string    `json:"session_id"`
	CreatedAt time.Time `json:"created_at"`
	State     string    `json:"state"` // "idle", "running", "paused", "completed"
	Progress  float64   `json:"progress_percent"`
	Completed int       `json:"completed"`
	Total     int       `json:"total"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	// True while a worker is blocked waiting for manual anti-bot resolution.
	AwaitingAntiBot bool                `json:"awaiting_antibot"`
	Tasks           []entity.DomainTask `json:"tasks"`
}

type SessionResultsResponse struct {
	SessionID string                 `json:"session_id"`
	Results   []*entity.DomainResult `json:"results"`
}

type ControlResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
