package entity

import "time"

// EventType classifies a progress event emitted by the core.
type EventType string

const (
	EventStarted      EventType = "started"
	EventDomainResult EventType = "domain_result"
	EventLog          EventType = "log"
	EventPaused       EventType = "paused"
	EventCompleted    EventType = "completed"
)

// ProgressEvent is the structured record pushed to external consumers (SSE
// stream, CSV writer). The core only produces events; it never blocks on a
// slow consumer.
type ProgressEvent struct {
	SessionID string        `json:"session_id"`
	Type      EventType     `json:"event_type"`
	Timestamp time.Time     `json:"timestamp"`
	Domain    string        `json:"domain,omitempty"`
	Message   string        `json:"message,omitempty"`
	Result    *DomainResult `json:"result,omitempty"`
	Completed int           `json:"completed,omitempty"`
	Total     int           `json:"total,omitempty"`
	Succeeded int           `json:"succeeded,omitempty"`
	Failed    int           `json:"failed,omitempty"`
}
