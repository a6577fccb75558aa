package sink

import (
	"log/slog"

	"github.com/user/contact-finder/internal/entity"
)

// LogSink writes progress events to the structured log. Useful as the default
// consumer when no stream client is attached.
type LogSink struct{}

// NewLogSink creates a log sink.
func NewLogSink() *LogSink {
	return &LogSink{}
}

// Publish logs the event at info level.
func (LogSink) Publish(event entity.ProgressEvent) {
	attrs := []any{
		"session_id", event.SessionID,
		"event_type", event.Type,
	}
	if event.Domain != "" {
		attrs = append(attrs, "domain", event.Domain)
	}
	if event.Total > 0 {
		attrs = append(attrs, "completed", event.Completed, "total", event.Total)
	}
	slog.Info("session progress", attrs...)
}

// Tee duplicates events to multiple sinks.
type Tee []interface {
	Publish(event entity.ProgressEvent)
}

// Publish forwards the event to every wrapped sink.
func (t Tee) Publish(event entity.ProgressEvent) {
	for _, s := range t {
		s.Publish(event)
	}
}
