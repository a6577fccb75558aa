package sink

import (
	"log/slog"
	"sync"

	"github.com/user/contact-finder/internal/entity"
)

const subscriberBuffer = 64

// Broadcast fans progress events out to any number of subscribers. Publish
// never blocks: a subscriber whose buffer is full loses that event, which is
// acceptable because the session record remains the source of truth.
type Broadcast struct {
	mu   sync.Mutex
	subs map[chan entity.ProgressEvent]struct{}
}

// NewBroadcast creates a broadcast sink with no subscribers.
func NewBroadcast() *Broadcast {
	return &Broadcast{subs: map[chan entity.ProgressEvent]struct{}{}}
}

// Subscribe registers a new consumer and returns its event channel plus an
// unsubscribe function. The channel is closed on unsubscribe.
func (b *Broadcast) Subscribe() (<-chan entity.ProgressEvent, func()) {
	ch := make(chan entity.ProgressEvent, subscriberBuffer)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers the event to every subscriber, dropping for any whose
// buffer is full.
func (b *Broadcast) Publish(event entity.ProgressEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- event:
		default:
			slog.Debug("event dropped for slow subscriber",
				"session_id", event.SessionID, "event_type", event.Type)
		}
	}
}
