package sink

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/contact-finder/internal/entity"
)

func TestBroadcastDeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcast()

	ch1, unsub1 := b.Subscribe()
	ch2, unsub2 := b.Subscribe()
	defer unsub1()
	defer unsub2()

	event := entity.ProgressEvent{SessionID: "sess-1", Type: entity.EventStarted}
	b.Publish(event)

	for _, ch := range []<-chan entity.ProgressEvent{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, event.SessionID, got.SessionID)
			assert.Equal(t, event.Type, got.Type)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive the event")
		}
	}
}

func TestBroadcastDropsWhenSubscriberIsFull(t *testing.T) {
	b := NewBroadcast()

	ch, unsub := b.Subscribe()
	defer unsub()

	// Nobody drains the channel; overflow must not block Publish.
	done := make(chan struct{})
	go func() {
		for i := 0; i < subscriberBuffer+10; i++ {
			b.Publish(entity.ProgressEvent{SessionID: "sess-1", Type: entity.EventLog})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Publish blocked on a full subscriber")
	}
	assert.Len(t, ch, subscriberBuffer)
}

func TestBroadcastUnsubscribeClosesChannel(t *testing.T) {
	b := NewBroadcast()

	ch, unsub := b.Subscribe()
	unsub()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic or deliver.
	b.Publish(entity.ProgressEvent{SessionID: "sess-1", Type: entity.EventLog})

	// Unsubscribing twice is a no-op.
	require.NotPanics(t, unsub)
}
