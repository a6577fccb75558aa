package repository

import "github.com/user/contact-finder/internal/entity"

// EventSink receives structured progress events from the core. Publish must
// be non-blocking: a slow or disconnected consumer never stalls task
// processing.
type EventSink interface {
	Publish(event entity.ProgressEvent)
}
