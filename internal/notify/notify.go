// Package notify broadcasts PDF changes so that other open sessions can
// refresh their views.
package notify

import (
	"context"
	"time"

	"github.com/nhle/pdf-prints/internal/model"
)

// EventType names the kind of change an Event describes.
type EventType string

const (
	EventCreated       EventType = "created"
	EventStatusUpdated EventType = "status_updated"
)

// Event describes a single change to a PDF record.
type Event struct {
	Type   EventType    `json:"type"`
	ID     string       `json:"id"`
	Status model.Status `json:"status"`
	At     time.Time    `json:"at"`
}

// Notifier publishes change events.
type Notifier interface {
	Publish(ctx context.Context, e Event) error
}

// Nop discards every event.
type Nop struct{}

// Publish implements Notifier.
func (Nop) Publish(context.Context, Event) error { return nil }
