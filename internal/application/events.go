package application

import (
	"context"
	"time"
)

// Event types published after successful writes.
const (
	EventSlotCreated   = "slot.created"
	EventSlotUpdated   = "slot.updated"
	EventSlotDeleted   = "slot.deleted"
	EventMomentCreated = "moment.created"
	EventMomentUpdated = "moment.updated"
	EventMomentDeleted = "moment.deleted"
	EventArtistDeleted = "artist.deleted"
)

// Event describes a committed change to the booking data.
type Event struct {
	Type       string    `json:"type"`
	EntityID   string    `json:"entity_id"`
	ArtistID   string    `json:"artist_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// EventPublisher delivers events to interested consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event Event) error
}

// Recorder receives per-operation outcomes for metrics.
type Recorder interface {
	RecordOperation(service, operation, outcome string)
	RecordSlotConflict()
}

type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, Event) error { return nil }

type noopRecorder struct{}

func (noopRecorder) RecordOperation(string, string, string) {}
func (noopRecorder) RecordSlotConflict()                    {}
