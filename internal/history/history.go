package history

import (
	"context"
	"time"
)

// EventType defines the kind of checklist event.
type EventType string

const (
	EventSave   EventType = "save"
	EventCreate EventType = "create"
	EventDelete EventType = "delete"
	EventMode   EventType = "mode"
)

// Event represents a committed checklist change to be exported to
// external systems (analytics/statistics).
type Event struct {
	Type          EventType `json:"type"`
	OccurredAt    time.Time `json:"occurred_at"`
	Process       string    `json:"process"`
	Mode          string    `json:"mode"`
	Finished      int       `json:"finished"`
	Unfinished    int       `json:"unfinished"`
	NewFinished   int       `json:"new_finished"`
	NewUnfinished int       `json:"new_unfinished"`
}

// Sink is a destination for history events. Implementations must be
// safe for concurrent use.
type Sink interface {
	Send(ctx context.Context, e Event) error
}
