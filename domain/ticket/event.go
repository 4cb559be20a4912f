package ticket

import (
	"time"

	"salondesk/domain/core"
)

// Event types broadcast to connected browsers
const (
	EventCreated      = "ticket.created"
	EventUpdated      = "ticket.updated"
	EventCacheCleared = "cache.cleared"
	EventReconciled   = "reference.reconciled"
)

// Event is a change notification for live pages
type Event struct {
	ID     core.EventID `json:"id"`
	Type   string       `json:"type"`
	Ref    string       `json:"ref,omitempty"`
	Ticket *Ticket      `json:"ticket,omitempty"`
	At     time.Time    `json:"at"`
}

// NewEvent stamps an event with a fresh id
func NewEvent(eventType string, t *Ticket, now time.Time) Event {
	ev := Event{ID: core.NewEventID(), Type: eventType, Ticket: t, At: now}
	if t != nil {
		ev.Ref = t.Ref().String()
	}
	return ev
}
