package ports

import "salondesk/domain/ticket"

// EventPublisher fans ticket events out to live subscribers
type EventPublisher interface {
	Publish(ev ticket.Event)
}
