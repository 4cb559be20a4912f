package ports

import (
	"context"
	"time"

	"salondesk/domain/ticket"
)

// TicketCache keeps recently loaded sheet tickets
type TicketCache interface {
	Get(ctx context.Context, key string) ([]ticket.Ticket, bool)
	Set(ctx context.Context, key string, tickets []ticket.Ticket, ttl time.Duration) error
	Clear(ctx context.Context) error
}
