package ports

import (
	"context"

	"salondesk/domain/ticket"
)

// ListOptions narrows a local ticket listing
type ListOptions struct {
	Limit  int // 0 means no limit
	Offset int
	Agent  string
}

// TicketRepository defines storage for locally logged tickets
type TicketRepository interface {
	Create(ctx context.Context, t *ticket.Ticket) error
	// Update writes only the editable fields of UpdateInput
	Update(ctx context.Context, id int64, in ticket.UpdateInput) error
	GetByID(ctx context.Context, id int64) (*ticket.Ticket, error)
	// List returns tickets newest first
	List(ctx context.Context, opts ListOptions) ([]ticket.Ticket, error)
	Count(ctx context.Context) (int, error)
}
