package app

import (
	"context"

	"salondesk/domain/ticket"
	"salondesk/internal/errors"
	"salondesk/ports"
)

// Catalog combines report sheet rows with locally logged tickets
type Catalog struct {
	loader  *LoaderService
	tickets ports.TicketRepository
	index   *IndexHolder
}

// NewCatalog creates a catalog
func NewCatalog(loader *LoaderService, tickets ports.TicketRepository, index *IndexHolder) *Catalog {
	return &Catalog{loader: loader, tickets: tickets, index: index}
}

// All returns sheet rows first, then local tickets newest first
func (c *Catalog) All(ctx context.Context, sheets []string) ([]ticket.Ticket, error) {
	sheetRows, err := c.loader.Load(ctx, sheets)
	if err != nil {
		return nil, err
	}
	local, err := c.Local(ctx)
	if err != nil {
		return nil, err
	}
	return append(sheetRows, local...), nil
}

// Local returns annotated local tickets newest first
func (c *Catalog) Local(ctx context.Context) ([]ticket.Ticket, error) {
	local, err := c.tickets.List(ctx, ports.ListOptions{})
	if err != nil {
		return nil, errors.Wrap(err, "failed to list local tickets")
	}
	c.index.Get().AnnotateAll(local)
	return local, nil
}

// Sheets loads only report sheet rows
func (c *Catalog) Sheets(ctx context.Context, sheets []string) ([]ticket.Ticket, error) {
	return c.loader.Load(ctx, sheets)
}
