package app

import (
	"context"
	"fmt"
	"log"
	"time"

	"salondesk/domain/ticket"
	"salondesk/internal/errors"
	"salondesk/internal/metrics"
	"salondesk/ports"
)

// TicketService creates and edits tickets in the local table and in report sheets
type TicketService struct {
	tickets   ports.TicketRepository
	loader    *LoaderService
	writer    ports.WorkbookWriter
	publisher ports.EventPublisher
	now       func() time.Time
}

// NewTicketService creates a ticket service. A nil writer makes sheet rows read-only.
func NewTicketService(tickets ports.TicketRepository, loader *LoaderService, writer ports.WorkbookWriter, publisher ports.EventPublisher) *TicketService {
	return &TicketService{
		tickets:   tickets,
		loader:    loader,
		writer:    writer,
		publisher: publisher,
		now:       time.Now,
	}
}

// Create validates and stores a new local ticket
func (s *TicketService) Create(ctx context.Context, in ticket.NewTicketInput) (*ticket.Ticket, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	t := in.Ticket(s.now())
	if err := s.tickets.Create(ctx, &t); err != nil {
		return nil, errors.Wrap(err, "failed to save ticket")
	}
	metrics.TicketsCreated.Inc()
	log.Printf("[TicketService] created ticket %d for %q by %s", t.ID, t.SalonName, t.AgentName)

	s.publish(ticket.EventCreated, &t)
	return &t, nil
}

// Get fetches a ticket by reference from whichever store holds it
func (s *TicketService) Get(ctx context.Context, ref ticket.Ref) (*ticket.Ticket, error) {
	if !ref.IsSheet() {
		return s.tickets.GetByID(ctx, ref.ID)
	}
	return s.findSheetRow(ctx, ref)
}

// Update applies the edit dialog to a local ticket or writes it back to its report sheet
func (s *TicketService) Update(ctx context.Context, ref ticket.Ref, in ticket.UpdateInput) (*ticket.Ticket, error) {
	if !ref.IsSheet() {
		existing, err := s.tickets.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		if err := in.KeepsRequired(*existing); err != nil {
			return nil, err
		}
		if err := s.tickets.Update(ctx, ref.ID, in); err != nil {
			return nil, errors.Wrapf(err, "failed to update ticket %d", ref.ID)
		}
		updated, err := s.tickets.GetByID(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		metrics.TicketUpdates.WithLabelValues(metrics.TargetLocal).Inc()
		log.Printf("[TicketService] updated ticket %d", ref.ID)
		s.publish(ticket.EventUpdated, updated)
		return updated, nil
	}

	if s.writer == nil {
		return nil, errors.ReadOnly("report sheets are read-only in this deployment")
	}

	current, err := s.findSheetRow(ctx, ref)
	if err != nil {
		return nil, err
	}
	if err := in.KeepsRequired(*current); err != nil {
		return nil, err
	}

	cells := make(map[int]string)
	for col, value := range in.Values() {
		idx, ok := current.Origin.Columns[col]
		if !ok || current.Field(col) == value {
			continue
		}
		cells[idx] = value
		current.SetField(col, value)
	}

	if len(cells) > 0 {
		if err := s.writer.UpdateCells(ctx, *current.Origin, cells); err != nil {
			return nil, errors.Wrapf(err, "failed to write %s row %d", ref.Tab, ref.Row)
		}
		if err := s.loader.ClearCache(ctx); err != nil {
			log.Printf("[TicketService] %v", err)
		}
	}
	metrics.TicketUpdates.WithLabelValues(metrics.TargetSheet).Inc()
	log.Printf("[TicketService] wrote %d cell(s) to %s / %s row %d", len(cells), ref.Sheet, ref.Tab, ref.Row)

	s.publish(ticket.EventUpdated, current)
	return current, nil
}

func (s *TicketService) findSheetRow(ctx context.Context, ref ticket.Ref) (*ticket.Ticket, error) {
	rows, err := s.loader.Load(ctx, []string{ref.Sheet})
	if err != nil {
		return nil, err
	}
	for i := range rows {
		o := rows[i].Origin
		if o != nil && o.Tab == ref.Tab && o.Row == ref.Row {
			t := rows[i]
			return &t, nil
		}
	}
	return nil, errors.NotFound(fmt.Sprintf("row %d of %s / %s", ref.Row, ref.Sheet, ref.Tab))
}

func (s *TicketService) publish(eventType string, t *ticket.Ticket) {
	if s.publisher == nil {
		return
	}
	s.publisher.Publish(ticket.NewEvent(eventType, t, s.now()))
}
