package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"salondesk/domain/ticket"
	"salondesk/internal/errors"
	"salondesk/ports"

	"github.com/jmoiron/sqlx"
)

const ticketColumns = `id, COALESCE(Date, ''), COALESCE(Salon_Name, ''), COALESCE(Phone, ''),
	COALESCE(Issue_Category, ''), COALESCE(Note, ''), COALESCE(Status, ''), COALESCE(Created_At, ''),
	COALESCE(CID, ''), COALESCE(Contact, ''), COALESCE(Card_16_Digits, ''), COALESCE(Training_Note, ''),
	COALESCE(Demo_Note, ''), COALESCE(Agent_Name, ''), COALESCE(Support_Time, ''), COALESCE(Caller_Info, '')`

// ticketRepository implements the TicketRepository interface
type ticketRepository struct {
	db *sqlx.DB
}

// NewTicketRepository creates a new ticket repository
func NewTicketRepository(db *sqlx.DB) ports.TicketRepository {
	return &ticketRepository{db: db}
}

// Create inserts a ticket and sets its ID
func (r *ticketRepository) Create(ctx context.Context, t *ticket.Ticket) error {
	query := r.db.Rebind(`INSERT INTO tickets (
		Date, Salon_Name, Phone, Issue_Category, Note, Status, Created_At,
		CID, Contact, Card_16_Digits, Training_Note, Demo_Note, Agent_Name, Support_Time, Caller_Info
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) RETURNING id`)

	err := r.db.QueryRowxContext(ctx, query,
		t.Date, t.SalonName, t.Phone, t.IssueCategory, t.Note, t.Status, t.CreatedAt,
		t.CID, t.Contact, t.Card16Digits, t.TrainingNote, t.DemoNote, t.AgentName, t.SupportTime, t.CallerInfo,
	).Scan(&t.ID)
	if err != nil {
		return fmt.Errorf("failed to create ticket: %w", err)
	}

	t.Source = ticket.SourceLocal
	return nil
}

// Update writes the fields the edit dialog can change and nothing else
func (r *ticketRepository) Update(ctx context.Context, id int64, in ticket.UpdateInput) error {
	v := in.Values()
	query := r.db.Rebind(`UPDATE tickets SET
		Status = ?, Note = ?, Salon_Name = ?, Phone = ?, CID = ?, Caller_Info = ?, Training_Note = ?, Demo_Note = ?
	WHERE id = ?`)

	res, err := r.db.ExecContext(ctx, query,
		v[ticket.ColStatus], v[ticket.ColNote], v[ticket.ColSalonName], v[ticket.ColPhone],
		v[ticket.ColCID], v[ticket.ColCallerInfo], v[ticket.ColTrainingNote], v[ticket.ColDemoNote], id,
	)
	if err != nil {
		return fmt.Errorf("failed to update ticket: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return errors.NotFound(fmt.Sprintf("ticket %d", id))
	}
	return nil
}

// GetByID retrieves a ticket by its ID
func (r *ticketRepository) GetByID(ctx context.Context, id int64) (*ticket.Ticket, error) {
	query := r.db.Rebind(`SELECT ` + ticketColumns + ` FROM tickets WHERE id = ?`)

	t, err := scanTicket(r.db.QueryRowxContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound(fmt.Sprintf("ticket %d", id))
		}
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return t, nil
}

// List returns local tickets newest first
func (r *ticketRepository) List(ctx context.Context, opts ports.ListOptions) ([]ticket.Ticket, error) {
	var (
		where []string
		args  []interface{}
	)
	if opts.Agent != "" {
		where = append(where, "Agent_Name = ?")
		args = append(args, opts.Agent)
	}

	query := `SELECT ` + ticketColumns + ` FROM tickets`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY Created_At DESC, id DESC`
	if opts.Limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, opts.Limit, opts.Offset)
	}

	rows, err := r.db.QueryxContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	defer rows.Close()

	var tickets []ticket.Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ticket: %w", err)
		}
		tickets = append(tickets, *t)
	}
	return tickets, rows.Err()
}

// Count returns the number of local tickets
func (r *ticketRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM tickets`); err != nil {
		return 0, fmt.Errorf("failed to count tickets: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanTicket(s scanner) (*ticket.Ticket, error) {
	var t ticket.Ticket
	err := s.Scan(
		&t.ID, &t.Date, &t.SalonName, &t.Phone, &t.IssueCategory, &t.Note, &t.Status, &t.CreatedAt,
		&t.CID, &t.Contact, &t.Card16Digits, &t.TrainingNote, &t.DemoNote, &t.AgentName, &t.SupportTime, &t.CallerInfo,
	)
	if err != nil {
		return nil, err
	}
	t.Source = ticket.SourceLocal
	return &t, nil
}
