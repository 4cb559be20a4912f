package app

import (
	"context"
	"log"
	"strconv"
	"strings"

	"salondesk/domain/ticket"
	"salondesk/internal/errors"
	"salondesk/internal/sheetparse"
	"salondesk/ports"
)

// HistoryFile is the default output of a history build
const HistoryFile = "cleaned_tickets_history.csv"

// HistoryColumns is the column order of the history CSV
var HistoryColumns = []string{
	ticket.ColDate, ticket.ColAgentName, ticket.ColSupportTime, ticket.ColSalonName, ticket.ColCID,
	ticket.ColPhone, ticket.ColCallerInfo, ticket.ColNote, ticket.ColStatus, ticket.ColContact,
	ticket.ColCard16Digits, ticket.ColTrainingNote, ticket.ColDemoNote,
}

// HistoryService merges the day tabs of a daily workbook into one ticket history
type HistoryService struct {
	source  ports.WorkbookSource
	tickets ports.TicketRepository
}

// NewHistoryService creates a history service
func NewHistoryService(source ports.WorkbookSource, tickets ports.TicketRepository) *HistoryService {
	return &HistoryService{source: source, tickets: tickets}
}

// Build reads tabs "1" through "31" in day order. Missing or unreadable days are skipped.
func (s *HistoryService) Build(ctx context.Context, sheet string) ([]ticket.Ticket, error) {
	tabs, err := s.source.Tabs(ctx, sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open %s", sheet)
	}
	present := make(map[string]bool, len(tabs))
	for _, tab := range tabs {
		present[strings.TrimSpace(tab)] = true
	}

	var history []ticket.Ticket
	days := 0
	for day := 1; day <= 31; day++ {
		tab := strconv.Itoa(day)
		if !present[tab] {
			continue
		}
		rows, err := s.source.ReadTab(ctx, sheet, tab)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("[History] skipping day %d: %v", day, err)
			continue
		}
		tickets, ok := sheetparse.ParseTicketTab(sheet, tab, rows)
		if !ok {
			log.Printf("[History] skipping day %d: no salon header", day)
			continue
		}
		for i := range tickets {
			tickets[i].CID = strings.TrimSpace(tickets[i].CID)
			tickets[i].AgentName = strings.TrimSpace(tickets[i].AgentName)
		}
		history = append(history, tickets...)
		days++
	}

	if days == 0 {
		return nil, errors.NotFound("day tabs in " + sheet)
	}
	log.Printf("[History] merged %d tickets from %d day tab(s) of %s", len(history), days, sheet)
	return history, nil
}

// WriteCSV exports a history in HistoryColumns order
func (s *HistoryService) WriteCSV(path string, history []ticket.Ticket, exporter ports.TableExporter) error {
	if err := exporter.WriteTable(path, HistoryColumns, ticket.Rows(history, HistoryColumns)); err != nil {
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return nil
}

// Import inserts history rows into the local ticket table and returns how many were stored
func (s *HistoryService) Import(ctx context.Context, history []ticket.Ticket) (int, error) {
	imported := 0
	for _, t := range history {
		t.ID = 0
		t.Origin = nil
		t.Source = ticket.SourceLocal
		t.Status = string(ticket.NormalizeStatus(t.Status))
		if err := s.tickets.Create(ctx, &t); err != nil {
			return imported, errors.Wrapf(err, "failed to import ticket for %s", t.SalonName)
		}
		imported++
	}
	log.Printf("[History] imported %d tickets", imported)
	return imported, nil
}
