package app

import (
	"context"
	"strings"

	"salondesk/domain/ticket"
	"salondesk/internal/textnorm"
)

// SearchResult is one row of the Search & History table
type SearchResult struct {
	DisplayID int           `json:"display_id"`
	Ref       string        `json:"ref"`
	Ticket    ticket.Ticket `json:"ticket"`
}

// SearchService finds tickets by salon, phone, CID, agent or date
type SearchService struct {
	catalog *Catalog
}

// NewSearchService creates a search service
func NewSearchService(catalog *Catalog) *SearchService {
	return &SearchService{catalog: catalog}
}

// Search returns matching sheet rows then local tickets, numbered from 1.
// A blank term returns nothing.
func (s *SearchService) Search(ctx context.Context, term string, kind ticket.SearchKind, sheets []string) ([]SearchResult, error) {
	m := textnorm.NewMatcher(term)
	if m.Empty() {
		return nil, nil
	}

	all, err := s.catalog.All(ctx, sheets)
	if err != nil {
		return nil, err
	}
	return Match(all, m, kind), nil
}

// Match filters tickets against a prepared term and kind
func Match(tickets []ticket.Ticket, m textnorm.Matcher, kind ticket.SearchKind) []SearchResult {
	var out []SearchResult
	for _, t := range tickets {
		if !m.Match(t.SalonName, t.Phone, t.CID, t.AgentName, t.Date) {
			continue
		}
		switch kind {
		case ticket.KindTraining:
			if strings.TrimSpace(t.TrainingNote) == "" {
				continue
			}
		case ticket.KindDemo:
			if strings.TrimSpace(t.DemoNote) == "" {
				continue
			}
		}
		out = append(out, SearchResult{
			DisplayID: len(out) + 1,
			Ref:       t.Ref().String(),
			Ticket:    t,
		})
	}
	return out
}
