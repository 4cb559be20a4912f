// Package testkit generates realistic fake tickets for demos and tests
package testkit

import (
	"context"
	"fmt"
	"log"
	"time"

	"salondesk/domain/ticket"
	"salondesk/ports"

	"github.com/brianvoe/gofakeit/v6"
)

// TicketGeneratorConfig configures the fake ticket generator
type TicketGeneratorConfig struct {
	Count      int       `json:"count"`
	SalonCount int       `json:"salon_count"`
	Agents     []string  `json:"agents"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Seed       int64     `json:"seed"`
}

// DefaultTicketConfig returns a month of tickets for a small call center
func DefaultTicketConfig() TicketGeneratorConfig {
	return TicketGeneratorConfig{
		Count:      200,
		SalonCount: 40,
		Agents:     []string{"Loan", "Giang", "Tuấn", "Dung"},
		StartDate:  time.Date(2026, 1, 1, 8, 0, 0, 0, time.Local),
		EndDate:    time.Date(2026, 1, 31, 20, 0, 0, 0, time.Local),
		Seed:       42,
	}
}

var issues = []string{
	"printer offline", "card reader not connecting", "gift card balance", "reset password",
	"add new technician", "update service menu", "batch settlement failed", "check-in app frozen",
	"tip adjustment", "cash drawer does not open",
}

var salonSuffixes = []string{"Nails", "Nail Spa", "Beauty Lounge", "Nails & Spa", "Lash Studio"}

type salon struct {
	cid   string
	name  string
	phone string
}

// TicketGenerator produces deterministic tickets for a seed
type TicketGenerator struct {
	config TicketGeneratorConfig
	faker  *gofakeit.Faker
	salons []salon
}

// NewTicketGenerator creates a generator. Zero config fields take the defaults.
func NewTicketGenerator(config TicketGeneratorConfig) *TicketGenerator {
	def := DefaultTicketConfig()
	if config.Count <= 0 {
		config.Count = def.Count
	}
	if config.SalonCount <= 0 {
		config.SalonCount = def.SalonCount
	}
	if len(config.Agents) == 0 {
		config.Agents = def.Agents
	}
	if config.StartDate.IsZero() || config.EndDate.IsZero() || !config.EndDate.After(config.StartDate) {
		config.StartDate, config.EndDate = def.StartDate, def.EndDate
	}

	g := &TicketGenerator{config: config, faker: gofakeit.New(config.Seed)}
	for i := 0; i < config.SalonCount; i++ {
		g.salons = append(g.salons, salon{
			cid:   fmt.Sprintf("%d", 1000+i+1),
			name:  g.faker.LastName() + " " + g.faker.RandomString(salonSuffixes),
			phone: g.faker.Phone(),
		})
	}
	return g
}

// Generate returns Count local tickets spread over the configured date range
func (g *TicketGenerator) Generate() []ticket.Ticket {
	tickets := make([]ticket.Ticket, 0, g.config.Count)
	for i := 0; i < g.config.Count; i++ {
		tickets = append(tickets, g.next())
	}
	return tickets
}

func (g *TicketGenerator) next() ticket.Ticket {
	s := g.salons[g.faker.Number(0, len(g.salons)-1)]
	at := g.faker.DateRange(g.config.StartDate, g.config.EndDate)
	issue := g.faker.RandomString(issues)

	t := ticket.Ticket{
		Date:          at.Format(ticket.DisplayLayout),
		SalonName:     s.name,
		Phone:         s.phone,
		IssueCategory: issue,
		Note:          issue,
		Status:        string(g.status()),
		CreatedAt:     at.Format(ticket.CreatedAtLayout),
		CID:           s.cid,
		AgentName:     g.faker.RandomString(g.config.Agents),
		SupportTime:   at.Format("15:04:05"),
		CallerInfo:    g.faker.FirstName(),
		Source:        ticket.SourceLocal,
	}
	switch g.faker.Number(1, 10) {
	case 1:
		t.TrainingNote = "training booked " + g.faker.WeekDay()
	case 2:
		t.DemoNote = "demo for " + g.faker.FirstName()
	}
	return t
}

func (g *TicketGenerator) status() ticket.Status {
	switch n := g.faker.Number(1, 10); {
	case n <= 6:
		return ticket.StatusDone
	case n <= 9:
		return ticket.StatusPending
	default:
		return ticket.StatusNoAnswer
	}
}

// Seed inserts generated tickets into a repository and returns how many were stored
func Seed(ctx context.Context, repo ports.TicketRepository, tickets []ticket.Ticket) (int, error) {
	for i := range tickets {
		if err := repo.Create(ctx, &tickets[i]); err != nil {
			return i, fmt.Errorf("failed to seed ticket %d: %w", i+1, err)
		}
	}
	log.Printf("[TestKit] seeded %d tickets", len(tickets))
	return len(tickets), nil
}
