package testkit

import (
	"testing"
	"time"

	"salondesk/domain/ticket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTicketGeneratorIsDeterministic(t *testing.T) {
	config := TicketGeneratorConfig{Count: 25, SalonCount: 5, Seed: 7}

	first := NewTicketGenerator(config).Generate()
	second := NewTicketGenerator(config).Generate()

	require.Len(t, first, 25)
	assert.Equal(t, first, second)
}

func TestTicketGeneratorStaysInRange(t *testing.T) {
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local)
	end := time.Date(2026, 1, 9, 23, 0, 0, 0, time.Local)
	tickets := NewTicketGenerator(TicketGeneratorConfig{
		Count: 50, SalonCount: 3, Agents: []string{"Loan"}, StartDate: start, EndDate: end, Seed: 1,
	}).Generate()

	cids := map[string]bool{}
	for _, tk := range tickets {
		at, ok := tk.EffectiveTime()
		require.True(t, ok, tk.CreatedAt)
		assert.False(t, at.Before(start.Truncate(time.Second)), at)
		assert.False(t, at.After(end), at)
		assert.Equal(t, "Loan", tk.AgentName)
		assert.Equal(t, tk.Status, string(ticket.NormalizeStatus(tk.Status)))
		assert.NoError(t, ticket.NewTicketInput{
			SalonName: tk.SalonName, Phone: tk.Phone, Issue: tk.Note, AgentName: tk.AgentName,
		}.Validate())
		cids[tk.CID] = true
	}
	assert.LessOrEqual(t, len(cids), 3)
}
