package app

import (
	"strings"
	"testing"

	"salondesk/domain/ticket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analysisTickets() []ticket.Ticket {
	return []ticket.Ticket{
		{Date: "12/01/2025", InTraining: true},
		{Date: "12/02/2025"},
		{Date: "12/02/2025", Has16Digits: true},
		{Date: "12/03/2025"},
		{Date: "12/03/2025"},
		{Date: "12/03/2025"},
		{Date: "see notes"},
	}
}

func TestAnalyze(t *testing.T) {
	r := Analyze(analysisTickets())

	assert.Equal(t, 7, r.Total)
	assert.Equal(t, 1, r.Skipped)
	require.Len(t, r.PerDay, 3)
	assert.Equal(t, 3, r.Busiest.Count)
	assert.Equal(t, "2025-12-03", r.Busiest.Day.Format("2006-01-02"))
	assert.Equal(t, 1, r.Quietest.Count)
	assert.InDelta(t, 2.0, r.Mean, 1e-9)
	assert.InDelta(t, 2.0, r.Median, 1e-9)
	assert.InDelta(t, 1.0, r.Trend, 1e-9)
	assert.InDelta(t, 1.0, r.Intercept, 1e-9)
	assert.Equal(t, 1, r.TrainingMatches)
	assert.Equal(t, 1, r.Digits16Matches)

	require.Len(t, r.Top, 3)
	assert.Equal(t, 3, r.Top[0].Count)
	assert.Equal(t, 2, r.Top[1].Count)

	require.Len(t, r.Bars, 3)
	assert.True(t, r.Bars[2].Highlight)
	assert.Equal(t, 100.0, r.Bars[2].Height)
	assert.Equal(t, "01/12", r.Bars[0].Label)
}

func TestAnalyzeWithoutDates(t *testing.T) {
	r := Analyze([]ticket.Ticket{{Date: "weekly"}})
	assert.Empty(t, r.PerDay)
	assert.Contains(t, Markdown(r), "No dated tickets")
}

func TestMarkdownAndHTML(t *testing.T) {
	md := Markdown(Analyze(analysisTickets()))
	assert.Contains(t, md, "03/12/2025 with **3** tickets")
	assert.Contains(t, md, "| 02/12/2025 | 2 |")
	assert.Contains(t, md, "Trend: +1.00 tickets/day")

	out := string(RenderHTML(md))
	assert.True(t, strings.Contains(out, "<table>"), out)
	assert.Contains(t, out, "<strong>3</strong>")
}
