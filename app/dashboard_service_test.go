package app

import (
	"testing"
	"time"

	"salondesk/domain/ticket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dashboardTickets() []ticket.Ticket {
	return []ticket.Ticket{
		{Date: "12/01/2025", AgentName: "Loan", Status: "Done", IssueCategory: "Printer", Note: "printer jam", SupportTime: "09:00"},
		{Date: "12/02/2025", AgentName: "Giang", Status: "Pending", IssueCategory: "Card reader", Note: "máy quẹt thẻ"},
		{Date: "12/02/2025", AgentName: "Loan", Status: "No Answer", IssueCategory: "Printer", Note: "no paper", SupportTime: "10:00"},
		{Date: "weekly", AgentName: "Chi", Status: "Done", IssueCategory: "Other"},
		{Date: "01/10/2026", CreatedAt: "2026-01-10 08:00:00", AgentName: "", Status: "Done", IssueCategory: "Printer"},
	}
}

func TestBuildDefaultsToDetectedRange(t *testing.T) {
	now := time.Date(2026, 1, 20, 12, 0, 0, 0, time.Local)
	d := Build(dashboardTickets(), ticket.Filter{}, now)

	require.NotNil(t, d.DetectedFrom)
	assert.Equal(t, "2025-12-01", d.From.Format("2006-01-02"))
	assert.Equal(t, "2026-01-10", d.To.Format("2006-01-02"))
	assert.False(t, d.Empty)

	assert.Equal(t, 5, d.AllTime)
	assert.Equal(t, 4, d.Total, "unparseable dates fall outside every range")
	assert.Equal(t, 2, d.Pending)
	assert.Equal(t, 2, d.Resolved)
	assert.Equal(t, 0.5, d.WorkHours)
	assert.Equal(t, 2, d.ActiveStaff)

	require.Len(t, d.Staff, 2)
	assert.Equal(t, Count{Label: "Loan", Value: 2, Percent: 50}, d.Staff[0])
	assert.Equal(t, "Printer", d.Issues[0].Label)
	assert.Equal(t, 3, d.Issues[0].Value)
	assert.Equal(t, 75.0, d.Issues[0].Percent)
}

func TestBuildDateRangeIsInclusive(t *testing.T) {
	from := time.Date(2025, 12, 2, 0, 0, 0, 0, time.Local)
	to := time.Date(2025, 12, 2, 0, 0, 0, 0, time.Local)
	d := Build(dashboardTickets(), ticket.Filter{From: &from, To: &to}, time.Now())

	assert.Equal(t, 2, d.Total)
	assert.Equal(t, 0.3, d.WorkHours)
}

func TestBuildWorkHoursFallsBackToTotal(t *testing.T) {
	tickets := []ticket.Ticket{
		{Date: "12/01/2025", Status: "Done"},
		{Date: "12/01/2025", Status: "Done"},
		{Date: "12/01/2025", Status: "Done"},
	}
	d := Build(tickets, ticket.Filter{}, time.Now())
	assert.Equal(t, 0.8, d.WorkHours)
}

func TestBuildKeywordFoldsDiacritics(t *testing.T) {
	d := Build(dashboardTickets(), ticket.Filter{Keyword: "QUET THE"}, time.Now())
	require.Equal(t, 1, d.Total)
	assert.Equal(t, "Giang", d.Detail[0].AgentName)
}

func TestBuildEmpty(t *testing.T) {
	d := Build(dashboardTickets(), ticket.Filter{Keyword: "nothing like this"}, time.Now())
	assert.True(t, d.Empty)
	assert.Equal(t, EmptyDashboardHint, d.Hint)
	assert.Zero(t, d.Total)
}

func TestBuildDefaultsToCurrentMonthWithoutDates(t *testing.T) {
	now := time.Date(2026, 3, 17, 9, 0, 0, 0, time.Local)
	d := Build([]ticket.Ticket{{Date: "n/a"}}, ticket.Filter{}, now)
	assert.Equal(t, "2026-03-01", d.From.Format("2006-01-02"))
	assert.Equal(t, "2026-03-17", d.To.Format("2006-01-02"))
	assert.True(t, d.Empty)
}

func TestBuildDetail(t *testing.T) {
	d := Build(dashboardTickets(), ticket.Filter{Agent: "Loan"}, time.Now())

	assert.Equal(t, []string{"All", "Giang", "Loan"}, d.StaffOptions)
	assert.Equal(t, []string{"All", "Done", "No Answer", "Pending"}, d.StatusOptions)
	assert.Equal(t, DetailColumns, d.Columns[:len(DetailColumns)])
	assert.Len(t, d.Columns, len(ticket.Columns))

	require.Len(t, d.Detail, 2)
	assert.Equal(t, "12/02/2025", d.Detail[0].Date, "newest first")
	assert.Equal(t, "12/01/2025", d.Detail[1].Date)
	assert.Equal(t, "12/02/2025", d.Rows()[0][0])
}

func TestExportFileName(t *testing.T) {
	now := time.Date(2026, 1, 5, 7, 8, 9, 0, time.UTC)
	assert.Equal(t, "admin_dashboard_export_20260105_070809.csv", ExportFileName(now))
}
