package sheetparse

import (
	"testing"

	"salondesk/domain/ticket"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindTicketHeader(t *testing.T) {
	rows := [][]string{
		{"DAILY REPORT"},
		{},
		{"STT", "Tên nhân viên", "Salon"},
		{"1", "Loan", "Lux Nails"},
	}
	assert.Equal(t, 2, FindTicketHeader(rows, TicketHeaderScanRows))

	assert.Equal(t, -1, FindTicketHeader([][]string{{"a"}, {"b"}}, TicketHeaderScanRows))

	late := make([][]string, 20)
	late[16] = []string{"Salon Name"}
	assert.Equal(t, -1, FindTicketHeader(late, TicketHeaderScanRows))
}

func TestUniqueHeaders(t *testing.T) {
	got := UniqueHeaders([]string{" Note ", "Note", "Phone", "Note", ""})
	want := []string{"Note", "Note_1", "Phone", "Note_2", ""}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("UniqueHeaders mismatch (-want +got):\n%s", diff)
	}
}

func TestCanonicalColumn(t *testing.T) {
	tests := []struct {
		header  string
		isTotal bool
		want    string
		ok      bool
	}{
		{"STT", true, ticket.ColDate, true},
		{"STT", false, "", false},
		{"Salon Name", false, ticket.ColSalonName, true},
		{"Name", false, ticket.ColAgentName, true},
		{"Time", false, ticket.ColSupportTime, true},
		{"Owner", false, ticket.ColCallerInfo, true},
		{"Phone number", false, ticket.ColPhone, true},
		{"CID", false, ticket.ColCID, true},
		{"Training Note", false, ticket.ColTrainingNote, true},
		{"Demo", false, ticket.ColDemoNote, true},
		{"Contact", false, ticket.ColContact, true},
		{"16 Digits", false, ticket.ColCard16Digits, true},
		{"Card", false, ticket.ColCard16Digits, true},
		{"Ghi Note", false, ticket.ColNote, true},
		{"Status", false, ticket.ColStatus, true},
		{"Salon", false, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := CanonicalColumn(tt.header, tt.isTotal)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDataTabStart(t *testing.T) {
	assert.Equal(t, 2, DataTabStart(false, 5))
	assert.Equal(t, 0, DataTabStart(false, 2))
	assert.Equal(t, 0, DataTabStart(true, 12))
}

func TestTabDate(t *testing.T) {
	tests := []struct {
		sheet, tab, want string
	}{
		{"2-3-4 DAILY REPORT 12/25", "5", "12/05/2025"},
		{"2-3-4 DAILY REPORT 01_26", "14", "01/14/2026"},
		{"DAILY REPORT 2026", "3", "03/01/2026"},
		{"DAILY REPORT", "20", "20/2025"},
		{"TOTAL REPORT 2025", "12/01/2025", "12/01/2025"},
		{"2-3-4 DAILY REPORT 12/25", "Training", "Training"},
	}
	for _, tt := range tests {
		t.Run(tt.sheet+"/"+tt.tab, func(t *testing.T) {
			assert.Equal(t, tt.want, TabDate(tt.sheet, tt.tab))
		})
	}
}

func TestParseTicketTabDaily(t *testing.T) {
	rows := [][]string{
		{"2-3-4 DAILY REPORT"},
		{"STT", "Name", "Time", "Salon Name", "CID", "Phone", "Owner", "Note", "Status", "Note"},
		{"1", "Loan", "09:15", "Lux Nails", "10442.0", "7145550100", "Kim", "printer offline", "Done", "called back"},
		{"2", "Giang", "09:40", "", "", "", "", "empty salon row", "", ""},
		{"3", "Giang", "10:05", "Pro Spa", "nan", "7145550111", "", "password reset", "pending", ""},
	}

	tickets, ok := ParseTicketTab("2-3-4 DAILY REPORT 12/25", "5", rows)
	require.True(t, ok)
	require.Len(t, tickets, 2)

	first := tickets[0]
	assert.Equal(t, "12/05/2025", first.Date)
	assert.Equal(t, "Loan", first.AgentName)
	assert.Equal(t, "Lux Nails", first.SalonName)
	assert.Equal(t, "printer offline", first.Note)
	assert.Equal(t, "printer offline", first.IssueCategory)
	assert.Equal(t, "called back", first.Extra["Note_1"])
	assert.Equal(t, "1", first.Extra["STT"])
	assert.Equal(t, ticket.SourceSheet, first.Source)

	require.NotNil(t, first.Origin)
	assert.Equal(t, 3, first.Origin.Row)
	assert.Equal(t, 8, first.Origin.Columns[ticket.ColStatus])

	second := tickets[1]
	assert.Equal(t, "", second.CID)
	assert.Equal(t, 5, second.Origin.Row)
}

func TestParseTicketTabTotalUsesSTTAsDate(t *testing.T) {
	rows := [][]string{
		{"STT", "Salon Name", "Name", "Note"},
		{"2025-03-04", "Lux Nails", "Loan", "menu update"},
	}
	tickets, ok := ParseTicketTab("TOTAL REPORT 2025", "March", rows)
	require.True(t, ok)
	require.Len(t, tickets, 1)
	assert.Equal(t, "03/04/2025", tickets[0].Date)
}

func TestParseTicketTabWithoutHeader(t *testing.T) {
	_, ok := ParseTicketTab("2-3-4 DAILY REPORT 12/25", "Summary", [][]string{{"Total", "42"}})
	assert.False(t, ok)

	tickets, ok := ParseTicketTab("x", "1", [][]string{{"Salon", "Agent name"}, {"a", "b"}})
	assert.True(t, ok)
	assert.Empty(t, tickets)
}
