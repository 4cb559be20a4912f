package sheetparse

import (
	"testing"

	"salondesk/domain/reference"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreHeaderRow(t *testing.T) {
	rows := [][]string{
		{"TRAINING LIST", "", ""},
		{"", "", ""},
		{"Date", "Salon Name", "Phone", "Client Code", "Note"},
		{"12/01/2025", "Lux Nails", "7145550100", "10442", "done"},
	}
	assert.Equal(t, 2, ScoreHeaderRow(rows, ReferenceHeaderScanRows))
	assert.Equal(t, 0, ScoreHeaderRow(nil, ReferenceHeaderScanRows))
}

func TestNormalizeHeaders(t *testing.T) {
	got := NormalizeHeaders([]string{" Salon\nName ", "", "Phone\r\n"})
	want := []string{"Salon Name", "Unnamed_1", "Phone"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("NormalizeHeaders mismatch (-want +got):\n%s", diff)
	}
}

func TestFindCIDColumn(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		want    int
	}{
		{"exact wins over contains", []string{"Client CID", "CID"}, 1},
		{"contains skips void", []string{"Void CID", "CID Code"}, 1},
		{"client code", []string{"App Client Code", "Salon Code"}, 1},
		{"bare code", []string{"Phone", "Code"}, 1},
		{"qualified code is not a cid", []string{"Store code", "Promo Code", "code 2"}, -1},
		{"excluded suffix code", []string{"ISO code", "ticket code"}, -1},
		{"none", []string{"Salon", "Phone"}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FindCIDColumn(tt.headers))
		})
	}
}

func TestCleanReferenceSheet(t *testing.T) {
	rows := [][]string{
		{"16 DIGITS"},
		{"Date", "Salon Name", "Empty", "Phone", "Salon Code"},
		{"12/01/2025", "Lux Nails", "", "7145550100", "10442.0"},
		{"", "", "", "", ""},
		{"12/02/2025", "Pro Spa", "", "7145550111", ""},
	}

	cleaned := CleanReferenceSheet(rows)
	assert.True(t, cleaned.CIDFound)
	assert.Equal(t, "Salon Code", cleaned.OriginalCIDCol)

	want := Table{
		Headers: []string{"CID", "Date", "Salon Name", "Phone"},
		Rows: [][]string{
			{"10442.0", "12/01/2025", "Lux Nails", "7145550100"},
			{"", "12/02/2025", "Pro Spa", "7145550111"},
		},
	}
	if diff := cmp.Diff(want, cleaned.Table); diff != "" {
		t.Errorf("CleanReferenceSheet mismatch (-want +got):\n%s", diff)
	}

	entries := ReferenceEntries(reference.List16Digits, cleaned)
	require.Len(t, entries, 2)
	assert.Equal(t, "10442", entries[0].CID)
	assert.Equal(t, "7145550100", entries[0].Phone)
	assert.Equal(t, "Lux Nails", entries[0].Data["Salon Name"])
}

func TestCleanReferenceSheetAddsMissingCID(t *testing.T) {
	cleaned := CleanReferenceSheet([][]string{
		{"Name", "Email"},
		{"Kim", "kim@example.com"},
	})
	assert.False(t, cleaned.CIDFound)
	assert.Equal(t, []string{"CID", "Name", "Email"}, cleaned.Headers)
	assert.Equal(t, []string{"", "Kim", "kim@example.com"}, cleaned.Rows[0])
}

func TestParseSalonMaster(t *testing.T) {
	withHeader := ParseSalonMaster([][]string{
		{"CID", "Salon Name"},
		{"10442", "Lux Nails"},
		{"", "No Id Spa"},
	})
	assert.Equal(t, []reference.Salon{{CID: "10442", Name: "Lux Nails"}}, withHeader)

	positional := ParseSalonMaster([][]string{
		{"Lux Nails", "10442.0"},
		{"Pro Spa", "20001"},
	})
	assert.Equal(t, []reference.Salon{
		{CID: "10442", Name: "Lux Nails"},
		{CID: "20001", Name: "Pro Spa"},
	}, positional)
}
