package app

import (
	"context"
	"testing"

	"salondesk/domain/ticket"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSearchForTest(t *testing.T) (*SearchService, *memTickets) {
	t.Helper()
	wb := newFakeWorkbook()
	seedDailyWorkbook(wb)
	repo := newMemTickets()
	holder := NewIndexHolder()
	catalog := NewCatalog(newTestLoader(wb, newMemCache(), holder), repo, holder)
	return NewSearchService(catalog), repo
}

func TestSearchBlankTerm(t *testing.T) {
	svc, _ := newSearchForTest(t)
	results, err := svc.Search(context.Background(), "   ", ticket.KindAll, []string{dailySheet})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchCombinesSheetAndLocal(t *testing.T) {
	svc, repo := newSearchForTest(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &ticket.Ticket{SalonName: "Lux Nails Spa", Phone: "9", AgentName: "Thư"}))
	require.NoError(t, repo.Create(ctx, &ticket.Ticket{SalonName: "Lux Beauty", Phone: "8", AgentName: "Thư"}))

	results, err := svc.Search(ctx, "LUX", ticket.KindAll, []string{dailySheet})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Lux Nails", results[0].Ticket.SalonName)
	assert.Equal(t, ticket.SourceSheet, results[0].Ticket.Source)
	assert.Equal(t, "Lux Beauty", results[1].Ticket.SalonName, "local rows newest first")
	assert.Equal(t, "Lux Nails Spa", results[2].Ticket.SalonName)
	for i, r := range results {
		assert.Equal(t, i+1, r.DisplayID)
	}
	assert.Equal(t, "2", results[1].Ref)
}

func TestSearchFoldsDiacritics(t *testing.T) {
	svc, repo := newSearchForTest(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &ticket.Ticket{SalonName: "Tiệm Đẹp", Phone: "1", AgentName: "Nguyễn Hương Giang"}))

	results, err := svc.Search(ctx, "huong giang", ticket.KindAll, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)

	results, err = svc.Search(ctx, "dep", ticket.KindAll, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestSearchKindTraining(t *testing.T) {
	svc, _ := newSearchForTest(t)
	results, err := svc.Search(context.Background(), "714555", ticket.KindTraining, []string{dailySheet})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "Happy Spa", results[0].Ticket.SalonName)
}
