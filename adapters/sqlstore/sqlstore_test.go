package sqlstore

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"salondesk/domain/core"
	"salondesk/domain/reference"
	"salondesk/domain/ticket"
	"salondesk/internal/errors"
	"salondesk/internal/migration"
	"salondesk/ports"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	db, err := Open(ctx, "sqlite3", filepath.Join(t.TempDir(), "crm_test.db"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, migration.NewRunner().Run(ctx, db))
	return db
}

func TestTicketRepositoryCreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(openTestDB(t))

	tk := ticket.Ticket{
		Date: "01/08/2026", SalonName: "Lux Nails", Phone: "7145550100", IssueCategory: "printer",
		Note: "printer", Status: "Pending", CreatedAt: "2026-01-08 09:00:00", AgentName: "Loan",
	}
	require.NoError(t, repo.Create(ctx, &tk))
	assert.NotZero(t, tk.ID)

	got, err := repo.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lux Nails", got.SalonName)
	assert.Equal(t, ticket.SourceLocal, got.Source)
	assert.Equal(t, "", got.Contact)

	_, err = repo.GetByID(ctx, 9999)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestTicketRepositoryUpdateTouchesEditableFieldsOnly(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(openTestDB(t))

	tk := ticket.Ticket{
		Date: "01/08/2026", SalonName: "Lux Nails", Phone: "7145550100", IssueCategory: "printer",
		Note: "printer", Status: "Pending", CreatedAt: "2026-01-08 09:00:00", AgentName: "Loan",
		Card16Digits: "yes",
	}
	require.NoError(t, repo.Create(ctx, &tk))

	err := repo.Update(ctx, tk.ID, ticket.UpdateInput{
		Status: "done", Note: "reinstalled driver", SalonName: "Lux Nails & Spa", Phone: "7145550100",
		CID: "10442", CallerInfo: "Kim", TrainingNote: "", DemoNote: "demo booked",
	})
	require.NoError(t, err)

	got, err := repo.GetByID(ctx, tk.ID)
	require.NoError(t, err)
	assert.Equal(t, "Done", got.Status)
	assert.Equal(t, "reinstalled driver", got.Note)
	assert.Equal(t, "printer", got.IssueCategory)
	assert.Equal(t, "Lux Nails & Spa", got.SalonName)
	assert.Equal(t, "demo booked", got.DemoNote)
	assert.Equal(t, "yes", got.Card16Digits)
	assert.Equal(t, "Loan", got.AgentName)

	err = repo.Update(ctx, 424242, ticket.UpdateInput{Status: "Done"})
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestTicketRepositoryListNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := NewTicketRepository(openTestDB(t))

	for i, created := range []string{"2026-01-01 08:00:00", "2026-01-03 08:00:00", "2026-01-02 08:00:00"} {
		agent := "Loan"
		if i == 2 {
			agent = "Giang"
		}
		tk := ticket.Ticket{SalonName: "S", CreatedAt: created, AgentName: agent}
		require.NoError(t, repo.Create(ctx, &tk))
	}

	all, err := repo.List(ctx, ports.ListOptions{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2026-01-03 08:00:00", all[0].CreatedAt)
	assert.Equal(t, "2026-01-01 08:00:00", all[2].CreatedAt)

	loan, err := repo.List(ctx, ports.ListOptions{Agent: "Loan", Limit: 1})
	require.NoError(t, err)
	require.Len(t, loan, 1)
	assert.Equal(t, "2026-01-03 08:00:00", loan[0].CreatedAt)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestReferenceRepositoryReplaceList(t *testing.T) {
	ctx := context.Background()
	repo := NewReferenceRepository(openTestDB(t))

	require.NoError(t, repo.ReplaceList(ctx, reference.ListTraining, []reference.Entry{
		{CID: "1", Phone: "7145550100", Data: map[string]string{"Salon Name": "Lux"}},
		{CID: "2"},
	}))
	require.NoError(t, repo.ReplaceList(ctx, reference.ListTraining, []reference.Entry{{CID: "3"}}))
	require.NoError(t, repo.ReplaceList(ctx, reference.List16Digits, []reference.Entry{{Phone: "7145550111"}}))

	lists, err := repo.Lists(ctx)
	require.NoError(t, err)
	require.Len(t, lists[reference.ListTraining], 1)
	assert.Equal(t, "3", lists[reference.ListTraining][0].CID)
	assert.Equal(t, "7145550111", lists[reference.List16Digits][0].Phone)
}

func TestReferenceRepositoryRuns(t *testing.T) {
	ctx := context.Background()
	repo := NewReferenceRepository(openTestDB(t))

	latest, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)

	start := time.Date(2026, 1, 8, 9, 0, 0, 0, time.UTC)
	for i, status := range []reference.RunStatus{reference.RunFailed, reference.RunSucceeded} {
		run := &reference.Run{
			ID:         core.NewRunID(),
			StartedAt:  start.Add(time.Duration(i) * time.Minute),
			FinishedAt: start.Add(time.Duration(i)*time.Minute + time.Second),
			Status:     status,
			Counts:     map[string]int{reference.ListTraining: 12 + i},
			Salons:     40,
		}
		require.NoError(t, repo.RecordRun(ctx, run))
	}

	latest, err = repo.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, reference.RunSucceeded, latest.Status)
	assert.Equal(t, 13, latest.Counts[reference.ListTraining])
	assert.Equal(t, 40, latest.Salons)
}

func TestSalonRepository(t *testing.T) {
	ctx := context.Background()
	repo := NewSalonRepository(openTestDB(t))

	require.NoError(t, repo.ReplaceAll(ctx, []reference.Salon{
		{CID: "10442", Name: "Lux Nails"},
		{CID: "20001", Name: "Pro Spa"},
		{CID: "10442", Name: "Lux Nails & Spa"},
	}))

	s, err := repo.GetByCID(ctx, "10442")
	require.NoError(t, err)
	assert.Equal(t, "Lux Nails & Spa", s.Name)

	_, err = repo.GetByCID(ctx, "nope")
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))

	found, err := repo.Search(ctx, "spa", 10)
	require.NoError(t, err)
	assert.Len(t, found, 2)

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
