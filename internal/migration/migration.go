package migration

import (
	"context"
	"fmt"

	"salondesk/internal/errors"

	"github.com/jmoiron/sqlx"
)

// Migrator defines the interface for database migration operations
type Migrator interface {
	Run(ctx context.Context, db *sqlx.DB) error
	Version() string
}

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// dialect holds the column types that differ between sqlite and postgres
type dialect struct {
	serialKey string
	timestamp string
}

func dialectFor(db *sqlx.DB) (dialect, error) {
	switch db.DriverName() {
	case "sqlite3":
		return dialect{serialKey: "INTEGER PRIMARY KEY AUTOINCREMENT", timestamp: "TIMESTAMP"}, nil
	case "postgres":
		return dialect{serialKey: "BIGSERIAL PRIMARY KEY", timestamp: "TIMESTAMPTZ"}, nil
	default:
		return dialect{}, errors.ConfigInvalid(fmt.Sprintf("no migrations for driver %q", db.DriverName()))
	}
}

// Run executes all database migrations in the correct order
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	d, err := dialectFor(db)
	if err != nil {
		return err
	}

	if err := r.createTicketsTable(ctx, db, d); err != nil {
		return errors.Wrap(err, "failed to create tickets table")
	}

	if err := r.createReferenceEntriesTable(ctx, db, d); err != nil {
		return errors.Wrap(err, "failed to create reference_entries table")
	}

	if err := r.createSalonsTable(ctx, db, d); err != nil {
		return errors.Wrap(err, "failed to create salons table")
	}

	if err := r.createReconcileRunsTable(ctx, db, d); err != nil {
		return errors.Wrap(err, "failed to create reconcile_runs table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

// The tickets table keeps the column names of the report sheets so rows can
// be exported back to the spreadsheets unchanged.
func (r *MigrationRunner) createTicketsTable(ctx context.Context, db *sqlx.DB, d dialect) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS tickets (
			id %s,
			Date TEXT,
			Salon_Name TEXT,
			Phone TEXT,
			Issue_Category TEXT,
			Note TEXT,
			Status TEXT,
			Created_At TEXT,
			CID TEXT,
			Contact TEXT,
			Card_16_Digits TEXT,
			Training_Note TEXT,
			Demo_Note TEXT,
			Agent_Name TEXT,
			Support_Time TEXT,
			Caller_Info TEXT
		)
	`, d.serialKey))
	return err
}

func (r *MigrationRunner) createReferenceEntriesTable(ctx context.Context, db *sqlx.DB, d dialect) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS reference_entries (
			id %s,
			list_name TEXT NOT NULL,
			cid TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			data TEXT,
			imported_at %s NOT NULL
		)
	`, d.serialKey, d.timestamp))
	return err
}

func (r *MigrationRunner) createSalonsTable(ctx context.Context, db *sqlx.DB, d dialect) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS salons (
			cid TEXT PRIMARY KEY,
			salon_name TEXT NOT NULL DEFAULT '',
			updated_at %s NOT NULL
		)
	`, d.timestamp))
	return err
}

func (r *MigrationRunner) createReconcileRunsTable(ctx context.Context, db *sqlx.DB, d dialect) error {
	_, err := db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS reconcile_runs (
			id TEXT PRIMARY KEY,
			started_at %[1]s NOT NULL,
			finished_at %[1]s NOT NULL,
			status TEXT NOT NULL,
			counts TEXT,
			salon_count INTEGER NOT NULL DEFAULT 0,
			error_message TEXT NOT NULL DEFAULT ''
		)
	`, d.timestamp))
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_tickets_created_at ON tickets(Created_At)",
		"CREATE INDEX IF NOT EXISTS idx_tickets_salon_name ON tickets(Salon_Name)",
		"CREATE INDEX IF NOT EXISTS idx_tickets_cid ON tickets(CID)",
		"CREATE INDEX IF NOT EXISTS idx_reference_entries_list ON reference_entries(list_name)",
		"CREATE INDEX IF NOT EXISTS idx_reference_entries_cid ON reference_entries(cid)",
		"CREATE INDEX IF NOT EXISTS idx_reference_entries_phone ON reference_entries(phone)",
		"CREATE INDEX IF NOT EXISTS idx_reconcile_runs_started ON reconcile_runs(started_at)",
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
