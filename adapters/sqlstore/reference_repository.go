package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"salondesk/domain/core"
	"salondesk/domain/reference"
	"salondesk/ports"

	"github.com/jmoiron/sqlx"
)

// referenceRepository implements the ReferenceRepository interface
type referenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository creates a new reference list repository
func NewReferenceRepository(db *sqlx.DB) ports.ReferenceRepository {
	return &referenceRepository{db: db}
}

// ReplaceList swaps every entry of a list inside one transaction
func (r *referenceRepository) ReplaceList(ctx context.Context, list string, entries []reference.Entry) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM reference_entries WHERE list_name = ?`), list); err != nil {
		return fmt.Errorf("failed to clear list %s: %w", list, err)
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO reference_entries (list_name, cid, phone, data, imported_at) VALUES (?, ?, ?, ?, ?)`))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, e := range entries {
		data, err := json.Marshal(e.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal entry data: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, list, e.CID, e.Phone, string(data), now); err != nil {
			return fmt.Errorf("failed to insert entry into %s: %w", list, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit list %s: %w", list, err)
	}
	return nil
}

// Lists returns every stored entry grouped by list name
func (r *referenceRepository) Lists(ctx context.Context) (map[string][]reference.Entry, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT list_name, cid, phone, COALESCE(data, '') FROM reference_entries ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reference entries: %w", err)
	}
	defer rows.Close()

	lists := make(map[string][]reference.Entry)
	for rows.Next() {
		var e reference.Entry
		var data string
		if err := rows.Scan(&e.List, &e.CID, &e.Phone, &data); err != nil {
			return nil, fmt.Errorf("failed to scan reference entry: %w", err)
		}
		if data != "" {
			if err := json.Unmarshal([]byte(data), &e.Data); err != nil {
				log.Printf("[ReferenceRepo] Skipping malformed data of %s entry %s: %v", e.List, e.CID, err)
			}
		}
		lists[e.List] = append(lists[e.List], e)
	}
	return lists, rows.Err()
}

// RecordRun stores the outcome of a reconcile run
func (r *referenceRepository) RecordRun(ctx context.Context, run *reference.Run) error {
	counts, err := json.Marshal(run.Counts)
	if err != nil {
		return fmt.Errorf("failed to marshal run counts: %w", err)
	}

	query := r.db.Rebind(`INSERT INTO reconcile_runs (id, started_at, finished_at, status, counts, salon_count, error_message)
		VALUES (?, ?, ?, ?, ?, ?, ?)`)
	_, err = r.db.ExecContext(ctx, query,
		run.ID.String(), run.StartedAt.UTC(), run.FinishedAt.UTC(), string(run.Status), string(counts), run.Salons, run.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to record reconcile run: %w", err)
	}
	return nil
}

// LatestRun returns the most recent reconcile run, or nil when none ran yet
func (r *referenceRepository) LatestRun(ctx context.Context) (*reference.Run, error) {
	query := `SELECT id, started_at, finished_at, status, COALESCE(counts, ''), salon_count, error_message
		FROM reconcile_runs ORDER BY started_at DESC LIMIT 1`

	var (
		run    reference.Run
		id     string
		status string
		counts string
	)
	err := r.db.QueryRowxContext(ctx, query).Scan(&id, &run.StartedAt, &run.FinishedAt, &status, &counts, &run.Salons, &run.Error)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest reconcile run: %w", err)
	}

	run.ID = core.RunID(id)
	run.Status = reference.RunStatus(status)
	if counts != "" {
		if err := json.Unmarshal([]byte(counts), &run.Counts); err != nil {
			return nil, fmt.Errorf("failed to unmarshal run counts: %w", err)
		}
	}
	return &run, nil
}
