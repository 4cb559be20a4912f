package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"salondesk/domain/reference"
	"salondesk/internal/errors"
	"salondesk/ports"

	"github.com/jmoiron/sqlx"
)

// salonRepository implements the SalonRepository interface
type salonRepository struct {
	db *sqlx.DB
}

// NewSalonRepository creates a new salon master repository
func NewSalonRepository(db *sqlx.DB) ports.SalonRepository {
	return &salonRepository{db: db}
}

// ReplaceAll swaps the salon master list. Repeated CIDs keep the last name.
func (r *salonRepository) ReplaceAll(ctx context.Context, salons []reference.Salon) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM salons`); err != nil {
		return fmt.Errorf("failed to clear salons: %w", err)
	}

	stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO salons (cid, salon_name, updated_at) VALUES (?, ?, ?)
		ON CONFLICT (cid) DO UPDATE SET salon_name = excluded.salon_name, updated_at = excluded.updated_at`))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, s := range salons {
		if _, err := stmt.ExecContext(ctx, s.CID, s.Name, now); err != nil {
			return fmt.Errorf("failed to insert salon %s: %w", s.CID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit salons: %w", err)
	}
	return nil
}

// GetByCID retrieves a salon by its customer id
func (r *salonRepository) GetByCID(ctx context.Context, cid string) (*reference.Salon, error) {
	var s reference.Salon
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(`SELECT cid, salon_name FROM salons WHERE cid = ?`), cid).Scan(&s.CID, &s.Name)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound(fmt.Sprintf("salon %s", cid))
		}
		return nil, fmt.Errorf("failed to get salon: %w", err)
	}
	return &s, nil
}

// Search matches a term against salon names and CIDs
func (r *salonRepository) Search(ctx context.Context, term string, limit int) ([]reference.Salon, error) {
	if limit <= 0 {
		limit = 50
	}
	pattern := "%" + strings.ToLower(strings.TrimSpace(term)) + "%"
	query := r.db.Rebind(`SELECT cid, salon_name FROM salons
		WHERE LOWER(salon_name) LIKE ? OR cid LIKE ? ORDER BY salon_name LIMIT ?`)
	return r.query(ctx, query, pattern, pattern, limit)
}

// All returns the whole master list ordered by CID
func (r *salonRepository) All(ctx context.Context) ([]reference.Salon, error) {
	return r.query(ctx, `SELECT cid, salon_name FROM salons ORDER BY cid`)
}

func (r *salonRepository) query(ctx context.Context, query string, args ...interface{}) ([]reference.Salon, error) {
	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query salons: %w", err)
	}
	defer rows.Close()

	var salons []reference.Salon
	for rows.Next() {
		var s reference.Salon
		if err := rows.Scan(&s.CID, &s.Name); err != nil {
			return nil, fmt.Errorf("failed to scan salon: %w", err)
		}
		salons = append(salons, s)
	}
	return salons, rows.Err()
}
