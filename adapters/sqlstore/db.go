// Package sqlstore implements the repositories on sqlx, against sqlite or postgres
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Options holds connection pool settings
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Open connects to the database and verifies the connection
func Open(ctx context.Context, driver, dsn string, opts Options) (*sqlx.DB, error) {
	if driver == "sqlite3" {
		dsn = sqliteDSN(dsn)
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}

	if driver == "sqlite3" {
		// one writer keeps sqlite from returning SQLITE_BUSY under concurrent edits
		db.SetMaxOpenConns(1)
	} else if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		db.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", driver, err)
	}

	return db, nil
}

func sqliteDSN(dsn string) string {
	if dsn == ":memory:" || containsQuery(dsn) {
		return dsn
	}
	return "file:" + dsn + "?_busy_timeout=5000&_foreign_keys=on"
}

func containsQuery(dsn string) bool {
	for _, r := range dsn {
		if r == '?' {
			return true
		}
	}
	return false
}
