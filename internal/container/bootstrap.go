package container

import (
	"context"

	"salondesk/adapters/sqlstore"
	"salondesk/internal/config"
	"salondesk/internal/errors"
	"salondesk/internal/migration"

	"github.com/jmoiron/sqlx"
)

// OpenDatabase connects to the configured database and runs migrations
func OpenDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	if cfg.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlstore.Open(ctx, cfg.Database.Driver, cfg.Database.URL, sqlstore.Options{
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		return nil, errors.WithCode(errors.CodeDatabaseError, errors.Wrap(err, "failed to connect to database"))
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// Bootstrap opens the database and builds a fully wired container
func Bootstrap(ctx context.Context, cfg *config.Config) (*Container, error) {
	db, err := OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}
	c, err := New(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	if err := c.InitWithDatabase(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}
