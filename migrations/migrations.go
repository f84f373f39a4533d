package migrations

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
)

// Migrations holds every schema change of the auth core
var Migrations = migrate.NewMigrations()

// Run creates the bookkeeping tables and applies pending migrations.
func Run(ctx context.Context, db *bun.DB) error {
	migrator := migrate.NewMigrator(db, Migrations)

	if err := migrator.Init(ctx); err != nil {
		return fmt.Errorf("migrations init: %w", err)
	}

	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("migrations lock: %w", err)
	}
	defer migrator.Unlock(ctx) //nolint:errcheck

	if _, err := migrator.Migrate(ctx); err != nil {
		return fmt.Errorf("migrations apply: %w", err)
	}

	return nil
}
