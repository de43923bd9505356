// Package persistence implements every repository contract on uptrace/bun.
// It owns no caching or invariant logic; the unique indexes declared on the
// models are the storage-level truth behind the service-level uniqueness
// checks.
package persistence

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/goliatone/go-marketplace-services/cart"
	"github.com/goliatone/go-marketplace-services/financial"
	"github.com/goliatone/go-marketplace-services/review"
	"github.com/goliatone/go-marketplace-services/user"
)

// Open connects to the configured database. Supported drivers: "sqlite3"
// and "postgres".
func Open(driver, dsn string) (*bun.DB, error) {
	switch driver {
	case "sqlite3", "sqlite":
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("persistence: open sqlite: %w", err)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	case "postgres":
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("persistence: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	default:
		return nil, fmt.Errorf("persistence: unsupported driver %q", driver)
	}
}

// InitSchema creates every table when absent. Idempotent.
func InitSchema(ctx context.Context, db *bun.DB) error {
	models := []any{
		(*user.User)(nil),
		(*cart.Cart)(nil),
		(*cart.Item)(nil),
		(*review.Review)(nil),
		(*financial.Institution)(nil),
		(*financial.Product)(nil),
		(*financial.Application)(nil),
	}

	for _, model := range models {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("persistence: create table for %T: %w", model, err)
		}
	}

	return nil
}
