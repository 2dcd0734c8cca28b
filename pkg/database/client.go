package database

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"

	"github.com/Alijeyrad/medibook_backend/config"
	"github.com/Alijeyrad/medibook_backend/internal/repo"
	"github.com/Alijeyrad/medibook_backend/internal/repo/migrate"
)

// NewRepoClient opens the store selected by cfg.Driver.
func NewRepoClient(cfg config.DatabaseConfig) (*repo.Client, error) {
	if cfg.IsMemory() {
		return repo.NewMemoryClient(), nil
	}
	return NewRepoClientFromConfig(FromCentralConfig(cfg))
}

// NewRepoClientFromConfig opens a Postgres-backed client from package Config.
func NewRepoClientFromConfig(cfg Config) (*repo.Client, error) {
	db, err := openSQLDB(cfg)
	if err != nil {
		return nil, err
	}
	return repo.NewClient(db), nil
}

// Migrate creates or updates the schema. It is a no-op for the memory store.
func Migrate(ctx context.Context, client *repo.Client, safe bool) error {
	db := client.DB()
	if db == nil {
		return nil
	}

	opts := []schema.MigrateOption{schema.WithForeignKeys(true)}
	if !safe {
		opts = append(opts, schema.WithDropIndex(true), schema.WithDropColumn(true))
	}

	if err := migrate.Create(ctx, entsql.OpenDB(dialect.Postgres, db), opts...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
