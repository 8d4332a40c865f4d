package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// RunMigrations applies all pending goose migrations found at the root of files against dbURL.
func RunMigrations(dbURL string, files fs.FS) error {
	_, err := Up(context.Background(), dbURL, files)
	return err
}

// Up applies pending migrations and returns the versions it applied, in order.
// It uses a goose Provider rather than the package-level goose state, so
// concurrent callers (parallel integration tests) do not share a base FS.
func Up(ctx context.Context, dbURL string, files fs.FS) ([]int64, error) {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	provider, err := goose.NewProvider(goose.DialectPostgres, db, files)
	if err != nil {
		return nil, fmt.Errorf("failed to create goose provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to up migrations: %w", err)
	}
	applied := make([]int64, 0, len(results))
	for _, r := range results {
		applied = append(applied, r.Source.Version)
	}
	return applied, nil
}
