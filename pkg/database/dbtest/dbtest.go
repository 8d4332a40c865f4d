// Package dbtest starts a throwaway PostgreSQL container with the product
// migrations applied. Tests that use it are skipped in -short mode and when no
// container runtime is available.
package dbtest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/ghuser/showcase/pkg/database"
	"github.com/ghuser/showcase/pkg/logger"
	"github.com/ghuser/showcase/pkg/migrator"
)

// TestDB holds the test database connection and container.
type TestDB struct {
	*database.Database
	Container testcontainers.Container
	ConnStr   string
}

// MigrationsDir returns the absolute path of migrations/<name> in this repository.
func MigrationsDir(name string) string {
	_, currentFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(currentFile), "..", "..", "..", "migrations", name)
}

// Start creates a PostgreSQL container, applies the product migrations and
// registers cleanup with t.
func Start(t *testing.T) *TestDB {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping postgres integration test in short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("showcase"),
		postgres.WithUsername("showcase"),
		postgres.WithPassword("showcase"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(context.Background()); err != nil {
			t.Logf("terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}

	if err := migrator.RunMigrations(connStr, os.DirFS(MigrationsDir("product"))); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	db, err := database.NewPool(ctx, connStr, logger.Discard())
	if err != nil {
		t.Fatalf("open pool: %v", err)
	}
	t.Cleanup(db.Close)

	return &TestDB{Database: db, Container: pgContainer, ConnStr: connStr}
}

// Truncate clears the given tables for test isolation.
func (tdb *TestDB) Truncate(t *testing.T, tables ...string) {
	t.Helper()
	for _, table := range tables {
		if _, err := tdb.DB().ExecContext(context.Background(), fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Fatalf("truncate %s: %v", table, err)
		}
	}
}
