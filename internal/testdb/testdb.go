// Package testdb provides helpers for Postgres-backed integration tests.
// It depends only on database/sql and the migration tooling, not on the
// store implementations it helps test.
package testdb

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/require"
)

// pingTimeout bounds the connectivity check before a test runs.
const pingTimeout = 5 * time.Second

// URL returns the integration test database URL, or "" when integration
// tests should be skipped.
func URL() string {
	if u := os.Getenv("CONDUIT_TEST_DATABASE_URL"); u != "" {
		return u
	}
	return os.Getenv("DATABASE_URL")
}

// Open connects to the integration test database and applies all
// migrations. Tests calling Open are skipped when no database URL is
// configured. The connection is closed when the test finishes.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := URL()
	if dbURL == "" {
		t.Skip("set CONDUIT_TEST_DATABASE_URL or DATABASE_URL to run integration tests")
	}

	db, err := sql.Open("pgx", dbURL)
	require.NoError(t, err, "failed to open test database")
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	require.NoError(t, db.PingContext(ctx), "test database unreachable")

	migrate(t, db)
	return db
}

// WithTx runs fn inside a transaction that is always rolled back, so
// tests can write freely without leaking state into each other.
func WithTx(t *testing.T, db *sql.DB, fn func(t *testing.T, tx *sql.Tx)) {
	t.Helper()

	tx, err := db.Begin()
	require.NoError(t, err, "failed to begin transaction")
	defer func() {
		if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			t.Errorf("failed to roll back test transaction: %v", err)
		}
	}()

	fn(t, tx)
}

func migrate(t *testing.T, db *sql.DB) {
	t.Helper()

	root, err := projectRoot()
	require.NoError(t, err, "failed to locate project root")

	require.NoError(t, goose.SetDialect("postgres"))
	goose.SetLogger(goose.NopLogger())
	require.NoError(t, goose.Up(db, filepath.Join(root, "migrations")), "failed to apply migrations")
}

// projectRoot walks up from this file's directory until it finds go.mod.
func projectRoot() (string, error) {
	_, file, _, ok := runtime.Caller(0)
	if !ok {
		return "", errors.New("cannot determine caller location")
	}

	dir := filepath.Dir(file)
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found in any parent directory")
		}
		dir = parent
	}
}
