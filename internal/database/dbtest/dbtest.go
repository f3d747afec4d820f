// Package dbtest opens throwaway databases for repository and service tests.
package dbtest

import (
	"path/filepath"
	"runtime"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/klm-wiki-api/internal/database"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// MigrationsPath returns the repository's migrations root
func MigrationsPath() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "..", "migrations")
}

// NewSQLite returns a migrated SQLite database in a temp dir, closed on cleanup
func NewSQLite(t testing.TB) *database.DB {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "test.db") + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	// a single connection keeps writes serialized
	conn.SetMaxOpenConns(1)

	db := database.Wrap(conn, database.SQLite, zerolog.Nop())
	if err := db.RunMigrations(MigrationsPath()); err != nil {
		conn.Close()
		t.Fatalf("migrate sqlite: %v", err)
	}

	t.Cleanup(func() { conn.Close() })
	return db
}
