// Package storagetest opens migrated throwaway databases for store tests.
package storagetest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"lembah/internal/adapters/storage"
)

// Open returns a migrated SQLite database in t's temp dir, closed on cleanup.
func Open(t testing.TB) *sql.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := storage.Open(path)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(db, path); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

// MustExec runs a statement and fails the test on error.
func MustExec(t testing.TB, db *sql.DB, query string, args ...any) sql.Result {
	t.Helper()
	res, err := db.Exec(query, args...)
	if err != nil {
		t.Fatalf("exec %q: %v", query, err)
	}
	return res
}
