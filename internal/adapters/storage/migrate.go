package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "baseline",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS account (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				username TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				role TEXT NOT NULL,
				created_at TEXT NOT NULL,
				failed_logins INTEGER NOT NULL DEFAULT 0,
				locked_until TEXT
			)`,
			`CREATE TABLE IF NOT EXISTS member (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				full_name TEXT NOT NULL,
				program TEXT NOT NULL,
				phone TEXT NOT NULL DEFAULT '',
				email TEXT NOT NULL DEFAULT '',
				gender TEXT NOT NULL DEFAULT '',
				address TEXT NOT NULL DEFAULT '',
				birth_date TEXT,
				height_cm INTEGER NOT NULL DEFAULT 0,
				weight_kg INTEGER NOT NULL DEFAULT 0,
				goal TEXT NOT NULL DEFAULT '',
				trainer_id INTEGER REFERENCES account(id) ON DELETE SET NULL,
				status TEXT NOT NULL DEFAULT 'Aktif',
				registered_on TEXT NOT NULL,
				expires_on TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS payment (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				member_id INTEGER NOT NULL REFERENCES member(id),
				paid_on TEXT NOT NULL,
				amount INTEGER NOT NULL,
				note TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE TABLE IF NOT EXISTS training_log (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				member_id INTEGER NOT NULL REFERENCES member(id),
				logged_on TEXT NOT NULL,
				weight_kg REAL NOT NULL,
				bmi REAL NOT NULL DEFAULT 0,
				schedule_note TEXT NOT NULL DEFAULT ''
			)`,
		},
	},
	{
		version: 2,
		name:    "portal token and payment reference",
		stmts: []string{
			`ALTER TABLE member ADD COLUMN portal_token TEXT`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_member_portal_token ON member(portal_token)`,
			`ALTER TABLE payment ADD COLUMN reference TEXT`,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_payment_reference ON payment(reference)`,
		},
	},
	{
		version: 3,
		name:    "lookup indexes",
		stmts: []string{
			`CREATE INDEX IF NOT EXISTS idx_payment_paid_on ON payment(paid_on)`,
			`CREATE INDEX IF NOT EXISTS idx_payment_member ON payment(member_id)`,
			`CREATE INDEX IF NOT EXISTS idx_member_trainer ON member(trainer_id)`,
			`CREATE INDEX IF NOT EXISTS idx_training_log_member ON training_log(member_id, logged_on)`,
		},
	},
}

// LatestSchemaVersion returns the version reached after all migrations.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, or 0 for an untracked database.
// PRE: db is a valid database connection
// POST: schema_version exists
func SchemaVersion(db *sql.DB) (int, error) {
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return 0, fmt.Errorf("create schema_version: %w", err)
	}
	var v sql.NullInt64
	if err := db.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema_version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// Before upgrading an existing file database a copy is written to path.bak-v<N>.
// PRE: db is a valid database connection; path is the file backing db or ":memory:"
// POST: SchemaVersion(db) == LatestSchemaVersion()
func MigrateDB(db *sql.DB, path string) error {
	current, err := SchemaVersion(db)
	if err != nil {
		return err
	}
	if current >= LatestSchemaVersion() {
		return nil
	}
	if current > 0 && path != "" && path != ":memory:" {
		if err := backupFile(path, fmt.Sprintf("%s.bak-v%d", path, current)); err != nil {
			return fmt.Errorf("backup before migration: %w", err)
		}
	}
	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(db, m); err != nil {
			return err
		}
		slog.Info("schema_migrated", "version", m.version, "name", m.name)
	}
	return nil
}

func applyMigration(db *sql.DB, m migration) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("migration %d: begin: %w", m.version, err)
	}
	defer tx.Rollback()
	for _, stmt := range m.stmts {
		if _, err := tx.Exec(stmt); err != nil {
			if isDuplicateColumn(err) {
				continue
			}
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	if _, err := tx.Exec("INSERT INTO schema_version (version) VALUES (?)", m.version); err != nil {
		return fmt.Errorf("migration %d: record version: %w", m.version, err)
	}
	return tx.Commit()
}

// backupFile copies src to dst. A missing src is not an error.
func backupFile(src, dst string) error {
	in, err := os.Open(src)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

