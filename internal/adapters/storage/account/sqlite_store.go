package account

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lembah/internal/adapters/storage"
	domain "lembah/internal/domain/account"
	"lembah/internal/domain/apperr"
)

const timeLayout = time.RFC3339Nano

const selectColumns = "SELECT id, username, password_hash, role, created_at, failed_logins, locked_until FROM account"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new AccountStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Account by its ID.
// PRE: id > 0
// POST: Returns the entity or a NotFound error
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, apperr.Wrap(apperr.KindNotFound, err, fmt.Sprintf("account %d not found", id))
	}
	return entity, err
}

// GetByUsername retrieves an Account by username.
// PRE: username is non-empty
// POST: Returns the entity or a NotFound error
func (s *SQLiteStore) GetByUsername(ctx context.Context, username string) (domain.Account, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE username = ?", username)
	entity, err := scanAccount(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Account{}, apperr.Wrap(apperr.KindNotFound, err, "account not found")
	}
	return entity, err
}

// Create inserts a new Account and returns its ID.
// PRE: entity has been validated and has a password hash
// POST: Row inserted; a taken username yields a Conflict error
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Account) (int64, error) {
	if entity.CreatedAt.IsZero() {
		entity.CreatedAt = time.Now().UTC()
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO account (username, password_hash, role, created_at, failed_logins, locked_until) VALUES (?, ?, ?, ?, ?, ?)",
		entity.Username,
		entity.PasswordHash,
		string(entity.Role),
		entity.CreatedAt.UTC().Format(timeLayout),
		entity.FailedLogins,
		nullTime(entity.LockedUntil),
	)
	if storage.IsUniqueViolation(err) {
		return 0, apperr.Wrap(apperr.KindConflict, err, fmt.Sprintf("username %q is already taken", entity.Username))
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// Save updates the mutable fields of an existing Account.
// PRE: entity.ID refers to an existing row
// POST: password hash, role and lockout state are persisted
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Account) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE account SET password_hash = ?, role = ?, failed_logins = ?, locked_until = ? WHERE id = ?",
		entity.PasswordHash,
		string(entity.Role),
		entity.FailedLogins,
		nullTime(entity.LockedUntil),
		entity.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("account %d not found", entity.ID)
	}
	return nil
}

// Delete removes an Account and unassigns the members it trained, in one transaction.
// PRE: id > 0
// POST: no member references the account; the account row is gone
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	return storage.InTx(ctx, s.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "UPDATE member SET trainer_id = NULL WHERE trainer_id = ?", id); err != nil {
			return fmt.Errorf("unassign trainer: %w", err)
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM account WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("account %d not found", id)
		}
		return nil
	})
}

// List retrieves Accounts ordered by role then username.
// PRE: filter.Role is empty or a valid role
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Account, error) {
	query := selectColumns
	var args []any
	if filter.Role != "" {
		query += " WHERE role = ?"
		args = append(args, string(filter.Role))
	}
	query += " ORDER BY role, username"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Account
	for rows.Next() {
		entity, err := scanAccount(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of accounts.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM account").Scan(&count)
	return count, err
}

// scanAccount extracts an Account from a row scanner function.
func scanAccount(scan func(dest ...any) error) (domain.Account, error) {
	var entity domain.Account
	var role, createdAt string
	var lockedUntil sql.NullString
	err := scan(
		&entity.ID,
		&entity.Username,
		&entity.PasswordHash,
		&role,
		&createdAt,
		&entity.FailedLogins,
		&lockedUntil,
	)
	if err != nil {
		return domain.Account{}, err
	}
	entity.Role = domain.Role(role)
	entity.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	if lockedUntil.Valid && lockedUntil.String != "" {
		entity.LockedUntil, _ = time.Parse(timeLayout, lockedUntil.String)
	}
	return entity, nil
}

func nullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return t.UTC().Format(timeLayout)
}
