package payment

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"lembah/internal/adapters/storage"
	"lembah/internal/domain/member"
	domain "lembah/internal/domain/payment"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new PaymentStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

const entryColumns = `SELECT p.id, p.member_id, p.paid_on, p.amount, p.note, p.reference, m.full_name
	FROM payment p JOIN member m ON m.id = p.member_id`

// ListRecent returns the latest payments, newest first, with member names.
// PRE: limit > 0
// POST: len(result) <= limit
func (s *SQLiteStore) ListRecent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, entryColumns+` ORDER BY p.id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

// ListByYear returns the ledger for one calendar year, oldest first.
// A zero year returns every payment.
func (s *SQLiteStore) ListByYear(ctx context.Context, year int) ([]Entry, error) {
	query, args := entryColumns, []any{}
	if year != 0 {
		query += ` WHERE strftime('%Y', p.paid_on) = ?`
		args = append(args, strconv.Itoa(year))
	}
	rows, err := s.db.QueryContext(ctx, query+` ORDER BY p.paid_on, p.id`, args...)
	if err != nil {
		return nil, err
	}
	return scanEntries(rows)
}

func scanEntries(rows *sql.Rows) ([]Entry, error) {
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		var e Entry
		var paidOn string
		var reference sql.NullString
		if err := rows.Scan(&e.ID, &e.MemberID, &paidOn, &e.Amount, &e.Note, &reference, &e.MemberName); err != nil {
			return nil, err
		}
		e.Reference = reference.String
		var err error
		if e.PaidOn, err = member.ParseDate(paidOn); err != nil {
			return nil, fmt.Errorf("payment %d: %w", e.ID, err)
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// ListByMember returns a member's payments, oldest first.
func (s *SQLiteStore) ListByMember(ctx context.Context, memberID int64) ([]domain.Payment, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, member_id, paid_on, amount, note, reference FROM payment WHERE member_id = ? ORDER BY paid_on, id",
		memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Payment
	for rows.Next() {
		var p domain.Payment
		var paidOn string
		var reference sql.NullString
		if err := rows.Scan(&p.ID, &p.MemberID, &paidOn, &p.Amount, &p.Note, &reference); err != nil {
			return nil, err
		}
		p.Reference = reference.String
		if p.PaidOn, err = member.ParseDate(paidOn); err != nil {
			return nil, fmt.Errorf("payment %d: %w", p.ID, err)
		}
		results = append(results, p)
	}
	return results, rows.Err()
}

// IncomeByMonth sums payment amounts per calendar month of year.
// POST: index 0 is January; months without payments are 0
func (s *SQLiteStore) IncomeByMonth(ctx context.Context, year int) ([12]int, error) {
	var income [12]int
	rows, err := s.db.QueryContext(ctx,
		`SELECT CAST(strftime('%m', paid_on) AS INTEGER) AS month, SUM(amount)
		FROM payment
		WHERE strftime('%Y', paid_on) = ?
		GROUP BY month`,
		strconv.Itoa(year))
	if err != nil {
		return income, err
	}
	defer rows.Close()

	for rows.Next() {
		var month, total int
		if err := rows.Scan(&month, &total); err != nil {
			return income, err
		}
		if month >= 1 && month <= 12 {
			income[month-1] = total
		}
	}
	return income, rows.Err()
}
