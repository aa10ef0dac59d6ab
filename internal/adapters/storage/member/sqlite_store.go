package member

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"lembah/internal/adapters/storage"
	"lembah/internal/domain/apperr"
	domain "lembah/internal/domain/member"
	"lembah/internal/domain/payment"
)

const selectColumns = `SELECT id, full_name, program, phone, email, gender, address, birth_date,
	height_cm, weight_kg, goal, trainer_id, status, registered_on, expires_on, portal_token FROM member`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MemberStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id > 0
// POST: Returns the entity or a NotFound error
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Member, error) {
	return getByID(ctx, s.db, id)
}

// queryRower is satisfied by storage.SQLDB and *sql.Tx.
type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getByID(ctx context.Context, q queryRower, id int64) (domain.Member, error) {
	row := q.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	entity, err := scanMember(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, apperr.Wrap(apperr.KindNotFound, err, fmt.Sprintf("member %d not found", id))
	}
	return entity, err
}

// List retrieves Members.
// PRE: none
// POST: Returns matching entities in the requested order
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	query := selectColumns
	var args []any
	if filter.TrainerID != 0 {
		query += " WHERE trainer_id = ?"
		args = append(args, filter.TrainerID)
	}
	switch filter.Order {
	case ByName:
		query += " ORDER BY full_name COLLATE NOCASE, id"
	default:
		query += " ORDER BY id DESC"
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Member
	for rows.Next() {
		entity, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// CreateWithPayment inserts a new member and its registration payment in one transaction.
// PRE: m and p have been validated; p.MemberID is ignored
// POST: both rows persist or neither does
func (s *SQLiteStore) CreateWithPayment(ctx context.Context, m domain.Member, p payment.Payment) (int64, int64, error) {
	var memberID, paymentID int64
	err := storage.InTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO member (full_name, program, phone, email, gender, address, birth_date,
				height_cm, weight_kg, goal, trainer_id, status, registered_on, expires_on, portal_token)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.FullName,
			string(m.Program),
			m.Phone,
			m.Email,
			m.Gender,
			m.Address,
			nullDate(m.BirthDate),
			m.HeightCm,
			m.WeightKg,
			m.Goal,
			nullID(m.TrainerID),
			m.Status,
			domain.FormatDate(m.RegisteredOn),
			domain.FormatDate(m.ExpiresOn),
			nullString(m.PortalToken),
		)
		if err != nil {
			if storage.IsForeignKeyViolation(err) {
				return apperr.Wrap(apperr.KindValidation, err, "trainer does not exist")
			}
			return fmt.Errorf("insert member: %w", err)
		}
		if memberID, err = res.LastInsertId(); err != nil {
			return err
		}
		p.MemberID = memberID
		paymentID, err = insertPayment(ctx, tx, p)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	return memberID, paymentID, nil
}

// ApplyPayment reads the member, lets apply update it, then writes the member
// and inserts p, all in one transaction.
// PRE: p has been validated; apply mutates only expiry and status
// POST: returns the updated member and the new payment id; unknown member yields NotFound
func (s *SQLiteStore) ApplyPayment(ctx context.Context, memberID int64, p payment.Payment, apply func(*domain.Member) error) (domain.Member, int64, error) {
	var updated domain.Member
	var paymentID int64
	err := storage.InTx(ctx, s.db, func(tx *sql.Tx) error {
		m, err := getByID(ctx, tx, memberID)
		if err != nil {
			return err
		}
		if err := apply(&m); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE member SET expires_on = ?, status = ? WHERE id = ?",
			domain.FormatDate(m.ExpiresOn), m.Status, m.ID,
		); err != nil {
			return fmt.Errorf("update member: %w", err)
		}
		p.MemberID = m.ID
		if paymentID, err = insertPayment(ctx, tx, p); err != nil {
			return err
		}
		updated = m
		return nil
	})
	if err != nil {
		return domain.Member{}, 0, err
	}
	return updated, paymentID, nil
}

// Delete removes a member with its payments and training logs in one transaction.
// PRE: id > 0
// POST: no row references the member; unknown id yields NotFound
func (s *SQLiteStore) Delete(ctx context.Context, id int64) error {
	return storage.InTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, q := range []string{
			"DELETE FROM payment WHERE member_id = ?",
			"DELETE FROM training_log WHERE member_id = ?",
		} {
			if _, err := tx.ExecContext(ctx, q, id); err != nil {
				return fmt.Errorf("delete dependents: %w", err)
			}
		}
		res, err := tx.ExecContext(ctx, "DELETE FROM member WHERE id = ?", id)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return apperr.NotFound("member %d not found", id)
		}
		return nil
	})
}

// Count returns the total number of members.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member").Scan(&count)
	return count, err
}

// CountActive returns the members whose paid period covers today.
func (s *SQLiteStore) CountActive(ctx context.Context, today time.Time) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM member WHERE expires_on >= ?", domain.FormatDate(today),
	).Scan(&count)
	return count, err
}

// RegistrationsByMonth counts members registered in year, grouped by month and program.
// POST: months without registrations are absent; callers zero-fill
func (s *SQLiteStore) RegistrationsByMonth(ctx context.Context, year int) ([]MonthCount, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT CAST(strftime('%m', registered_on) AS INTEGER) AS month, program, COUNT(*)
		FROM member
		WHERE strftime('%Y', registered_on) = ?
		GROUP BY month, program
		ORDER BY month, program`,
		strconv.Itoa(year),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []MonthCount
	for rows.Next() {
		var mc MonthCount
		var program string
		if err := rows.Scan(&mc.Month, &program, &mc.Count); err != nil {
			return nil, err
		}
		mc.Program = domain.Program(program)
		results = append(results, mc)
	}
	return results, rows.Err()
}

func insertPayment(ctx context.Context, tx *sql.Tx, p payment.Payment) (int64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO payment (member_id, paid_on, amount, note, reference) VALUES (?, ?, ?, ?, ?)",
		p.MemberID,
		domain.FormatDate(p.PaidOn),
		p.Amount,
		p.Note,
		nullString(p.Reference),
	)
	if storage.IsUniqueViolation(err) {
		return 0, apperr.Wrap(apperr.KindConflict, err, "payment reference already used")
	}
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	return res.LastInsertId()
}

// scanMember extracts a Member from a row scanner function.
func scanMember(scan func(dest ...any) error) (domain.Member, error) {
	var entity domain.Member
	var program, registeredOn, expiresOn string
	var birthDate, portalToken sql.NullString
	var trainerID sql.NullInt64
	err := scan(
		&entity.ID,
		&entity.FullName,
		&program,
		&entity.Phone,
		&entity.Email,
		&entity.Gender,
		&entity.Address,
		&birthDate,
		&entity.HeightCm,
		&entity.WeightKg,
		&entity.Goal,
		&trainerID,
		&entity.Status,
		&registeredOn,
		&expiresOn,
		&portalToken,
	)
	if err != nil {
		return domain.Member{}, err
	}
	entity.Program = domain.Program(program)
	entity.TrainerID = trainerID.Int64
	entity.PortalToken = portalToken.String
	if birthDate.Valid {
		entity.BirthDate, _ = domain.ParseDate(birthDate.String)
	}
	if entity.RegisteredOn, err = domain.ParseDate(registeredOn); err != nil {
		return domain.Member{}, fmt.Errorf("member %d: registered_on: %w", entity.ID, err)
	}
	if entity.ExpiresOn, err = domain.ParseDate(expiresOn); err != nil {
		return domain.Member{}, fmt.Errorf("member %d: expires_on: %w", entity.ID, err)
	}
	return entity, nil
}

func nullDate(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return domain.FormatDate(t)
}

func nullID(id int64) any {
	if id == 0 {
		return nil
	}
	return id
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
