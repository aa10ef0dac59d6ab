package traininglog

import (
	"context"
	"fmt"

	"lembah/internal/adapters/storage"
	"lembah/internal/domain/apperr"
	"lembah/internal/domain/member"
	domain "lembah/internal/domain/traininglog"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new TrainingLogStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Append inserts a training log and returns its ID.
// PRE: log has been validated
// POST: Row inserted; an unknown member yields NotFound
func (s *SQLiteStore) Append(ctx context.Context, log domain.Log) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO training_log (member_id, logged_on, weight_kg, bmi, schedule_note) VALUES (?, ?, ?, ?, ?)",
		log.MemberID,
		member.FormatDate(log.LoggedOn),
		log.WeightKg,
		log.BMI,
		log.ScheduleNote,
	)
	if storage.IsForeignKeyViolation(err) {
		return 0, apperr.Wrap(apperr.KindNotFound, err, fmt.Sprintf("member %d not found", log.MemberID))
	}
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// ListByMember returns a member's logs ordered by date ascending.
func (s *SQLiteStore) ListByMember(ctx context.Context, memberID int64) ([]domain.Log, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, member_id, logged_on, weight_kg, bmi, schedule_note FROM training_log WHERE member_id = ? ORDER BY logged_on, id",
		memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Log
	for rows.Next() {
		var l domain.Log
		var loggedOn string
		if err := rows.Scan(&l.ID, &l.MemberID, &loggedOn, &l.WeightKg, &l.BMI, &l.ScheduleNote); err != nil {
			return nil, err
		}
		if l.LoggedOn, err = member.ParseDate(loggedOn); err != nil {
			return nil, fmt.Errorf("training log %d: %w", l.ID, err)
		}
		results = append(results, l)
	}
	return results, rows.Err()
}
