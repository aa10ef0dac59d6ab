package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"lembah/internal/domain/account"
	"lembah/internal/domain/apperr"
	"lembah/internal/domain/member"
	"lembah/internal/domain/traininglog"
)

// MemberLookup resolves members by id.
type MemberLookup interface {
	GetByID(ctx context.Context, id int64) (member.Member, error)
}

// TrainingLogAppender defines the store interface needed by RecordProgress.
type TrainingLogAppender interface {
	Append(ctx context.Context, log traininglog.Log) (int64, error)
}

// Actor is the authenticated staff member performing an operation.
type Actor struct {
	ID       int64
	Username string
	Role     account.Role
}

// RecordProgressInput carries a trainer's progress entry.
type RecordProgressInput struct {
	Actor        Actor
	MemberID     int64
	WeightKg     float64
	ScheduleNote string
}

// RecordProgressDeps holds dependencies for RecordProgress.
type RecordProgressDeps struct {
	MemberStore MemberLookup
	LogStore    TrainingLogAppender
	Clock       Clock
}

// ExecuteRecordProgress appends a weight/BMI snapshot for a member.
// PRE: Actor holds CapRecordProgress
// POST: a training log dated today exists; BMI derived from the member's height
// INVARIANT: trainers may only log their own clients
func ExecuteRecordProgress(ctx context.Context, input RecordProgressInput, deps RecordProgressDeps) (traininglog.Log, error) {
	if !input.Actor.Role.Can(account.CapRecordProgress) {
		return traininglog.Log{}, apperr.Forbidden("role %s cannot record progress", input.Actor.Role)
	}
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return traininglog.Log{}, err
	}
	if input.Actor.Role == account.RoleTrainer && m.TrainerID != input.Actor.ID {
		return traininglog.Log{}, apperr.Forbidden("member %d is not your client", m.ID)
	}

	log := traininglog.Log{
		MemberID:     m.ID,
		LoggedOn:     deps.Clock.Today(),
		WeightKg:     input.WeightKg,
		BMI:          traininglog.ComputeBMI(input.WeightKg, m.HeightCm),
		ScheduleNote: strings.TrimSpace(input.ScheduleNote),
	}
	if err := log.Validate(); err != nil {
		return traininglog.Log{}, err
	}
	id, err := deps.LogStore.Append(ctx, log)
	if err != nil {
		return traininglog.Log{}, err
	}
	log.ID = id

	slog.Info("member_event", "event", "progress_recorded", "member_id", m.ID, "by", input.Actor.Username, "bmi", log.BMI)
	return log, nil
}
