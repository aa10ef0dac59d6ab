package traininglog

import (
	"math"
	"time"

	"lembah/internal/domain/apperr"
)

// MaxScheduleNoteLength is the maximum length of the schedule note.
const MaxScheduleNoteLength = 200

// Log is an append-only progress snapshot for a member.
type Log struct {
	ID           int64
	MemberID     int64
	LoggedOn     time.Time
	WeightKg     float64
	BMI          float64
	ScheduleNote string // markdown
}

// Validate checks if the Log has valid data.
// PRE: Log struct is populated
// POST: Returns a Validation error if weight or date is missing
func (l *Log) Validate() error {
	if l.MemberID <= 0 {
		return apperr.Validation("member is required")
	}
	if l.WeightKg <= 0 {
		return apperr.Validation("weight must be positive")
	}
	if l.LoggedOn.IsZero() {
		return apperr.Validation("date is required")
	}
	if len(l.ScheduleNote) > MaxScheduleNoteLength {
		return apperr.Validation("schedule note cannot exceed %d characters", MaxScheduleNoteLength)
	}
	return nil
}

// ComputeBMI returns weight / height(m)^2 rounded to one decimal,
// or 0 when either input is unknown.
func ComputeBMI(weightKg float64, heightCm int) float64 {
	if weightKg <= 0 || heightCm <= 0 {
		return 0
	}
	h := float64(heightCm) / 100
	return math.Round(weightKg/(h*h)*10) / 10
}

// Category returns the WHO BMI band for a value, or "" for 0.
func Category(bmi float64) string {
	switch {
	case bmi <= 0:
		return ""
	case bmi < 18.5:
		return "Kurus"
	case bmi < 25:
		return "Normal"
	case bmi < 30:
		return "Gemuk"
	default:
		return "Obesitas"
	}
}
