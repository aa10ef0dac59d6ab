package member

import (
	"strings"
	"time"

	"lembah/internal/domain/apperr"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength    = 100
	MaxPhoneLength   = 20
	MaxGoalLength    = 50
	MaxAddressLength = 500
)

// Program is the membership plan.
type Program string

const (
	ProgramInsidental      Program = "Insidental"
	ProgramReguler         Program = "Reguler"
	ProgramPersonalTrainer Program = "Personal Trainer"
)

// Programs lists every program in display order.
var Programs = []Program{ProgramInsidental, ProgramReguler, ProgramPersonalTrainer}

// StatusActive is the stored status written by registration and payment.
// Lapsed membership is derived from ExpiresOn, never stored.
const StatusActive = "Aktif"

// DaysPerMonth is the length of one paid month.
const DaysPerMonth = 30

// Goals offered for Personal Trainer members.
var Goals = []string{"Muscle Gain", "Bulking", "Cutting"}

// Genders offered on the registration form.
var Genders = []string{"Laki-laki", "Perempuan"}

// ParseProgram converts a raw form value into a Program.
func ParseProgram(s string) (Program, error) {
	p := Program(strings.TrimSpace(s))
	if !p.Valid() {
		return "", apperr.Validation("program must be one of: Insidental, Reguler, Personal Trainer")
	}
	return p, nil
}

// Valid reports whether p is a known program.
func (p Program) Valid() bool {
	switch p {
	case ProgramInsidental, ProgramReguler, ProgramPersonalTrainer:
		return true
	}
	return false
}

// NeedsProfile reports whether the program requires gender and address.
func (p Program) NeedsProfile() bool {
	return p == ProgramReguler || p == ProgramPersonalTrainer
}

// NeedsPhysical reports whether the program tracks height, weight, goal and trainer.
func (p Program) NeedsPhysical() bool {
	return p == ProgramPersonalTrainer
}

// InitialExpiry returns the expiry date for a member registering today.
// Insidental is valid for the registration day only; monthly programs get one month.
// POST: result >= today
func (p Program) InitialExpiry(today time.Time) time.Time {
	today = DateOf(today)
	if p == ProgramInsidental {
		return today
	}
	return today.AddDate(0, 0, DaysPerMonth)
}

// Member is a gym customer.
type Member struct {
	ID           int64
	FullName     string
	Program      Program
	Phone        string
	Email        string
	Gender       string
	Address      string
	BirthDate    time.Time // zero when unknown
	HeightCm     int       // 0 when unknown
	WeightKg     int       // 0 when unknown
	Goal         string
	TrainerID    int64 // 0 when unassigned
	Status       string
	RegisteredOn time.Time
	ExpiresOn    time.Time
	PortalToken  string
}

// Validate checks if the Member has valid data for its program.
// PRE: Member struct is populated
// POST: Returns a Validation error if a required field is missing
// INVARIANT: ExpiresOn is set and not before RegisteredOn
func (m *Member) Validate() error {
	if strings.TrimSpace(m.FullName) == "" {
		return apperr.Validation("name is required")
	}
	if len(m.FullName) > MaxNameLength {
		return apperr.Validation("name cannot exceed %d characters", MaxNameLength)
	}
	if len(m.Phone) > MaxPhoneLength {
		return apperr.Validation("phone number cannot exceed %d characters", MaxPhoneLength)
	}
	if m.Email != "" && !strings.Contains(m.Email, "@") {
		return apperr.Validation("email must be valid")
	}
	if !m.Program.Valid() {
		return apperr.Validation("program must be one of: Insidental, Reguler, Personal Trainer")
	}
	if m.Program.NeedsProfile() {
		if strings.TrimSpace(m.Gender) == "" {
			return apperr.Validation("gender is required for %s", m.Program)
		}
		if strings.TrimSpace(m.Address) == "" {
			return apperr.Validation("address is required for %s", m.Program)
		}
		if len(m.Address) > MaxAddressLength {
			return apperr.Validation("address cannot exceed %d characters", MaxAddressLength)
		}
	}
	if m.Program.NeedsPhysical() {
		if m.HeightCm <= 0 {
			return apperr.Validation("height is required for %s", m.Program)
		}
		if m.WeightKg <= 0 {
			return apperr.Validation("weight is required for %s", m.Program)
		}
		if strings.TrimSpace(m.Goal) == "" {
			return apperr.Validation("goal is required for %s", m.Program)
		}
		if len(m.Goal) > MaxGoalLength {
			return apperr.Validation("goal cannot exceed %d characters", MaxGoalLength)
		}
	}
	if m.ExpiresOn.IsZero() {
		return apperr.Validation("expiry date is required")
	}
	if !m.RegisteredOn.IsZero() && m.ExpiresOn.Before(m.RegisteredOn) {
		return apperr.Validation("expiry date cannot be before registration date")
	}
	return nil
}

// Normalize drops fields the program does not use.
// POST: Insidental keeps only name, phone and email; Reguler has no physical data or trainer
func (m *Member) Normalize() {
	if !m.Program.NeedsProfile() {
		m.Gender = ""
		m.Address = ""
		m.BirthDate = time.Time{}
	}
	if !m.Program.NeedsPhysical() {
		m.HeightCm = 0
		m.WeightKg = 0
		m.Goal = ""
		m.TrainerID = 0
	}
}

// IsActiveOn reports whether today falls inside the paid period.
// This is independent of the stored Status flag.
// INVARIANT: Member fields are not mutated
func (m *Member) IsActiveOn(today time.Time) bool {
	return !m.ExpiresOn.Before(DateOf(today))
}

// DaysRemaining returns the number of paid days left counting today,
// or 0 once lapsed.
func (m *Member) DaysRemaining(today time.Time) int {
	today = DateOf(today)
	if m.ExpiresOn.Before(today) {
		return 0
	}
	return DaysBetween(today, m.ExpiresOn) + 1
}

// ExtendFrom returns the anchor for a renewal paid today: the later of today
// and the current expiry. Lapsed time is never stacked.
func (m *Member) ExtendFrom(today time.Time) time.Time {
	today = DateOf(today)
	if m.ExpiresOn.Before(today) {
		return today
	}
	return m.ExpiresOn
}

// ApplyPayment extends the membership by months paid today and marks it active.
// PRE: months > 0
// POST: ExpiresOn = max(today, old ExpiresOn) + 30*months days; Status = Aktif
func (m *Member) ApplyPayment(today time.Time, months int) error {
	if months <= 0 {
		return apperr.Validation("month count must be positive")
	}
	m.ExpiresOn = m.ExtendFrom(today).AddDate(0, 0, DaysPerMonth*months)
	m.Status = StatusActive
	return nil
}

// Register sets the lifecycle fields of a new member joining today.
// POST: Status = Aktif, RegisteredOn = today, ExpiresOn from the program
func (m *Member) Register(today time.Time) {
	today = DateOf(today)
	m.Status = StatusActive
	m.RegisteredOn = today
	m.ExpiresOn = m.Program.InitialExpiry(today)
}

// Age returns the member's age in whole years at today, or 0 when the birth date is unknown.
func (m *Member) Age(today time.Time) int {
	if m.BirthDate.IsZero() {
		return 0
	}
	years := today.Year() - m.BirthDate.Year()
	if today.Month() < m.BirthDate.Month() ||
		(today.Month() == m.BirthDate.Month() && today.Day() < m.BirthDate.Day()) {
		years--
	}
	if years < 0 {
		return 0
	}
	return years
}
