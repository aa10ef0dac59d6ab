package payment

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"lembah/internal/domain/apperr"
)

// MaxNoteLength is the maximum length of the free-text note.
const MaxNoteLength = 100

// MonthOptions are the renewal lengths offered at the cashier.
// Any positive month count is accepted.
var MonthOptions = []int{1, 3, 6, 12}

// Payment is an immutable ledger entry. It is never updated; it is deleted only
// together with its member.
type Payment struct {
	ID        int64
	MemberID  int64
	PaidOn    time.Time
	Amount    int
	Note      string
	Reference string
}

// Validate checks if the Payment has valid data.
// PRE: Payment struct is populated
// POST: Returns a Validation error for a non-positive amount or an oversized note
func (p *Payment) Validate() error {
	if p.Amount <= 0 {
		return apperr.Validation("nominal must be a positive amount")
	}
	if len(p.Note) > MaxNoteLength {
		return apperr.Validation("note cannot exceed %d characters", MaxNoteLength)
	}
	if p.PaidOn.IsZero() {
		return apperr.Validation("payment date is required")
	}
	return nil
}

// RegistrationNote is the note written on a member's founding payment.
func RegistrationNote(program string) string {
	return "Pendaftaran " + program
}

// RenewalNote is the default note for a renewal without one.
func RenewalNote(months int) string {
	return fmt.Sprintf("Perpanjangan %d bulan", months)
}

// FormatRupiah renders an amount with dot thousand separators, e.g. "Rp 200.000".
func FormatRupiah(amount int) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.Itoa(amount)
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	return "Rp " + sign + b.String()
}
