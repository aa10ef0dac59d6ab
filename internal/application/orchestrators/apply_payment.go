package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"lembah/internal/domain/apperr"
	"lembah/internal/domain/member"
	"lembah/internal/domain/payment"
)

// MemberStoreForPayment defines the store interface needed by ApplyPayment.
type MemberStoreForPayment interface {
	ApplyPayment(ctx context.Context, memberID int64, p payment.Payment, apply func(*member.Member) error) (member.Member, int64, error)
}

// ApplyPaymentInput carries a renewal from the cashier form.
type ApplyPaymentInput struct {
	MemberID int64
	Amount   int
	Months   int
	Note     string
}

// ApplyPaymentResult describes the renewed membership.
type ApplyPaymentResult struct {
	PaymentID  int64
	MemberName string
	ExpiresOn  time.Time
	Reference  string
}

// ApplyPaymentDeps holds dependencies for ApplyPayment.
type ApplyPaymentDeps struct {
	MemberStore MemberStoreForPayment
	Clock       Clock
	NewID       func() string
	Receipts    ReceiptDeps
}

// ExecuteApplyPayment records a payment and extends the member's expiry.
// PRE: input.MemberID refers to a member
// POST: expiry = max(today, old expiry) + 30*months days; status Aktif; payment inserted
// INVARIANT: the member read, member update and payment insert share one transaction
func ExecuteApplyPayment(ctx context.Context, input ApplyPaymentInput, deps ApplyPaymentDeps) (ApplyPaymentResult, error) {
	if input.Amount <= 0 {
		return ApplyPaymentResult{}, apperr.Validation("nominal must be a positive amount")
	}
	if input.Months <= 0 {
		return ApplyPaymentResult{}, apperr.Validation("month count must be positive")
	}
	note := strings.TrimSpace(input.Note)
	if note == "" {
		note = payment.RenewalNote(input.Months)
	}

	today := deps.Clock.Today()
	p := payment.Payment{
		PaidOn:    today,
		Amount:    input.Amount,
		Note:      note,
		Reference: newID(deps.NewID),
	}
	if err := p.Validate(); err != nil {
		return ApplyPaymentResult{}, err
	}

	m, paymentID, err := deps.MemberStore.ApplyPayment(ctx, input.MemberID, p, func(m *member.Member) error {
		return m.ApplyPayment(today, input.Months)
	})
	if err != nil {
		return ApplyPaymentResult{}, err
	}
	p.ID, p.MemberID = paymentID, m.ID

	slog.Info("payment_event", "event", "applied",
		"member_id", m.ID, "amount", p.Amount, "months", input.Months, "expires_on", member.FormatDate(m.ExpiresOn))

	deps.Receipts.send(ctx, m, p)

	return ApplyPaymentResult{
		PaymentID:  paymentID,
		MemberName: m.FullName,
		ExpiresOn:  m.ExpiresOn,
		Reference:  p.Reference,
	}, nil
}
