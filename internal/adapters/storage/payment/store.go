package payment

import (
	"context"

	domain "lembah/internal/domain/payment"
)

// Store reads the payment ledger. Inserts go through the member store so they
// share a transaction with the member update.
type Store interface {
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
	ListByYear(ctx context.Context, year int) ([]Entry, error)
	ListByMember(ctx context.Context, memberID int64) ([]domain.Payment, error)
	IncomeByMonth(ctx context.Context, year int) ([12]int, error)
}

// Entry is a payment joined with the paying member's name.
type Entry struct {
	domain.Payment
	MemberName string
}
