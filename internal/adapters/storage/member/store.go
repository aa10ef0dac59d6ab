package member

import (
	"context"
	"time"

	domain "lembah/internal/domain/member"
	"lembah/internal/domain/payment"
)

// Store persists Member state. Writes that touch payments run in one transaction.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Member, error)
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	CreateWithPayment(ctx context.Context, m domain.Member, p payment.Payment) (memberID, paymentID int64, err error)
	ApplyPayment(ctx context.Context, memberID int64, p payment.Payment, apply func(*domain.Member) error) (domain.Member, int64, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int, error)
	CountActive(ctx context.Context, today time.Time) (int, error)
	RegistrationsByMonth(ctx context.Context, year int) ([]MonthCount, error)
}

// Order selects the sort order of List.
type Order int

const (
	// NewestFirst sorts by descending id.
	NewestFirst Order = iota
	// ByName sorts alphabetically by full name.
	ByName
)

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	TrainerID int64 // 0 for all members
	Order     Order
}

// MonthCount is the number of members of one program registered in one month.
type MonthCount struct {
	Month   int // 1-12
	Program domain.Program
	Count   int
}
