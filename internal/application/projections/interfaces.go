package projections

import (
	"context"
	"time"

	accountstore "lembah/internal/adapters/storage/account"
	memberstore "lembah/internal/adapters/storage/member"
	paymentstore "lembah/internal/adapters/storage/payment"
	domainAccount "lembah/internal/domain/account"
	domainMember "lembah/internal/domain/member"
	domainPayment "lembah/internal/domain/payment"
	domainLog "lembah/internal/domain/traininglog"
)

// MemberStore interface for member queries.
type MemberStore interface {
	GetByID(ctx context.Context, id int64) (domainMember.Member, error)
	List(ctx context.Context, filter memberstore.ListFilter) ([]domainMember.Member, error)
	Count(ctx context.Context) (int, error)
	CountActive(ctx context.Context, today time.Time) (int, error)
	RegistrationsByMonth(ctx context.Context, year int) ([]memberstore.MonthCount, error)
}

// PaymentStore interface for payment ledger queries.
type PaymentStore interface {
	ListRecent(ctx context.Context, limit int) ([]paymentstore.Entry, error)
	ListByYear(ctx context.Context, year int) ([]paymentstore.Entry, error)
	ListByMember(ctx context.Context, memberID int64) ([]domainPayment.Payment, error)
	IncomeByMonth(ctx context.Context, year int) ([12]int, error)
}

// AccountStore interface for staff queries.
type AccountStore interface {
	GetByID(ctx context.Context, id int64) (domainAccount.Account, error)
	List(ctx context.Context, filter accountstore.ListFilter) ([]domainAccount.Account, error)
}

// TrainingLogStore interface for training log queries.
type TrainingLogStore interface {
	ListByMember(ctx context.Context, memberID int64) ([]domainLog.Log, error)
}
