package projections

import (
	"context"

	memberstore "lembah/internal/adapters/storage/member"
	paymentstore "lembah/internal/adapters/storage/payment"
	domainMember "lembah/internal/domain/member"
	domainPayment "lembah/internal/domain/payment"
)

// RecentPaymentsLimit is how many ledger entries the cashier page shows.
const RecentPaymentsLimit = 10

// GetPaymentsPageDeps holds dependencies for GetPaymentsPage.
type GetPaymentsPageDeps struct {
	MemberStore  MemberStore
	PaymentStore PaymentStore
}

// PaymentsPageResult carries the cashier page data.
type PaymentsPageResult struct {
	Members      []domainMember.Member // alphabetical, for the member picker
	Recent       []paymentstore.Entry  // newest first
	MonthOptions []int
}

// QueryGetPaymentsPage loads the member picker and the latest payments.
// POST: len(Recent) <= RecentPaymentsLimit
func QueryGetPaymentsPage(ctx context.Context, deps GetPaymentsPageDeps) (PaymentsPageResult, error) {
	members, err := deps.MemberStore.List(ctx, memberstore.ListFilter{Order: memberstore.ByName})
	if err != nil {
		return PaymentsPageResult{}, err
	}
	recent, err := deps.PaymentStore.ListRecent(ctx, RecentPaymentsLimit)
	if err != nil {
		return PaymentsPageResult{}, err
	}
	return PaymentsPageResult{
		Members:      members,
		Recent:       recent,
		MonthOptions: domainPayment.MonthOptions,
	}, nil
}
