package projections

import (
	"context"
	"crypto/subtle"
	"time"

	"lembah/internal/domain/apperr"
	domainPayment "lembah/internal/domain/payment"
	domainLog "lembah/internal/domain/traininglog"
)

// GetMemberPortalQuery identifies the member and how the viewer is authorized.
type GetMemberPortalQuery struct {
	MemberID  int64
	Token     string // portal token from the link; ignored for staff
	StaffView bool   // true when the viewer holds CapViewAnyPortal
	Today     time.Time
}

// GetMemberPortalDeps holds dependencies for GetMemberPortal.
type GetMemberPortalDeps struct {
	MemberStore  MemberStore
	PaymentStore PaymentStore
	LogStore     TrainingLogStore
	AccountStore AccountStore
}

// LogRow is a training log with its BMI band.
type LogRow struct {
	domainLog.Log
	Category string
}

// MemberPortalResult carries a member's own view.
type MemberPortalResult struct {
	Member   MemberRow
	Logs     []LogRow // oldest first
	Payments []domainPayment.Payment
}

// QueryGetMemberPortal loads one member with training history.
// PRE: query.MemberID > 0
// POST: non-staff viewers must present the member's portal token, otherwise Forbidden
func QueryGetMemberPortal(ctx context.Context, query GetMemberPortalQuery, deps GetMemberPortalDeps) (MemberPortalResult, error) {
	m, err := deps.MemberStore.GetByID(ctx, query.MemberID)
	if err != nil {
		if !query.StaffView && apperr.KindOf(err) == apperr.KindNotFound {
			// Do not reveal which ids exist.
			return MemberPortalResult{}, apperr.Forbidden("access denied")
		}
		return MemberPortalResult{}, err
	}
	if !query.StaffView {
		if m.PortalToken == "" || subtle.ConstantTimeCompare([]byte(query.Token), []byte(m.PortalToken)) != 1 {
			return MemberPortalResult{}, apperr.Forbidden("access denied")
		}
	}

	trainers := map[int64]string{}
	if m.TrainerID != 0 && deps.AccountStore != nil {
		if t, err := deps.AccountStore.GetByID(ctx, m.TrainerID); err == nil {
			trainers[t.ID] = t.Username
		}
	}

	logs, err := deps.LogStore.ListByMember(ctx, m.ID)
	if err != nil {
		return MemberPortalResult{}, err
	}
	payments, err := deps.PaymentStore.ListByMember(ctx, m.ID)
	if err != nil {
		return MemberPortalResult{}, err
	}

	result := MemberPortalResult{
		Member:   newMemberRow(m, query.Today, trainers),
		Logs:     make([]LogRow, 0, len(logs)),
		Payments: payments,
	}
	for _, l := range logs {
		result.Logs = append(result.Logs, LogRow{Log: l, Category: domainLog.Category(l.BMI)})
	}
	return result, nil
}
