package projections

import (
	"context"
	"time"

	memberstore "lembah/internal/adapters/storage/member"
	"lembah/internal/domain/export"
)

// ExportMembersDeps holds dependencies for ExportMembers.
type ExportMembersDeps struct {
	MemberStore  MemberStore
	AccountStore AccountStore
}

// QueryExportMembers builds the member table, newest first.
// PRE: today is the business day
// POST: one row per member; portal tokens are omitted
func QueryExportMembers(ctx context.Context, today time.Time, deps ExportMembersDeps) (export.Table, error) {
	members, err := deps.MemberStore.List(ctx, memberstore.ListFilter{Order: memberstore.NewestFirst})
	if err != nil {
		return export.Table{}, err
	}
	trainers, err := trainerNames(ctx, deps.AccountStore)
	if err != nil {
		return export.Table{}, err
	}
	t := export.Table{Header: export.MemberHeader, Rows: make([][]string, 0, len(members))}
	for _, m := range members {
		t.Rows = append(t.Rows, export.MemberRecord(m, trainers[m.TrainerID], m.IsActiveOn(today)))
	}
	return t, nil
}

// QueryExportPayments builds the ledger table for year, oldest first. Year 0 exports every payment.
func QueryExportPayments(ctx context.Context, year int, store PaymentStore) (export.Table, error) {
	entries, err := store.ListByYear(ctx, year)
	if err != nil {
		return export.Table{}, err
	}
	t := export.Table{Header: export.PaymentHeader, Rows: make([][]string, 0, len(entries))}
	for _, e := range entries {
		t.Rows = append(t.Rows, export.PaymentRecord(e.Payment, e.MemberName))
	}
	return t, nil
}
