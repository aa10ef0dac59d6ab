package projections

import (
	"context"
	"testing"

	domainMember "lembah/internal/domain/member"
	domainPayment "lembah/internal/domain/payment"
)

// TestQueryGetDashboard verifies month bucketing, year filtering and the income totals.
func TestQueryGetDashboard(t *testing.T) {
	members := &mockMemberStore{members: []domainMember.Member{
		{ID: 1, Program: domainMember.ProgramReguler, RegisteredOn: day("2024-01-10"), ExpiresOn: day("2024-02-09")},
		{ID: 2, Program: domainMember.ProgramReguler, RegisteredOn: day("2024-01-25"), ExpiresOn: day("2024-03-25")},
		{ID: 3, Program: domainMember.ProgramInsidental, RegisteredOn: day("2024-03-01"), ExpiresOn: day("2024-03-01")},
		{ID: 4, Program: domainMember.ProgramReguler, RegisteredOn: day("2023-03-01"), ExpiresOn: day("2023-04-01")},
	}}
	payments := &mockPaymentStore{payments: []domainPayment.Payment{
		{MemberID: 1, PaidOn: day("2024-01-10"), Amount: 200000},
		{MemberID: 2, PaidOn: day("2024-01-25"), Amount: 200000},
		{MemberID: 3, PaidOn: day("2024-03-01"), Amount: 25000},
		{MemberID: 2, PaidOn: day("2024-03-02"), Amount: 400000},
		{MemberID: 4, PaidOn: day("2023-03-01"), Amount: 999999},
	}}

	result, err := QueryGetDashboard(context.Background(), GetDashboardQuery{Today: day("2024-03-02")}, GetDashboardDeps{
		MemberStore: members, PaymentStore: payments,
	})
	if err != nil {
		t.Fatalf("QueryGetDashboard: %v", err)
	}

	wantIncome := [12]int{0: 400000, 2: 425000}
	if result.IncomePerMonth != wantIncome {
		t.Errorf("IncomePerMonth = %v, want %v", result.IncomePerMonth, wantIncome)
	}
	if result.MonthIncome != 425000 {
		t.Errorf("MonthIncome = %d, want 425000", result.MonthIncome)
	}
	if result.YearIncome != 825000 {
		t.Errorf("YearIncome = %d, want 825000", result.YearIncome)
	}

	if len(result.RegistrationsPerProgram) != 3 {
		t.Fatalf("programs = %d, want 3", len(result.RegistrationsPerProgram))
	}
	if got := result.RegistrationsPerProgram[domainMember.ProgramReguler]; got != [12]int{0: 2} {
		t.Errorf("Reguler = %v", got)
	}
	if got := result.RegistrationsPerProgram[domainMember.ProgramInsidental]; got != [12]int{2: 1} {
		t.Errorf("Insidental = %v", got)
	}
	if got, ok := result.RegistrationsPerProgram[domainMember.ProgramPersonalTrainer]; !ok || got != [12]int{} {
		t.Errorf("Personal Trainer = %v, %v; want zero series present", got, ok)
	}

	if result.Year != 2024 || result.Month != 3 || result.Labels[7] != "Agu" {
		t.Errorf("Year = %d, Month = %d, Labels = %v", result.Year, result.Month, result.Labels)
	}
	if result.TotalMembers != 4 || result.ActiveMembers != 1 {
		t.Errorf("TotalMembers = %d, ActiveMembers = %d", result.TotalMembers, result.ActiveMembers)
	}

	series := result.Series()
	if len(series) != 3 || series[0].Program != domainMember.ProgramInsidental || series[1].Counts[0] != 2 {
		t.Errorf("Series = %+v", series)
	}
}

// TestQueryGetDashboard_Empty verifies an empty database yields full zero series.
func TestQueryGetDashboard_Empty(t *testing.T) {
	result, err := QueryGetDashboard(context.Background(), GetDashboardQuery{Today: day("2024-12-31")}, GetDashboardDeps{
		MemberStore: &mockMemberStore{}, PaymentStore: &mockPaymentStore{},
	})
	if err != nil {
		t.Fatalf("QueryGetDashboard: %v", err)
	}
	if result.YearIncome != 0 || result.MonthIncome != 0 {
		t.Errorf("income = %d / %d, want 0", result.YearIncome, result.MonthIncome)
	}
	for _, p := range domainMember.Programs {
		if _, ok := result.RegistrationsPerProgram[p]; !ok {
			t.Errorf("missing series for %s", p)
		}
	}
}
