package projections

import (
	"context"
	"slices"
	"testing"

	"lembah/internal/application/listutil"
	domainAccount "lembah/internal/domain/account"
	domainMember "lembah/internal/domain/member"
	domainPayment "lembah/internal/domain/payment"
)

// TestQueryGetMemberList verifies derived activity and trainer names.
func TestQueryGetMemberList(t *testing.T) {
	members := &mockMemberStore{members: []domainMember.Member{
		{ID: 1, FullName: "Ana", Program: domainMember.ProgramReguler, Status: domainMember.StatusActive, ExpiresOn: day("2024-02-09")},
		{ID: 2, FullName: "Budi", Program: domainMember.ProgramPersonalTrainer, Status: domainMember.StatusActive,
			ExpiresOn: day("2024-03-10"), TrainerID: 7, BirthDate: day("1990-03-01")},
	}}
	accounts := &mockAccountStore{accounts: []domainAccount.Account{{ID: 7, Username: "rudi", Role: domainAccount.RoleTrainer}}}

	result, err := QueryGetMemberList(context.Background(), GetMemberListQuery{Today: day("2024-03-01")}, GetMemberListDeps{
		MemberStore: members, AccountStore: accounts,
	})
	if err != nil {
		t.Fatalf("QueryGetMemberList: %v", err)
	}
	if len(result.Members) != 2 || result.Active != 1 {
		t.Fatalf("members = %d, active = %d", len(result.Members), result.Active)
	}

	budi, ana := result.Members[0], result.Members[1]
	if budi.FullName != "Budi" {
		t.Fatalf("first row = %q, want newest member first", budi.FullName)
	}
	if !budi.Active || budi.DaysLeft != 10 || budi.Age != 34 || budi.TrainerName != "rudi" {
		t.Errorf("Budi row = %+v", budi)
	}
	if ana.Active || ana.DaysLeft != 0 {
		t.Errorf("Ana row Active = %v, DaysLeft = %d; want lapsed", ana.Active, ana.DaysLeft)
	}
	if ana.Status != domainMember.StatusActive {
		t.Errorf("stored status changed to %q", ana.Status)
	}
}

// TestQueryGetMemberList_SearchFilterSortPage verifies list params narrow and order rows
// while the headline counts cover every member.
func TestQueryGetMemberList_SearchFilterSortPage(t *testing.T) {
	members := &mockMemberStore{members: []domainMember.Member{
		{ID: 1, FullName: "Sari", Phone: "0811", Program: domainMember.ProgramReguler, ExpiresOn: day("2024-04-01")},
		{ID: 2, FullName: "budi", Phone: "0822", Program: domainMember.ProgramReguler, ExpiresOn: day("2024-02-01")},
		{ID: 3, FullName: "Ana", Phone: "0833", Program: domainMember.ProgramInsidental, ExpiresOn: day("2024-03-02")},
		{ID: 4, FullName: "Dewi", Phone: "0811-9", Program: domainMember.ProgramReguler, ExpiresOn: day("2024-05-01")},
	}}
	today := day("2024-03-01")
	names := func(rows []MemberRow) []string {
		out := make([]string, 0, len(rows))
		for _, r := range rows {
			out = append(out, r.FullName)
		}
		return out
	}

	tests := []struct {
		name string
		list listutil.Params
		want []string
	}{
		{"default newest first", listutil.Params{}, []string{"Dewi", "Ana", "budi", "Sari"}},
		{"search phone", listutil.Params{Search: "0811"}, []string{"Dewi", "Sari"}},
		{"program filter", listutil.Params{Filters: map[string]string{"program": "insidental"}}, []string{"Ana"}},
		{"lapsed only", listutil.Params{Filters: map[string]string{"status": MemberStatusLapsed}}, []string{"budi"}},
		{"sort by name", listutil.Params{Sort: "nama"}, []string{"Ana", "budi", "Dewi", "Sari"}},
		{"sort by expiry desc", listutil.Params{Sort: "habis", Desc: true}, []string{"Dewi", "Sari", "Ana", "budi"}},
		{"second page", listutil.Params{Sort: "nama", Page: 2, PerPage: 3}, []string{"Sari"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := QueryGetMemberList(context.Background(),
				GetMemberListQuery{Today: today, List: tt.list},
				GetMemberListDeps{MemberStore: members})
			if err != nil {
				t.Fatalf("QueryGetMemberList: %v", err)
			}
			if got := names(result.Members); !slices.Equal(got, tt.want) {
				t.Errorf("members = %v, want %v", got, tt.want)
			}
			if result.Total != 4 || result.Active != 3 {
				t.Errorf("Total = %d Active = %d, want 4 and 3", result.Total, result.Active)
			}
		})
	}
}

// TestQueryGetPaymentsPage verifies the picker order and the recent-payments cap.
func TestQueryGetPaymentsPage(t *testing.T) {
	members := &mockMemberStore{members: []domainMember.Member{
		{ID: 1, FullName: "Sari"}, {ID: 2, FullName: "ana"}, {ID: 3, FullName: "Budi"},
	}}
	payments := &mockPaymentStore{names: map[int64]string{1: "Sari"}}
	for i := 0; i < RecentPaymentsLimit+3; i++ {
		payments.payments = append(payments.payments, domainPayment.Payment{ID: int64(i + 1), MemberID: 1, Amount: 1000})
	}

	result, err := QueryGetPaymentsPage(context.Background(), GetPaymentsPageDeps{MemberStore: members, PaymentStore: payments})
	if err != nil {
		t.Fatalf("QueryGetPaymentsPage: %v", err)
	}
	if got := []string{result.Members[0].FullName, result.Members[1].FullName, result.Members[2].FullName}; got[0] != "ana" || got[2] != "Sari" {
		t.Errorf("member order = %v", got)
	}
	if len(result.Recent) != RecentPaymentsLimit {
		t.Errorf("recent = %d, want %d", len(result.Recent), RecentPaymentsLimit)
	}
	if result.Recent[0].ID != int64(RecentPaymentsLimit+3) || result.Recent[0].MemberName != "Sari" {
		t.Errorf("first recent = %+v", result.Recent[0])
	}
	if len(result.MonthOptions) == 0 {
		t.Error("expected month options")
	}
}
