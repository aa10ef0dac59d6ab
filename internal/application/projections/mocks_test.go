package projections

import (
	"context"
	"sort"
	"strings"
	"time"

	accountstore "lembah/internal/adapters/storage/account"
	memberstore "lembah/internal/adapters/storage/member"
	paymentstore "lembah/internal/adapters/storage/payment"
	"lembah/internal/domain/apperr"
	domainAccount "lembah/internal/domain/account"
	domainMember "lembah/internal/domain/member"
	domainPayment "lembah/internal/domain/payment"
	domainLog "lembah/internal/domain/traininglog"
)

type mockMemberStore struct {
	members []domainMember.Member
}

// GetByID returns a seeded member by ID.
func (s *mockMemberStore) GetByID(_ context.Context, id int64) (domainMember.Member, error) {
	for _, m := range s.members {
		if m.ID == id {
			return m, nil
		}
	}
	return domainMember.Member{}, apperr.NotFound("member %d not found", id)
}

// List returns seeded members honouring the trainer filter and order.
func (s *mockMemberStore) List(_ context.Context, filter memberstore.ListFilter) ([]domainMember.Member, error) {
	var out []domainMember.Member
	for _, m := range s.members {
		if filter.TrainerID != 0 && m.TrainerID != filter.TrainerID {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if filter.Order == memberstore.ByName {
			return strings.ToLower(out[i].FullName) < strings.ToLower(out[j].FullName)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

// Count returns the number of seeded members.
func (s *mockMemberStore) Count(_ context.Context) (int, error) {
	return len(s.members), nil
}

// CountActive counts seeded members whose expiry is not before today.
func (s *mockMemberStore) CountActive(_ context.Context, today time.Time) (int, error) {
	n := 0
	for _, m := range s.members {
		if m.IsActiveOn(today) {
			n++
		}
	}
	return n, nil
}

// RegistrationsByMonth groups seeded members by registration month within year.
func (s *mockMemberStore) RegistrationsByMonth(_ context.Context, year int) ([]memberstore.MonthCount, error) {
	type key struct {
		month   int
		program domainMember.Program
	}
	counts := map[key]int{}
	for _, m := range s.members {
		if m.RegisteredOn.Year() == year {
			counts[key{int(m.RegisteredOn.Month()), m.Program}]++
		}
	}
	var out []memberstore.MonthCount
	for k, n := range counts {
		out = append(out, memberstore.MonthCount{Month: k.month, Program: k.program, Count: n})
	}
	return out, nil
}

type mockPaymentStore struct {
	payments []domainPayment.Payment
	names    map[int64]string
}

// ListRecent returns the newest seeded payments first.
func (s *mockPaymentStore) ListRecent(_ context.Context, limit int) ([]paymentstore.Entry, error) {
	var out []paymentstore.Entry
	for i := len(s.payments) - 1; i >= 0 && len(out) < limit; i-- {
		p := s.payments[i]
		out = append(out, paymentstore.Entry{Payment: p, MemberName: s.names[p.MemberID]})
	}
	return out, nil
}

// ListByYear returns seeded payments within year in seed order; 0 returns all.
func (s *mockPaymentStore) ListByYear(_ context.Context, year int) ([]paymentstore.Entry, error) {
	var out []paymentstore.Entry
	for _, p := range s.payments {
		if year == 0 || p.PaidOn.Year() == year {
			out = append(out, paymentstore.Entry{Payment: p, MemberName: s.names[p.MemberID]})
		}
	}
	return out, nil
}

// ListByMember returns a member's seeded payments.
func (s *mockPaymentStore) ListByMember(_ context.Context, memberID int64) ([]domainPayment.Payment, error) {
	var out []domainPayment.Payment
	for _, p := range s.payments {
		if p.MemberID == memberID {
			out = append(out, p)
		}
	}
	return out, nil
}

// IncomeByMonth sums seeded payments by month within year.
func (s *mockPaymentStore) IncomeByMonth(_ context.Context, year int) ([12]int, error) {
	var income [12]int
	for _, p := range s.payments {
		if p.PaidOn.Year() == year {
			income[p.PaidOn.Month()-1] += p.Amount
		}
	}
	return income, nil
}

type mockAccountStore struct {
	accounts []domainAccount.Account
}

// GetByID returns a seeded account by ID.
func (s *mockAccountStore) GetByID(_ context.Context, id int64) (domainAccount.Account, error) {
	for _, a := range s.accounts {
		if a.ID == id {
			return a, nil
		}
	}
	return domainAccount.Account{}, apperr.NotFound("account %d not found", id)
}

// List returns seeded accounts honouring the role filter.
func (s *mockAccountStore) List(_ context.Context, filter accountstore.ListFilter) ([]domainAccount.Account, error) {
	var out []domainAccount.Account
	for _, a := range s.accounts {
		if filter.Role == "" || a.Role == filter.Role {
			out = append(out, a)
		}
	}
	return out, nil
}

type mockLogStore struct {
	logs []domainLog.Log
}

// ListByMember returns a member's seeded logs in insertion order.
func (s *mockLogStore) ListByMember(_ context.Context, memberID int64) ([]domainLog.Log, error) {
	var out []domainLog.Log
	for _, l := range s.logs {
		if l.MemberID == memberID {
			out = append(out, l)
		}
	}
	return out, nil
}

func day(s string) time.Time {
	t, err := time.Parse(domainMember.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}
