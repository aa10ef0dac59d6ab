package orchestrators

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lembah/internal/domain/account"
	"lembah/internal/domain/apperr"
	"lembah/internal/domain/member"
	"lembah/internal/domain/payment"
	"lembah/internal/domain/traininglog"
)

// --- Mock member store ---

type mockMemberStore struct {
	members  map[int64]member.Member
	payments []payment.Payment
	nextID   int64
	failNext error
}

func newMockMemberStore() *mockMemberStore {
	return &mockMemberStore{members: make(map[int64]member.Member)}
}

func (s *mockMemberStore) GetByID(_ context.Context, id int64) (member.Member, error) {
	m, ok := s.members[id]
	if !ok {
		return member.Member{}, apperr.NotFound("member %d not found", id)
	}
	return m, nil
}

func (s *mockMemberStore) CreateWithPayment(_ context.Context, m member.Member, p payment.Payment) (int64, int64, error) {
	if err := s.failNext; err != nil {
		s.failNext = nil
		return 0, 0, err
	}
	s.nextID++
	m.ID = s.nextID
	s.members[m.ID] = m
	p.MemberID = m.ID
	p.ID = int64(len(s.payments) + 1)
	s.payments = append(s.payments, p)
	return m.ID, p.ID, nil
}

// ApplyPayment mimics the transactional store: nothing is written when apply fails.
func (s *mockMemberStore) ApplyPayment(_ context.Context, id int64, p payment.Payment, apply func(*member.Member) error) (member.Member, int64, error) {
	m, ok := s.members[id]
	if !ok {
		return member.Member{}, 0, apperr.NotFound("member %d not found", id)
	}
	if err := apply(&m); err != nil {
		return member.Member{}, 0, err
	}
	s.members[id] = m
	p.MemberID = id
	p.ID = int64(len(s.payments) + 1)
	s.payments = append(s.payments, p)
	return m, p.ID, nil
}

func (s *mockMemberStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.members[id]; !ok {
		return apperr.NotFound("member %d not found", id)
	}
	delete(s.members, id)
	kept := s.payments[:0]
	for _, p := range s.payments {
		if p.MemberID != id {
			kept = append(kept, p)
		}
	}
	s.payments = kept
	return nil
}

func (s *mockMemberStore) add(m member.Member) member.Member {
	s.nextID++
	m.ID = s.nextID
	s.members[m.ID] = m
	return m
}

// --- Mock account store ---

type mockAccountStore struct {
	accounts map[int64]account.Account
	nextID   int64
}

func newMockAccountStore() *mockAccountStore {
	return &mockAccountStore{accounts: make(map[int64]account.Account)}
}

func (s *mockAccountStore) GetByID(_ context.Context, id int64) (account.Account, error) {
	a, ok := s.accounts[id]
	if !ok {
		return account.Account{}, apperr.NotFound("account %d not found", id)
	}
	return a, nil
}

func (s *mockAccountStore) GetByUsername(_ context.Context, username string) (account.Account, error) {
	for _, a := range s.accounts {
		if a.Username == username {
			return a, nil
		}
	}
	return account.Account{}, apperr.NotFound("account not found")
}

func (s *mockAccountStore) Create(_ context.Context, a account.Account) (int64, error) {
	for _, existing := range s.accounts {
		if existing.Username == a.Username {
			return 0, apperr.Conflict("username %q is already taken", a.Username)
		}
	}
	s.nextID++
	a.ID = s.nextID
	s.accounts[a.ID] = a
	return a.ID, nil
}

func (s *mockAccountStore) Save(_ context.Context, a account.Account) error {
	if _, ok := s.accounts[a.ID]; !ok {
		return apperr.NotFound("account %d not found", a.ID)
	}
	s.accounts[a.ID] = a
	return nil
}

func (s *mockAccountStore) Delete(_ context.Context, id int64) error {
	if _, ok := s.accounts[id]; !ok {
		return apperr.NotFound("account %d not found", id)
	}
	delete(s.accounts, id)
	return nil
}

func (s *mockAccountStore) usernames() []string {
	var out []string
	for _, a := range s.accounts {
		out = append(out, a.Username)
	}
	sort.Strings(out)
	return out
}

// addAccount stores an account whose password is hashed at the minimum cost.
func (s *mockAccountStore) addAccount(t *testing.T, username, password string, role account.Role) account.Account {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	a := account.Account{Username: username, PasswordHash: string(hash), Role: role}
	id, err := s.Create(context.Background(), a)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	a.ID = id
	return a
}

// --- Mock training log store ---

type mockLogStore struct {
	logs []traininglog.Log
}

func (s *mockLogStore) Append(_ context.Context, l traininglog.Log) (int64, error) {
	l.ID = int64(len(s.logs) + 1)
	s.logs = append(s.logs, l)
	return l.ID, nil
}

// --- Helpers ---

func fixedClock(day string) Clock {
	t, err := time.Parse(member.DateLayout, day)
	if err != nil {
		panic(err)
	}
	return Clock{Now: func() time.Time { return t.Add(9 * time.Hour) }}
}

func date(s string) time.Time {
	t, err := time.Parse(member.DateLayout, s)
	if err != nil {
		panic(err)
	}
	return t
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return "id-" + string(rune('0'+n))
	}
}

func assertKind(t *testing.T, err error, want apperr.Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v error, got nil", want)
	}
	if got := apperr.KindOf(err); got != want {
		t.Fatalf("error kind = %v (%v), want %v", got, err, want)
	}
}

var errBoom = errors.New("boom")
