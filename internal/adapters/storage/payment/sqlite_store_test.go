package payment_test

import (
	"context"
	"testing"

	paymentstore "lembah/internal/adapters/storage/payment"
	"lembah/internal/adapters/storage/storagetest"
)

func seed(t *testing.T) *paymentstore.SQLiteStore {
	t.Helper()
	db := storagetest.Open(t)
	storagetest.MustExec(t, db, `INSERT INTO member (id, full_name, program, registered_on, expires_on) VALUES
		(1, 'Ana', 'Reguler', '2024-01-10', '2024-02-09'),
		(2, 'Budi', 'Insidental', '2024-02-01', '2024-02-01')`)
	storagetest.MustExec(t, db, `INSERT INTO payment (member_id, paid_on, amount, note, reference) VALUES
		(1, '2024-01-10', 200000, 'Pendaftaran Reguler', 'ref-a'),
		(2, '2024-02-01', 25000, 'Pendaftaran Insidental', NULL),
		(1, '2024-02-09', 200000, 'Perpanjangan 1 bulan', NULL),
		(1, '2024-02-20', 50000, 'Handuk', NULL),
		(1, '2023-12-31', 99999, 'Tahun lalu', NULL)`)
	return paymentstore.NewSQLiteStore(db)
}

// TestSQLiteStore_IncomeByMonth verifies per-month sums are confined to one year.
func TestSQLiteStore_IncomeByMonth(t *testing.T) {
	store := seed(t)

	income, err := store.IncomeByMonth(context.Background(), 2024)
	if err != nil {
		t.Fatalf("IncomeByMonth: %v", err)
	}
	want := [12]int{0: 200000, 1: 275000}
	if income != want {
		t.Errorf("income = %v, want %v", income, want)
	}

	empty, err := store.IncomeByMonth(context.Background(), 2030)
	if err != nil {
		t.Fatalf("IncomeByMonth: %v", err)
	}
	if empty != [12]int{} {
		t.Errorf("empty year = %v, want zeros", empty)
	}
}

// TestSQLiteStore_ListRecent verifies newest-first order, the limit and member names.
func TestSQLiteStore_ListRecent(t *testing.T) {
	store := seed(t)

	recent, err := store.ListRecent(context.Background(), 3)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("len = %d, want 3", len(recent))
	}
	if recent[0].Note != "Tahun lalu" || recent[2].Note != "Perpanjangan 1 bulan" {
		t.Errorf("order = %q, %q, %q", recent[0].Note, recent[1].Note, recent[2].Note)
	}
	if recent[0].MemberName != "Ana" {
		t.Errorf("MemberName = %q, want Ana", recent[0].MemberName)
	}
}

// TestSQLiteStore_ListByMember verifies a member's ledger is returned oldest first.
func TestSQLiteStore_ListByMember(t *testing.T) {
	store := seed(t)

	ledger, err := store.ListByMember(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListByMember: %v", err)
	}
	if len(ledger) != 4 {
		t.Fatalf("len = %d, want 4", len(ledger))
	}
	if ledger[0].Note != "Tahun lalu" || ledger[1].Reference != "ref-a" {
		t.Errorf("ledger[0] = %+v, ledger[1] = %+v", ledger[0], ledger[1])
	}
}

// TestSQLiteStore_ListByYear verifies the yearly ledger and the all-time export.
func TestSQLiteStore_ListByYear(t *testing.T) {
	store := seed(t)

	ledger, err := store.ListByYear(context.Background(), 2024)
	if err != nil {
		t.Fatalf("ListByYear: %v", err)
	}
	if len(ledger) != 4 {
		t.Fatalf("len = %d, want 4", len(ledger))
	}
	if ledger[0].Reference != "ref-a" || ledger[1].MemberName != "Budi" || ledger[3].Note != "Handuk" {
		t.Errorf("ledger = %+v", ledger)
	}

	all, err := store.ListByYear(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListByYear(0): %v", err)
	}
	if len(all) != 5 || all[0].Note != "Tahun lalu" {
		t.Errorf("all = %d entries, first %q", len(all), all[0].Note)
	}
}
