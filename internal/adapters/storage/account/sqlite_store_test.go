package account_test

import (
	"context"
	"errors"
	"testing"
	"time"

	accountstore "lembah/internal/adapters/storage/account"
	"lembah/internal/adapters/storage/storagetest"
	"lembah/internal/domain/account"
	"lembah/internal/domain/apperr"
)

func create(t *testing.T, store *accountstore.SQLiteStore, username string, role account.Role) int64 {
	t.Helper()
	id, err := store.Create(context.Background(), account.Account{
		Username:     username,
		PasswordHash: "hash-" + username,
		Role:         role,
	})
	if err != nil {
		t.Fatalf("Create(%s): %v", username, err)
	}
	return id
}

// TestSQLiteStore_CreateAndGet verifies round trips by id and username.
func TestSQLiteStore_CreateAndGet(t *testing.T) {
	store := accountstore.NewSQLiteStore(storagetest.Open(t))
	ctx := context.Background()

	id := create(t, store, "manager", account.RoleManager)

	byID, err := store.GetByID(ctx, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if byID.Username != "manager" || byID.Role != account.RoleManager || byID.PasswordHash != "hash-manager" {
		t.Errorf("GetByID = %+v", byID)
	}
	if byID.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	byName, err := store.GetByUsername(ctx, "manager")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if byName.ID != id {
		t.Errorf("GetByUsername id = %d, want %d", byName.ID, id)
	}

	if _, err := store.GetByUsername(ctx, "nobody"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown username: err = %v, want not found", err)
	}
	if _, err := store.GetByID(ctx, 404); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown id: err = %v, want not found", err)
	}
}

// TestSQLiteStore_Create_DuplicateUsername verifies the UNIQUE constraint surfaces as Conflict.
func TestSQLiteStore_Create_DuplicateUsername(t *testing.T) {
	store := accountstore.NewSQLiteStore(storagetest.Open(t))
	create(t, store, "rina", account.RoleAdmin)

	_, err := store.Create(context.Background(), account.Account{Username: "rina", PasswordHash: "x", Role: account.RoleTrainer})
	if !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("err = %v, want conflict", err)
	}
}

// TestSQLiteStore_Save verifies lockout state persists.
func TestSQLiteStore_Save(t *testing.T) {
	store := accountstore.NewSQLiteStore(storagetest.Open(t))
	ctx := context.Background()
	id := create(t, store, "rina", account.RoleAdmin)

	acc, _ := store.GetByID(ctx, id)
	until := time.Date(2024, 1, 20, 10, 15, 0, 0, time.UTC)
	acc.FailedLogins = 5
	acc.LockedUntil = until
	if err := store.Save(ctx, acc); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, _ := store.GetByID(ctx, id)
	if got.FailedLogins != 5 || !got.LockedUntil.Equal(until) {
		t.Errorf("FailedLogins = %d, LockedUntil = %v", got.FailedLogins, got.LockedUntil)
	}

	got.ResetFailedLogins()
	if err := store.Save(ctx, got); err != nil {
		t.Fatalf("Save: %v", err)
	}
	cleared, _ := store.GetByID(ctx, id)
	if cleared.FailedLogins != 0 || !cleared.LockedUntil.IsZero() {
		t.Errorf("lockout not cleared: %+v", cleared)
	}

	if err := store.Save(ctx, account.Account{ID: 404, Role: account.RoleAdmin}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Save unknown: err = %v, want not found", err)
	}
}

// TestSQLiteStore_Delete_UnassignsClients verifies members lose their trainer in the same transaction.
func TestSQLiteStore_Delete_UnassignsClients(t *testing.T) {
	db := storagetest.Open(t)
	store := accountstore.NewSQLiteStore(db)
	ctx := context.Background()

	coach := create(t, store, "coach", account.RoleTrainer)
	storagetest.MustExec(t, db,
		"INSERT INTO member (full_name, program, trainer_id, registered_on, expires_on) VALUES ('Maya', 'Personal Trainer', ?, '2024-01-10', '2024-02-09')", coach)

	if err := store.Delete(ctx, coach); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetByID(ctx, coach); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("GetByID after delete: err = %v", err)
	}
	var assigned int
	db.QueryRow("SELECT COUNT(*) FROM member WHERE trainer_id IS NOT NULL").Scan(&assigned)
	if assigned != 0 {
		t.Errorf("members still assigned = %d, want 0", assigned)
	}
	var members int
	db.QueryRow("SELECT COUNT(*) FROM member").Scan(&members)
	if members != 1 {
		t.Errorf("members = %d, want 1", members)
	}

	if err := store.Delete(ctx, coach); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second Delete: err = %v, want not found", err)
	}
}

// TestSQLiteStore_List verifies role ordering and filtering.
func TestSQLiteStore_List(t *testing.T) {
	store := accountstore.NewSQLiteStore(storagetest.Open(t))
	ctx := context.Background()

	create(t, store, "zeta", account.RoleTrainer)
	create(t, store, "manager", account.RoleManager)
	create(t, store, "alfa", account.RoleTrainer)
	create(t, store, "rina", account.RoleAdmin)

	all, err := store.List(ctx, accountstore.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	var got []string
	for _, a := range all {
		got = append(got, a.Username)
	}
	want := []string{"rina", "manager", "alfa", "zeta"}
	if len(got) != len(want) {
		t.Fatalf("List = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("List[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	trainers, _ := store.List(ctx, accountstore.ListFilter{Role: account.RoleTrainer})
	if len(trainers) != 2 {
		t.Errorf("trainers = %d, want 2", len(trainers))
	}

	n, err := store.Count(ctx)
	if err != nil || n != 4 {
		t.Errorf("Count = %d, %v; want 4", n, err)
	}
}
