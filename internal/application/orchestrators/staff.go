package orchestrators

import (
	"context"
	"log/slog"
	"strings"

	"lembah/internal/domain/account"
	"lembah/internal/domain/apperr"
)

// AccountStoreForStaff defines the store interface needed by the staff orchestrators.
type AccountStoreForStaff interface {
	GetByID(ctx context.Context, id int64) (account.Account, error)
	GetByUsername(ctx context.Context, username string) (account.Account, error)
	Create(ctx context.Context, a account.Account) (int64, error)
	Save(ctx context.Context, a account.Account) error
	Delete(ctx context.Context, id int64) error
}

// --- Create Staff ---

// CreateStaffInput carries the new staff account.
type CreateStaffInput struct {
	Actor    Actor
	Username string
	Password string
	Role     string
}

// CreateStaffDeps holds dependencies for CreateStaff.
type CreateStaffDeps struct {
	AccountStore AccountStoreForStaff
}

// ExecuteCreateStaff adds a staff account.
// PRE: Actor holds CapManageStaff
// POST: account persisted with a bcrypt hash; a taken username yields Conflict
func ExecuteCreateStaff(ctx context.Context, input CreateStaffInput, deps CreateStaffDeps) (int64, error) {
	if !input.Actor.Role.Can(account.CapManageStaff) {
		return 0, apperr.Forbidden("role %s cannot manage staff", input.Actor.Role)
	}
	role, err := account.ParseRole(input.Role)
	if err != nil {
		return 0, err
	}
	acct := account.Account{
		Username: strings.TrimSpace(input.Username),
		Role:     role,
	}
	if err := acct.Validate(); err != nil {
		return 0, err
	}

	if _, err := deps.AccountStore.GetByUsername(ctx, acct.Username); err == nil {
		return 0, apperr.Conflict("username %q is already taken", acct.Username)
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return 0, err
	}

	if err := acct.SetPassword(input.Password); err != nil {
		return 0, err
	}
	id, err := deps.AccountStore.Create(ctx, acct)
	if err != nil {
		return 0, err
	}

	slog.Info("auth_event", "event", "staff_created", "username", acct.Username, "role", string(role), "by", input.Actor.Username)
	return id, nil
}

// --- Delete Staff ---

// DeleteStaffInput carries the account to remove.
type DeleteStaffInput struct {
	Actor     Actor
	AccountID int64
}

// DeleteStaffDeps holds dependencies for DeleteStaff.
type DeleteStaffDeps struct {
	AccountStore AccountStoreForStaff
}

// ExecuteDeleteStaff removes a staff account and unassigns its clients.
// PRE: Actor holds CapManageStaff
// POST: account gone; members it trained have no trainer
// INVARIANT: the actor's own account and the primary manager are never deleted
func ExecuteDeleteStaff(ctx context.Context, input DeleteStaffInput, deps DeleteStaffDeps) error {
	if !input.Actor.Role.Can(account.CapManageStaff) {
		return apperr.Forbidden("role %s cannot manage staff", input.Actor.Role)
	}
	target, err := deps.AccountStore.GetByID(ctx, input.AccountID)
	if err != nil {
		return err
	}
	if target.ID == input.Actor.ID {
		return apperr.Forbidden("cannot delete your own account")
	}
	if target.IsProtected() {
		return apperr.Forbidden("the %s account cannot be deleted", account.ManagerUsername)
	}
	if err := deps.AccountStore.Delete(ctx, target.ID); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "staff_deleted", "username", target.Username, "by", input.Actor.Username)
	return nil
}

// --- Bootstrap Manager ---

// BootstrapManagerInput carries the manager password.
type BootstrapManagerInput struct {
	Password string
}

// BootstrapManagerResult reports what the bootstrap did.
type BootstrapManagerResult struct {
	AccountID int64
	Created   bool // false when an existing manager's password was reset
}

// BootstrapManagerDeps holds dependencies for BootstrapManager.
type BootstrapManagerDeps struct {
	AccountStore AccountStoreForStaff
}

// ExecuteBootstrapManager creates the primary manager account, or resets its
// password and lockout when it already exists.
// PRE: Password is at least account.MinPasswordLength characters
// POST: an account named "manager" with role manager accepts Password
func ExecuteBootstrapManager(ctx context.Context, input BootstrapManagerInput, deps BootstrapManagerDeps) (BootstrapManagerResult, error) {
	existing, err := deps.AccountStore.GetByUsername(ctx, account.ManagerUsername)
	switch {
	case err == nil:
		if err := existing.SetPassword(input.Password); err != nil {
			return BootstrapManagerResult{}, err
		}
		existing.Role = account.RoleManager
		existing.ResetFailedLogins()
		if err := deps.AccountStore.Save(ctx, existing); err != nil {
			return BootstrapManagerResult{}, err
		}
		slog.Warn("auth_event", "event", "manager_password_reset", "username", existing.Username)
		return BootstrapManagerResult{AccountID: existing.ID}, nil
	case apperr.KindOf(err) != apperr.KindNotFound:
		return BootstrapManagerResult{}, err
	}

	acct := account.Account{Username: account.ManagerUsername, Role: account.RoleManager}
	if err := acct.SetPassword(input.Password); err != nil {
		return BootstrapManagerResult{}, err
	}
	id, err := deps.AccountStore.Create(ctx, acct)
	if err != nil {
		return BootstrapManagerResult{}, err
	}
	slog.Info("auth_event", "event", "manager_created", "username", acct.Username)
	return BootstrapManagerResult{AccountID: id, Created: true}, nil
}
