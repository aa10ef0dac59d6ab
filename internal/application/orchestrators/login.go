package orchestrators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"lembah/internal/domain/account"
	"lembah/internal/domain/apperr"
)

// AccountStoreForLogin defines the store interface needed by Login.
type AccountStoreForLogin interface {
	GetByUsername(ctx context.Context, username string) (account.Account, error)
	Save(ctx context.Context, a account.Account) error
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult carries the result of a successful login.
type LoginResult struct {
	AccountID int64
	Username  string
	Role      account.Role
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	AccountStore AccountStoreForLogin
	Now          func() time.Time
}

var (
	ErrInvalidCredentials = &apperr.Error{Kind: apperr.KindUnauthorized, Message: "invalid username or password"}
	ErrAccountLocked      = &apperr.Error{Kind: apperr.KindUnauthorized, Message: "account is locked due to too many failed attempts"}
)

// ExecuteLogin validates credentials and returns account info for session creation.
// PRE: Valid username and password provided
// POST: Returns account info on success, records failed login on failure
// INVARIANT: Account must not be locked
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	now := time.Now()
	if deps.Now != nil {
		now = deps.Now()
	}

	acct, err := deps.AccountStore.GetByUsername(ctx, username)
	if err != nil {
		if apperr.KindOf(err) != apperr.KindNotFound {
			return LoginResult{}, err
		}
		slog.Info("auth_event", "event", "login_failed", "username", username, "reason", "not_found")
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.IsLocked(now) {
		slog.Info("auth_event", "event", "login_blocked", "username", username, "reason", "locked")
		return LoginResult{}, ErrAccountLocked
	}

	if !acct.CheckPassword(input.Password) {
		acct.RecordFailedLogin(now)
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("auth_event", "event", "save_failed_login", "username", username, "error", err)
		}
		slog.Info("auth_event", "event", "login_failed", "username", username, "reason", "wrong_password", "failed_logins", acct.FailedLogins)
		return LoginResult{}, ErrInvalidCredentials
	}

	if acct.FailedLogins > 0 || !acct.LockedUntil.IsZero() {
		acct.ResetFailedLogins()
		if err := deps.AccountStore.Save(ctx, acct); err != nil {
			slog.Error("auth_event", "event", "reset_failed_logins", "username", username, "error", err)
		}
	}

	slog.Info("auth_event", "event", "login_success", "username", username, "role", string(acct.Role))

	return LoginResult{
		AccountID: acct.ID,
		Username:  acct.Username,
		Role:      acct.Role,
	}, nil
}
