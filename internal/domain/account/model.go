package account

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"lembah/internal/domain/apperr"
)

// Max length constants for user-editable fields.
const (
	MaxUsernameLength = 50
	MinPasswordLength = 8
)

// ManagerUsername is the primary account. It can never be deleted.
const ManagerUsername = "manager"

// Lockout policy.
const (
	MaxFailedLogins = 5
	LockoutDuration = 15 * time.Minute
)

// bcryptCost is a var so tests can lower it.
var bcryptCost = 12

// Role is the closed set of staff roles.
type Role string

const (
	RoleManager Role = "manager"
	RoleAdmin   Role = "admin"
	RoleTrainer Role = "pt"
)

// ValidRoles contains all valid role values.
var ValidRoles = []Role{RoleManager, RoleAdmin, RoleTrainer}

// Capability names one guarded operation.
type Capability string

const (
	CapViewDashboard   Capability = "view_dashboard"
	CapManageMembers   Capability = "manage_members"
	CapRecordPayments  Capability = "record_payments"
	CapRegisterMembers Capability = "register_members"
	CapManageStaff     Capability = "manage_staff"
	CapViewClients     Capability = "view_clients"
	CapRecordProgress  Capability = "record_progress"
	CapViewAnyPortal   Capability = "view_any_portal"
	CapExportData      Capability = "export_data"
)

// grants maps each role to its capabilities.
var grants = map[Role]map[Capability]bool{
	RoleManager: {
		CapViewDashboard: true, CapManageMembers: true, CapRecordPayments: true,
		CapRegisterMembers: true, CapManageStaff: true, CapViewClients: true,
		CapRecordProgress: true, CapViewAnyPortal: true, CapExportData: true,
	},
	RoleAdmin: {
		CapViewDashboard: true, CapManageMembers: true, CapRecordPayments: true,
		CapRegisterMembers: true, CapRecordProgress: true, CapViewAnyPortal: true,
		CapExportData: true,
	},
	RoleTrainer: {
		CapViewDashboard: true, CapManageMembers: true, CapRecordPayments: true,
		CapRegisterMembers: true, CapViewClients: true, CapRecordProgress: true,
		CapViewAnyPortal: true,
	},
}

// ParseRole converts a raw string into a Role.
// POST: Returns a Validation error for anything outside ValidRoles
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.Valid() {
		return "", apperr.Validation("role must be one of: manager, admin, pt")
	}
	return r, nil
}

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	_, ok := grants[r]
	return ok
}

// Can reports whether the role holds the capability.
// INVARIANT: unknown roles hold no capabilities
func (r Role) Can(c Capability) bool {
	return grants[r][c]
}

// Label returns the display name of the role.
func (r Role) Label() string {
	switch r {
	case RoleManager:
		return "Manager"
	case RoleAdmin:
		return "Admin"
	case RoleTrainer:
		return "Personal Trainer"
	}
	return string(r)
}

// Account is a staff login.
type Account struct {
	ID           int64
	Username     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	FailedLogins int
	LockedUntil  time.Time
}

// Validate checks if the Account has valid data.
// PRE: Account struct is populated
// POST: Returns nil if valid, a Validation error otherwise
func (a *Account) Validate() error {
	name := strings.TrimSpace(a.Username)
	if name == "" {
		return apperr.Validation("username cannot be empty")
	}
	if len(name) > MaxUsernameLength {
		return apperr.Validation("username cannot exceed %d characters", MaxUsernameLength)
	}
	if strings.ContainsAny(name, " \t\n") {
		return apperr.Validation("username cannot contain spaces")
	}
	if !a.Role.Valid() {
		return apperr.Validation("role must be one of: manager, admin, pt")
	}
	return nil
}

// SetPassword hashes and stores a password using bcrypt.
// PRE: plaintext is at least MinPasswordLength characters
// POST: PasswordHash is set to bcrypt hash
func (a *Account) SetPassword(plaintext string) error {
	if plaintext == "" {
		return apperr.Validation("password cannot be empty")
	}
	if len(plaintext) < MinPasswordLength {
		return apperr.Validation("password must be at least %d characters", MinPasswordLength)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return err
	}
	a.PasswordHash = string(hash)
	return nil
}

// CheckPassword verifies a plaintext password against the stored hash.
// INVARIANT: Account fields are not mutated
func (a *Account) CheckPassword(plaintext string) bool {
	if a.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(plaintext)) == nil
}

// IsLocked returns true if the account is locked out at now.
func (a *Account) IsLocked(now time.Time) bool {
	if a.LockedUntil.IsZero() {
		return false
	}
	return now.Before(a.LockedUntil)
}

// RecordFailedLogin increments the failed login counter and locks the account
// after MaxFailedLogins failures.
func (a *Account) RecordFailedLogin(now time.Time) {
	a.FailedLogins++
	if a.FailedLogins >= MaxFailedLogins {
		a.LockedUntil = now.Add(LockoutDuration)
	}
}

// ResetFailedLogins clears the failed login counter and lock.
func (a *Account) ResetFailedLogins() {
	a.FailedLogins = 0
	a.LockedUntil = time.Time{}
}

// IsProtected reports whether the account is the undeletable primary manager.
func (a *Account) IsProtected() bool {
	return a.Username == ManagerUsername
}

// IsTrainer reports whether the account can be assigned members.
func (a *Account) IsTrainer() bool {
	return a.Role == RoleTrainer
}
