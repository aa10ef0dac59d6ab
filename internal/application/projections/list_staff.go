package projections

import (
	"context"

	accountstore "lembah/internal/adapters/storage/account"
	domainAccount "lembah/internal/domain/account"
)

// StaffRow is one account on the staff page.
type StaffRow struct {
	ID        int64
	Username  string
	Role      domainAccount.Role
	RoleLabel string
	Deletable bool // false for the viewer's own account and the primary manager
}

// ListStaffQuery identifies the viewer.
type ListStaffQuery struct {
	ViewerID int64
}

// ListStaffDeps holds dependencies for ListStaff.
type ListStaffDeps struct {
	AccountStore AccountStore
}

// ListStaffResult carries the staff page data.
type ListStaffResult struct {
	Staff    []StaffRow
	Roles    []domainAccount.Role
	Trainers []StaffRow
}

// QueryListStaff lists accounts ordered by role.
// POST: Deletable mirrors the staff deletion guards
func QueryListStaff(ctx context.Context, query ListStaffQuery, deps ListStaffDeps) (ListStaffResult, error) {
	accounts, err := deps.AccountStore.List(ctx, accountstore.ListFilter{})
	if err != nil {
		return ListStaffResult{}, err
	}
	result := ListStaffResult{Roles: domainAccount.ValidRoles}
	for _, a := range accounts {
		row := StaffRow{
			ID:        a.ID,
			Username:  a.Username,
			Role:      a.Role,
			RoleLabel: a.Role.Label(),
			Deletable: a.ID != query.ViewerID && !a.IsProtected(),
		}
		result.Staff = append(result.Staff, row)
		if a.IsTrainer() {
			result.Trainers = append(result.Trainers, row)
		}
	}
	return result, nil
}
