package account

import (
	"context"

	domain "lembah/internal/domain/account"
)

// Store persists staff accounts.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Account, error)
	GetByUsername(ctx context.Context, username string) (domain.Account, error)
	Create(ctx context.Context, value domain.Account) (int64, error)
	Save(ctx context.Context, value domain.Account) error
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, filter ListFilter) ([]domain.Account, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Role domain.Role
}
