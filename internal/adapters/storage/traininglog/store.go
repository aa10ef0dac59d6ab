package traininglog

import (
	"context"

	domain "lembah/internal/domain/traininglog"
)

// Store persists append-only training logs.
type Store interface {
	Append(ctx context.Context, log domain.Log) (int64, error)
	ListByMember(ctx context.Context, memberID int64) ([]domain.Log, error)
}
