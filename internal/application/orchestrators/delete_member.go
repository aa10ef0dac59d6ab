package orchestrators

import (
	"context"
	"log/slog"

	"lembah/internal/domain/apperr"
)

// MemberStoreForDelete defines the store interface needed by DeleteMember.
type MemberStoreForDelete interface {
	Delete(ctx context.Context, id int64) error
}

// DeleteMemberInput carries input for the orchestrator.
type DeleteMemberInput struct {
	MemberID int64
}

// DeleteMemberDeps holds dependencies for DeleteMember.
type DeleteMemberDeps struct {
	MemberStore MemberStoreForDelete
}

// ExecuteDeleteMember removes a member with its payments and training logs.
// PRE: MemberID > 0
// POST: no payment or training log references the member
func ExecuteDeleteMember(ctx context.Context, input DeleteMemberInput, deps DeleteMemberDeps) error {
	if input.MemberID <= 0 {
		return apperr.NotFound("member %d not found", input.MemberID)
	}
	if err := deps.MemberStore.Delete(ctx, input.MemberID); err != nil {
		return err
	}
	slog.Info("member_event", "event", "deleted", "member_id", input.MemberID)
	return nil
}
