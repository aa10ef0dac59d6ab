package orchestrators

import (
	"context"
	"testing"

	"lembah/internal/domain/account"
	"lembah/internal/domain/apperr"
	"lembah/internal/domain/member"
)

// TestExecuteRecordProgress verifies who may log progress and that BMI comes from the member's height.
func TestExecuteRecordProgress(t *testing.T) {
	members := newMockMemberStore()
	client := members.add(member.Member{FullName: "Maya", Program: member.ProgramPersonalTrainer, HeightCm: 165, TrainerID: 7})
	other := members.add(member.Member{FullName: "Sari", Program: member.ProgramPersonalTrainer, TrainerID: 8})

	tests := []struct {
		name     string
		actor    Actor
		memberID int64
		weight   float64
		wantKind apperr.Kind
		wantBMI  float64
	}{
		{"own client", Actor{ID: 7, Role: account.RoleTrainer}, client.ID, 60, apperr.KindInternal, 22.0},
		{"admin any member", Actor{ID: 2, Role: account.RoleAdmin}, other.ID, 55, apperr.KindInternal, 0},
		{"other trainer's client", Actor{ID: 7, Role: account.RoleTrainer}, other.ID, 55, apperr.KindForbidden, 0},
		{"unknown role", Actor{ID: 7, Role: account.Role("guest")}, client.ID, 60, apperr.KindForbidden, 0},
		{"unknown member", Actor{ID: 1, Role: account.RoleManager}, 404, 60, apperr.KindNotFound, 0},
		{"zero weight", Actor{ID: 7, Role: account.RoleTrainer}, client.ID, 0, apperr.KindValidation, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logs := &mockLogStore{}
			deps := RecordProgressDeps{MemberStore: members, LogStore: logs, Clock: fixedClock("2024-01-24")}

			got, err := ExecuteRecordProgress(context.Background(), RecordProgressInput{
				Actor: tt.actor, MemberID: tt.memberID, WeightKg: tt.weight, ScheduleNote: " **Senin**: kardio ",
			}, deps)
			if tt.wantKind != apperr.KindInternal {
				assertKind(t, err, tt.wantKind)
				if len(logs.logs) != 0 {
					t.Error("rejected entry was appended")
				}
				return
			}
			if err != nil {
				t.Fatalf("ExecuteRecordProgress: %v", err)
			}
			if got.ID == 0 || got.BMI != tt.wantBMI || got.ScheduleNote != "**Senin**: kardio" {
				t.Errorf("log = %+v", got)
			}
			if member.FormatDate(got.LoggedOn) != "2024-01-24" {
				t.Errorf("LoggedOn = %v", got.LoggedOn)
			}
		})
	}
}
