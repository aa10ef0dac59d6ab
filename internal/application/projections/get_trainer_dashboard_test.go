package projections

import (
	"context"
	"testing"

	domainMember "lembah/internal/domain/member"
	domainLog "lembah/internal/domain/traininglog"
)

// TestQueryGetTrainerDashboard verifies only the trainer's clients appear with their latest log.
func TestQueryGetTrainerDashboard(t *testing.T) {
	members := &mockMemberStore{members: []domainMember.Member{
		{ID: 1, FullName: "Citra", TrainerID: 7, ExpiresOn: day("2024-04-01")},
		{ID: 2, FullName: "Agus", TrainerID: 7, ExpiresOn: day("2024-01-01")},
		{ID: 3, FullName: "Dewi", TrainerID: 8, ExpiresOn: day("2024-04-01")},
	}}
	logs := &mockLogStore{logs: []domainLog.Log{
		{ID: 1, MemberID: 1, WeightKg: 80, BMI: 27.7},
		{ID: 2, MemberID: 1, WeightKg: 76, BMI: 24.8},
		{ID: 3, MemberID: 3, WeightKg: 60, BMI: 21},
	}}

	result, err := QueryGetTrainerDashboard(context.Background(), GetTrainerDashboardQuery{TrainerID: 7, Today: day("2024-03-01")},
		GetTrainerDashboardDeps{MemberStore: members, LogStore: logs})
	if err != nil {
		t.Fatalf("QueryGetTrainerDashboard: %v", err)
	}
	if len(result.Clients) != 2 {
		t.Fatalf("clients = %d, want 2", len(result.Clients))
	}

	agus, citra := result.Clients[0], result.Clients[1]
	if agus.FullName != "Agus" || agus.LogCount != 0 || agus.LatestWeight != 0 || agus.BMICategory != "" {
		t.Errorf("Agus row = %+v", agus)
	}
	if agus.Active {
		t.Error("Agus should be lapsed")
	}
	if citra.LogCount != 2 || citra.LatestWeight != 76 || citra.LatestBMI != 24.8 || citra.BMICategory != "Normal" {
		t.Errorf("Citra row = %+v", citra)
	}
}

// TestQueryGetTrainerDashboard_NoTrainer verifies a zero trainer id yields no clients.
func TestQueryGetTrainerDashboard_NoTrainer(t *testing.T) {
	members := &mockMemberStore{members: []domainMember.Member{{ID: 1, FullName: "Citra"}}}
	result, err := QueryGetTrainerDashboard(context.Background(), GetTrainerDashboardQuery{Today: day("2024-03-01")},
		GetTrainerDashboardDeps{MemberStore: members, LogStore: &mockLogStore{}})
	if err != nil {
		t.Fatalf("QueryGetTrainerDashboard: %v", err)
	}
	if len(result.Clients) != 0 {
		t.Errorf("clients = %d, want 0", len(result.Clients))
	}
}
