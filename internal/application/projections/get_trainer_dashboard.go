package projections

import (
	"context"
	"time"

	memberstore "lembah/internal/adapters/storage/member"
	domainLog "lembah/internal/domain/traininglog"
)

// GetTrainerDashboardQuery identifies the signed-in trainer.
type GetTrainerDashboardQuery struct {
	TrainerID int64
	Today     time.Time
}

// GetTrainerDashboardDeps holds dependencies for GetTrainerDashboard.
type GetTrainerDashboardDeps struct {
	MemberStore MemberStore
	LogStore    TrainingLogStore
}

// ClientRow is a trainer's client with the latest recorded progress.
type ClientRow struct {
	MemberRow
	LatestWeight float64 // 0 when nothing was logged
	LatestBMI    float64
	BMICategory  string
	LogCount     int
}

// TrainerDashboardResult carries the trainer's clients.
type TrainerDashboardResult struct {
	Clients []ClientRow
}

// QueryGetTrainerDashboard lists the clients assigned to the trainer.
// PRE: query.TrainerID is the session's account id
// POST: only members with trainer_id == TrainerID are returned
func QueryGetTrainerDashboard(ctx context.Context, query GetTrainerDashboardQuery, deps GetTrainerDashboardDeps) (TrainerDashboardResult, error) {
	if query.TrainerID == 0 {
		return TrainerDashboardResult{}, nil
	}
	members, err := deps.MemberStore.List(ctx, memberstore.ListFilter{TrainerID: query.TrainerID, Order: memberstore.ByName})
	if err != nil {
		return TrainerDashboardResult{}, err
	}

	result := TrainerDashboardResult{Clients: make([]ClientRow, 0, len(members))}
	for _, m := range members {
		row := ClientRow{MemberRow: newMemberRow(m, query.Today, nil)}
		logs, err := deps.LogStore.ListByMember(ctx, m.ID)
		if err != nil {
			return TrainerDashboardResult{}, err
		}
		row.LogCount = len(logs)
		if n := len(logs); n > 0 {
			latest := logs[n-1]
			row.LatestWeight = latest.WeightKg
			row.LatestBMI = latest.BMI
			row.BMICategory = domainLog.Category(latest.BMI)
		}
		result.Clients = append(result.Clients, row)
	}
	return result, nil
}
