package projections

import (
	"context"
	"time"

	domainMember "lembah/internal/domain/member"
)

// MonthLabels are the short Indonesian month names used on the dashboard charts.
var MonthLabels = [12]string{"Jan", "Feb", "Mar", "Apr", "Mei", "Jun", "Jul", "Agu", "Sep", "Okt", "Nov", "Des"}

// GetDashboardQuery carries input for the dashboard projection.
type GetDashboardQuery struct {
	Today time.Time
}

// GetDashboardDeps holds dependencies for the dashboard projection.
type GetDashboardDeps struct {
	MemberStore  MemberStore
	PaymentStore PaymentStore
}

// ProgramSeries is one program's registrations per month.
type ProgramSeries struct {
	Program domainMember.Program
	Counts  [12]int
}

// DashboardResult carries the output of the dashboard projection.
type DashboardResult struct {
	Year   int
	Month  int // 1-12
	Labels [12]string

	IncomePerMonth [12]int
	MonthIncome    int
	YearIncome     int

	// RegistrationsPerProgram has an entry for every program, zero-filled.
	RegistrationsPerProgram map[domainMember.Program][12]int

	ActiveMembers int
	TotalMembers  int
}

// Series returns RegistrationsPerProgram in display order.
func (r DashboardResult) Series() []ProgramSeries {
	out := make([]ProgramSeries, 0, len(domainMember.Programs))
	for _, p := range domainMember.Programs {
		out = append(out, ProgramSeries{Program: p, Counts: r.RegistrationsPerProgram[p]})
	}
	return out
}

// QueryGetDashboard aggregates the current year's income and registrations.
// PRE: query.Today is set
// POST: every series has 12 entries; YearIncome == sum(IncomePerMonth); MonthIncome == IncomePerMonth[Month-1]
func QueryGetDashboard(ctx context.Context, query GetDashboardQuery, deps GetDashboardDeps) (DashboardResult, error) {
	year, month := query.Today.Year(), int(query.Today.Month())

	income, err := deps.PaymentStore.IncomeByMonth(ctx, year)
	if err != nil {
		return DashboardResult{}, err
	}
	counts, err := deps.MemberStore.RegistrationsByMonth(ctx, year)
	if err != nil {
		return DashboardResult{}, err
	}

	regs := make(map[domainMember.Program][12]int, len(domainMember.Programs))
	for _, p := range domainMember.Programs {
		regs[p] = [12]int{}
	}
	for _, c := range counts {
		if c.Month < 1 || c.Month > 12 {
			continue
		}
		series, ok := regs[c.Program]
		if !ok {
			continue
		}
		series[c.Month-1] += c.Count
		regs[c.Program] = series
	}

	total, err := deps.MemberStore.Count(ctx)
	if err != nil {
		return DashboardResult{}, err
	}
	active, err := deps.MemberStore.CountActive(ctx, query.Today)
	if err != nil {
		return DashboardResult{}, err
	}

	result := DashboardResult{
		Year:                    year,
		Month:                   month,
		Labels:                  MonthLabels,
		IncomePerMonth:          income,
		MonthIncome:             income[month-1],
		RegistrationsPerProgram: regs,
		ActiveMembers:           active,
		TotalMembers:            total,
	}
	for _, v := range income {
		result.YearIncome += v
	}
	return result, nil
}
