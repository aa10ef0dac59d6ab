package projections

import (
	"cmp"
	"context"
	"slices"
	"strings"
	"time"

	accountstore "lembah/internal/adapters/storage/account"
	memberstore "lembah/internal/adapters/storage/member"
	"lembah/internal/application/listutil"
	domainAccount "lembah/internal/domain/account"
	domainMember "lembah/internal/domain/member"
)

// MemberRow is a member with read-time activity derived from its expiry.
type MemberRow struct {
	domainMember.Member
	Active      bool
	DaysLeft    int
	Age         int
	TrainerName string
}

// newMemberRow derives the read-time fields for m on today.
func newMemberRow(m domainMember.Member, today time.Time, trainers map[int64]string) MemberRow {
	return MemberRow{
		Member:      m,
		Active:      m.IsActiveOn(today),
		DaysLeft:    m.DaysRemaining(today),
		Age:         m.Age(today),
		TrainerName: trainers[m.TrainerID],
	}
}

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	Today time.Time
	List  listutil.Params // zero value lists the first page, newest first
}

// Sortable columns and filter keys accepted by the member list.
var (
	MemberListSortColumns = []string{"nama", "program", "habis", "terdaftar"}
	MemberListFilterKeys  = []string{"program", "status"}
)

// Values of the status filter.
const (
	MemberStatusActive = "aktif"
	MemberStatusLapsed = "habis"
)

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members []MemberRow // the current page
	Active  int         // active members across the whole gym
	Total   int         // all members, before filtering
	Page    listutil.Page
	List    listutil.Params
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	MemberStore  MemberStore
	AccountStore AccountStore
}

// QueryGetMemberList retrieves members matching query.List, newest first unless sorted.
// PRE: query.Today is set
// POST: Active and DaysLeft are derived from ExpiresOn; the stored Status is untouched;
// Active and Total count every member regardless of the filter
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) (GetMemberListResult, error) {
	members, err := deps.MemberStore.List(ctx, memberstore.ListFilter{Order: memberstore.NewestFirst})
	if err != nil {
		return GetMemberListResult{}, err
	}
	trainers, err := trainerNames(ctx, deps.AccountStore)
	if err != nil {
		return GetMemberListResult{}, err
	}

	result := GetMemberListResult{Total: len(members), List: query.List}
	rows := make([]MemberRow, 0, len(members))
	for _, m := range members {
		row := newMemberRow(m, query.Today, trainers)
		if row.Active {
			result.Active++
		}
		if matchesList(row, query.List) {
			rows = append(rows, row)
		}
	}
	sortMemberRows(rows, query.List.Sort, query.List.Desc)

	result.Page = listutil.NewPage(query.List.Page, query.List.PerPage, len(rows))
	result.Members = listutil.Slice(rows, result.Page)
	return result, nil
}

func matchesList(row MemberRow, p listutil.Params) bool {
	if !listutil.Matches(p.Search, row.FullName, row.Phone, row.Email, row.TrainerName) {
		return false
	}
	if program, ok := p.Filters["program"]; ok && !strings.EqualFold(program, string(row.Program)) {
		return false
	}
	switch p.Filters["status"] {
	case MemberStatusActive:
		return row.Active
	case MemberStatusLapsed:
		return !row.Active
	}
	return true
}

// sortMemberRows orders rows in place; ties keep the newest-first store order.
func sortMemberRows(rows []MemberRow, column string, desc bool) {
	var compare func(a, b MemberRow) int
	switch column {
	case "nama":
		compare = func(a, b MemberRow) int { return cmp.Compare(strings.ToLower(a.FullName), strings.ToLower(b.FullName)) }
	case "program":
		compare = func(a, b MemberRow) int { return cmp.Compare(a.Program, b.Program) }
	case "habis":
		compare = func(a, b MemberRow) int { return a.ExpiresOn.Compare(b.ExpiresOn) }
	case "terdaftar":
		compare = func(a, b MemberRow) int { return a.RegisteredOn.Compare(b.RegisteredOn) }
	default:
		return
	}
	slices.SortStableFunc(rows, func(a, b MemberRow) int {
		if desc {
			return compare(b, a)
		}
		return compare(a, b)
	})
}

// trainerNames maps trainer account ids to usernames. A nil store yields an empty map.
func trainerNames(ctx context.Context, store AccountStore) (map[int64]string, error) {
	names := map[int64]string{}
	if store == nil {
		return names, nil
	}
	trainers, err := store.List(ctx, accountstore.ListFilter{Role: domainAccount.RoleTrainer})
	if err != nil {
		return nil, err
	}
	for _, a := range trainers {
		names[a.ID] = a.Username
	}
	return names, nil
}
