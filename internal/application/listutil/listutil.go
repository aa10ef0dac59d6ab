// Package listutil parses list-view query strings and cuts result sets into pages.
package listutil

import (
	"net/url"
	"slices"
	"strconv"
	"strings"
)

// DefaultPerPage is the page size when the request names none.
const DefaultPerPage = 25

// PerPageOptions are the accepted per_page values.
var PerPageOptions = []int{25, 50, 100}

// Params carries the search, filter, sort and page parsed from a request.
type Params struct {
	Search  string            // q
	Filters map[string]string // exact-match filters, e.g. program=Reguler
	Sort    string            // one of the caller's sortable columns, or ""
	Desc    bool
	Page    int // 1-indexed
	PerPage int
}

// Parse reads q, sort, dir, page, per_page and the named filter keys.
// PRE: none
// POST: Sort is "" or listed in sortable; Page >= 1; PerPage is one of PerPageOptions
func Parse(q url.Values, sortable, filterKeys []string) Params {
	p := Params{
		Search:  strings.TrimSpace(q.Get("q")),
		Filters: make(map[string]string),
		Desc:    q.Get("dir") == "desc",
		Page:    1,
		PerPage: DefaultPerPage,
	}
	if sort := q.Get("sort"); slices.Contains(sortable, sort) {
		p.Sort = sort
	} else {
		p.Desc = false
	}
	for _, key := range filterKeys {
		if v := strings.TrimSpace(q.Get(key)); v != "" {
			p.Filters[key] = v
		}
	}
	if n, err := strconv.Atoi(q.Get("page")); err == nil && n > 1 {
		p.Page = n
	}
	if n, err := strconv.Atoi(q.Get("per_page")); err == nil && slices.Contains(PerPageOptions, n) {
		p.PerPage = n
	}
	return p
}

// Query encodes p for a link to the given page, omitting defaults.
func (p Params) Query(page int) string {
	v := url.Values{}
	if p.Search != "" {
		v.Set("q", p.Search)
	}
	for key, val := range p.Filters {
		v.Set(key, val)
	}
	if p.Sort != "" {
		v.Set("sort", p.Sort)
		if p.Desc {
			v.Set("dir", "desc")
		}
	}
	if page > 1 {
		v.Set("page", strconv.Itoa(page))
	}
	if p.PerPage != 0 && p.PerPage != DefaultPerPage {
		v.Set("per_page", strconv.Itoa(p.PerPage))
	}
	return v.Encode()
}

// Matches reports whether any field contains the search term, ignoring case.
// An empty term matches everything.
func Matches(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// Page is the pagination state of one rendered list.
type Page struct {
	Number  int // current page, 1-indexed
	PerPage int
	Total   int // matching rows across all pages
	Pages   int
}

// NewPage computes pagination for total rows.
// PRE: total >= 0
// POST: Pages >= 1; Number is clamped into [1, Pages]
func NewPage(number, perPage, total int) Page {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	pages := max((total+perPage-1)/perPage, 1)
	return Page{
		Number:  min(max(number, 1), pages),
		PerPage: perPage,
		Total:   total,
		Pages:   pages,
	}
}

// Offset is the index of the first row on the page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Start is the 1-indexed first row shown, or 0 for an empty list.
func (p Page) Start() int {
	if p.Total == 0 {
		return 0
	}
	return p.Offset() + 1
}

// End is the 1-indexed last row shown.
func (p Page) End() int {
	return min(p.Offset()+p.PerPage, p.Total)
}

// Numbers returns up to five page numbers centred on the current page.
func (p Page) Numbers() []int {
	const window = 5
	start := max(p.Number-window/2, 1)
	end := min(start+window-1, p.Pages)
	start = max(end-window+1, 1)
	nums := make([]int, 0, end-start+1)
	for i := start; i <= end; i++ {
		nums = append(nums, i)
	}
	return nums
}

// Prev and Next return neighbouring page numbers, or 0 at either edge.
func (p Page) Prev() int {
	if p.Number <= 1 {
		return 0
	}
	return p.Number - 1
}

func (p Page) Next() int {
	if p.Number >= p.Pages {
		return 0
	}
	return p.Number + 1
}

// Show reports whether the list needs pagination controls.
func (p Page) Show() bool {
	return p.Pages > 1
}

// Slice returns the items that fall on page p.
func Slice[T any](items []T, p Page) []T {
	lo := min(p.Offset(), len(items))
	hi := min(lo+p.PerPage, len(items))
	return items[lo:hi]
}
