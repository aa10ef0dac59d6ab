package perf

import (
	"math"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the default capacity of the ring buffer.
const DefaultRingSize = 10000

// EntryKind distinguishes request vs query entries.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
)

// Entry is a single timing record stored in the ring buffer.
type Entry struct {
	Kind       EntryKind
	Path       string // route for requests, "VERB table" for queries
	StatusCode int    // HTTP status (0 for queries)
	DurationMs float64
	Failed     bool // query returned an error; requests derive this from StatusCode
	Timestamp  time.Time
}

// failed reports whether the entry counts as an error.
func (e Entry) failed() bool {
	if e.Kind == KindRequest {
		return e.StatusCode >= 500
	}
	return e.Failed
}

// Collector is a fixed-size ring buffer for timing entries.
// When full, the oldest entries are overwritten. Aggregation happens on read.
type Collector struct {
	mu      sync.Mutex
	entries []Entry
	size    int
	pos     int
	count   int64 // atomic
	errors  int64 // atomic
}

// NewCollector creates a collector with the given ring buffer capacity.
// A non-positive size selects DefaultRingSize.
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{
		entries: make([]Entry, size),
		size:    size,
	}
}

// Record appends an entry to the ring buffer.
// POST: entry stored; if the buffer is full the oldest entry is overwritten
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.entries[c.pos] = e
	c.pos = (c.pos + 1) % c.size
	c.mu.Unlock()
	atomic.AddInt64(&c.count, 1)
	if e.failed() {
		atomic.AddInt64(&c.errors, 1)
	}
}

// TotalRecorded returns the total number of entries ever recorded.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.count)
}

// TotalFailed returns the number of recorded 5xx requests and failed queries.
func (c *Collector) TotalFailed() int64 {
	return atomic.LoadInt64(&c.errors)
}

// PathStat aggregates timing for one request path or query method.
type PathStat struct {
	Path    string  `json:"path"`
	Count   int     `json:"count"`
	Errors  int     `json:"errors"`
	AvgMs   float64 `json:"avg_ms"`
	MaxMs   float64 `json:"max_ms"`
	TotalMs float64 `json:"total_ms"`
}

func (s *PathStat) add(e Entry) {
	s.Count++
	s.TotalMs += e.DurationMs
	if e.DurationMs > s.MaxMs {
		s.MaxMs = e.DurationMs
	}
	if e.failed() {
		s.Errors++
	}
}

// Snapshot holds aggregated performance data computed on read.
// It is served as JSON by the manager perf endpoint.
type Snapshot struct {
	Since          time.Time  `json:"since"`
	TotalRecorded  int64      `json:"total_recorded"`
	TotalFailed    int64      `json:"total_failed"`
	Requests       int        `json:"requests"`
	RequestP50Ms   float64    `json:"request_p50_ms"`
	RequestP95Ms   float64    `json:"request_p95_ms"`
	RequestP99Ms   float64    `json:"request_p99_ms"`
	SlowestPaths   []PathStat `json:"slowest_paths"`
	SlowestQueries []PathStat `json:"slowest_queries"`
}

// Snapshot aggregates the entries recorded at or after since.
// PRE: topN > 0
// POST: SlowestPaths and SlowestQueries hold at most topN entries, ordered by average duration
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, c.size)
	copy(buf, c.entries)
	c.mu.Unlock()

	var durations []float64
	stats := map[EntryKind]map[string]*PathStat{
		KindRequest: {},
		KindQuery:   {},
	}

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		byPath, ok := stats[e.Kind]
		if !ok {
			continue
		}
		s, ok := byPath[e.Path]
		if !ok {
			s = &PathStat{Path: e.Path}
			byPath[e.Path] = s
		}
		s.add(e)
		if e.Kind == KindRequest {
			durations = append(durations, e.DurationMs)
		}
	}

	snap := Snapshot{
		Since:          since,
		TotalRecorded:  c.TotalRecorded(),
		TotalFailed:    c.TotalFailed(),
		Requests:       len(durations),
		SlowestPaths:   topByAvg(stats[KindRequest], topN),
		SlowestQueries: topByAvg(stats[KindQuery], topN),
	}
	if len(durations) > 0 {
		sort.Float64s(durations)
		snap.RequestP50Ms = percentile(durations, 50)
		snap.RequestP95Ms = percentile(durations, 95)
		snap.RequestP99Ms = percentile(durations, 99)
	}
	return snap
}

// percentile interpolates the p-th percentile of a sorted slice.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (p / 100) * float64(len(sorted)-1)
	lower := int(math.Floor(idx))
	upper := int(math.Ceil(idx))
	if lower == upper || upper >= len(sorted) {
		return sorted[lower]
	}
	frac := idx - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// topByAvg returns the n slowest stats by average duration, ties broken by path.
func topByAvg(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].AvgMs != list[j].AvgMs {
			return list[i].AvgMs > list[j].AvgMs
		}
		return list[i].Path < list[j].Path
	})
	if n >= 0 && len(list) > n {
		list = list[:n]
	}
	return list
}
