package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"
	"time"

	"lembah/internal/adapters/http/perf"
)

// SQLDB is what every store is constructed with. *sql.DB and *TimedDB both satisfy it.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQueryMs is used when no slow query threshold is configured.
const DefaultSlowQueryMs = 50

// TimedDB measures every statement the stores run against the gym database.
// Statements are grouped by verb and table ("SELECT member", "INSERT payment")
// so the perf page shows which table is slow rather than which method was called.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	slowMs    float64
}

// NewTimedDB wraps db. collector may be nil; slowQueryMs <= 0 selects DefaultSlowQueryMs.
func NewTimedDB(db *sql.DB, collector *perf.Collector, slowQueryMs int) *TimedDB {
	if slowQueryMs <= 0 {
		slowQueryMs = DefaultSlowQueryMs
	}
	return &TimedDB{db: db, collector: collector, slowMs: float64(slowQueryMs)}
}

func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	res, err := t.db.ExecContext(ctx, query, args...)
	t.record(query, start, err)
	return res, err
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.record(query, start, err)
	return rows, err
}

// QueryRowContext defers its error to Scan; sql.ErrNoRows never counts as a failure.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.record(query, start, row.Err())
	return row
}

func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.record("BEGIN", start, err)
	return tx, err
}

// PingContext backs the /healthz probe.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

func (t *TimedDB) record(query string, start time.Time, err error) {
	ms := float64(time.Since(start).Microseconds()) / 1000.0
	key := statementKey(query)
	if ms >= t.slowMs {
		slog.Warn("slow_query", "statement", key, "duration_ms", ms, "failed", err != nil)
	} else {
		slog.Debug("query", "statement", key, "duration_ms", ms)
	}
	if t.collector == nil {
		return
	}
	t.collector.Record(perf.Entry{
		Kind:       perf.KindQuery,
		Path:       key,
		DurationMs: ms,
		Failed:     err != nil,
		Timestamp:  start,
	})
}

// statementKey reduces SQL to its verb and first table, e.g.
// "SELECT COUNT(*) FROM payment WHERE ..." becomes "SELECT payment".
func statementKey(query string) string {
	words := strings.Fields(query)
	if len(words) == 0 {
		return "?"
	}
	verb := strings.ToUpper(words[0])
	marker := ""
	switch verb {
	case "SELECT", "DELETE":
		marker = "FROM"
	case "INSERT", "REPLACE":
		marker = "INTO"
	case "UPDATE":
		if len(words) > 1 {
			return verb + " " + tableName(words[1])
		}
	}
	if marker != "" && len(words) > 1 {
		for i, w := range words[1 : len(words)-1] {
			if strings.EqualFold(w, marker) {
				return verb + " " + tableName(words[i+2])
			}
		}
	}
	return verb
}

func tableName(w string) string {
	if i := strings.IndexAny(w, "(;,"); i >= 0 {
		w = w[:i]
	}
	return strings.ToLower(w)
}
