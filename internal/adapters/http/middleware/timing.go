package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"lembah/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is the default threshold for slow request warnings.
const DefaultSlowRequestMs = 200

// RequestIDHeader carries the per-process request number back to the client.
const RequestIDHeader = "X-Request-ID"

var requestIDCounter atomic.Uint64

type requestIDKey struct{}

// RequestIDFromContext returns the id Timing assigned, or 0 outside a request.
func RequestIDFromContext(ctx context.Context) uint64 {
	id, _ := ctx.Value(requestIDKey{}).(uint64)
	return id
}

// statusWriter records the status code a handler sent.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// routeKey groups requests for the perf snapshot: numeric path segments such as
// member and staff ids collapse to {id}.
func routeKey(method, path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if seg == "" {
			continue
		}
		if _, err := strconv.ParseInt(seg, 10, 64); err == nil {
			segments[i] = "{id}"
		}
	}
	return method + " " + strings.Join(segments, "/")
}

// Timing returns middleware that numbers, times and logs each request.
// Requests to /static/ and /healthz pass through untouched.
// Normal requests log at DEBUG; requests at or above slowRequestMs log at WARN.
// A non-positive slowRequestMs selects DefaultSlowRequestMs.
// If collector is non-nil, entries are recorded for the perf endpoint.
func Timing(collector *perf.Collector, slowRequestMs int) func(http.Handler) http.Handler {
	if slowRequestMs <= 0 {
		slowRequestMs = DefaultSlowRequestMs
	}
	threshold := float64(slowRequestMs)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/static/") || r.URL.Path == "/healthz" {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := requestIDCounter.Add(1)
			w.Header().Set(RequestIDHeader, strconv.FormatUint(reqID, 10))
			sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			route := routeKey(r.Method, r.URL.Path)

			// Deferred so a panicking handler is still recorded before it unwinds.
			defer func() {
				durationMs := float64(time.Since(start).Microseconds()) / 1000.0
				level := slog.LevelDebug
				msg := "request"
				if durationMs >= threshold {
					level, msg = slog.LevelWarn, "slow_request"
				}
				slog.Log(r.Context(), level, msg,
					"request_id", reqID,
					"route", route,
					"path", r.URL.Path,
					"status", sw.status,
					"duration_ms", durationMs,
				)

				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       route,
						StatusCode: sw.status,
						DurationMs: durationMs,
						Timestamp:  start,
					})
				}
			}()

			next.ServeHTTP(sw, r.WithContext(context.WithValue(r.Context(), requestIDKey{}, reqID)))
		})
	}
}
