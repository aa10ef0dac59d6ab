package middleware

import (
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/csrf"
)

// RateLimiter is a per-client token bucket. Buckets refill continuously at
// rate tokens per interval and hold at most rate tokens.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	burst   float64
	perSec  float64
	done    chan struct{}
	stop    sync.Once
}

type bucket struct {
	tokens float64
	seen   time.Time
}

// NewRateLimiter allows rate requests per interval for each client.
// Idle buckets are swept in the background until Stop is called.
func NewRateLimiter(rate int, interval time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[string]*bucket),
		burst:   float64(rate),
		perSec:  float64(rate) / interval.Seconds(),
		done:    make(chan struct{}),
	}
	go rl.sweep(time.Minute)
	return rl
}

func (rl *RateLimiter) sweep(every time.Duration) {
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-rl.done:
			return
		case now := <-t.C:
			rl.mu.Lock()
			for key, b := range rl.buckets {
				// A bucket that has refilled completely carries no state.
				if b.tokens+now.Sub(b.seen).Seconds()*rl.perSec >= rl.burst {
					delete(rl.buckets, key)
				}
			}
			rl.mu.Unlock()
		}
	}
}

// Stop ends the sweep. Safe to call more than once.
func (rl *RateLimiter) Stop() {
	rl.stop.Do(func() { close(rl.done) })
}

// Allow takes a token for key.
func (rl *RateLimiter) Allow(key string) bool {
	ok, _ := rl.take(key, time.Now())
	return ok
}

// take reports whether key may proceed and, if not, how long until a token is available.
func (rl *RateLimiter) take(key string, now time.Time) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: rl.burst, seen: now}
		rl.buckets[key] = b
	}
	b.tokens = min(rl.burst, b.tokens+now.Sub(b.seen).Seconds()*rl.perSec)
	b.seen = now
	if b.tokens < 1 {
		return false, time.Duration((1 - b.tokens) / rl.perSec * float64(time.Second))
	}
	b.tokens--
	return true, 0
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// sensitive matches the requests that guess a secret: password logins and
// portal links, whose token is the only credential.
func sensitive(r *http.Request) bool {
	return (r.Method == http.MethodPost && r.URL.Path == "/login") ||
		strings.HasPrefix(r.URL.Path, "/member/dashboard/")
}

// RateLimit limits each client IP with general. When strict is non-nil, login
// attempts and portal lookups must also pass it. Rejections carry Retry-After.
func RateLimit(general, strict *RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := clientIP(r)
			now := time.Now()
			limiters := []*RateLimiter{general}
			if strict != nil && sensitive(r) {
				limiters = append(limiters, strict)
			}
			for _, l := range limiters {
				if l == nil {
					continue
				}
				if ok, wait := l.take(ip, now); !ok {
					slog.Warn("rate_limit_exceeded", "ip", ip, "path", r.URL.Path)
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
					http.Error(w, "Terlalu banyak permintaan, coba lagi sebentar.", http.StatusTooManyRequests)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds OWASP recommended headers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// CSRFOptions configures CSRF.
type CSRFOptions struct {
	Secure         bool     // production over HTTPS
	TrustedOrigins []string // host:port values allowed as Origin/Referer
}

// CSRF returns middleware that protects form submissions against CSRF.
// JSON requests (Content-Type: application/json) are exempt; browsers cannot
// send them cross-origin without a preflight.
// PRE: len(authKey) == 32
func CSRF(authKey []byte, opts CSRFOptions) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		authKey,
		csrf.Secure(opts.Secure),
		csrf.Path("/"),
		csrf.TrustedOrigins(opts.TrustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
	)

	return func(next http.Handler) http.Handler {
		protected := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
				next.ServeHTTP(w, r)
				return
			}
			if !opts.Secure {
				r = csrf.PlaintextHTTPRequest(r)
			}
			protected.ServeHTTP(w, r)
		})
	}
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("csrf_rejected", "path", r.URL.Path, "reason", reason)
	http.Error(w, "Forbidden - invalid CSRF token", http.StatusForbidden)
}

// Chain applies middlewares in order (outer to inner).
func Chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for _, m := range middlewares {
		h = m(h)
	}
	return h
}
