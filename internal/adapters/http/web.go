package web

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"lembah/internal/adapters/http/middleware"
	"lembah/internal/adapters/http/perf"
	accountStore "lembah/internal/adapters/storage/account"
	memberStore "lembah/internal/adapters/storage/member"
	paymentStore "lembah/internal/adapters/storage/payment"
	trainingLogStore "lembah/internal/adapters/storage/traininglog"
	"lembah/internal/application/orchestrators"
	domainAccount "lembah/internal/domain/account"
)

// Stores holds all storage dependencies.
type Stores struct {
	AccountStore     accountStore.Store
	MemberStore      memberStore.Store
	PaymentStore     paymentStore.Store
	TrainingLogStore trainingLogStore.Store
}

// Options configures the HTTP surface.
type Options struct {
	CSRFKey            []byte // 32 bytes
	FlashKey           []byte // 32 or 64 bytes
	Production         bool
	TrustedOrigins     []string
	RateLimitPerSecond int // 0 disables rate limiting
	LoginPerMinute     int // login posts and portal lookups; 0 disables the stricter limit
	SlowRequestMs      int
	Location           *time.Location
	Receipts           orchestrators.ReceiptDeps
	Now                func() time.Time            // nil uses time.Now
	Ping               func(context.Context) error // backs /healthz; nil always healthy
}

// Server owns the routes, sessions and page templates of the web app.
type Server struct {
	stores    Stores
	opts      Options
	sessions  *middleware.SessionStore
	flash     *middleware.FlashStore
	collector *perf.Collector
	limiter   *middleware.RateLimiter
	strict    *middleware.RateLimiter
	clock     orchestrators.Clock
	pages     map[string]*template.Template
}

// NewServer wires the web app.
// PRE: opts.CSRFKey is 32 bytes and opts.FlashKey is non-empty
// POST: templates are parsed; a template error is returned rather than surfacing per request
func NewServer(stores Stores, opts Options, collector *perf.Collector) (*Server, error) {
	if len(opts.CSRFKey) != 32 {
		return nil, fmt.Errorf("csrf key must be 32 bytes, got %d", len(opts.CSRFKey))
	}
	if len(opts.FlashKey) == 0 {
		return nil, fmt.Errorf("flash key is required")
	}
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	s := &Server{
		stores:    stores,
		opts:      opts,
		sessions:  middleware.NewSessionStore(),
		flash:     middleware.NewFlashStore(opts.FlashKey),
		collector: collector,
		clock:     orchestrators.Clock{Now: opts.Now, Location: opts.Location},
		pages:     pages,
	}
	if opts.RateLimitPerSecond > 0 {
		s.limiter = middleware.NewRateLimiter(opts.RateLimitPerSecond, time.Second)
	}
	if opts.LoginPerMinute > 0 {
		s.strict = middleware.NewRateLimiter(opts.LoginPerMinute, time.Minute)
	}
	middleware.SecureCookies = opts.Production
	return s, nil
}

// Handler returns the routes wrapped in the middleware chain.
// Order, outermost first: Timing, RateLimit, Auth, CSRF, SecurityHeaders.
func (s *Server) Handler() http.Handler {
	chain := []func(http.Handler) http.Handler{
		middleware.SecurityHeaders,
		middleware.CSRF(s.opts.CSRFKey, middleware.CSRFOptions{
			Secure:         s.opts.Production,
			TrustedOrigins: s.opts.TrustedOrigins,
		}),
		middleware.Auth(s.sessions),
	}
	if s.limiter != nil || s.strict != nil {
		chain = append(chain, middleware.RateLimit(s.limiter, s.strict))
	}
	chain = append(chain, middleware.Timing(s.collector, s.opts.SlowRequestMs))
	return middleware.Chain(s.routes(), chain...)
}

// Close stops background work owned by the server.
func (s *Server) Close() {
	for _, l := range []*middleware.RateLimiter{s.limiter, s.strict} {
		if l != nil {
			l.Stop()
		}
	}
}

// Sessions exposes the session store so callers can sign accounts in directly.
func (s *Server) Sessions() *middleware.SessionStore {
	return s.sessions
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleHome)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("POST /logout", s.handleLogout)

	mux.Handle("GET /admin", s.guard(domainAccount.CapViewDashboard, s.handleDashboard))
	mux.Handle("GET /admin/members", s.guard(domainAccount.CapManageMembers, s.handleMembers))
	mux.Handle("POST /admin/members/delete/{id}", s.guard(domainAccount.CapManageMembers, s.handleDeleteMember))
	mux.Handle("GET /admin/payments", s.guard(domainAccount.CapRecordPayments, s.handlePaymentsPage))
	mux.Handle("POST /admin/payments", s.guard(domainAccount.CapRecordPayments, s.handleApplyPayment))
	mux.Handle("GET /admin/registrasi", s.guard(domainAccount.CapRegisterMembers, s.handleRegisterPage))
	mux.Handle("POST /admin/registrasi", s.guard(domainAccount.CapRegisterMembers, s.handleRegister))
	mux.Handle("GET /admin/staff", s.guard(domainAccount.CapManageStaff, s.handleStaffPage))
	mux.Handle("POST /admin/staff", s.guard(domainAccount.CapManageStaff, s.handleCreateStaff))
	mux.Handle("POST /admin/staff/delete/{id}", s.guard(domainAccount.CapManageStaff, s.handleDeleteStaff))
	mux.Handle("GET /admin/export/{kind}", s.guard(domainAccount.CapExportData, s.handleExport))
	mux.Handle("GET /admin/perf", s.guard(domainAccount.CapManageStaff, s.handlePerf))

	mux.Handle("GET /pt/dashboard", s.guard(domainAccount.CapViewClients, s.handleTrainerDashboard))
	mux.Handle("POST /pt/members/{id}/progress", s.guard(domainAccount.CapRecordProgress, s.handleRecordProgress))

	// Token-scoped for members; staff with CapViewAnyPortal skip the token.
	mux.HandleFunc("GET /member/dashboard/{id}", s.handleMemberPortal)

	return mux
}

func (s *Server) guard(c domainAccount.Capability, h http.HandlerFunc) http.Handler {
	return middleware.RequireCapability(c)(h)
}

func (s *Server) now() time.Time {
	if s.opts.Now != nil {
		return s.opts.Now()
	}
	return time.Now()
}

// handleHome sends signed-in staff to their landing page and everyone else to login.
func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	sess, ok := middleware.GetSessionFromContext(r.Context())
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, landingPage(sess.Role), http.StatusSeeOther)
}

// landingPage is where a role lands after login.
func landingPage(role domainAccount.Role) string {
	if role == domainAccount.RoleTrainer {
		return "/pt/dashboard"
	}
	return "/admin"
}
