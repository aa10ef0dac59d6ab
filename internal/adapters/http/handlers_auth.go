package web

import (
	"log/slog"
	"net/http"
	"time"

	"lembah/internal/adapters/http/middleware"
	"lembah/internal/application/orchestrators"
	"lembah/internal/domain/apperr"
)

// handleLoginPage renders the login form, or forwards a signed-in user.
func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		http.Redirect(w, r, landingPage(sess.Role), http.StatusSeeOther)
		return
	}
	s.renderTemplate(w, r, "login.html", "Login", nil)
}

// handleLogin authenticates a username and password and starts a session.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var input orchestrators.LoginInput
	if isJSONBody(r) {
		var body struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := strictDecode(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
		input = orchestrators.LoginInput{Username: body.Username, Password: body.Password}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		input = orchestrators.LoginInput{Username: r.FormValue("username"), Password: r.FormValue("password")}
	}

	result, err := orchestrators.ExecuteLogin(r.Context(), input, orchestrators.LoginDeps{
		AccountStore: s.stores.AccountStore,
		Now:          s.now,
	})
	if err != nil {
		if err == orchestrators.ErrInvalidCredentials {
			err = apperr.E(apperr.KindUnauthorized, "Username atau Password Salah!")
		}
		s.fail(w, r, "/login", err)
		return
	}

	// Drop any session the browser already carried before issuing a new one.
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	token, err := s.sessions.Create(result.AccountID, result.Username, result.Role)
	if err != nil {
		internalError(w, err)
		return
	}
	middleware.SetSessionCookie(w, token)

	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, map[string]any{
			"id":       result.AccountID,
			"username": result.Username,
			"role":     string(result.Role),
		})
		return
	}
	http.Redirect(w, r, landingPage(result.Role), http.StatusSeeOther)
}

// handleLogout ends the session.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		s.sessions.Delete(cookie.Value)
	}
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		slog.Info("auth_event", "event", "logout", "username", sess.Username)
	}
	middleware.ClearSessionCookie(w)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// handleHealth reports liveness, including a database ping.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.opts.Ping != nil {
		if err := s.opts.Ping(r.Context()); err != nil {
			slog.Error("health_check_failed", "error", err.Error())
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handlePerf returns request and query timings for the last hour.
func (s *Server) handlePerf(w http.ResponseWriter, r *http.Request) {
	if s.collector == nil {
		writeError(w, r, apperr.NotFound("performance collection is disabled"))
		return
	}
	writeJSON(w, http.StatusOK, s.collector.Snapshot(s.now().Add(-time.Hour), 10))
}
