package web

import (
	"log/slog"
	"net/http"

	"lembah/internal/adapters/http/middleware"
	"lembah/internal/application/orchestrators"
	"lembah/internal/application/projections"
	"lembah/internal/domain/apperr"
)

func actorFrom(sess middleware.Session) orchestrators.Actor {
	return orchestrators.Actor{ID: sess.UserID, Username: sess.Username, Role: sess.Role}
}

// handleStaffPage lists staff accounts with the create form.
func (s *Server) handleStaffPage(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	result, err := projections.QueryListStaff(r.Context(),
		projections.ListStaffQuery{ViewerID: sess.UserID},
		projections.ListStaffDeps{AccountStore: s.stores.AccountStore},
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, map[string]any{"staff": toStaffJSON(result.Staff)})
		return
	}
	s.renderTemplate(w, r, "staff.html", "Kelola Akun", result)
}

// handleCreateStaff adds a manager, admin or trainer account.
func (s *Server) handleCreateStaff(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if isJSONBody(r) {
		if err := strictDecode(r, &body); err != nil {
			writeError(w, r, err)
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form submission", http.StatusBadRequest)
			return
		}
		body.Username = r.FormValue("username")
		body.Password = r.FormValue("password")
		body.Role = r.FormValue("role")
	}

	sess, _ := middleware.GetSessionFromContext(r.Context())
	id, err := orchestrators.ExecuteCreateStaff(r.Context(), orchestrators.CreateStaffInput{
		Actor:    actorFrom(sess),
		Username: body.Username,
		Password: body.Password,
		Role:     body.Role,
	}, orchestrators.CreateStaffDeps{AccountStore: s.stores.AccountStore})
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			err = apperr.E(apperr.KindConflict, "Username sudah dipakai! Ganti yang lain.")
		}
		s.fail(w, r, "/admin/staff", err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusCreated, map[string]any{"id": id, "username": body.Username, "role": body.Role})
		return
	}
	s.succeed(w, r, "/admin/staff", "Akun berhasil dibuat!")
}

// handleDeleteStaff removes an account and signs it out everywhere.
func (s *Server) handleDeleteStaff(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	id, err := pathID(r, "id")
	if err == nil {
		err = orchestrators.ExecuteDeleteStaff(r.Context(), orchestrators.DeleteStaffInput{
			Actor:     actorFrom(sess),
			AccountID: id,
		}, orchestrators.DeleteStaffDeps{AccountStore: s.stores.AccountStore})
	}
	if err != nil {
		if apperr.KindOf(err) == apperr.KindForbidden {
			msg := "Tidak bisa menghapus akun utama!"
			if id == sess.UserID {
				msg = "Tidak bisa menghapus akun sendiri!"
			}
			err = apperr.E(apperr.KindForbidden, "%s", msg)
		}
		s.fail(w, r, "/admin/staff", err)
		return
	}
	if n := s.sessions.DeleteUser(id); n > 0 {
		slog.Info("auth_event", "event", "sessions_revoked", "account_id", id, "count", n)
	}
	if !isHTMLRequest(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.succeed(w, r, "/admin/staff", "Akun berhasil dihapus.")
}
