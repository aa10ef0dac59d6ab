package web

import (
	"fmt"
	"net/http"
	"strconv"

	"lembah/internal/adapters/http/middleware"
	"lembah/internal/application/orchestrators"
	"lembah/internal/application/projections"
	domainAccount "lembah/internal/domain/account"
	"lembah/internal/domain/apperr"
	domainMember "lembah/internal/domain/member"
)

// trainerPageData feeds pt_dashboard.html.
type trainerPageData struct {
	projections.TrainerDashboardResult
	TrainerID int64
	Trainers  []projections.StaffRow // only filled for managers picking a trainer
}

// handleTrainerDashboard lists a trainer's clients.
// Trainers always see their own clients; managers may pick one with ?trainer_id=.
func (s *Server) handleTrainerDashboard(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.GetSessionFromContext(r.Context())
	data := trainerPageData{TrainerID: sess.UserID}

	if sess.Role != domainAccount.RoleTrainer {
		staff, err := projections.QueryListStaff(r.Context(),
			projections.ListStaffQuery{ViewerID: sess.UserID},
			projections.ListStaffDeps{AccountStore: s.stores.AccountStore},
		)
		if err != nil {
			writeError(w, r, err)
			return
		}
		data.Trainers = staff.Trainers
		data.TrainerID = 0
		if raw := r.URL.Query().Get("trainer_id"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil || id <= 0 {
				writeError(w, r, apperr.Validation("trainer_id must be a positive number"))
				return
			}
			data.TrainerID = id
		}
	}

	result, err := projections.QueryGetTrainerDashboard(r.Context(),
		projections.GetTrainerDashboardQuery{TrainerID: data.TrainerID, Today: s.clock.Today()},
		projections.GetTrainerDashboardDeps{MemberStore: s.stores.MemberStore, LogStore: s.stores.TrainingLogStore},
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	data.TrainerDashboardResult = result

	if !isHTMLRequest(r) {
		clients := make([]map[string]any, 0, len(result.Clients))
		for _, c := range result.Clients {
			clients = append(clients, map[string]any{
				"member":         toMemberJSON(c.MemberRow),
				"berat_terakhir": c.LatestWeight,
				"bmi_terakhir":   c.LatestBMI,
				"kategori":       c.BMICategory,
				"jumlah_log":     c.LogCount,
			})
		}
		writeJSON(w, http.StatusOK, map[string]any{"trainer_id": data.TrainerID, "clients": clients})
		return
	}
	s.renderTemplate(w, r, "pt_dashboard.html", "Dashboard PT", data)
}

// handleRecordProgress appends a weight and schedule entry for a client.
func (s *Server) handleRecordProgress(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	back := fmt.Sprintf("/member/dashboard/%d", id)

	var body struct {
		WeightKg     float64 `json:"berat_badan"`
		ScheduleNote string  `json:"jadwal"`
	}
	if isJSONBody(r) {
		err = strictDecode(r, &body)
	} else if err = r.ParseForm(); err == nil {
		body.ScheduleNote = r.FormValue("jadwal")
		body.WeightKg, err = formFloat(r, "berat_badan")
	}
	if err != nil {
		s.fail(w, r, back, err)
		return
	}

	sess, _ := middleware.GetSessionFromContext(r.Context())
	entry, err := orchestrators.ExecuteRecordProgress(r.Context(), orchestrators.RecordProgressInput{
		Actor:        actorFrom(sess),
		MemberID:     id,
		WeightKg:     body.WeightKg,
		ScheduleNote: body.ScheduleNote,
	}, orchestrators.RecordProgressDeps{
		MemberStore: s.stores.MemberStore,
		LogStore:    s.stores.TrainingLogStore,
		Clock:       s.clock,
	})
	if err != nil {
		s.fail(w, r, back, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"id":          entry.ID,
			"tanggal":     domainMember.FormatDate(entry.LoggedOn),
			"berat_badan": entry.WeightKg,
			"bmi":         entry.BMI,
		})
		return
	}
	s.succeed(w, r, back, "Progress berhasil disimpan!")
}

// memberPortalData feeds member_dashboard.html.
type memberPortalData struct {
	projections.MemberPortalResult
	CanRecord bool
}

// handleMemberPortal shows a member their membership and training history.
// Members authenticate with the token from their link; staff need CapViewAnyPortal.
func (s *Server) handleMemberPortal(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	sess, signedIn := middleware.GetSessionFromContext(r.Context())
	staffView := signedIn && sess.Can(domainAccount.CapViewAnyPortal)

	result, err := projections.QueryGetMemberPortal(r.Context(), projections.GetMemberPortalQuery{
		MemberID:  id,
		Token:     r.URL.Query().Get("token"),
		StaffView: staffView,
		Today:     s.clock.Today(),
	}, projections.GetMemberPortalDeps{
		MemberStore:  s.stores.MemberStore,
		PaymentStore: s.stores.PaymentStore,
		LogStore:     s.stores.TrainingLogStore,
		AccountStore: s.stores.AccountStore,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	if !isHTMLRequest(r) {
		logs := make([]logJSON, 0, len(result.Logs))
		for _, l := range result.Logs {
			logs = append(logs, toLogJSON(l))
		}
		payments := make([]paymentJSON, 0, len(result.Payments))
		for _, p := range result.Payments {
			payments = append(payments, toPaymentJSON(p, ""))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"member":   toMemberJSON(result.Member),
			"logs":     logs,
			"payments": payments,
		})
		return
	}
	canRecord := signedIn && sess.Can(domainAccount.CapRecordProgress) &&
		(sess.Role != domainAccount.RoleTrainer || result.Member.TrainerID == sess.UserID)
	s.renderTemplate(w, r, "member_dashboard.html", result.Member.FullName, memberPortalData{
		MemberPortalResult: result,
		CanRecord:          canRecord,
	})
}
