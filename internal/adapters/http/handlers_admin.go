package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	accountStore "lembah/internal/adapters/storage/account"
	"lembah/internal/application/listutil"
	"lembah/internal/application/orchestrators"
	"lembah/internal/application/projections"
	domainAccount "lembah/internal/domain/account"
	domainMember "lembah/internal/domain/member"
	domainPayment "lembah/internal/domain/payment"
)

// handleDashboard renders the 12-month income and registration summary.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetDashboard(r.Context(),
		projections.GetDashboardQuery{Today: s.clock.Today()},
		projections.GetDashboardDeps{MemberStore: s.stores.MemberStore, PaymentStore: s.stores.PaymentStore},
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusOK, toDashboardJSON(result))
		return
	}
	s.renderTemplate(w, r, "dashboard.html", "Dashboard", result)
}

// handleMembers lists every member with derived activity.
func (s *Server) handleMembers(w http.ResponseWriter, r *http.Request) {
	list := listutil.Parse(r.URL.Query(), projections.MemberListSortColumns, projections.MemberListFilterKeys)
	result, err := projections.QueryGetMemberList(r.Context(),
		projections.GetMemberListQuery{Today: s.clock.Today(), List: list},
		projections.GetMemberListDeps{MemberStore: s.stores.MemberStore, AccountStore: s.stores.AccountStore},
	)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !isHTMLRequest(r) {
		out := make([]memberJSON, 0, len(result.Members))
		for _, row := range result.Members {
			out = append(out, toMemberJSON(row))
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"members":  out,
			"aktif":    result.Active,
			"total":    result.Total,
			"cocok":    result.Page.Total,
			"halaman":  result.Page.Number,
			"per_page": result.Page.PerPage,
		})
		return
	}
	s.renderTemplate(w, r, "members.html", "Data Member", result)
}

// handleDeleteMember removes a member with their payments and training logs.
func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err == nil {
		err = orchestrators.ExecuteDeleteMember(r.Context(),
			orchestrators.DeleteMemberInput{MemberID: id},
			orchestrators.DeleteMemberDeps{MemberStore: s.stores.MemberStore},
		)
	}
	if err != nil {
		s.fail(w, r, "/admin/members", err)
		return
	}
	if !isHTMLRequest(r) {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	s.succeed(w, r, "/admin/members", "Data member berhasil dihapus.")
}

// handlePaymentsPage renders the cashier form and the latest payments.
func (s *Server) handlePaymentsPage(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetPaymentsPage(r.Context(), projections.GetPaymentsPageDeps{
		MemberStore:  s.stores.MemberStore,
		PaymentStore: s.stores.PaymentStore,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !isHTMLRequest(r) {
		out := make([]paymentJSON, 0, len(result.Recent))
		for _, e := range result.Recent {
			out = append(out, toPaymentJSON(e.Payment, e.MemberName))
		}
		writeJSON(w, http.StatusOK, map[string]any{"payments": out})
		return
	}
	s.renderTemplate(w, r, "payments.html", "Pembayaran", result)
}

type paymentRequest struct {
	MemberID int64  `json:"member_id"`
	Amount   int    `json:"nominal"`
	Months   int    `json:"bulan_tambah"`
	Note     string `json:"keterangan"`
}

func decodePayment(r *http.Request) (paymentRequest, error) {
	var req paymentRequest
	if isJSONBody(r) {
		return req, strictDecode(r, &req)
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	memberID, err := formInt(r, "member_id")
	if err != nil {
		return req, err
	}
	req.MemberID = int64(memberID)
	if req.Amount, err = formInt(r, "nominal"); err != nil {
		return req, err
	}
	if req.Months, err = formInt(r, "bulan_tambah"); err != nil {
		return req, err
	}
	req.Note = r.FormValue("keterangan")
	return req, nil
}

// handleApplyPayment records a renewal and extends the member's expiry.
func (s *Server) handleApplyPayment(w http.ResponseWriter, r *http.Request) {
	req, err := decodePayment(r)
	if err != nil {
		s.fail(w, r, "/admin/payments", err)
		return
	}
	result, err := orchestrators.ExecuteApplyPayment(r.Context(), orchestrators.ApplyPaymentInput{
		MemberID: req.MemberID,
		Amount:   req.Amount,
		Months:   req.Months,
		Note:     req.Note,
	}, orchestrators.ApplyPaymentDeps{
		MemberStore: s.stores.MemberStore,
		Clock:       s.clock,
		Receipts:    s.opts.Receipts,
	})
	if err != nil {
		s.fail(w, r, "/admin/payments", err)
		return
	}
	expires := domainMember.FormatDate(result.ExpiresOn)
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"payment_id":    result.PaymentID,
			"nama":          result.MemberName,
			"tanggal_habis": expires,
			"referensi":     result.Reference,
		})
		return
	}
	s.succeed(w, r, "/admin/payments",
		fmt.Sprintf("Pembayaran %s diterima. Aktif sampai %s.", result.MemberName, expires))
}

// registerPageData feeds the registration form.
type registerPageData struct {
	Programs []domainMember.Program
	Genders  []string
	Goals    []string
	Trainers []domainAccount.Account
}

// handleRegisterPage renders the registration form.
func (s *Server) handleRegisterPage(w http.ResponseWriter, r *http.Request) {
	trainers, err := s.stores.AccountStore.List(r.Context(), accountStore.ListFilter{Role: domainAccount.RoleTrainer})
	if err != nil {
		writeError(w, r, err)
		return
	}
	s.renderTemplate(w, r, "registrasi.html", "Registrasi", registerPageData{
		Programs: domainMember.Programs,
		Genders:  domainMember.Genders,
		Goals:    domainMember.Goals,
		Trainers: trainers,
	})
}

type registerRequest struct {
	Program   string `json:"program"`
	FullName  string `json:"nama"`
	Phone     string `json:"no_wa"`
	Email     string `json:"email"`
	Gender    string `json:"gender"`
	Address   string `json:"alamat"`
	BirthDate string `json:"ttl"`
	HeightCm  int    `json:"tinggi_badan"`
	WeightKg  int    `json:"berat_badan"`
	Goal      string `json:"goals"`
	TrainerID int64  `json:"personal_trainer"`
	Nominal   int    `json:"nominal"`
}

func decodeRegistration(r *http.Request) (registerRequest, error) {
	var req registerRequest
	if isJSONBody(r) {
		return req, strictDecode(r, &req)
	}
	if err := r.ParseForm(); err != nil {
		return req, err
	}
	req.Program = r.FormValue("program")
	req.FullName = r.FormValue("nama")
	req.Phone = r.FormValue("no_wa")
	req.Email = r.FormValue("email")
	req.Gender = r.FormValue("gender")
	req.Address = r.FormValue("alamat")
	req.BirthDate = r.FormValue("ttl")
	req.Goal = r.FormValue("goals")

	var err error
	if req.HeightCm, err = formInt(r, "tinggi_badan"); err != nil {
		return req, err
	}
	if req.WeightKg, err = formInt(r, "berat_badan"); err != nil {
		return req, err
	}
	if req.Nominal, err = formInt(r, "nominal"); err != nil {
		return req, err
	}
	if raw := strings.TrimSpace(r.FormValue("personal_trainer")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return req, fmt.Errorf("personal_trainer: %w", err)
		}
		req.TrainerID = id
	}
	return req, nil
}

// handleRegister enrolls a member together with the founding payment.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	req, err := decodeRegistration(r)
	if err != nil {
		s.fail(w, r, "/admin/registrasi", err)
		return
	}
	result, err := orchestrators.ExecuteRegisterMember(r.Context(), orchestrators.RegisterMemberInput{
		Program:   req.Program,
		FullName:  req.FullName,
		Phone:     req.Phone,
		Email:     req.Email,
		Gender:    req.Gender,
		Address:   req.Address,
		BirthDate: req.BirthDate,
		HeightCm:  req.HeightCm,
		WeightKg:  req.WeightKg,
		Goal:      req.Goal,
		TrainerID: req.TrainerID,
		Nominal:   req.Nominal,
	}, orchestrators.RegisterMemberDeps{
		MemberStore:  s.stores.MemberStore,
		AccountStore: s.stores.AccountStore,
		Clock:        s.clock,
		Receipts:     s.opts.Receipts,
	})
	if err != nil {
		s.fail(w, r, "/admin/registrasi", err)
		return
	}

	portal := portalLink(result.MemberID, result.PortalToken)
	if !isHTMLRequest(r) {
		writeJSON(w, http.StatusCreated, map[string]any{
			"member_id":     result.MemberID,
			"payment_id":    result.PaymentID,
			"tanggal_habis": domainMember.FormatDate(result.ExpiresOn),
			"referensi":     result.Reference,
			"portal":        portal,
		})
		return
	}
	s.succeed(w, r, "/admin/members", fmt.Sprintf("Registrasi %s berhasil! %s sudah tercatat. Link member: %s",
		req.FullName, domainPayment.RegistrationNote(req.Program), portal))
}

// portalLink is the member's own dashboard URL.
func portalLink(memberID int64, token string) string {
	return fmt.Sprintf("/member/dashboard/%d?token=%s", memberID, token)
}
