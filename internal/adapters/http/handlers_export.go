package web

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"lembah/internal/adapters/http/middleware"
	"lembah/internal/application/projections"
	"lembah/internal/domain/apperr"
	"lembah/internal/domain/export"
)

// handleExport streams the members table or the payment ledger as CSV.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	kind, err := export.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	var year int
	if raw := strings.TrimSpace(r.URL.Query().Get("tahun")); raw != "" && kind == export.KindPayments {
		if year, err = strconv.Atoi(raw); err != nil || year < 1 {
			writeError(w, r, apperr.Validation("tahun must be a year such as 2026"))
			return
		}
	}

	today := s.clock.Today()
	var table export.Table
	switch kind {
	case export.KindMembers:
		table, err = projections.QueryExportMembers(r.Context(), today,
			projections.ExportMembersDeps{MemberStore: s.stores.MemberStore, AccountStore: s.stores.AccountStore})
	case export.KindPayments:
		table, err = projections.QueryExportPayments(r.Context(), year, s.stores.PaymentStore)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, table); err != nil {
		internalError(w, fmt.Errorf("encode %s export: %w", kind, err))
		return
	}

	sess, _ := middleware.GetSessionFromContext(r.Context())
	slog.Info("export_event", "event", "downloaded", "kind", string(kind), "year", year,
		"rows", len(table.Rows), "username", sess.Username)

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", kind.Filename(year, today)))
	buf.WriteTo(w)
}
