package web

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"lembah/internal/adapters/http/middleware"
	"lembah/internal/application/listutil"
	"lembah/internal/domain/apperr"
	domainMember "lembah/internal/domain/member"
	domainPayment "lembah/internal/domain/payment"
)

//go:embed templates/*.html
var templateFS embed.FS

// mdRenderer renders trainer schedule notes.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// renderMarkdown converts a schedule note to safe HTML.
func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

var funcMap = template.FuncMap{
	"markdown": renderMarkdown,
	"rupiah":   domainPayment.FormatRupiah,
	"date": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return domainMember.FormatDate(t)
	},
	"pct": func(v, max int) int {
		if max <= 0 {
			return 0
		}
		return v * 100 / max
	},
	"maxOf": func(values [12]int) int {
		m := 0
		for _, v := range values {
			if v > m {
				m = v
			}
		}
		return m
	},
	"index12": func(values [12]int, i int) int { return values[i] },
	"oneDecimal": func(f float64) string {
		return strconv.FormatFloat(f, 'f', 1, 64)
	},
	"programs": func() []domainMember.Program { return domainMember.Programs },
	"listURL":  listURL,
	// sortURL links to the first page sorted by column, flipping direction on repeat clicks.
	"sortURL": func(base string, p listutil.Params, column string) template.URL {
		p.Desc = p.Sort == column && !p.Desc
		p.Sort = column
		return listURL(base, p, 1)
	},
}

// listURL links to page of the list at base with the same search, filters and sort.
func listURL(base string, p listutil.Params, page int) template.URL {
	if q := p.Query(page); q != "" {
		return template.URL(base + "?" + q)
	}
	return template.URL(base)
}

// parsePages parses every page template together with the shared layout.
func parsePages() (map[string]*template.Template, error) {
	names, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	pages := make(map[string]*template.Template, len(names))
	for _, name := range names {
		base := path.Base(name)
		if base == "layout.html" {
			continue
		}
		tpl, err := template.New("layout.html").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", name)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", base, err)
		}
		pages[base] = tpl
	}
	return pages, nil
}

// page is the data every template receives.
type page struct {
	Title     string
	Session   middleware.Session
	LoggedIn  bool
	Flash     *middleware.Flash
	CSRFField template.HTML
	Data      any
}

// renderTemplate renders a page inside the layout.
// The flash cookie is consumed before the response is written.
func (s *Server) renderTemplate(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	tpl, ok := s.pages[name]
	if !ok {
		internalError(w, fmt.Errorf("unknown template %q", name))
		return
	}
	p := page{Title: title, Data: data, CSRFField: csrf.TemplateField(r)}
	p.Session, p.LoggedIn = middleware.GetSessionFromContext(r.Context())
	if f, ok := s.flash.Pop(w, r); ok {
		p.Flash = &f
	}

	var buf bytes.Buffer
	if err := tpl.Execute(&buf, p); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", name, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}

// isHTMLRequest reports whether the client wants a page rather than JSON.
func isHTMLRequest(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "text/html") || strings.Contains(accept, "application/xhtml+xml")
}

// isJSONBody reports whether the request body is JSON.
func isJSONBody(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/json")
}

// strictDecode decodes JSON from the request body, rejecting unknown fields.
func strictDecode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return apperr.Validation("invalid JSON: %v", err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json_encode_failed", "error", err.Error())
	}
}

// statusFor maps an error kind to its HTTP status.
func statusFor(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindUnauthorized:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindConflict:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

// internalError logs the real error and returns a generic message to the client.
func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// writeError answers err with the status for its kind.
// Internal errors are logged and answered generically.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		slog.Error("internal_error", "path", r.URL.Path, "error", err.Error())
	}
	msg := apperr.Message(err)
	if isHTMLRequest(r) {
		http.Error(w, msg, status)
		return
	}
	writeJSON(w, status, map[string]string{"error": msg})
}

// fail reports a failed form submission. Browsers get a flash and a redirect
// back to the form; API clients get writeError.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, back string, err error) {
	if !isHTMLRequest(r) {
		writeError(w, r, err)
		return
	}
	if statusFor(err) == http.StatusInternalServerError {
		slog.Error("internal_error", "path", r.URL.Path, "error", err.Error())
	}
	s.flash.Set(w, middleware.Flash{Kind: middleware.FlashError, Message: apperr.Message(err)})
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// succeed flashes msg and redirects a browser to next.
func (s *Server) succeed(w http.ResponseWriter, r *http.Request, next, msg string) {
	s.flash.Set(w, middleware.Flash{Kind: middleware.FlashSuccess, Message: msg})
	http.Redirect(w, r, next, http.StatusSeeOther)
}

// pathID parses a positive integer path parameter.
func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperr.NotFound("%s not found", name)
	}
	return id, nil
}

// formInt parses an optional integer form field; blank is 0.
func formInt(r *http.Request, field string) (int, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperr.Validation("%s must be a whole number", field)
	}
	return n, nil
}

// formFloat parses an optional decimal form field; blank is 0. A comma decimal separator is accepted.
func formFloat(r *http.Request, field string) (float64, error) {
	raw := strings.ReplaceAll(strings.TrimSpace(r.FormValue(field)), ",", ".")
	if raw == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, apperr.Validation("%s must be a number", field)
	}
	return f, nil
}
