package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"lembah/internal/domain/apperr"
	"lembah/internal/domain/member"
	"lembah/internal/domain/payment"
)

// Kind names one downloadable table.
type Kind string

const (
	KindMembers  Kind = "members"
	KindPayments Kind = "payments"
)

// ParseKind converts a path segment into a Kind.
// POST: Returns a NotFound error for unknown kinds
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.TrimSuffix(s, ".csv")); k {
	case KindMembers, KindPayments:
		return k, nil
	}
	return "", apperr.NotFound("no export named %q", s)
}

// Filename returns the attachment name, e.g. lembah-payments-2026-2026-03-15.csv.
// A zero year means the whole ledger.
func (k Kind) Filename(year int, today time.Time) string {
	if year != 0 {
		return fmt.Sprintf("lembah-%s-%d-%s.csv", k, year, member.FormatDate(today))
	}
	return fmt.Sprintf("lembah-%s-%s.csv", k, member.FormatDate(today))
}

// Table is a header plus string rows ready for CSV encoding.
type Table struct {
	Header []string
	Rows   [][]string
}

// MemberHeader lists the member export columns, matching the registration form names.
var MemberHeader = []string{
	"id", "nama", "program", "no_wa", "email", "gender", "alamat", "ttl",
	"tinggi_badan", "berat_badan", "goals", "personal_trainer",
	"tanggal_daftar", "tanggal_habis", "aktif",
}

// MemberRecord renders one member row. The portal token is never exported.
func MemberRecord(m member.Member, trainerName string, active bool) []string {
	return []string{
		strconv.FormatInt(m.ID, 10),
		m.FullName,
		string(m.Program),
		m.Phone,
		m.Email,
		m.Gender,
		m.Address,
		member.FormatDate(m.BirthDate),
		optionalInt(m.HeightCm),
		optionalInt(m.WeightKg),
		m.Goal,
		trainerName,
		member.FormatDate(m.RegisteredOn),
		member.FormatDate(m.ExpiresOn),
		yesNo(active),
	}
}

// PaymentHeader lists the ledger export columns.
var PaymentHeader = []string{"id", "tanggal", "member_id", "nama", "nominal", "keterangan", "referensi"}

// PaymentRecord renders one ledger row. Amounts are plain integers so spreadsheets can sum them.
func PaymentRecord(p payment.Payment, memberName string) []string {
	return []string{
		strconv.FormatInt(p.ID, 10),
		member.FormatDate(p.PaidOn),
		strconv.FormatInt(p.MemberID, 10),
		memberName,
		strconv.Itoa(p.Amount),
		p.Note,
		p.Reference,
	}
}

// WriteCSV encodes t to w.
// Text cells that a spreadsheet would evaluate as a formula are prefixed with a single quote.
func WriteCSV(w io.Writer, t Table) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	cell := make([]string, len(t.Header))
	for _, row := range t.Rows {
		cell = cell[:0]
		for _, v := range row {
			cell = append(cell, neutralize(v))
		}
		if err := cw.Write(cell); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func neutralize(v string) string {
	if v == "" {
		return v
	}
	switch v[0] {
	case '=', '+', '-', '@', '\t', '\r':
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return v
		}
		return "'" + v
	}
	return v
}

func optionalInt(n int) string {
	if n == 0 {
		return ""
	}
	return strconv.Itoa(n)
}

func yesNo(b bool) string {
	if b {
		return "ya"
	}
	return "tidak"
}
