package web

import (
	"lembah/internal/application/projections"
	domainMember "lembah/internal/domain/member"
	domainPayment "lembah/internal/domain/payment"
)

// JSON shapes. Domain types carry no tags and the portal token must not leak
// through list endpoints, so every response goes through one of these.

type memberJSON struct {
	ID        int64  `json:"id"`
	Name      string `json:"nama"`
	Program   string `json:"program"`
	Phone     string `json:"no_wa,omitempty"`
	Email     string `json:"email,omitempty"`
	Gender    string `json:"gender,omitempty"`
	Address   string `json:"alamat,omitempty"`
	BirthDate string `json:"ttl,omitempty"`
	Age       int    `json:"umur,omitempty"`
	HeightCm  int    `json:"tinggi_badan,omitempty"`
	WeightKg  int    `json:"berat_badan,omitempty"`
	Goal      string `json:"goals,omitempty"`
	TrainerID int64  `json:"personal_trainer,omitempty"`
	Trainer   string `json:"trainer_name,omitempty"`
	Status    string `json:"status"`
	Active    bool   `json:"aktif"`
	DaysLeft  int    `json:"sisa_hari"`
	Joined    string `json:"tanggal_daftar"`
	ExpiresOn string `json:"tanggal_habis"`
}

func toMemberJSON(row projections.MemberRow) memberJSON {
	m := row.Member
	out := memberJSON{
		ID:        m.ID,
		Name:      m.FullName,
		Program:   string(m.Program),
		Phone:     m.Phone,
		Email:     m.Email,
		Gender:    m.Gender,
		Address:   m.Address,
		Age:       row.Age,
		HeightCm:  m.HeightCm,
		WeightKg:  m.WeightKg,
		Goal:      m.Goal,
		TrainerID: m.TrainerID,
		Trainer:   row.TrainerName,
		Status:    m.Status,
		Active:    row.Active,
		DaysLeft:  row.DaysLeft,
		Joined:    domainMember.FormatDate(m.RegisteredOn),
		ExpiresOn: domainMember.FormatDate(m.ExpiresOn),
	}
	if !m.BirthDate.IsZero() {
		out.BirthDate = domainMember.FormatDate(m.BirthDate)
	}
	return out
}

type paymentJSON struct {
	ID         int64  `json:"id"`
	MemberID   int64  `json:"member_id"`
	MemberName string `json:"nama,omitempty"`
	PaidOn     string `json:"tanggal"`
	Amount     int    `json:"nominal"`
	Note       string `json:"keterangan"`
	Reference  string `json:"referensi"`
}

func toPaymentJSON(p domainPayment.Payment, memberName string) paymentJSON {
	return paymentJSON{
		ID:         p.ID,
		MemberID:   p.MemberID,
		MemberName: memberName,
		PaidOn:     domainMember.FormatDate(p.PaidOn),
		Amount:     p.Amount,
		Note:       p.Note,
		Reference:  p.Reference,
	}
}

type logJSON struct {
	ID           int64   `json:"id"`
	LoggedOn     string  `json:"tanggal"`
	WeightKg     float64 `json:"berat_badan"`
	BMI          float64 `json:"bmi"`
	Category     string  `json:"kategori"`
	ScheduleNote string  `json:"jadwal"`
}

func toLogJSON(l projections.LogRow) logJSON {
	return logJSON{
		ID:           l.ID,
		LoggedOn:     domainMember.FormatDate(l.LoggedOn),
		WeightKg:     l.WeightKg,
		BMI:          l.BMI,
		Category:     l.Category,
		ScheduleNote: l.ScheduleNote,
	}
}

type dashboardJSON struct {
	Year          int                `json:"tahun"`
	Month         int                `json:"bulan"`
	Labels        [12]string         `json:"labels"`
	Income        [12]int            `json:"pemasukan"`
	MonthIncome   int                `json:"pemasukan_bulan_ini"`
	YearIncome    int                `json:"pemasukan_tahun_ini"`
	Registrations map[string][12]int `json:"registrasi"`
	ActiveMembers int                `json:"member_aktif"`
	TotalMembers  int                `json:"total_member"`
}

func toDashboardJSON(d projections.DashboardResult) dashboardJSON {
	regs := make(map[string][12]int, len(d.RegistrationsPerProgram))
	for p, counts := range d.RegistrationsPerProgram {
		regs[string(p)] = counts
	}
	return dashboardJSON{
		Year:          d.Year,
		Month:         d.Month,
		Labels:        d.Labels,
		Income:        d.IncomePerMonth,
		MonthIncome:   d.MonthIncome,
		YearIncome:    d.YearIncome,
		Registrations: regs,
		ActiveMembers: d.ActiveMembers,
		TotalMembers:  d.TotalMembers,
	}
}

type staffJSON struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Role      string `json:"role"`
	Deletable bool   `json:"deletable"`
}

func toStaffJSON(rows []projections.StaffRow) []staffJSON {
	out := make([]staffJSON, 0, len(rows))
	for _, row := range rows {
		out = append(out, staffJSON{ID: row.ID, Username: row.Username, Role: string(row.Role), Deletable: row.Deletable})
	}
	return out
}
