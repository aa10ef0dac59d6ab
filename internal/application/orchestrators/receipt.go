package orchestrators

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"lembah/internal/adapters/email"
	"lembah/internal/domain/member"
	"lembah/internal/domain/payment"
)

// ReceiptDeps holds dependencies for SendReceipt. A nil Sender disables receipts.
type ReceiptDeps struct {
	Sender  email.Sender
	From    string
	GymName string
}

// ReceiptInput carries the committed member and payment.
type ReceiptInput struct {
	Member  member.Member
	Payment payment.Payment
}

var receiptTemplate = template.Must(template.New("receipt").Parse(`<!doctype html>
<html><body style="font-family:sans-serif">
<h2>{{.Gym}}</h2>
<p>Halo {{.Name}},</p>
<p>Terima kasih, pembayaran Anda sudah kami terima.</p>
<table cellpadding="4">
<tr><td>Program</td><td>{{.Program}}</td></tr>
<tr><td>Tanggal</td><td>{{.PaidOn}}</td></tr>
<tr><td>Keterangan</td><td>{{.Note}}</td></tr>
<tr><td>Nominal</td><td><strong>{{.Amount}}</strong></td></tr>
<tr><td>Aktif sampai</td><td>{{.ExpiresOn}}</td></tr>
<tr><td>No. referensi</td><td><code>{{.Reference}}</code></td></tr>
</table>
</body></html>`))

type receiptView struct {
	Gym, Name, Program, PaidOn, Note, Amount, ExpiresOn, Reference string
}

// SendReceipt emails a payment receipt to the member.
// PRE: the payment has been committed
// POST: returns nil without sending when the member has no email or no sender is configured
func SendReceipt(ctx context.Context, input ReceiptInput, deps ReceiptDeps) error {
	if deps.Sender == nil || input.Member.Email == "" {
		return nil
	}
	gym := deps.GymName
	if gym == "" {
		gym = "Lembah Fitness"
	}
	view := receiptView{
		Gym:       gym,
		Name:      input.Member.FullName,
		Program:   string(input.Member.Program),
		PaidOn:    member.FormatDate(input.Payment.PaidOn),
		Note:      input.Payment.Note,
		Amount:    payment.FormatRupiah(input.Payment.Amount),
		ExpiresOn: member.FormatDate(input.Member.ExpiresOn),
		Reference: input.Payment.Reference,
	}
	var body bytes.Buffer
	if err := receiptTemplate.Execute(&body, view); err != nil {
		return fmt.Errorf("render receipt: %w", err)
	}

	_, err := deps.Sender.Send(ctx, email.Message{
		To:      input.Member.Email,
		From:    deps.From,
		Subject: fmt.Sprintf("Kuitansi %s: %s", gym, view.Amount),
		HTML:    body.String(),
		Text: fmt.Sprintf("%s\n%s\nNominal: %s\nAktif sampai: %s\nReferensi: %s",
			gym, view.Note, view.Amount, view.ExpiresOn, view.Reference),
		Tag: "receipt",
		Ref: input.Payment.Reference,
	})
	if err != nil {
		return fmt.Errorf("send receipt: %w", err)
	}
	return nil
}

// send delivers a receipt after commit. Failures are logged and never undo the payment.
func (d ReceiptDeps) send(ctx context.Context, m member.Member, p payment.Payment) {
	if err := SendReceipt(ctx, ReceiptInput{Member: m, Payment: p}, d); err != nil {
		slog.Warn("payment_event", "event", "receipt_failed", "member_id", m.ID, "payment_id", p.ID, "error", err)
	}
}
