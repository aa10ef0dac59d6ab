package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lembah/internal/adapters/email"
	"lembah/internal/domain/member"
	"lembah/internal/domain/payment"
)

type failingSender struct{}

func (failingSender) Send(context.Context, email.Message) (email.Delivery, error) {
	return email.Delivery{}, errors.New("provider down")
}

// TestSendReceipt verifies the receipt content and the skip conditions.
func TestSendReceipt(t *testing.T) {
	sender := email.NewNoopSender()
	m := member.Member{ID: 1, FullName: "Ana <script>", Email: "ana@example.com", Program: member.ProgramReguler, ExpiresOn: date("2024-02-09")}
	p := payment.Payment{ID: 3, PaidOn: date("2024-01-10"), Amount: 200000, Note: "Pendaftaran Reguler", Reference: "ref-1"}

	if err := SendReceipt(context.Background(), ReceiptInput{Member: m, Payment: p}, ReceiptDeps{Sender: sender, From: "kasir@example.com"}); err != nil {
		t.Fatalf("SendReceipt: %v", err)
	}
	sent := sender.Sent()
	if len(sent) != 1 {
		t.Fatalf("sent = %d, want 1", len(sent))
	}
	msg := sent[0]
	for _, want := range []string{"Rp 200.000", "2024-02-09", "ref-1", "Ana &lt;script&gt;"} {
		if !strings.Contains(msg.HTML, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
	if msg.To != "ana@example.com" || msg.From != "kasir@example.com" || msg.Tag != "receipt" || msg.Ref != "ref-1" {
		t.Errorf("message = %+v", msg)
	}
	if !strings.Contains(msg.Subject, "Lembah Fitness") {
		t.Errorf("Subject = %q", msg.Subject)
	}

	m.Email = ""
	if err := SendReceipt(context.Background(), ReceiptInput{Member: m, Payment: p}, ReceiptDeps{Sender: sender}); err != nil {
		t.Fatalf("SendReceipt without email: %v", err)
	}
	if len(sender.Sent()) != 1 {
		t.Error("receipt sent to member without email")
	}
	if err := SendReceipt(context.Background(), ReceiptInput{Member: m, Payment: p}, ReceiptDeps{}); err != nil {
		t.Errorf("SendReceipt without sender: %v", err)
	}
}

// TestApplyPayment_ReceiptFailureKeepsPayment verifies a send failure never undoes the payment.
func TestApplyPayment_ReceiptFailureKeepsPayment(t *testing.T) {
	members := newMockMemberStore()
	m := members.add(member.Member{FullName: "Ana", Email: "ana@example.com", Program: member.ProgramReguler, ExpiresOn: date("2024-01-10")})
	deps := paymentDeps(members, "2024-01-20")
	deps.Receipts = ReceiptDeps{Sender: failingSender{}}

	if _, err := ExecuteApplyPayment(context.Background(), ApplyPaymentInput{MemberID: m.ID, Amount: 1, Months: 1}, deps); err != nil {
		t.Fatalf("ExecuteApplyPayment: %v", err)
	}
	if len(members.payments) != 1 {
		t.Errorf("payments = %d, want 1", len(members.payments))
	}
}
