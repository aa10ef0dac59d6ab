package email

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/resend/resend-go/v2"
)

// ResendSender sends receipts via the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a sender that uses from unless a message names its own.
// PRE: apiKey is a Resend API key; from is a verified sender address
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

// Send delivers msg.
// POST: a malformed recipient fails before any network call
func (s *ResendSender) Send(ctx context.Context, msg Message) (Delivery, error) {
	to, err := msg.Recipient()
	if err != nil {
		return Delivery{}, err
	}
	from := msg.From
	if from == "" {
		from = s.from
	}

	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{to},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}
	if msg.Tag != "" {
		params.Tags = []resend.Tag{{Name: "category", Value: msg.Tag}}
	}
	if msg.Ref != "" {
		params.Headers = map[string]string{"X-Entity-Ref-ID": msg.Ref}
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		slog.Error("email_event", "event", "send_failed", "provider", "resend", "ref", msg.Ref, "error", err.Error())
		return Delivery{}, fmt.Errorf("resend: %w", err)
	}

	slog.Info("email_event", "event", "sent", "provider", "resend", "message_id", sent.Id, "ref", msg.Ref, "tag", msg.Tag)
	return Delivery{ID: sent.Id, SentAt: time.Now()}, nil
}
