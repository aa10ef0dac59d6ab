// Package email delivers payment receipts to members.
package email

import (
	"context"
	"net/mail"
	"strings"
	"time"

	"lembah/internal/domain/apperr"
)

// Message is one outgoing email to a single member.
type Message struct {
	To      string
	From    string // empty selects the sender's default
	Subject string
	HTML    string
	Text    string
	Tag     string // provider-side category, e.g. "receipt"
	Ref     string // payment reference; sent as X-Entity-Ref-ID so clients do not thread receipts together
}

// Delivery is the provider's acknowledgement of a Message.
type Delivery struct {
	ID     string
	SentAt time.Time
}

// Sender delivers messages through an external provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (Delivery, error)
}

// Recipient parses msg.To into a bare address.
// POST: returns a Validation error for an empty or malformed address
func (msg Message) Recipient() (string, error) {
	to := strings.TrimSpace(msg.To)
	if to == "" {
		return "", apperr.Validation("receipt has no recipient")
	}
	addr, err := mail.ParseAddress(to)
	if err != nil {
		return "", apperr.Validation("recipient %q is not an email address", to)
	}
	return addr.Address, nil
}
