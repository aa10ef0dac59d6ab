package email

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// NoopSender keeps messages in memory instead of delivering them.
// Development setups without a Resend key and tests use it.
type NoopSender struct {
	mu   sync.Mutex
	sent []Message
}

// NewNoopSender creates a new NoopSender.
func NewNoopSender() *NoopSender {
	return &NoopSender{}
}

// Send records msg. It applies the same recipient check as ResendSender.
func (s *NoopSender) Send(_ context.Context, msg Message) (Delivery, error) {
	if _, err := msg.Recipient(); err != nil {
		return Delivery{}, err
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	n := len(s.sent)
	s.mu.Unlock()

	slog.Info("email_event", "event", "sent", "provider", "noop", "ref", msg.Ref, "tag", msg.Tag)
	return Delivery{ID: fmt.Sprintf("noop-%d", n), SentAt: time.Now()}, nil
}

// Sent returns a copy of every message accepted so far.
func (s *NoopSender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.sent...)
}
