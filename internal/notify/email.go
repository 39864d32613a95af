package notify

import (
	"context"
	"errors"
	"net/mail"
	"sync"

	"github.com/novavoice/nova-voice/pkg/logging"
)

const defaultFromName = "Nova AI Voice"

var errIncompleteMessage = errors.New("notify: message needs a recipient and a subject")

// ErrRejected wraps provider responses that resending will not change, such
// as bad credentials or an unverified sender.
var ErrRejected = errors.New("notify: rejected by provider")

// EmailSender delivers one message. SendGrid, SES and the stub are
// interchangeable behind it.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// EmailMessage is provider-neutral. HTML is optional; Category tags the
// message for provider-side reporting.
type EmailMessage struct {
	To       string
	ToName   string
	ReplyTo  string
	Subject  string
	Body     string
	HTML     string
	Category string
}

func (m EmailMessage) validate() error {
	if m.To == "" || m.Subject == "" {
		return errIncompleteMessage
	}
	return nil
}

func formatAddress(name, email string) string {
	return (&mail.Address{Name: name, Address: email}).String()
}

// StubEmailSender logs instead of sending and keeps what it was given.
type StubEmailSender struct {
	logger *logging.Logger

	mu   sync.Mutex
	sent []EmailMessage
}

func NewStubEmailSender(logger *logging.Logger) *StubEmailSender {
	if logger == nil {
		logger = logging.Default()
	}
	return &StubEmailSender{logger: logger}
}

func (s *StubEmailSender) Send(ctx context.Context, msg EmailMessage) error {
	if err := msg.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	s.sent = append(s.sent, msg)
	s.mu.Unlock()
	s.logger.Info("email not sent (stub provider)", "to", msg.To, "subject", msg.Subject, "category", msg.Category)
	return nil
}

// Sent returns a copy of every message accepted so far.
func (s *StubEmailSender) Sent() []EmailMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]EmailMessage(nil), s.sent...)
}
