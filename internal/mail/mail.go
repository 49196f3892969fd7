// Package mail sends outbound email over SMTP.
//
// The reminder dispatcher only ever needs "send this text to these
// addresses", so the Sender interface is exactly that — the service layer
// depends on the interface and tests inject a recording fake.
package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/akovacs/plantkeeper/internal/config"
)

// ErrNoCredentials indicates the SMTP username or password is missing.
// The reminder run aborts before any transmission attempt; the rest of
// the application is unaffected.
var ErrNoCredentials = errors.New("mail: SMTP credentials not configured")

// Sender delivers one message to a set of recipients in a single
// transmission.
type Sender interface {
	Send(ctx context.Context, recipients []string, subject, body string) error
}

// SMTPSender implements Sender with gomail. Port 465 uses implicit SSL,
// port 587 (UseTLS) uses STARTTLS — the same convention as the config.
type SMTPSender struct {
	cfg config.SMTPConfig
}

var _ Sender = (*SMTPSender)(nil)

// NewSMTPSender creates an SMTPSender from config. Credentials are checked
// at send time, not here, so the server can start without mail configured.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

// Send transmits one plain-text message to all recipients at once.
// The context is honoured up to the dial: gomail's DialAndSend itself does
// not take a context, so cancellation between dial attempts is best-effort.
func (s *SMTPSender) Send(ctx context.Context, recipients []string, subject, body string) error {
	if s.cfg.Username == "" || s.cfg.Password == "" {
		return ErrNoCredentials
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("mail: %w", err)
	}

	from := s.cfg.FromEmail
	if from == "" {
		from = s.cfg.Username
	}

	m := gomail.NewMessage()
	if s.cfg.FromName != "" {
		m.SetHeader("From", fmt.Sprintf("%s <%s>", s.cfg.FromName, from))
	} else {
		m.SetHeader("From", from)
	}
	m.SetHeader("To", recipients...)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	d := gomail.NewDialer(s.cfg.Host, s.cfg.Port, s.cfg.Username, s.cfg.Password)
	d.SSL = !s.cfg.UseTLS
	d.TLSConfig = &tls.Config{ServerName: s.cfg.Host}

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: sending to %d recipients: %w", len(recipients), err)
	}

	return nil
}
