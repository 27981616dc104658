package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"

	"github.com/avallejos/visitauth/internal/domain/auth"
)

// SMTP delivers mail through a plain-auth SMTP relay.
type SMTP struct {
	addr     string
	from     string
	auth     smtp.Auth
	logger   *slog.Logger
	disabled bool
}

// New builds the notifier. Missing credentials leave delivery disabled;
// sends then fail with an explicit error instead of hanging on a dial.
func New(host string, port int, username, password, from string, logger *slog.Logger) *SMTP {
	m := &SMTP{
		addr:   fmt.Sprintf("%s:%d", host, port),
		from:   from,
		logger: logger.With("component", "mailer.smtp"),
	}
	if host == "" || username == "" || password == "" {
		m.disabled = true
		return m
	}
	m.auth = smtp.PlainAuth("", username, password, host)
	return m
}

func (m *SMTP) SendMail(_ context.Context, to, subject, body string) error {
	if m.disabled {
		return fmt.Errorf("mail delivery is not configured")
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

var _ auth.Notifier = (*SMTP)(nil)
