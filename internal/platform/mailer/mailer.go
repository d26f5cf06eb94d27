// Package mailer sends transactional email over SMTP.
package mailer

import (
	"errors"
	"io"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"storefront/internal/platform/config"
)

// Email is a single outgoing message.
type Email struct {
	To       []string
	Subject  string
	Body     string
	HTMLBody string
}

// dialer is the part of *gomail.Dialer the mailer uses.
type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// Mailer sends email through an SMTP relay.
type Mailer struct {
	from   string
	dialer dialer
}

// NewMailer returns a mailer for cfg. Without an SMTP host, messages are logged and dropped.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	var d dialer = logDialer{}
	if cfg.Host != "" {
		d = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	} else {
		zap.S().Warn("SMTP_HOST not set, outgoing mail will only be logged")
	}
	return &Mailer{from: cfg.From, dialer: d}
}

// Send delivers email synchronously.
func (m *Mailer) Send(email Email) error {
	if len(email.To) == 0 {
		return errors.New("no recipients specified")
	}
	return m.dialer.DialAndSend(m.message(email))
}

func (m *Mailer) message(email Email) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To...)
	msg.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		msg.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			msg.AddAlternative("text/plain", email.Body)
		}
	} else {
		msg.SetBody("text/plain", email.Body)
	}
	return msg
}

// logDialer stands in for SMTP in development.
type logDialer struct{}

func (logDialer) DialAndSend(msgs ...*gomail.Message) error {
	for _, msg := range msgs {
		zap.S().Infow("mail not sent (no SMTP host)",
			"to", msg.GetHeader("To"),
			"subject", msg.GetHeader("Subject"),
		)
		_, _ = msg.WriteTo(io.Discard)
	}
	return nil
}
