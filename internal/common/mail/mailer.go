package mail

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	commonerrors "github.com/glimmer-social/backend/internal/common/errors"
	"github.com/glimmer-social/backend/internal/common/logger"
)

// Mailer delivers transactional mail. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

func NewSMTPMailer(addr, username, password, from string) *SMTPMailer {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}

	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}
	return &SMTPMailer{
		addr: addr,
		auth: auth,
		from: from,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return commonerrors.ErrMailDelivery.WithCause(err)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.from)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(msg.String())); err != nil {
		return commonerrors.ErrMailDelivery.WithCause(err)
	}
	return nil
}

// LogMailer writes mail to the log instead of sending it. Used when SMTP is
// not configured, typically in local development.
type LogMailer struct {
	log *logger.Logger
}

func NewLogMailer(log *logger.Logger) *LogMailer {
	return &LogMailer{log: log}
}

func (m *LogMailer) Send(ctx context.Context, to, subject, body string) error {
	m.log.WithFields(ctx, logger.Fields{
		"to":      to,
		"subject": subject,
	}).Infof("mail (not sent, smtp disabled): %s", body)
	return nil
}
