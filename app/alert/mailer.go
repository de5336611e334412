package alert

import (
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

var _ Sender = (*Mailer)(nil)

// Mailer sends digests over SMTP. Without a configured host and recipient it
// runs in simulation mode: the digest is logged instead of sent, and reported
// as delivered so digests are not retried forever in development setups.
type Mailer struct {
	host      string
	port      string
	user      string
	password  string
	recipient string
}

func NewMailer(host, port, user, password, recipient string) *Mailer {
	return &Mailer{
		host:      host,
		port:      port,
		user:      user,
		password:  password,
		recipient: recipient,
	}
}

func (m *Mailer) enabled() bool {
	return m.host != "" && m.recipient != ""
}

func (m *Mailer) Send(subject, body string) bool {
	if !m.enabled() {
		slog.Info("Mail disabled, digest simulated", "subject", subject, "body_length", len(body))
		return true
	}

	msg := strings.Join([]string{
		"From: " + m.user,
		"To: " + m.recipient,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/html; charset=utf-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.user != "" {
		auth = smtp.PlainAuth("", m.user, m.password, m.host)
	}

	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	if err := smtp.SendMail(addr, auth, m.user, []string{m.recipient}, []byte(msg)); err != nil {
		slog.Error("Failed to send digest", "subject", subject, "error", err)
		return false
	}

	slog.Info("Digest sent", "subject", subject, "recipient", m.recipient)
	return true
}
