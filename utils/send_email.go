package utils

import (
	"fmt"
	"net/smtp"
)

// Mailer delivers a single HTML message. Controllers depend on this
// interface so tests can capture outgoing mail.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer sends HTML mail through a plain-auth SMTP relay.
type SMTPMailer struct {
	Host     string
	Port     string
	Email    string
	Password string
}

func (m *SMTPMailer) Send(to, subject, body string) error {
	msg := ""
	msg += "MIME-Version: 1.0\r\n"
	msg += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	msg += fmt.Sprintf("From: %s\r\n", m.Email)
	msg += fmt.Sprintf("To: %s\r\n", to)
	msg += fmt.Sprintf("Subject: %s\r\n", subject)
	msg += "\r\n" + body

	addr := m.Host + ":" + m.Port
	err := smtp.SendMail(
		addr,
		smtp.PlainAuth("", m.Email, m.Password, m.Host),
		m.Email,
		[]string{to},
		[]byte(msg),
	)
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
