package utils

import (
	"fmt"
	"net/smtp"
	"time"
)

// Mailer sends plain-text email over SMTP. Credentials come from the server
// configuration; an unconfigured mailer returns an error from Send so
// callers can fall back to logging.
type Mailer struct {
	Host string
	Port string
	User string
	Pass string
}

// NewMailer builds a mailer from SMTP settings.
func NewMailer(host, port, user, pass string) *Mailer {
	return &Mailer{Host: host, Port: port, User: user, Pass: pass}
}

// Send delivers a plain-text message to a single recipient.
func (m *Mailer) Send(to, subject, body string) error {
	if m.Host == "" || m.Port == "" || m.User == "" || m.Pass == "" {
		return fmt.Errorf("smtp not configured")
	}

	addr := m.Host + ":" + m.Port
	msg := BuildMessage(m.User, to, subject, body)

	auth := smtp.PlainAuth("", m.User, m.Pass, m.Host)
	return smtp.SendMail(addr, auth, m.User, []string{to}, msg)
}

// SendOTPEmail mails a password-reset code with its validity window.
func (m *Mailer) SendOTPEmail(to, code string, expiry time.Duration) error {
	subject := "Password Reset OTP"
	body := fmt.Sprintf("Your password reset OTP is: %s. It will expire in %d minutes.",
		code, int(expiry.Minutes()))
	return m.Send(to, subject, body)
}

// BuildMessage assembles an RFC 822 style plain-text message.
func BuildMessage(from, to, subject, body string) []byte {
	msg := "From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n" +
		body + "\r\n"
	return []byte(msg)
}
