package mail

import (
	"fmt"
	"log"
	"net/smtp"
	"time"

	"github.com/DanielHoffmann/AuthGate/internal/pkg/env"
)

// Mailer dispatches transactional mail. Delivery failures are returned to the
// caller so they can be surfaced distinctly from other errors.
type Mailer interface {
	Send(to string, subject string, body string) error
}

// SMTPMailer sends emails via SMTP
type SMTPMailer struct{}

func NewSMTPMailer() *SMTPMailer {
	return &SMTPMailer{}
}

func (m *SMTPMailer) Send(to string, subject string, body string) error {
	host := env.GetEnv("SMTP_HOST", "")
	port := env.GetEnv("SMTP_PORT", "")
	username := env.GetEnv("SMTP_USERNAME", "")
	password := env.GetEnv("SMTP_PASSWORD", "")
	sender := env.GetEnv("SMTP_SENDER", "")

	if sender == "" {
		sender = fmt.Sprintf("no-reply@%s", "localhost")
		log.Printf("SMTP_SENDER not set, using default sender: %s", sender)
	}

	var auth smtp.Auth
	if username != "" && password != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	addr := fmt.Sprintf("%s:%s", host, port)

	msg := []byte(
		fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n", sender, to, subject) +
			"MIME-Version: 1.0\r\n" +
			"Content-Type: text/html; charset=UTF-8\r\n\r\n" +
			body,
	)

	err := smtp.SendMail(addr, auth, sender, []string{to}, msg)
	if err != nil {
		log.Printf("SMTP send error: %v", err)
	} else {
		log.Printf("Email sent to %s via %s", to, addr)
	}
	return err
}

// ResetCodeMessage builds the subject and HTML body for a password reset mail.
func ResetCodeMessage(code string, ttl time.Duration) (string, string) {
	subject := "Your password reset code"
	body := fmt.Sprintf(
		"<p>Use the following code to reset your password:</p>"+
			"<p style=\"font-size:24px;letter-spacing:4px\"><strong>%s</strong></p>"+
			"<p>The code expires in %d minutes. If you did not request a reset, you can ignore this mail.</p>",
		code, int(ttl.Minutes()),
	)
	return subject, body
}
