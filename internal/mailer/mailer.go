// Package mailer sends transactional mail over SMTP.
package mailer

import (
	"fmt"

	gomail "gopkg.in/gomail.v2"

	"aquatrack/internal/config"
)

// Mailer sends password-reset mail through the configured SMTP relay.
type Mailer struct {
	dialer      *gomail.Dialer
	from        string
	frontendURL string
}

// New creates a Mailer from the application configuration.
func New(cfg *config.Config) *Mailer {
	return &Mailer{
		dialer:      gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword),
		from:        cfg.SMTPFrom,
		frontendURL: cfg.FrontendURL,
	}
}

// SendPasswordReset mails a reset link carrying the one-time token.
func (m *Mailer) SendPasswordReset(to, token string) error {
	link := fmt.Sprintf("%s/reset-password?token=%s", m.frontendURL, token)

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Reset your AquaTrack password")
	msg.SetBody("text/html", fmt.Sprintf(
		`<p>You requested a password reset.</p>
<p><a href=%q>Set a new password</a></p>
<p>The link is valid for one hour. If you did not request this, ignore this mail.</p>`, link))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}
