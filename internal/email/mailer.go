package email

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/merke/chattr/internal/config"
	"github.com/merke/chattr/internal/logger"
)

// Mailer sends password-reset codes over SMTP. When no SMTP host is
// configured it degrades to logging the code, which keeps local development
// working without a mail account.
type Mailer struct {
	cfg config.SMTPConfig
}

// NewMailer creates a mailer from SMTP configuration.
func NewMailer(cfg config.SMTPConfig) *Mailer {
	if cfg.Host == "" {
		logger.Warnf("SMTP not configured; password-reset codes will only be logged")
	}
	return &Mailer{cfg: cfg}
}

// SendOTP delivers a one-time password-reset code to the given address.
func (m *Mailer) SendOTP(to, code string) error {
	if m.cfg.Host == "" {
		logger.Infof("Password-reset code for %s: %s", to, code)
		return nil
	}

	from := m.cfg.From
	if from == "" {
		from = m.cfg.Username
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "Password Reset Code")
	msg.SetBody("text/html", fmt.Sprintf(`
		<h2>Password Reset Request</h2>
		<p>Your one-time code to reset your password is:</p>
		<h3>%s</h3>
		<p>This code is valid for 10 minutes. If you didn't request this, ignore this email.</p>
	`, code))

	dialer := gomail.NewDialer(m.cfg.Host, m.cfg.Port, m.cfg.Username, m.cfg.Password)
	if err := dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send reset code email: %w", err)
	}
	return nil
}
