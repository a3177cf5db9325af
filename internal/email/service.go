package email

import (
	"context"
	"fmt"
	"net/smtp"

	"patienthelpdesk/internal/logging"
)

// Service sends transactional mail over SMTP
type Service struct {
	smtpHost     string
	smtpPort     string
	smtpUser     string
	smtpPassword string
	fromEmail    string
}

func NewService(smtpHost, smtpPort, smtpUser, smtpPassword, fromEmail string) *Service {
	return &Service{
		smtpHost:     smtpHost,
		smtpPort:     smtpPort,
		smtpUser:     smtpUser,
		smtpPassword: smtpPassword,
		fromEmail:    fromEmail,
	}
}

// SendResetCode sends the 6-digit password reset code as plain text.
// Delivery failures are returned to the caller; the reset flow treats a
// failed send as no challenge issued.
func (s *Service) SendResetCode(ctx context.Context, toEmail, code string) error {
	logger := logging.GetLoggerFromContext(ctx)

	if s.smtpHost == "" {
		return fmt.Errorf("smtp relay not configured")
	}

	subject := "Password Reset Code - Patient Helpdesk"
	body := fmt.Sprintf("Your 6-digit reset code is: %s\n\nValid for 10 minutes.", code)

	if err := s.sendEmail(toEmail, subject, body); err != nil {
		logger.Error("failed to send reset code email", "email", toEmail, "error", err)
		return fmt.Errorf("send email: %w", err)
	}

	logger.Info("reset code email sent", "email", toEmail)
	return nil
}

func (s *Service) sendEmail(to, subject, body string) error {
	auth := smtp.PlainAuth("", s.smtpUser, s.smtpPassword, s.smtpHost)

	// Build message
	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/plain; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		s.fromEmail, to, subject, body,
	))

	addr := fmt.Sprintf("%s:%s", s.smtpHost, s.smtpPort)
	return smtp.SendMail(addr, auth, s.fromEmail, []string{to}, msg)
}
