package notifications

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
	"time"

	"instaclone/internal/shared/config"
	"instaclone/pkg/logger"
)

// EmailService sends rendered notifications over SMTP.
type EmailService interface {
	SendNotification(ctx context.Context, notification *EmailNotification) error
	SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error
}

// SMTPEmailService delivers mail through a single SMTP relay, using
// STARTTLS when configured.
type SMTPEmailService struct {
	cfg config.EmailConfig
	log *logger.Logger
}

func NewSMTPEmailService(cfg config.EmailConfig, log *logger.Logger) (*SMTPEmailService, error) {
	if cfg.SMTPHost == "" {
		return nil, fmt.Errorf("SMTP host is required")
	}
	if cfg.SMTPPort <= 0 || cfg.SMTPPort > 65535 {
		return nil, fmt.Errorf("SMTP port must be between 1 and 65535")
	}
	if cfg.FromEmail == "" {
		return nil, fmt.Errorf("from email is required")
	}
	return &SMTPEmailService{cfg: cfg, log: log}, nil
}

func (s *SMTPEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	htmlBody, textBody := renderContent(notification)
	return s.SendHTML(ctx, notification.RecipientEmail, notification.Subject, htmlBody, textBody)
}

func (s *SMTPEmailService) SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error {
	message := s.buildMessage(to, subject, htmlBody, textBody)

	var auth smtp.Auth
	if s.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUsername, s.cfg.SMTPPassword, s.cfg.SMTPHost)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	var err error
	if s.cfg.SMTPTLS {
		err = s.sendWithSTARTTLS(addr, auth, to, message)
	} else {
		err = smtp.SendMail(addr, auth, s.cfg.FromEmail, []string{to}, message)
	}
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.log.InfoWithContext(ctx, "email sent", map[string]interface{}{"to": to, "subject": subject})
	return nil
}

// sendWithSTARTTLS upgrades a plain connection before authenticating,
// which is what most relays (Gmail included) expect on port 587.
func (s *SMTPEmailService) sendWithSTARTTLS(addr string, auth smtp.Auth, to string, message []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer client.Quit()

	tlsconfig := &tls.Config{
		ServerName: s.cfg.SMTPHost,
	}
	if err = client.StartTLS(tlsconfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if auth != nil {
		if err = client.Auth(auth); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err = client.Mail(s.cfg.FromEmail); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}
	if err = client.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}
	if _, err = w.Write(message); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}
	return w.Close()
}

func (s *SMTPEmailService) buildMessage(to, subject, htmlBody, textBody string) []byte {
	boundary := "boundary_" + strconv.FormatInt(time.Now().UnixNano(), 10)

	message := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, s.cfg.FromEmail)
	message += fmt.Sprintf("To: %s\r\n", to)
	message += fmt.Sprintf("Subject: %s\r\n", subject)
	message += "MIME-Version: 1.0\r\n"
	message += fmt.Sprintf("Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	message += fmt.Sprintf("Content-Type: multipart/alternative; boundary=%s\r\n", boundary)
	message += "\r\n"

	if textBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary)
		message += "Content-Type: text/plain; charset=UTF-8\r\n\r\n"
		message += textBody + "\r\n"
	}
	if htmlBody != "" {
		message += fmt.Sprintf("--%s\r\n", boundary)
		message += "Content-Type: text/html; charset=UTF-8\r\n\r\n"
		message += htmlBody + "\r\n"
	}
	message += fmt.Sprintf("--%s--\r\n", boundary)

	return []byte(message)
}

// renderContent builds the email body for each notification type.
func renderContent(notification *EmailNotification) (htmlBody, textBody string) {
	data := notification.TemplateData

	switch notification.Type {
	case NotificationTypePasswordReset:
		htmlBody = fmt.Sprintf(`
			<h2>Password Recovery</h2>
			<p>Hi %s,</p>
			<p>We received a request to reset the password for your account.</p>
			<p>Use the following token to reset your password. It is valid for %v hours.</p>
			<p><code>%s</code></p>
			<p>If you did not request this, you can safely ignore this email.</p>
		`,
			notification.RecipientName,
			data["valid_hours"],
			data["token"],
		)
		textBody = fmt.Sprintf(
			"Hi %s,\n\nWe received a request to reset the password for your account.\nUse the following token to reset your password. It is valid for %v hours.\n\n%s\n\nIf you did not request this, you can safely ignore this email.",
			notification.RecipientName,
			data["valid_hours"],
			data["token"],
		)

	case NotificationTypeNewAccount:
		htmlBody = fmt.Sprintf(`
			<h2>Welcome!</h2>
			<p>Hi %s,</p>
			<p>Your account <strong>%s</strong> has been created.</p>
			<p>You can now log in and start sharing.</p>
		`,
			notification.RecipientName,
			data["username"],
		)
		textBody = fmt.Sprintf(
			"Hi %s,\n\nYour account %s has been created.\nYou can now log in and start sharing.",
			notification.RecipientName,
			data["username"],
		)

	default:
		htmlBody = fmt.Sprintf("<h2>%s</h2><p>Hi %s,</p>", notification.Subject, notification.RecipientName)
		textBody = fmt.Sprintf("Hi %s,\n\n%s", notification.RecipientName, notification.Subject)
	}

	return htmlBody, textBody
}

// MockEmailService logs instead of sending. Used when SMTP is not
// configured and in tests.
type MockEmailService struct {
	log *logger.Logger
}

func NewMockEmailService(log *logger.Logger) *MockEmailService {
	return &MockEmailService{log: log}
}

func (s *MockEmailService) SendNotification(ctx context.Context, notification *EmailNotification) error {
	s.log.InfoWithContext(ctx, "mock email notification", map[string]interface{}{
		"type":    string(notification.Type),
		"to":      notification.RecipientEmail,
		"subject": notification.Subject,
	})
	return nil
}

func (s *MockEmailService) SendHTML(ctx context.Context, to, subject, htmlBody, textBody string) error {
	s.log.InfoWithContext(ctx, "mock email", map[string]interface{}{"to": to, "subject": subject})
	return nil
}
