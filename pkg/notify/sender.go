package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"
)

// Sender delivers a single notification.
type Sender interface {
	Send(ctx context.Context, n *Notification) error
}

// LogSender writes notifications to the log instead of delivering them.
// Default for dev and test deployments without an SMTP host.
type LogSender struct {
	Logger *slog.Logger
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, n *Notification) error {
	logger := s.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("notification delivered (log sender)",
		"recipient", n.Recipient,
		"subject", n.Subject)
	return nil
}

// SMTPSender delivers notifications over SMTP.
type SMTPSender struct {
	Host string
	Port int
	User string
	Pass string
	From string
}

// NewSMTPSender creates an SMTPSender from config.
func NewSMTPSender(cfg *Config) *SMTPSender {
	return &SMTPSender{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.From,
	}
}

// Send implements Sender.
func (s *SMTPSender) Send(_ context.Context, n *Notification) error {
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", s.From)
	fmt.Fprintf(&msg, "To: %s\r\n", n.Recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", n.Subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(n.Body)

	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, s.Host)
	}
	if err := smtp.SendMail(addr, auth, s.From, []string{n.Recipient}, []byte(msg.String())); err != nil {
		return fmt.Errorf("smtp send to %s: %w", n.Recipient, err)
	}
	return nil
}
