package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

type EmailMessage struct {
	To      string
	ToName  string
	Subject string
	Body    string
	HTML    string
}

type SendGridConfig struct {
	APIKey    string
	FromEmail string
	FromName  string
}

type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	log       *slog.Logger
}

// NewSendGridSender returns nil when no API key is configured.
func NewSendGridSender(cfg SendGridConfig, log *slog.Logger) *SendGridSender {
	if cfg.APIKey == "" {
		return nil
	}
	if log == nil {
		log = slog.Default()
	}
	if cfg.FromName == "" {
		cfg.FromName = "Consultations"
	}

	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		log:       log,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg EmailMessage) error {
	const op = "notify.SendGridSender.Send"

	if s.client == nil {
		return fmt.Errorf("%s: sendgrid client not configured", op)
	}

	html := msg.HTML
	if html == "" {
		html = msg.Body
	}

	message := mail.NewSingleEmail(
		mail.NewEmail(s.fromName, s.fromEmail),
		msg.Subject,
		mail.NewEmail(msg.ToName, msg.To),
		msg.Body,
		html,
	)

	resp, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%s: sendgrid returned status %d", op, resp.StatusCode)
	}

	s.log.Debug("email sent", slog.String("to", msg.To), slog.Int("status", resp.StatusCode))
	return nil
}

// StubEmailSender logs instead of sending.
type StubEmailSender struct {
	log *slog.Logger
}

func NewStubEmailSender(log *slog.Logger) *StubEmailSender {
	if log == nil {
		log = slog.Default()
	}
	return &StubEmailSender{log: log}
}

func (s *StubEmailSender) Send(_ context.Context, msg EmailMessage) error {
	s.log.Info("stub email sender: would send email",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
	)
	return nil
}
