package mail

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"

	"github.com/abygeorge8848/VolunteeringPortal/config"
)

// ErrInvalidMessage recipient or subject missing
var ErrInvalidMessage = errors.New("mail message needs a recipient and a subject")

// Message outbound email
type Message struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

func (m Message) validate() error {
	if len(m.To) == 0 || m.Subject == "" {
		return ErrInvalidMessage
	}
	return nil
}

// Sender delivers a message
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// NewSender returns a Resend-backed sender, or a logging sender when no API key is configured.
func NewSender(cfg *config.MailConfig, logger *zap.Logger) Sender {
	if cfg.APIKey == "" {
		logger.Warn("mail.api_key not set, outgoing mail will only be logged")
		return NewLogSender(logger)
	}
	return NewResendSender(cfg.APIKey, cfg.From, logger)
}

// ── Resend ──

// ResendSender sends through the Resend API
type ResendSender struct {
	client *resend.Client
	from   string
	logger *zap.Logger
}

// NewResendSender creates a ResendSender
func NewResendSender(apiKey, from string, logger *zap.Logger) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Text:    msg.Text,
		Html:    msg.HTML,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		s.logger.Error("send mail failed", zap.Strings("to", msg.To), zap.String("subject", msg.Subject), zap.Error(err))
		return fmt.Errorf("resend send: %w", err)
	}

	s.logger.Info("mail sent", zap.String("message_id", sent.Id), zap.Strings("to", msg.To))
	return nil
}

// ── log only ──

// LogSender writes messages to the log instead of delivering them
type LogSender struct {
	logger *zap.Logger
}

// NewLogSender creates a LogSender
func NewLogSender(logger *zap.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	if err := msg.validate(); err != nil {
		return err
	}
	s.logger.Info("mail (not delivered)",
		zap.Strings("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Text),
	)
	return nil
}
