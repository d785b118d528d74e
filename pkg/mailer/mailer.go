// Package mailer sends transactional email.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ErrNoRecipients indicates a message without any destination address.
var ErrNoRecipients = errors.New("email requires at least one recipient")

// Message is a rendered email ready for delivery.
type Message struct {
	To      []string
	Subject string
	HTML    string
}

// Sender delivers rendered messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// ResendSender delivers email through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	logger zerolog.Logger
}

// NewResendSender constructs a Resend backed sender.
func NewResendSender(apiKey, from string, logger zerolog.Logger) (*ResendSender, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("resend api key must be provided")
	}
	if strings.TrimSpace(from) == "" {
		return nil, fmt.Errorf("sender address must be provided")
	}
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger.With().Str("component", "resend_sender").Logger(),
	}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	sent, err := s.client.Emails.Send(&resend.SendEmailRequest{
		From:    s.from,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	s.logger.Info().Str("email_id", sent.Id).Strs("to", maskRecipients(msg.To)).Str("subject", msg.Subject).Msg("email sent")
	return nil
}

// LogSender writes messages to the log instead of delivering them.
type LogSender struct {
	logger zerolog.Logger
}

// NewLogSender constructs a logging sender used when no provider is configured.
func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger.With().Str("component", "log_sender").Logger()}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	s.logger.Info().Strs("to", maskRecipients(msg.To)).Str("subject", msg.Subject).Msg("email delivery skipped, no provider configured")
	return nil
}

// MaskAddress hides most of the local part of an email address for logging.
func MaskAddress(email string) string {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return ""
	}
	local, domain, ok := strings.Cut(email, "@")
	if !ok || local == "" || strings.Contains(domain, "@") {
		return "***"
	}
	if len(local) <= 2 {
		local = local[:1] + "***"
	} else {
		local = local[:1] + "***" + local[len(local)-1:]
	}
	return local + "@" + domain
}

func maskRecipients(to []string) []string {
	masked := make([]string, 0, len(to))
	for _, address := range to {
		masked = append(masked, MaskAddress(address))
	}
	return masked
}
