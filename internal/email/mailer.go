// Package email sends the transactional emails of the contact form.
package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/resendlabs/resend-go"
)

// ErrNotConfigured is returned when no provider API key is available.
var ErrNotConfigured = errors.New("email provider API key not configured")

// Message is a single outbound HTML email.
type Message struct {
	From    string
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

// Mailer defines the interface for sending emails, allowing for mock implementations in tests.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// KeySource returns the provider key stored at runtime, or "" when none is stored.
type KeySource func(ctx context.Context) (string, error)

// ResendMailer is the concrete implementation of Mailer using the Resend API.
// The key is resolved on every send so an admin can rotate it without a restart.
type ResendMailer struct {
	keySource   KeySource
	fallbackKey string
	newClient   func(apiKey string) *resend.Client
}

// NewResendMailer creates a mailer that prefers keys from source over fallbackKey.
func NewResendMailer(source KeySource, fallbackKey string) *ResendMailer {
	return &ResendMailer{
		keySource:   source,
		fallbackKey: fallbackKey,
		newClient:   resend.NewClient,
	}
}

func (m *ResendMailer) apiKey(ctx context.Context) (string, error) {
	if m.keySource != nil {
		key, err := m.keySource(ctx)
		if err != nil {
			return "", fmt.Errorf("resolve api key: %w", err)
		}
		if key != "" {
			return key, nil
		}
	}
	if m.fallbackKey == "" {
		return "", ErrNotConfigured
	}
	return m.fallbackKey, nil
}

// Send delivers msg through Resend. Failures are not retried.
func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	key, err := m.apiKey(ctx)
	if err != nil {
		return err
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		ReplyTo: msg.ReplyTo,
	}

	if _, err := m.newClient(key).Emails.Send(params); err != nil {
		return fmt.Errorf("failed to send email via Resend: %w", err)
	}
	return nil
}
