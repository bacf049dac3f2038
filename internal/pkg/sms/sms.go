// Package sms sends text messages. The Twilio implementation talks to the
// Twilio REST API; Noop is used when no provider is configured.
package sms

import (
	"context"
	"io"
	"log/slog"
)

// Message is a single text message.
type Message struct {
	To   string
	Body string
}

// SMS abstracts a text message provider.
type SMS interface {
	io.Closer
	Send(ctx context.Context, msg Message) error
}

// New returns a Twilio sender, or Noop when credentials are incomplete.
func New(cfg TwilioConfig) SMS {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.From == "" {
		return NewNoop()
	}

	return NewTwilio(cfg)
}

// Noop drops every message after logging it.
type Noop struct{}

// NewNoop returns a sender used when no provider is configured.
func NewNoop() *Noop {
	return &Noop{}
}

// Send logs and discards msg.
func (*Noop) Send(ctx context.Context, msg Message) error {
	slog.WarnContext(ctx, "sms provider not configured; sms skipped", "to", msg.To)
	return nil
}

// Close implements io.Closer.
func (*Noop) Close() error {
	return nil
}
