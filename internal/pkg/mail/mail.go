package mail

import (
	"context"
	"io"
)

// Message represents an email payload.
type Message struct {
	// From is an optional explicit sender; the configured default is used when empty.
	From string
	// To lists required recipients.
	To []string
	// Subject is the email subject line.
	Subject string
	// TextBody is the plain-text body.
	TextBody string
	// HTMLBody is the optional HTML alternative.
	HTMLBody string
}

// Mail abstracts an email provider.
type Mail interface {
	io.Closer
	// Send dispatches the given message using the underlying provider.
	Send(ctx context.Context, msg Message) error
}

// New returns an SMTP sender, or a Noop sender when cfg.Host is empty.
func New(cfg SMTPConfig) (Mail, error) {
	if cfg.Host == "" {
		return NewNoop(), nil
	}

	return NewSMTP(cfg)
}
