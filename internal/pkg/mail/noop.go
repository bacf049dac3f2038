package mail

import (
	"context"
	"log/slog"
)

// Noop drops every message after logging it.
type Noop struct{}

// NewNoop returns a sender used when SMTP is not configured.
func NewNoop() *Noop {
	return &Noop{}
}

// Send logs and discards msg.
func (*Noop) Send(ctx context.Context, msg Message) error {
	slog.WarnContext(ctx, "smtp not configured; email skipped", "to", msg.To, "subject", msg.Subject)
	return nil
}

// Close implements io.Closer.
func (*Noop) Close() error {
	return nil
}
