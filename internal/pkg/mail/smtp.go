package mail

import (
	"context"
	"errors"
	"time"

	gomail "github.com/go-mail/mail"
	"github.com/sethvargo/go-retry"
)

const defaultFrom = "no-reply@example.com"

var (
	// ErrSMTPHostRequired is returned when Host is missing.
	ErrSMTPHostRequired = errors.New("smtp host is required")
	// ErrSMTPNoRecipients is returned when To is empty.
	ErrSMTPNoRecipients = errors.New("no recipients provided")
)

type dialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPConfig configures the SMTP implementation.
type SMTPConfig struct {
	// Host is the SMTP server hostname.
	Host string
	// Port is the SMTP server port; 587 when zero.
	Port int
	// Username is the SMTP authentication username.
	Username string
	// Password is the SMTP authentication password.
	Password string
	// From is the default sender when Message.From is empty.
	From string
	// Timeout bounds a single dial-and-send attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first failed attempt.
	MaxRetries uint64
}

// SMTP is a Mail implementation backed by github.com/go-mail/mail.
type SMTP struct {
	dialer      dialer
	defaultFrom string
	maxRetries  uint64
	baseBackoff time.Duration
}

// NewSMTP constructs an SMTP mail sender.
func NewSMTP(cfg SMTPConfig) (*SMTP, error) {
	if cfg.Host == "" {
		return nil, ErrSMTPHostRequired
	}

	port := cfg.Port
	if port == 0 {
		port = 587
	}

	from := cfg.From
	if from == "" {
		from = defaultFrom
	}

	d := gomail.NewDialer(cfg.Host, port, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}

	return &SMTP{
		dialer:      d,
		defaultFrom: from,
		maxRetries:  cfg.MaxRetries,
		baseBackoff: 200 * time.Millisecond,
	}, nil
}

// Send delivers a message over SMTP, retrying transient failures with a
// capped Fibonacci backoff.
func (s *SMTP) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return ErrSMTPNoRecipients
	}

	m := s.build(msg)

	b := retry.NewFibonacci(s.baseBackoff)
	b = retry.WithCappedDuration(5*time.Second, b)
	b = retry.WithMaxRetries(s.maxRetries, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.dialer.DialAndSend(m); err != nil {
			return retry.RetryableError(err)
		}

		return nil
	})
}

func (s *SMTP) build(msg Message) *gomail.Message {
	from := msg.From
	if from == "" {
		from = s.defaultFrom
	}

	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)

	switch {
	case msg.TextBody != "" && msg.HTMLBody != "":
		m.SetBody("text/plain", msg.TextBody)
		m.AddAlternative("text/html", msg.HTMLBody)
	case msg.HTMLBody != "":
		m.SetBody("text/html", msg.HTMLBody)
	default:
		m.SetBody("text/plain", msg.TextBody)
	}

	return m
}

// Close implements io.Closer for interface compatibility.
func (s *SMTP) Close() error {
	return nil
}
