package usecase

import (
	"bytes"
	"context"
	"html/template"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/shandysiswandi/otplogin/internal/pkg/clock"
	"github.com/shandysiswandi/otplogin/internal/pkg/idempotency"
	"github.com/shandysiswandi/otplogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otplogin/internal/pkg/mail"
	"github.com/shandysiswandi/otplogin/internal/pkg/sms"
	"github.com/shandysiswandi/otplogin/internal/pkg/validator"
)

type repoMail interface {
	Send(ctx context.Context, msg mail.Message) error
}

type repoSMS interface {
	Send(ctx context.Context, msg sms.Message) error
}

type Usecase struct {
	repoMail   repoMail
	repoSMS    repoSMS
	idemp      idempotency.Idempotency
	validator  validator.Validator
	clock      clock.Clocker
	ins        instrument.Instrumentation
	deliveries metric.Int64Counter
}

type Dependency struct {
	RepoMail    repoMail
	RepoSMS     repoSMS
	Idempotency idempotency.Idempotency
	Validator   validator.Validator
	Clock       clock.Clocker
	Instrument  instrument.Instrumentation
}

func NewNotification(dep Dependency) *Usecase {
	deliveries, err := dep.Instrument.Meter("notification.usecase").Int64Counter(
		"notification.otp.deliveries",
		metric.WithDescription("OTP deliveries by channel and status"),
	)
	if err != nil {
		slog.Error("failed to create otp delivery counter", "error", err)
	}

	return &Usecase{
		repoMail:   dep.RepoMail,
		repoSMS:    dep.RepoSMS,
		idemp:      dep.Idempotency,
		validator:  dep.Validator,
		clock:      dep.Clock,
		ins:        dep.Instrument,
		deliveries: deliveries,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("notification.usecase").Start(ctx, name)
}

func (s *Usecase) countDelivery(ctx context.Context, channel, status string) {
	if s.deliveries == nil {
		return
	}
	s.deliveries.Add(ctx, 1, metric.WithAttributes(
		attribute.String("channel", channel),
		attribute.String("status", status),
	))
}

func (s *Usecase) renderTemplate(name, tpl string, data map[string]any) (string, error) {
	t, err := template.New(name).Option("missingkey=zero").Parse(tpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
