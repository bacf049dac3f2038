package notification

import (
	"context"

	"github.com/shandysiswandi/otplogin/internal/notification/inbound"
	"github.com/shandysiswandi/otplogin/internal/notification/outbound/email"
	"github.com/shandysiswandi/otplogin/internal/notification/outbound/sms"
	"github.com/shandysiswandi/otplogin/internal/notification/usecase"
	"github.com/shandysiswandi/otplogin/internal/pkg/clock"
	"github.com/shandysiswandi/otplogin/internal/pkg/config"
	"github.com/shandysiswandi/otplogin/internal/pkg/goroutine"
	"github.com/shandysiswandi/otplogin/internal/pkg/idempotency"
	"github.com/shandysiswandi/otplogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otplogin/internal/pkg/mail"
	"github.com/shandysiswandi/otplogin/internal/pkg/messaging"
	pkgsms "github.com/shandysiswandi/otplogin/internal/pkg/sms"
	"github.com/shandysiswandi/otplogin/internal/pkg/uid"
	"github.com/shandysiswandi/otplogin/internal/pkg/validator"
)

type Dependency struct {
	Ctx         context.Context            `validate:"required"`
	Messaging   messaging.Messaging        `validate:"required"`
	Config      config.Config              `validate:"required"`
	Instrument  instrument.Instrumentation `validate:"required"`
	UUID        uid.StringID               `validate:"required"`
	Clock       clock.Clocker              `validate:"required"`
	Goroutine   *goroutine.Manager         `validate:"required"`
	Validator   validator.Validator        `validate:"required"`
	Idempotency idempotency.Idempotency    `validate:"required"`
	Mail        mail.Mail                  `validate:"required"`
	SMS         pkgsms.SMS                 `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	uc := usecase.NewNotification(usecase.Dependency{
		RepoMail:    email.New(dep.Mail, dep.Instrument),
		RepoSMS:     sms.New(dep.SMS, dep.Instrument),
		Idempotency: dep.Idempotency,
		Validator:   dep.Validator,
		Clock:       dep.Clock,
		Instrument:  dep.Instrument,
	})

	inbound.RegisterMQConsumer(dep.Ctx, dep.Config, dep.Goroutine, dep.Messaging, dep.UUID, uc, dep.Instrument)

	return nil
}
