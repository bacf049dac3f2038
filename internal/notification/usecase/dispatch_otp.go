package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/otplogin/internal/notification/entity"
	"github.com/shandysiswandi/otplogin/internal/pkg/idempotency"
	"github.com/shandysiswandi/otplogin/internal/pkg/mail"
	"github.com/shandysiswandi/otplogin/internal/pkg/sms"
)

var errUnsupportedChannel = errors.New("unsupported delivery channel")

type DispatchOtpInput struct {
	EventID          string         `validate:"required"`
	Channel          entity.Channel `validate:"required"`
	Destination      string         `validate:"required"`
	Code             string         `validate:"required,otpcode"`
	ExpiresInMinutes int            `validate:"required,gt=0"`
}

// DispatchOtp delivers a freshly issued code once per event. Invalid input is
// logged and dropped so a poison message is not redelivered forever.
func (s *Usecase) DispatchOtp(ctx context.Context, in DispatchOtpInput) error {
	ctx, span := s.startSpan(ctx, "DispatchOtp")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		slog.ErrorContext(ctx, "Validation failed", "event_id", in.EventID, "error", err)
		return nil
	}

	err := s.idemp.Exec(ctx, "notification:otp:"+in.EventID, func(ctx context.Context) error {
		return s.deliver(ctx, in)
	})
	if errors.Is(err, idempotency.ErrAlreadyCompleted) || errors.Is(err, idempotency.ErrAlreadyInProgress) {
		slog.InfoContext(ctx, "otp delivery already handled", "event_id", in.EventID, "reason", err.Error())
		s.countDelivery(ctx, in.Channel.String(), "duplicate")
		return nil
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to deliver otp", "event_id", in.EventID, "channel", in.Channel.String(), "error", err)
		s.countDelivery(ctx, in.Channel.String(), "failed")
		return err
	}

	s.countDelivery(ctx, in.Channel.String(), "sent")
	return nil
}

func (s *Usecase) deliver(ctx context.Context, in DispatchOtpInput) error {
	content, err := s.renderOtp(in)
	if err != nil {
		return err
	}

	switch in.Channel {
	case entity.ChannelEmail:
		return s.repoMail.Send(ctx, mail.Message{
			To:       []string{in.Destination},
			Subject:  content.Subject,
			TextBody: content.TextBody,
			HTMLBody: content.HTMLBody,
		})
	case entity.ChannelSMS:
		return s.repoSMS.Send(ctx, sms.Message{
			To:   in.Destination,
			Body: content.TextBody,
		})
	default:
		return fmt.Errorf("%w: %s", errUnsupportedChannel, in.Channel)
	}
}

func (s *Usecase) renderOtp(in DispatchOtpInput) (entity.OtpContent, error) {
	content := entity.OtpContent{
		Subject:  otpSubject,
		TextBody: fmt.Sprintf(otpTextFormat, in.Code, in.ExpiresInMinutes),
	}
	if in.Channel != entity.ChannelEmail {
		return content, nil
	}

	html, err := s.renderTemplate("otp_email", otpEmailHTML, map[string]any{
		"code":               in.Code,
		"expires_in_minutes": in.ExpiresInMinutes,
		"year":               s.clock.Now().Format("2006"),
	})
	if err != nil {
		return entity.OtpContent{}, err
	}
	content.HTMLBody = html

	return content, nil
}
