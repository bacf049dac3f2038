package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/shandysiswandi/otplogin/internal/auth/entity"
	"github.com/shandysiswandi/otplogin/internal/auth/policy"
	"github.com/shandysiswandi/otplogin/internal/pkg/clock"
	"github.com/shandysiswandi/otplogin/internal/pkg/goerror"
)

type RequestOtpInput struct {
	Identifier string `validate:"required,identifier"`
}

type RequestOtpOutput struct {
	Kind             entity.IdentifierKind
	ExpiresInMinutes int
	// DevOtp is the plaintext code, set only when exposing codes is enabled.
	DevOtp string
}

func (s *Usecase) RequestOtp(ctx context.Context, in RequestOtpInput) (*RequestOtpOutput, error) {
	ctx, span := s.startSpan(ctx, "RequestOtp")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	ident, err := entity.ParseIdentifier(in.Identifier)
	if err != nil {
		return nil, errMalformedIdentifier()
	}

	now := s.clock.Now()

	var decision policy.Decision
	err = s.repoDB.MutateCredential(ctx, entity.MutateCredential{
		Identifier: ident,
		CreateID:   s.uid.Generate(),
	}, func(rec *entity.CredentialRecord) (*entity.CredentialRecord, error) {
		if rec == nil {
			return nil, goerror.ErrNotFound
		}

		d, err := s.policy.EvaluateIssuance(ctx, *rec, now)
		if err != nil {
			return nil, err
		}

		decision = d
		return d.Record, nil
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mutate credential for issuance", "kind", ident.Kind.String(), "error", err)
		return nil, goerror.NewServer(err)
	}

	switch decision.Outcome {
	case policy.OutcomeLocked:
		slog.WarnContext(ctx, "otp requested while locked", "kind", ident.Kind.String())
		return nil, errLocked(decision.Remaining)

	case policy.OutcomeCooldown:
		return nil, goerror.NewThrottled(
			fmt.Sprintf("Please wait %ds before requesting a new OTP.", clock.CeilSeconds(decision.Remaining)),
			goerror.CodeTooManyRequest,
			decision.Remaining,
		)

	case policy.OutcomeIssued:
	default:
		slog.ErrorContext(ctx, "unexpected issuance outcome", "outcome", decision.Outcome.String())
		return nil, goerror.NewServer(fmt.Errorf("unexpected issuance outcome %s", decision.Outcome))
	}

	validity := s.policy.Config().OtpValidity
	expiresInMinutes := int(math.Ceil(validity.Minutes()))

	if err := s.repoMessaging.PublishOtpIssued(ctx, OtpIssuedEvent{
		EventID:     s.uuid.Generate(),
		RecordID:    decision.Record.ID,
		Channel:     ident.Kind,
		Destination: ident.Value,
		Code:        decision.Code,
		ExpiresIn:   validity,
		IssuedAt:    now,
	}); err != nil {
		slog.ErrorContext(ctx, "failed to publish otp issued", "record_id", decision.Record.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	out := &RequestOtpOutput{
		Kind:             ident.Kind,
		ExpiresInMinutes: expiresInMinutes,
	}
	if s.exposeDevCode {
		out.DevOtp = decision.Code
	}

	return out, nil
}
