package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shandysiswandi/otplogin/internal/auth/entity"
	"github.com/shandysiswandi/otplogin/internal/auth/policy"
	"github.com/shandysiswandi/otplogin/internal/pkg/goerror"
	"github.com/shandysiswandi/otplogin/internal/pkg/jwt"
)

type VerifyOtpInput struct {
	Identifier string `validate:"required,identifier"`
	Otp        string `validate:"required,otpcode"`
}

type VerifyOtpOutput struct {
	Token string
}

func (s *Usecase) VerifyOtp(ctx context.Context, in VerifyOtpInput) (*VerifyOtpOutput, error) {
	ctx, span := s.startSpan(ctx, "VerifyOtp")
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
	err = s.repoDB.MutateCredential(ctx, entity.MutateCredential{Identifier: ident},
		func(rec *entity.CredentialRecord) (*entity.CredentialRecord, error) {
			decision = s.policy.EvaluateVerification(ctx, rec, in.Otp, now)
			return decision.Record, nil
		})
	if err != nil {
		slog.ErrorContext(ctx, "failed to repo mutate credential for verification", "kind", ident.Kind.String(), "error", err)
		return nil, goerror.NewServer(err)
	}

	switch decision.Outcome {
	case policy.OutcomeNotFound:
		return nil, goerror.NewBusiness("User not found. Request OTP first.", goerror.CodeNotFound)

	case policy.OutcomeLocked:
		slog.WarnContext(ctx, "otp verification while locked", "kind", ident.Kind.String())
		return nil, errLocked(decision.Remaining)

	case policy.OutcomeExpiredOrAbsent:
		return nil, goerror.NewBusiness("OTP expired or not requested. Please request a new OTP.", goerror.CodeInvalidInput)

	case policy.OutcomeInvalidOtp:
		if decision.LockedNow {
			slog.WarnContext(ctx, "otp attempts exhausted, record locked",
				"record_id", decision.Record.ID, "blocked_until", decision.Record.BlockedUntil)
		} else {
			slog.InfoContext(ctx, "invalid otp submitted",
				"record_id", decision.Record.ID, "attempt_count", decision.Record.AttemptCount)
		}
		return nil, goerror.NewBusiness("Invalid OTP", goerror.CodeInvalidInput)

	case policy.OutcomeSuccess:
	default:
		slog.ErrorContext(ctx, "unexpected verification outcome", "outcome", decision.Outcome.String())
		return nil, goerror.NewServer(fmt.Errorf("unexpected verification outcome %s", decision.Outcome))
	}

	rec := decision.Record
	token, err := s.jwt.Generate(jwt.Subject{
		UserID: rec.ID,
		Email:  rec.Email(),
		Phone:  rec.Phone(),
	})
	if err != nil {
		slog.ErrorContext(ctx, "failed to generate session token", "record_id", rec.ID, "error", err)
		return nil, goerror.NewServer(err)
	}

	return &VerifyOtpOutput{Token: token}, nil
}
