// Package policy decides OTP issuance and verification outcomes.
//
// The engine is pure: it reads a record and a single instant and returns
// the decision together with the next record, leaving persistence to the
// caller.
package policy

import (
	"context"
	"log/slog"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/shandysiswandi/otplogin/internal/auth/entity"
)

const (
	DefaultResendCooldown  = 30 * time.Second
	DefaultOtpValidity     = 5 * time.Minute
	DefaultMaxAttempts     = 5
	DefaultLockoutDuration = 10 * time.Minute
)

// Config holds the anti-abuse thresholds. Non-positive values fall back to
// the defaults.
type Config struct {
	ResendCooldown  time.Duration
	OtpValidity     time.Duration
	MaxAttempts     int
	LockoutDuration time.Duration
}

func (c Config) normalize() Config {
	if c.ResendCooldown <= 0 {
		c.ResendCooldown = DefaultResendCooldown
	}
	if c.OtpValidity <= 0 {
		c.OtpValidity = DefaultOtpValidity
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.LockoutDuration <= 0 {
		c.LockoutDuration = DefaultLockoutDuration
	}
	return c
}

type codec interface {
	Generate() (string, error)
	NewSalt() (string, error)
	Hash(code, salt string) (string, error)
	Verify(candidate, salt, digest string) bool
}

type Engine struct {
	cfg       Config
	codec     codec
	decisions metric.Int64Counter
}

// New builds an Engine. meter may be nil.
func New(cfg Config, c codec, meter metric.Meter) *Engine {
	if meter == nil {
		meter = noop.NewMeterProvider().Meter("auth.policy")
	}

	decisions, err := meter.Int64Counter("auth.otp.decisions",
		metric.WithDescription("OTP policy decisions by operation and outcome"))
	if err != nil {
		slog.Error("failed to create otp decision counter", "error", err)
	}

	return &Engine{cfg: cfg.normalize(), codec: c, decisions: decisions}
}

// Config returns the effective thresholds.
func (e *Engine) Config() Config {
	return e.cfg
}

// EvaluateIssuance decides whether a new code may be issued for rec at now.
// Lockout is checked before cooldown.
func (e *Engine) EvaluateIssuance(ctx context.Context, rec entity.CredentialRecord, now time.Time) (Decision, error) {
	if rec.LockedAt(now) {
		return e.record(ctx, "issue", Decision{Outcome: OutcomeLocked, Remaining: rec.BlockedUntil.Sub(now)}), nil
	}

	if rec.LastOtpSentAt != nil {
		if elapsed := now.Sub(*rec.LastOtpSentAt); elapsed < e.cfg.ResendCooldown {
			return e.record(ctx, "issue", Decision{Outcome: OutcomeCooldown, Remaining: e.cfg.ResendCooldown - elapsed}), nil
		}
	}

	code, err := e.codec.Generate()
	if err != nil {
		return Decision{}, err
	}
	salt, err := e.codec.NewSalt()
	if err != nil {
		return Decision{}, err
	}

	digest, err := e.codec.Hash(code, salt)
	if err != nil {
		return Decision{}, err
	}

	next := rec.Clone()
	next.Otp = &entity.OtpSecret{
		Hash:      digest,
		Salt:      salt,
		ExpiresAt: now.Add(e.cfg.OtpValidity),
	}
	next.AttemptCount = 0
	next.LastOtpSentAt = lo.ToPtr(now)

	return e.record(ctx, "issue", Decision{Outcome: OutcomeIssued, Code: code, Record: &next}), nil
}

// EvaluateVerification decides the outcome of checking candidate against
// rec at now. A nil rec means the identifier is unknown.
func (e *Engine) EvaluateVerification(ctx context.Context, rec *entity.CredentialRecord, candidate string, now time.Time) Decision {
	if rec == nil {
		return e.record(ctx, "verify", Decision{Outcome: OutcomeNotFound})
	}

	if rec.LockedAt(now) {
		return e.record(ctx, "verify", Decision{Outcome: OutcomeLocked, Remaining: rec.BlockedUntil.Sub(now)})
	}

	if rec.Otp == nil || !now.Before(rec.Otp.ExpiresAt) {
		return e.record(ctx, "verify", Decision{Outcome: OutcomeExpiredOrAbsent})
	}

	next := rec.Clone()

	if e.codec.Verify(candidate, rec.Otp.Salt, rec.Otp.Hash) {
		next.Otp = nil
		next.AttemptCount = 0
		next.BlockedUntil = nil
		switch next.Identifier.Kind {
		case entity.IdentifierKindEmail:
			next.EmailVerified = true
		case entity.IdentifierKindPhone:
			next.PhoneVerified = true
		}
		return e.record(ctx, "verify", Decision{Outcome: OutcomeSuccess, Record: &next})
	}

	next.AttemptCount++
	if next.AttemptCount < e.cfg.MaxAttempts {
		return e.record(ctx, "verify", Decision{Outcome: OutcomeInvalidOtp, Record: &next})
	}

	next.BlockedUntil = lo.ToPtr(now.Add(e.cfg.LockoutDuration))
	next.Otp = nil
	next.AttemptCount = 0

	return e.record(ctx, "verify", Decision{Outcome: OutcomeInvalidOtp, Record: &next, LockedNow: true})
}

func (e *Engine) record(ctx context.Context, op string, d Decision) Decision {
	if e.decisions != nil {
		e.decisions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("operation", op),
			attribute.String("outcome", d.Outcome.String()),
			attribute.Bool("locked_now", d.LockedNow),
		))
	}
	return d
}
