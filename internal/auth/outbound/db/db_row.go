package db

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/samber/lo"

	"github.com/shandysiswandi/otplogin/internal/auth/entity"
)

var errPartialOtpSecret = errors.New("stored otp secret is partially set")

const credentialColumns = `id, identifier_kind, identifier_value,
	otp_hash, otp_salt, otp_expires_at,
	attempt_count, blocked_until, last_otp_sent_at,
	email_verified, phone_verified, created_at, updated_at`

type credentialRow struct {
	ID              int64
	IdentifierKind  string
	IdentifierValue string
	OtpHash         *string
	OtpSalt         *string
	OtpExpiresAt    *time.Time
	AttemptCount    int32
	BlockedUntil    *time.Time
	LastOtpSentAt   *time.Time
	EmailVerified   bool
	PhoneVerified   bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func scanCredential(row pgx.Row) (*entity.CredentialRecord, error) {
	var r credentialRow
	if err := row.Scan(
		&r.ID, &r.IdentifierKind, &r.IdentifierValue,
		&r.OtpHash, &r.OtpSalt, &r.OtpExpiresAt,
		&r.AttemptCount, &r.BlockedUntil, &r.LastOtpSentAt,
		&r.EmailVerified, &r.PhoneVerified, &r.CreatedAt, &r.UpdatedAt,
	); err != nil {
		return nil, err
	}

	return r.toEntity()
}

func (r credentialRow) toEntity() (*entity.CredentialRecord, error) {
	rec := &entity.CredentialRecord{
		ID: r.ID,
		Identifier: entity.Identifier{
			Kind:  entity.IdentifierKind(r.IdentifierKind),
			Value: r.IdentifierValue,
		},
		AttemptCount:  int(r.AttemptCount),
		BlockedUntil:  r.BlockedUntil,
		LastOtpSentAt: r.LastOtpSentAt,
		EmailVerified: r.EmailVerified,
		PhoneVerified: r.PhoneVerified,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}

	switch {
	case r.OtpHash != nil && r.OtpSalt != nil && r.OtpExpiresAt != nil:
		rec.Otp = &entity.OtpSecret{Hash: *r.OtpHash, Salt: *r.OtpSalt, ExpiresAt: *r.OtpExpiresAt}
	case r.OtpHash != nil || r.OtpSalt != nil || r.OtpExpiresAt != nil:
		return nil, errPartialOtpSecret
	}

	return rec, nil
}

func mutableArgs(rec *entity.CredentialRecord) pgx.NamedArgs {
	args := pgx.NamedArgs{
		"id":               rec.ID,
		"otp_hash":         nil,
		"otp_salt":         nil,
		"otp_expires_at":   nil,
		"attempt_count":    int32(rec.AttemptCount),
		"blocked_until":    rec.BlockedUntil,
		"last_otp_sent_at": rec.LastOtpSentAt,
		"email_verified":   rec.EmailVerified,
		"phone_verified":   rec.PhoneVerified,
	}

	if rec.Otp != nil {
		args["otp_hash"] = lo.ToPtr(rec.Otp.Hash)
		args["otp_salt"] = lo.ToPtr(rec.Otp.Salt)
		args["otp_expires_at"] = lo.ToPtr(rec.Otp.ExpiresAt)
	}

	return args
}
