package db

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/shandysiswandi/otplogin/internal/auth/entity"
)

var errIdentityChanged = errors.New("mutation must keep the locked record identity")

const (
	queryInsertCredential = `INSERT INTO auth_credentials (id, identifier_kind, identifier_value)
	VALUES (@id, @kind, @value)
	ON CONFLICT (identifier_kind, identifier_value) DO NOTHING`

	querySelectCredentialForUpdate = `SELECT ` + credentialColumns + `
	FROM auth_credentials
	WHERE identifier_kind = @kind AND identifier_value = @value
	FOR UPDATE`

	queryUpdateCredential = `UPDATE auth_credentials SET
		otp_hash = @otp_hash,
		otp_salt = @otp_salt,
		otp_expires_at = @otp_expires_at,
		attempt_count = @attempt_count,
		blocked_until = @blocked_until,
		last_otp_sent_at = @last_otp_sent_at,
		email_verified = @email_verified,
		phone_verified = @phone_verified,
		updated_at = NOW()
	WHERE id = @id`
)

// MutateCredential locks the record for in.Identifier, hands it to fn and
// writes back whatever fn returns, all in one transaction. With a non-zero
// in.CreateID a missing record is inserted first.
func (s *DB) MutateCredential(ctx context.Context, in entity.MutateCredential, fn entity.MutateFunc) (err error) {
	ctx, span := s.startSpan(ctx, "MutateCredential")
	defer func() { s.endSpan(span, err) }()

	tx, err := s.conn.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		if rErr := tx.Rollback(ctx); rErr != nil && !errors.Is(rErr, pgx.ErrTxClosed) {
			slog.ErrorContext(ctx, "failed to rollback", "error", rErr)
		}
	}()

	key := pgx.NamedArgs{"kind": in.Identifier.Kind.String(), "value": in.Identifier.Value}

	if in.CreateID != 0 {
		if _, err := tx.Exec(ctx, queryInsertCredential, pgx.NamedArgs{
			"id":    in.CreateID,
			"kind":  in.Identifier.Kind.String(),
			"value": in.Identifier.Value,
		}); err != nil {
			return s.mapError(err)
		}
	}

	rec, err := scanCredential(tx.QueryRow(ctx, querySelectCredentialForUpdate, key))
	if errors.Is(err, pgx.ErrNoRows) {
		rec, err = nil, nil
	}
	if err != nil {
		return s.mapError(err)
	}

	next, err := fn(rec)
	if err != nil {
		return err
	}

	if next != nil {
		if rec == nil || next.ID != rec.ID {
			return errIdentityChanged
		}
		if _, err := tx.Exec(ctx, queryUpdateCredential, mutableArgs(next)); err != nil {
			return s.mapError(err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return s.mapError(err)
	}

	return nil
}
