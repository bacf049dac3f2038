package db

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/shandysiswandi/otplogin/internal/auth/entity"
)

const querySelectCredentialByID = `SELECT ` + credentialColumns + `
	FROM auth_credentials
	WHERE id = @id`

func (s *DB) GetCredentialByID(ctx context.Context, id int64) (_ *entity.CredentialRecord, err error) {
	ctx, span := s.startSpan(ctx, "GetCredentialByID")
	defer func() { s.endSpan(span, err) }()

	rec, err := scanCredential(s.conn.QueryRow(ctx, querySelectCredentialByID, pgx.NamedArgs{"id": id}))
	if err != nil {
		return nil, s.mapError(err)
	}

	return rec, nil
}
