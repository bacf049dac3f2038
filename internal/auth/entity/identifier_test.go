package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentifier(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Identifier
		wantErr error
	}{
		{name: "empty", raw: "", wantErr: ErrMalformedIdentifier},
		{name: "email lowercased and trimmed", raw: "  Alice@Example.COM ", want: Identifier{Kind: IdentifierKindEmail, Value: "alice@example.com"}},
		{name: "email without local part is still email", raw: "@", want: Identifier{Kind: IdentifierKindEmail, Value: "@"}},
		{name: "phone whitespace removed", raw: "+91 98765\t43210\n", want: Identifier{Kind: IdentifierKindPhone, Value: "+919876543210"}},
		{name: "phone kept verbatim otherwise", raw: "+1-555-0100", want: Identifier{Kind: IdentifierKindPhone, Value: "+1-555-0100"}},
		{name: "whitespace only", raw: " \t ", wantErr: ErrMalformedIdentifier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseIdentifier(tt.raw)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCredentialRecord_Clone(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rec := CredentialRecord{
		Identifier:    Identifier{Kind: IdentifierKindEmail, Value: "a@b.co"},
		Otp:           &OtpSecret{Hash: "h", Salt: "s", ExpiresAt: now},
		BlockedUntil:  &now,
		LastOtpSentAt: &now,
	}

	cp := rec.Clone()
	cp.Otp.Hash = "changed"
	*cp.BlockedUntil = now.Add(time.Hour)
	*cp.LastOtpSentAt = now.Add(time.Hour)

	assert.Equal(t, "h", rec.Otp.Hash)
	assert.Equal(t, now, *rec.BlockedUntil)
	assert.Equal(t, now, *rec.LastOtpSentAt)
}

func TestCredentialRecord_LockedAt(t *testing.T) {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Second), now.Add(time.Second)

	assert.False(t, CredentialRecord{}.LockedAt(now))
	assert.False(t, CredentialRecord{BlockedUntil: &past}.LockedAt(now))
	assert.False(t, CredentialRecord{BlockedUntil: &now}.LockedAt(now))
	assert.True(t, CredentialRecord{BlockedUntil: &future}.LockedAt(now))
}

func TestCredentialRecord_Contact(t *testing.T) {
	email := CredentialRecord{Identifier: Identifier{Kind: IdentifierKindEmail, Value: "a@b.co"}}
	phone := CredentialRecord{Identifier: Identifier{Kind: IdentifierKindPhone, Value: "+1555"}}

	assert.Equal(t, "a@b.co", email.Email())
	assert.Empty(t, email.Phone())
	assert.Equal(t, "+1555", phone.Phone())
	assert.Empty(t, phone.Email())
}
