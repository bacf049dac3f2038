package jwt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/otplogin/internal/pkg/clock"
)

type fixedID string

func (f fixedID) Generate() string { return string(f) }

var testSecret = []byte(strings.Repeat("k", 64))

func newTestJWT(t *testing.T, clk *clock.Frozen) *Symmetric {
	t.Helper()

	j, err := NewHS512(Config{
		Secret:    testSecret,
		Issuer:    "otp-login",
		Audiences: []string{"otp-login-api"},
		TTL:       time.Hour,
		Clock:     clk,
		UUID:      fixedID("jti-1"),
	})
	require.NoError(t, err)
	return j
}

func TestNewHS512_ShortSecret(t *testing.T) {
	_, err := NewHS512(Config{Secret: []byte("short")})
	assert.ErrorIs(t, err, ErrSigningKeyTooShort)
}

func TestSymmetric_GenerateVerify(t *testing.T) {
	clk := clock.NewFrozen(time.Now().Truncate(time.Second))
	j := newTestJWT(t, clk)

	token, err := j.Generate(Subject{UserID: 1884512837281234944, Email: "a@b.co"})
	require.NoError(t, err)

	claims, err := j.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, int64(1884512837281234944), claims.UserID)
	assert.Equal(t, "a@b.co", claims.Email)
	assert.Empty(t, claims.Phone)
	assert.Equal(t, "1884512837281234944", claims.Subject)
	assert.Equal(t, "jti-1", claims.ID)
	assert.Equal(t, clk.Now().Add(time.Hour), claims.ExpiresAt.Time)
}

func TestSymmetric_Expired(t *testing.T) {
	clk := clock.NewFrozen(time.Now().Truncate(time.Second))
	j := newTestJWT(t, clk)

	token, err := j.Generate(Subject{UserID: 7, Phone: "+15550001111"})
	require.NoError(t, err)

	clk.Advance(2 * time.Hour)
	_, err = j.Verify(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestSymmetric_WrongSecret(t *testing.T) {
	clk := clock.NewFrozen(time.Now())
	j := newTestJWT(t, clk)

	other, err := NewHS512(Config{
		Secret: []byte(strings.Repeat("x", 64)), Issuer: "otp-login",
		Audiences: []string{"otp-login-api"}, Clock: clk, UUID: fixedID("x"),
	})
	require.NoError(t, err)

	token, err := other.Generate(Subject{UserID: 1})
	require.NoError(t, err)

	_, err = j.Verify(token)
	assert.Error(t, err)
}

func TestAuthContext(t *testing.T) {
	assert.Nil(t, GetAuth(context.Background()))

	ctx := SetAuth(context.Background(), Claims{UserID: 9})
	got := GetAuth(ctx)
	require.NotNil(t, got)
	assert.Equal(t, int64(9), got.UserID)
}
