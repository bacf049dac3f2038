package policy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/shandysiswandi/otplogin/internal/auth/entity"
	"github.com/shandysiswandi/otplogin/internal/pkg/otp"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type failingCodec struct {
	*otp.Codec
	err error
}

func (f failingCodec) Generate() (string, error) { return "", f.err }

type failingHashCodec struct {
	*otp.Codec
	err error
}

func (f failingHashCodec) Hash(string, string) (string, error) { return "", f.err }

func emailRecord() entity.CredentialRecord {
	return entity.CredentialRecord{
		ID:         1,
		Identifier: entity.Identifier{Kind: entity.IdentifierKindEmail, Value: "a@b.co"},
	}
}

func newEngine(cfg Config) *Engine {
	return New(cfg, otp.NewCodec(), nil)
}

func assertSecretInvariant(t *testing.T, rec *entity.CredentialRecord) {
	t.Helper()
	if rec.Otp == nil {
		return
	}
	assert.NotEmpty(t, rec.Otp.Hash)
	assert.NotEmpty(t, rec.Otp.Salt)
	assert.False(t, rec.Otp.ExpiresAt.IsZero())
}

func TestConfig_Defaults(t *testing.T) {
	e := newEngine(Config{ResendCooldown: -1, MaxAttempts: 0})

	assert.Equal(t, Config{
		ResendCooldown:  DefaultResendCooldown,
		OtpValidity:     DefaultOtpValidity,
		MaxAttempts:     DefaultMaxAttempts,
		LockoutDuration: DefaultLockoutDuration,
	}, e.Config())
}

func TestEvaluateIssuance(t *testing.T) {
	ctx := context.Background()
	e := newEngine(Config{})

	t.Run("fresh record issues", func(t *testing.T) {
		rec := emailRecord()
		rec.AttemptCount = 3

		d, err := e.EvaluateIssuance(ctx, rec, t0)
		require.NoError(t, err)

		assert.Equal(t, OutcomeIssued, d.Outcome)
		assert.Len(t, d.Code, otp.CodeLength)
		require.NotNil(t, d.Record)
		require.NotNil(t, d.Record.Otp)
		assertSecretInvariant(t, d.Record)
		assert.Equal(t, t0.Add(5*time.Minute), d.Record.Otp.ExpiresAt)
		assert.Equal(t, 0, d.Record.AttemptCount)
		assert.Equal(t, t0, *d.Record.LastOtpSentAt)
		assert.True(t, otp.NewCodec().Verify(d.Code, d.Record.Otp.Salt, d.Record.Otp.Hash))

		assert.Equal(t, 3, rec.AttemptCount, "input record must not be mutated")
		assert.Nil(t, rec.Otp)
	})

	t.Run("cooldown remaining decreases", func(t *testing.T) {
		first, err := e.EvaluateIssuance(ctx, emailRecord(), t0)
		require.NoError(t, err)

		var last time.Duration = DefaultResendCooldown + 1
		for s := 0; s < 30; s += 7 {
			d, err := e.EvaluateIssuance(ctx, *first.Record, t0.Add(time.Duration(s)*time.Second))
			require.NoError(t, err)
			assert.Equal(t, OutcomeCooldown, d.Outcome)
			assert.Nil(t, d.Record)
			assert.Less(t, d.Remaining, last)
			last = d.Remaining
		}

		d, err := e.EvaluateIssuance(ctx, *first.Record, t0.Add(30*time.Second))
		require.NoError(t, err)
		assert.Equal(t, OutcomeIssued, d.Outcome)
	})

	t.Run("lockout beats cooldown", func(t *testing.T) {
		rec := emailRecord()
		rec.LastOtpSentAt = &t0
		until := t0.Add(time.Minute)
		rec.BlockedUntil = &until

		d, err := e.EvaluateIssuance(ctx, rec, t0.Add(time.Second))
		require.NoError(t, err)
		assert.Equal(t, OutcomeLocked, d.Outcome)
		assert.Equal(t, 59*time.Second, d.Remaining)
	})

	t.Run("expired lockout is ignored", func(t *testing.T) {
		rec := emailRecord()
		rec.BlockedUntil = &t0

		d, err := e.EvaluateIssuance(ctx, rec, t0)
		require.NoError(t, err)
		assert.Equal(t, OutcomeIssued, d.Outcome)
		assert.Equal(t, t0, *d.Record.BlockedUntil, "a past lockout is left for a later success or lockout")
	})

	t.Run("codec failure", func(t *testing.T) {
		boom := errors.New("entropy")
		fe := New(Config{}, failingCodec{Codec: otp.NewCodec(), err: boom}, nil)

		_, err := fe.EvaluateIssuance(ctx, emailRecord(), t0)
		require.ErrorIs(t, err, boom)
	})

	t.Run("hash failure", func(t *testing.T) {
		boom := errors.New("hmac")
		fe := New(Config{}, failingHashCodec{Codec: otp.NewCodec(), err: boom}, nil)

		d, err := fe.EvaluateIssuance(ctx, emailRecord(), t0)
		require.ErrorIs(t, err, boom)
		assert.Nil(t, d.Record)
		assert.Empty(t, d.Code)
	})
}

func issued(t *testing.T, e *Engine, rec entity.CredentialRecord, now time.Time) (entity.CredentialRecord, string) {
	t.Helper()
	d, err := e.EvaluateIssuance(context.Background(), rec, now)
	require.NoError(t, err)
	require.Equal(t, OutcomeIssued, d.Outcome)
	return *d.Record, d.Code
}

func wrongCode(code string) string {
	if code[0] == '9' {
		return "1" + code[1:]
	}
	return string(code[0]+1) + code[1:]
}

func TestEvaluateVerification(t *testing.T) {
	ctx := context.Background()
	e := newEngine(Config{})

	t.Run("unknown record", func(t *testing.T) {
		d := e.EvaluateVerification(ctx, nil, "123456", t0)
		assert.Equal(t, OutcomeNotFound, d.Outcome)
		assert.False(t, d.Persist())
	})

	t.Run("never requested", func(t *testing.T) {
		rec := emailRecord()
		d := e.EvaluateVerification(ctx, &rec, "123456", t0)
		assert.Equal(t, OutcomeExpiredOrAbsent, d.Outcome)
	})

	t.Run("at and after expiry even with the right code", func(t *testing.T) {
		rec, code := issued(t, e, emailRecord(), t0)

		for _, at := range []time.Time{rec.Otp.ExpiresAt, rec.Otp.ExpiresAt.Add(time.Nanosecond), rec.Otp.ExpiresAt.Add(time.Hour)} {
			d := e.EvaluateVerification(ctx, &rec, code, at)
			assert.Equal(t, OutcomeExpiredOrAbsent, d.Outcome)
			assert.False(t, d.Persist())
		}

		d := e.EvaluateVerification(ctx, &rec, code, rec.Otp.ExpiresAt.Add(-time.Nanosecond))
		assert.Equal(t, OutcomeSuccess, d.Outcome)
	})

	t.Run("success clears fields and sets the matching flag", func(t *testing.T) {
		base := emailRecord()
		base.AttemptCount = 2
		rec, code := issued(t, e, base, t0)
		rec.AttemptCount = 2
		past := t0.Add(-time.Hour)
		rec.BlockedUntil = &past

		d := e.EvaluateVerification(ctx, &rec, code, t0.Add(time.Second))
		require.Equal(t, OutcomeSuccess, d.Outcome)
		require.NotNil(t, d.Record)
		assert.Nil(t, d.Record.Otp)
		assert.Nil(t, d.Record.BlockedUntil)
		assert.Equal(t, 0, d.Record.AttemptCount)
		assert.True(t, d.Record.EmailVerified)
		assert.False(t, d.Record.PhoneVerified)
		assert.NotNil(t, rec.Otp, "input record must not be mutated")
	})

	t.Run("phone sets phone flag", func(t *testing.T) {
		base := entity.CredentialRecord{ID: 2, Identifier: entity.Identifier{Kind: entity.IdentifierKindPhone, Value: "+1555"}}
		rec, code := issued(t, e, base, t0)

		d := e.EvaluateVerification(ctx, &rec, code, t0)
		require.Equal(t, OutcomeSuccess, d.Outcome)
		assert.True(t, d.Record.PhoneVerified)
		assert.False(t, d.Record.EmailVerified)
	})

	t.Run("wrong code increments attempts", func(t *testing.T) {
		rec, code := issued(t, e, emailRecord(), t0)

		d := e.EvaluateVerification(ctx, &rec, wrongCode(code), t0)
		require.Equal(t, OutcomeInvalidOtp, d.Outcome)
		assert.Equal(t, 1, d.Record.AttemptCount)
		assert.NotNil(t, d.Record.Otp)
		assert.False(t, d.LockedNow)
	})
}

func TestSingleCharacterMutationFails(t *testing.T) {
	e := newEngine(Config{})
	rec, code := issued(t, e, emailRecord(), t0)

	for i := range code {
		b := []byte(code)
		b[i] = '0' + (b[i]-'0'+1)%10
		d := e.EvaluateVerification(context.Background(), &rec, string(b), t0)
		assert.Equal(t, OutcomeInvalidOtp, d.Outcome, "mutation at %d", i)
	}
}

func TestLockoutScenario(t *testing.T) {
	ctx := context.Background()
	e := newEngine(Config{})

	rec, code := issued(t, e, emailRecord(), t0)
	require.Equal(t, t0.Add(300*time.Second), rec.Otp.ExpiresAt)

	bad := wrongCode(code)
	for i := 1; i <= 5; i++ {
		now := t0.Add(time.Duration(i) * time.Second)
		d := e.EvaluateVerification(ctx, &rec, bad, now)
		require.Equal(t, OutcomeInvalidOtp, d.Outcome, "attempt %d", i)
		require.NotNil(t, d.Record)
		assertSecretInvariant(t, d.Record)
		rec = *d.Record

		if i < 5 {
			assert.False(t, d.LockedNow)
			assert.Equal(t, i, rec.AttemptCount)
			continue
		}

		assert.True(t, d.LockedNow)
		require.NotNil(t, rec.BlockedUntil)
		assert.Equal(t, t0.Add(5*time.Second+600*time.Second), *rec.BlockedUntil)
		assert.Nil(t, rec.Otp)
		assert.Equal(t, 0, rec.AttemptCount)
	}

	d := e.EvaluateVerification(ctx, &rec, code, t0.Add(6*time.Second))
	assert.Equal(t, OutcomeLocked, d.Outcome)
	assert.Equal(t, 599*time.Second, d.Remaining)
	assert.False(t, d.Persist())

	d, err := e.EvaluateIssuance(ctx, rec, t0.Add(6*time.Second))
	require.NoError(t, err)
	assert.Equal(t, OutcomeLocked, d.Outcome)

	d, err = e.EvaluateIssuance(ctx, rec, t0.Add(605*time.Second))
	require.NoError(t, err)
	assert.Equal(t, OutcomeIssued, d.Outcome)
}

func TestEngine_RecordsDecisions(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	e := New(Config{}, otp.NewCodec(), mp.Meter("test"))

	ctx := context.Background()
	e.EvaluateVerification(ctx, nil, "123456", t0)
	e.EvaluateVerification(ctx, nil, "123456", t0)
	_, err := e.EvaluateIssuance(ctx, emailRecord(), t0)
	require.NoError(t, err)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	require.Len(t, rm.ScopeMetrics[0].Metrics, 1)

	m := rm.ScopeMetrics[0].Metrics[0]
	assert.Equal(t, "auth.otp.decisions", m.Name)

	sum, ok := m.Data.(metricdata.Sum[int64])
	require.True(t, ok)

	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	assert.EqualValues(t, 3, total)
	assert.Len(t, sum.DataPoints, 2)
}
