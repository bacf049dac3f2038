package instrument

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(newLogHandler(&Config{
		ServiceName: "otp-login",
		MaskFields:  []string{"otp", "devOtp", "token", " Authorization "},
		LogWriter:   buf,
	}, nil))
}

func decodeLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	return line
}

func TestLogging_KeysAndContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	ctx := SetCorrelationID(context.Background(), "cid-123")
	logger.InfoContext(ctx, "otp issued", "kind", "email")

	line := decodeLine(t, &buf)
	assert.Equal(t, "otp issued", line["msg"])
	assert.Equal(t, "INFO", line["severity"])
	assert.Contains(t, line, "ts")
	assert.Equal(t, "cid-123", line["_cID"])
	assert.Equal(t, "otp-login", line["service"])
	assert.Equal(t, "email", line["kind"])
	assert.Contains(t, line["file"], "internal/pkg/instrument/logging_test.go:")
}

func TestLogging_MasksSensitiveKeys(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf)

	logger.Info("response",
		"token", "eyJhbGciOi",
		"body", `{"message":"sent","devOtp":"123456"}`,
		"raw", []byte(`{"otp":"654321","identifier":"a@b.co"}`),
		"headers", map[string]string{"Authorization": "Bearer x", "Accept": "json"},
		slog.Group("req", slog.String("otp", "111111")),
	)

	line := decodeLine(t, &buf)
	assert.Equal(t, maskedValue, line["token"])
	assert.JSONEq(t, `{"message":"sent","devOtp":"***"}`, line["body"].(string))
	assert.JSONEq(t, `{"otp":"***","identifier":"a@b.co"}`, line["raw"].(string))
	assert.Equal(t, map[string]any{"Authorization": maskedValue, "Accept": "json"}, line["headers"])
	assert.Equal(t, map[string]any{"otp": maskedValue}, line["req"])
}

func TestLogging_WithAttrsMasked(t *testing.T) {
	var buf bytes.Buffer
	logger := newTestLogger(&buf).With("token", "secret")

	logger.Info("hello")

	line := decodeLine(t, &buf)
	assert.Equal(t, maskedValue, line["token"])
}

func TestCorrelationID(t *testing.T) {
	assert.Empty(t, GetCorrelationID(context.Background()))

	ctx := SetCorrelationID(context.Background(), "abc")
	assert.Equal(t, "abc", GetCorrelationID(ctx))
}

func TestNew_Disabled(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	ins, err := New(context.Background(), &Config{ServiceName: "svc", LogWriter: &buf})
	require.NoError(t, err)

	ins.Tracer("t")
	ins.Meter("m")
	assert.NoError(t, ins.Shutdown(context.Background()))

	slog.Info("ready")
	assert.Contains(t, buf.String(), `"service":"svc"`)
}
