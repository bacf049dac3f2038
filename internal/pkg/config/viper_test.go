package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  name: otp-login
modules:
  auth:
    otp:
      resend_cooldown_seconds: 30
      validity_minutes: 5
      max_attempts: 5
      expose_dev_code: false
  notification:
    consumer_names: "otp_issued_notification, ,other"
app_maintenance: "GET:/,POST:/auth/request-otp"
`

func TestNewViperFromBytes(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "otp-login", cfg.GetString("app.name"))
	assert.Equal(t, 30*time.Second, cfg.GetSecond("modules.auth.otp.resend_cooldown_seconds"))
	assert.Equal(t, 5*time.Minute, cfg.GetMinute("modules.auth.otp.validity_minutes"))
	assert.Equal(t, 5, cfg.GetInt("modules.auth.otp.max_attempts"))
	assert.False(t, cfg.GetBool("modules.auth.otp.expose_dev_code"))
	assert.Equal(t, []string{"otp_issued_notification", "other"}, cfg.GetArray("modules.notification.consumer_names"))
	assert.Equal(t, map[string]string{"GET": "/", "POST": "/auth/request-otp"}, cfg.GetMap("app_maintenance"))
	assert.Empty(t, cfg.GetArray("missing.key"))
	assert.NoError(t, cfg.Close())
}

func TestNewViperFromBytes_RequiresType(t *testing.T) {
	_, err := NewViperFromBytes(" ", []byte(sampleYAML))
	assert.Error(t, err)
}

func TestWithEnvBindings(t *testing.T) {
	t.Setenv("MAX_OTP_ATTEMPTS", "3")
	t.Setenv("OTP_EXPOSE_DEV_CODE", "true")

	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML), WithEnvBindings(map[string]string{
		"modules.auth.otp.max_attempts":    "MAX_OTP_ATTEMPTS",
		"modules.auth.otp.expose_dev_code": "OTP_EXPOSE_DEV_CODE",
	}))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.GetInt("modules.auth.otp.max_attempts"))
	assert.True(t, cfg.GetBool("modules.auth.otp.expose_dev_code"))
}

func TestWithDefaults(t *testing.T) {
	cfg, err := NewViperFromBytes("yaml", []byte(sampleYAML), WithDefaults(map[string]any{
		"modules.auth.otp.lockout_minutes": 10,
	}))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Minute, cfg.GetMinute("modules.auth.otp.lockout_minutes"))
}

func TestNewViper_File(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(sampleYAML), 0o600))

	cfg, err := NewViper(file)
	require.NoError(t, err)
	assert.Equal(t, "otp-login", cfg.GetString("app.name"))
}

func TestNewViper_MissingFile(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := NewViper(filepath.Join(t.TempDir(), "config.yaml"),
		WithEnvBindings(map[string]string{"jwt.secret": "JWT_SECRET"}))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GetString("jwt.secret"))
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(file, []byte("OTPLOGIN_TEST_DOTENV=loaded\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("OTPLOGIN_TEST_DOTENV") })

	require.NoError(t, LoadDotEnv(file, filepath.Join(dir, "absent.env")))
	assert.Equal(t, "loaded", os.Getenv("OTPLOGIN_TEST_DOTENV"))
}
