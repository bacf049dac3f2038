package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/otplogin/internal/pkg/config"
)

func TestEnvDefaults(t *testing.T) {
	cfg, err := config.NewViperFromBytes("yaml", []byte("{}"),
		config.WithEnvBindings(envBindings),
		config.WithDefaults(envDefaults),
	)
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.GetSecond("modules.auth.otp.resend_cooldown_seconds"))
	assert.Equal(t, 5*time.Minute, cfg.GetMinute("modules.auth.otp.validity_minutes"))
	assert.Equal(t, 5, cfg.GetInt("modules.auth.otp.max_attempts"))
	assert.Equal(t, 10*time.Minute, cfg.GetMinute("modules.auth.otp.lockout_minutes"))
	assert.False(t, cfg.GetBool("modules.auth.otp.expose_dev_code"))
	assert.Equal(t, 10, cfg.GetInt("modules.auth.rate_limit.max_requests"))
	assert.Equal(t, time.Minute, cfg.GetSecond("modules.auth.rate_limit.window_seconds"))
	assert.Equal(t, "no-reply@example.com", cfg.GetString("mail.from"))
	assert.Equal(t, 587, cfg.GetInt("mail.port"))
	assert.Equal(t, ":8080", cfg.GetString("app.server.http.address"))
	assert.InDelta(t, 1.0, cfg.GetFloat64("instrument.trace_sample_ratio"), 0.0001)
	assert.Equal(t, int32(10), cfg.GetInt32("database.pool.max_conns"))
}

func TestEnvBindings(t *testing.T) {
	t.Setenv("OTP_EXP_MINUTES", "3")
	t.Setenv("MAX_OTP_ATTEMPTS", "7")
	t.Setenv("OTP_EXPOSE_DEV_CODE", "true")
	t.Setenv("SMTP_FROM", "otp@example.org")

	cfg, err := config.NewViperFromBytes("yaml", []byte("modules:\n  auth:\n    otp:\n      max_attempts: 4\n"),
		config.WithEnvBindings(envBindings),
		config.WithDefaults(envDefaults),
	)
	require.NoError(t, err)

	assert.Equal(t, 3*time.Minute, cfg.GetMinute("modules.auth.otp.validity_minutes"))
	assert.Equal(t, 7, cfg.GetInt("modules.auth.otp.max_attempts"))
	assert.True(t, cfg.GetBool("modules.auth.otp.expose_dev_code"))
	assert.Equal(t, "otp@example.org", cfg.GetString("mail.from"))
}

func TestHTTPAddress(t *testing.T) {
	t.Run("address from config", func(t *testing.T) {
		cfg, err := config.NewViperFromBytes("yaml", []byte("app:\n  server:\n    http:\n      address: 127.0.0.1:9000\n"),
			config.WithEnvBindings(envBindings),
			config.WithDefaults(envDefaults),
		)
		require.NoError(t, err)

		assert.Equal(t, "127.0.0.1:9000", httpAddress(cfg))
	})

	t.Run("PORT wins", func(t *testing.T) {
		t.Setenv("PORT", "3000")

		cfg, err := config.NewViperFromBytes("yaml", []byte("{}"),
			config.WithEnvBindings(envBindings),
			config.WithDefaults(envDefaults),
		)
		require.NoError(t, err)

		assert.Equal(t, ":3000", httpAddress(cfg))
	})

	t.Run("default", func(t *testing.T) {
		cfg, err := config.NewViperFromBytes("yaml", []byte("{}"),
			config.WithEnvBindings(envBindings),
			config.WithDefaults(envDefaults),
		)
		require.NoError(t, err)

		assert.Equal(t, ":8080", httpAddress(cfg))
	})
}

func TestCheckModules(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{
			name: "defaults",
			yaml: "{}",
		},
		{
			name:    "memory broker without notification",
			yaml:    "modules:\n  notification:\n    enabled: false\n",
			wantErr: true,
		},
		{
			name:    "memory broker with otp consumer filtered out",
			yaml:    "modules:\n  notification:\n    consumer_names: other\n",
			wantErr: true,
		},
		{
			name: "external broker without notification",
			yaml: "messaging:\n  driver: nats\nmodules:\n  notification:\n    enabled: false\n",
		},
		{
			name: "auth disabled",
			yaml: "modules:\n  auth:\n    enabled: false\n  notification:\n    enabled: false\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.NewViperFromBytes("yaml", []byte(tt.yaml),
				config.WithEnvBindings(envBindings),
				config.WithDefaults(envDefaults),
			)
			require.NoError(t, err)

			err = checkModules(cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, errNoInProcessConsumer)
				return
			}
			assert.NoError(t, err)
		})
	}
}
