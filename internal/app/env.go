package app

import (
	"strings"

	"github.com/shandysiswandi/otplogin/internal/pkg/config"
)

// envBindings maps config keys to the environment variables operators set.
var envBindings = map[string]string{
	"app.env":                    "APP_ENV",
	"app.server.http.address":    "HTTP_ADDRESS",
	"app.server.http.port":       "PORT",
	"app.server.cors":            "CORS_ORIGINS",
	"app.server.trusted_proxies": "TRUSTED_PROXIES",

	"modules.auth.otp.resend_cooldown_seconds": "OTP_RESEND_COOLDOWN_SEC",
	"modules.auth.otp.validity_minutes":        "OTP_EXP_MINUTES",
	"modules.auth.otp.max_attempts":            "MAX_OTP_ATTEMPTS",
	"modules.auth.otp.lockout_minutes":         "OTP_LOCKOUT_MINUTES",
	"modules.auth.otp.expose_dev_code":         "OTP_EXPOSE_DEV_CODE",
	"modules.auth.rate_limit.max_requests":     "RATE_LIMIT_MAX",

	"jwt.secret":      "JWT_SECRET",
	"jwt.ttl_minutes": "JWT_TTL_MINUTES",

	"database.url":     "DATABASE_URL",
	"database.migrate": "DATABASE_MIGRATE",
	"redis.url":        "REDIS_URL",

	"ratelimit.driver":   "RATE_LIMIT_DRIVER",
	"idempotency.driver": "IDEMPOTENCY_DRIVER",

	"mail.host":     "SMTP_HOST",
	"mail.port":     "SMTP_PORT",
	"mail.username": "SMTP_USER",
	"mail.password": "SMTP_PASS",
	"mail.from":     "SMTP_FROM",

	"sms.twilio.account_sid": "TWILIO_ACCOUNT_SID",
	"sms.twilio.auth_token":  "TWILIO_AUTH_TOKEN",
	"sms.twilio.from":        "TWILIO_FROM",

	"messaging.driver":        "MESSAGING_DRIVER",
	"messaging.kafka.brokers": "KAFKA_BROKERS",
	"messaging.nats.url":      "NATS_URL",

	"instrument.enabled":       "OTEL_ENABLED",
	"instrument.otlp_endpoint": "OTEL_EXPORTER_OTLP_ENDPOINT",
	"instrument.log_level":     "LOG_LEVEL",
}

// envDefaults keep the service runnable from environment variables alone.
var envDefaults = map[string]any{
	"app.tz":                                      "UTC",
	"app.server.http.address":                     ":8080",
	"app.server.cors":                             "*",
	"app.server.max_goroutine":                    0,
	"app.server.http.read_timeout_seconds":        15,
	"app.server.http.read_header_timeout_seconds": 5,
	"app.server.http.write_timeout_seconds":       15,
	"app.server.http.idle_timeout_seconds":        60,
	"app.snowflake_node":                          1,

	"modules.auth.enabled":                     true,
	"modules.auth.otp.resend_cooldown_seconds": 30,
	"modules.auth.otp.validity_minutes":        5,
	"modules.auth.otp.max_attempts":            5,
	"modules.auth.otp.lockout_minutes":         10,
	"modules.auth.otp.expose_dev_code":         false,
	"modules.auth.rate_limit.max_requests":     10,
	"modules.auth.rate_limit.window_seconds":   60,

	"modules.notification.enabled":              true,
	"modules.notification.consumer_concurrency": 10,

	"jwt.issuer":      "otplogin",
	"jwt.audiences":   "otplogin",
	"jwt.ttl_minutes": 60,

	"database.migrate":                          true,
	"database.pool.max_conns":                   10,
	"database.pool.min_conns":                   1,
	"database.pool.max_conn_lifetime_seconds":   3600,
	"database.pool.max_conn_idle_seconds":       300,
	"database.pool.health_check_period_seconds": 30,

	"ratelimit.driver":   "memory",
	"idempotency.driver": "memory",

	"mail.port":                  587,
	"mail.from":                  "no-reply@example.com",
	"mail.timeout_seconds":       10,
	"mail.max_retries":           3,
	"sms.twilio.timeout_seconds": 10,
	"sms.twilio.max_retries":     2,

	"messaging.driver":                      "memory",
	"messaging.kafka.client_id":             "otplogin",
	"messaging.kafka.dial_timeout_seconds":  10,
	"messaging.nats.name":                   "otplogin",
	"messaging.nats.max_reconnects":         60,
	"messaging.nats.timeout_seconds":        5,
	"messaging.nats.reconnect_wait_seconds": 2,

	"instrument.enabled":                 false,
	"instrument.service_name":            "otplogin",
	"instrument.service_version":         "0.1.0",
	"instrument.trace_sample_ratio":      1.0,
	"instrument.metric_interval_seconds": 15,
	"instrument.log_level":               "info",
	"instrument.log_mask_fields":         "otp,devOtp,token,authorization,code,password",
	"instrument.log_http_body":           false,
}

// httpAddress is the listen address. PORT, when set, wins over
// app.server.http.address and listens on all interfaces.
func httpAddress(cfg config.Config) string {
	if port := strings.TrimSpace(cfg.GetString("app.server.http.port")); port != "" {
		return ":" + strings.TrimPrefix(port, ":")
	}

	return cfg.GetString("app.server.http.address")
}
