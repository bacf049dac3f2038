package auth

import (
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shandysiswandi/otplogin/internal/auth/inbound"
	"github.com/shandysiswandi/otplogin/internal/auth/outbound/db"
	"github.com/shandysiswandi/otplogin/internal/auth/outbound/mq"
	"github.com/shandysiswandi/otplogin/internal/auth/policy"
	"github.com/shandysiswandi/otplogin/internal/auth/usecase"
	"github.com/shandysiswandi/otplogin/internal/pkg/clock"
	"github.com/shandysiswandi/otplogin/internal/pkg/config"
	"github.com/shandysiswandi/otplogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otplogin/internal/pkg/jwt"
	"github.com/shandysiswandi/otplogin/internal/pkg/messaging"
	"github.com/shandysiswandi/otplogin/internal/pkg/otp"
	"github.com/shandysiswandi/otplogin/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otplogin/internal/pkg/router"
	"github.com/shandysiswandi/otplogin/internal/pkg/uid"
	"github.com/shandysiswandi/otplogin/internal/pkg/validator"
)

type Dependency struct {
	DBConn     *pgxpool.Pool              `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Messaging        `validate:"required"`
	Limiter    ratelimit.Limiter          `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	UID        uid.NumberID               `validate:"required"`
	UUID       uid.StringID               `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
	JWT        jwt.JWT                    `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	engine := policy.New(policy.Config{
		ResendCooldown:  dep.Config.GetSecond("modules.auth.otp.resend_cooldown_seconds"),
		OtpValidity:     dep.Config.GetMinute("modules.auth.otp.validity_minutes"),
		MaxAttempts:     dep.Config.GetInt("modules.auth.otp.max_attempts"),
		LockoutDuration: dep.Config.GetMinute("modules.auth.otp.lockout_minutes"),
	}, otp.NewCodec(), dep.Instrument.Meter("auth.policy"))

	uc := usecase.New(usecase.Dependency{
		RepoDB:        db.NewDB(dep.DBConn, dep.Instrument),
		RepoMessaging: mq.NewMessaging(dep.Messaging, dep.Instrument),
		Policy:        engine,
		Validator:     dep.Validator,
		UID:           dep.UID,
		UUID:          dep.UUID,
		Clock:         dep.Clock,
		JWT:           dep.JWT,
		Instrument:    dep.Instrument,
		ExposeDevCode: dep.Config.GetBool("modules.auth.otp.expose_dev_code"),
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, inbound.RateLimit{
		Limiter: dep.Limiter,
		Max:     dep.Config.GetInt("modules.auth.rate_limit.max_requests"),
		Window:  dep.Config.GetSecond("modules.auth.rate_limit.window_seconds"),
	})

	return nil
}
