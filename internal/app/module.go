package app

import (
	"errors"
	"log/slog"
	"os"
	"slices"
	"strings"

	"github.com/shandysiswandi/otplogin/internal/auth"
	"github.com/shandysiswandi/otplogin/internal/notification"
	"github.com/shandysiswandi/otplogin/internal/pkg/config"
	"github.com/shandysiswandi/otplogin/internal/pkg/messaging"
	"github.com/shandysiswandi/otplogin/internal/shared/event"
)

var errNoInProcessConsumer = errors.New("auth publishes to the memory broker but no otp_issued consumer runs in this process")

// checkModules rejects configurations where issued codes cannot reach a
// consumer. The memory broker only delivers within this process.
func checkModules(cfg config.Config) error {
	if !cfg.GetBool("modules.auth.enabled") {
		return nil
	}

	switch strings.TrimSpace(cfg.GetString("messaging.driver")) {
	case messaging.DriverMemory, "":
	default:
		return nil
	}

	if !cfg.GetBool("modules.notification.enabled") {
		return errNoInProcessConsumer
	}

	names := cfg.GetArray("modules.notification.consumer_names")
	if len(names) > 0 && !slices.Contains(names, event.OtpIssuedDestinationConsumerNotification) {
		return errNoInProcessConsumer
	}

	return nil
}

func (a *App) initModules() {
	if err := checkModules(a.config); err != nil {
		slog.Error("failed to init modules", "error", err)
		os.Exit(1)
	}

	if a.config.GetBool("modules.notification.enabled") {
		if err := notification.New(notification.Dependency{
			Ctx:         a.ctx,
			Messaging:   a.messaging,
			Config:      a.config,
			Instrument:  a.ins,
			UUID:        a.uuid,
			Clock:       a.clock,
			Goroutine:   a.goroutine,
			Validator:   a.validator,
			Idempotency: a.idemp,
			Mail:        a.mail,
			SMS:         a.sms,
		}); err != nil {
			slog.Error("failed to init module notification", "error", err)
			os.Exit(1)
		}
	}

	if a.config.GetBool("modules.auth.enabled") {
		if err := auth.New(auth.Dependency{
			DBConn:     a.dbConn,
			Router:     a.router,
			Messaging:  a.messaging,
			Limiter:    a.limiter,
			Config:     a.config,
			Instrument: a.ins,
			UID:        a.uid,
			UUID:       a.uuid,
			Clock:      a.clock,
			Validator:  a.validator,
			JWT:        a.jwt,
		}); err != nil {
			slog.Error("failed to init module auth", "error", err)
			os.Exit(1)
		}
	}
}
