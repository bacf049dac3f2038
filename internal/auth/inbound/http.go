package inbound

import (
	"context"
	"time"

	"github.com/shandysiswandi/otplogin/internal/auth/usecase"
	"github.com/shandysiswandi/otplogin/internal/pkg/ratelimit"
	"github.com/shandysiswandi/otplogin/internal/pkg/router"
)

type uc interface {
	RequestOtp(ctx context.Context, in usecase.RequestOtpInput) (*usecase.RequestOtpOutput, error)
	VerifyOtp(ctx context.Context, in usecase.VerifyOtpInput) (*usecase.VerifyOtpOutput, error)
	Profile(ctx context.Context) (*usecase.ProfileOutput, error)
}

// RateLimit bounds requests per client IP across both OTP endpoints.
type RateLimit struct {
	Limiter ratelimit.Limiter
	Max     int
	Window  time.Duration
}

func RegisterHTTPEndpoint(r *router.Router, uc uc, rl RateLimit) {
	end := &HTTPEndpoint{uc: uc}

	otpLimit := router.RateLimit(rl.Limiter, "auth:otp", rl.Max, rl.Window)

	r.POST("/auth/request-otp", end.RequestOtp, otpLimit)
	r.POST("/auth/verify-otp", end.VerifyOtp, otpLimit)

	// need authenticated
	r.GET("/me", end.Me)
}
