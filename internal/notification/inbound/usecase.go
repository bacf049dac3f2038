package inbound

import (
	"context"

	"github.com/shandysiswandi/otplogin/internal/notification/usecase"
)

type uc interface {
	DispatchOtp(ctx context.Context, in usecase.DispatchOtpInput) error
}
