package inbound

import (
	"fmt"

	"github.com/shandysiswandi/otplogin/internal/auth/usecase"
	"github.com/shandysiswandi/otplogin/internal/pkg/router"
)

// HTTPEndpoint exposes the OTP login handlers.
type HTTPEndpoint struct {
	uc uc
}

// RequestOtp issues a code for an email address or phone number.
// @Summary Request OTP
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body RequestOtpRequest true "Identifier payload"
// @Success 200 {object} RequestOtpResponse
// @Failure 400 {object} router.errorResponse "Malformed identifier"
// @Failure 423 {object} router.errorResponse "Locked"
// @Failure 429 {object} router.errorResponse "Cooldown or rate limit"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /auth/request-otp [post]
func (h *HTTPEndpoint) RequestOtp(r *router.Request) (any, error) {
	var req RequestOtpRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.RequestOtp(r.Context(), usecase.RequestOtpInput{
		Identifier: req.Identifier,
	})
	if err != nil {
		return nil, err
	}

	return RequestOtpResponse{
		Message: fmt.Sprintf("OTP sent to your %s. It will expire in %d minutes.", resp.Kind, resp.ExpiresInMinutes),
		DevOtp:  resp.DevOtp,
	}, nil
}

// VerifyOtp checks a code and returns a session token.
// @Summary Verify OTP
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body VerifyOtpRequest true "Verification payload"
// @Success 200 {object} VerifyOtpResponse
// @Failure 400 {object} router.errorResponse "Malformed input, expired or invalid code"
// @Failure 404 {object} router.errorResponse "Unknown identifier"
// @Failure 423 {object} router.errorResponse "Locked"
// @Failure 500 {object} router.errorResponse "Internal server error"
// @Router /auth/verify-otp [post]
func (h *HTTPEndpoint) VerifyOtp(r *router.Request) (any, error) {
	var req VerifyOtpRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	resp, err := h.uc.VerifyOtp(r.Context(), usecase.VerifyOtpInput{
		Identifier: req.Identifier,
		Otp:        req.Otp,
	})
	if err != nil {
		return nil, err
	}

	return VerifyOtpResponse{Token: resp.Token}, nil
}

// Me returns the credential record of the token holder.
// @Summary Current user
// @Tags Auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} MeResponse
// @Failure 401 {object} router.errorResponse "Authentication required"
// @Failure 404 {object} router.errorResponse "User not found"
// @Router /me [get]
func (h *HTTPEndpoint) Me(r *router.Request) (any, error) {
	resp, err := h.uc.Profile(r.Context())
	if err != nil {
		return nil, err
	}

	return MeResponse{User: UserResponse{
		ID:            resp.ID,
		Email:         resp.Email,
		Phone:         resp.Phone,
		EmailVerified: resp.EmailVerified,
		PhoneVerified: resp.PhoneVerified,
		CreatedAt:     resp.CreatedAt,
		UpdatedAt:     resp.UpdatedAt,
	}}, nil
}
