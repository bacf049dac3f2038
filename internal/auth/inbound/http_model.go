package inbound

import "time"

type RequestOtpRequest struct {
	Identifier string `json:"identifier"`
}

type RequestOtpResponse struct {
	Message string `json:"message"`
	DevOtp  string `json:"devOtp,omitempty"`
}

type VerifyOtpRequest struct {
	Identifier string `json:"identifier"`
	Otp        string `json:"otp"`
}

type VerifyOtpResponse struct {
	Token string `json:"token"`
}

type MeResponse struct {
	User UserResponse `json:"user"`
}

type UserResponse struct {
	ID            int64     `json:"id,string"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	EmailVerified bool      `json:"emailVerified"`
	PhoneVerified bool      `json:"phoneVerified"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}
