package entity

// OtpContent is the rendered message for one OTP delivery.
type OtpContent struct {
	Subject  string
	TextBody string
	HTMLBody string
}
