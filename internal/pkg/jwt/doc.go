// Package jwt issues and verifies the session tokens handed out after a
// successful OTP verification.
//
// Tokens are HS512-signed and carry the record ID plus whichever of email or
// phone the holder proved. Context helpers store verified claims for
// downstream handlers.
package jwt
