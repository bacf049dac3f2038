// Package otp generates and checks six-digit one-time passcodes.
//
// Codes are drawn from crypto/rand. Only a salted HMAC digest of a code is
// meant to be stored; Verify recomputes it and compares in constant time.
package otp
