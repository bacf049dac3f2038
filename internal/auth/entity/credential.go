package entity

import "time"

// OtpSecret is an outstanding code. Hash, salt and expiry exist together
// or not at all.
type OtpSecret struct {
	Hash      string
	Salt      string
	ExpiresAt time.Time
}

// CredentialRecord is the per-identifier OTP state.
type CredentialRecord struct {
	ID            int64
	Identifier    Identifier
	Otp           *OtpSecret
	AttemptCount  int
	BlockedUntil  *time.Time
	LastOtpSentAt *time.Time
	EmailVerified bool
	PhoneVerified bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Clone returns a deep copy so callers can derive a new record without
// aliasing the pointer fields of the receiver.
func (r CredentialRecord) Clone() CredentialRecord {
	if r.Otp != nil {
		otp := *r.Otp
		r.Otp = &otp
	}
	if r.BlockedUntil != nil {
		t := *r.BlockedUntil
		r.BlockedUntil = &t
	}
	if r.LastOtpSentAt != nil {
		t := *r.LastOtpSentAt
		r.LastOtpSentAt = &t
	}
	return r
}

// LockedAt reports whether the record is locked at now. A past
// BlockedUntil means not locked.
func (r CredentialRecord) LockedAt(now time.Time) bool {
	return r.BlockedUntil != nil && r.BlockedUntil.After(now)
}

// Email returns the identifier value when the record is keyed by email.
func (r CredentialRecord) Email() string {
	if r.Identifier.Kind == IdentifierKindEmail {
		return r.Identifier.Value
	}
	return ""
}

// Phone returns the identifier value when the record is keyed by phone.
func (r CredentialRecord) Phone() string {
	if r.Identifier.Kind == IdentifierKindPhone {
		return r.Identifier.Value
	}
	return ""
}

// MutateCredential selects the record to lock. A non-zero CreateID inserts
// the record with that ID when it does not exist yet.
type MutateCredential struct {
	Identifier Identifier
	CreateID   int64
}

// MutateFunc receives the locked record (nil when missing) and returns the
// record to persist, or nil to leave the row untouched.
type MutateFunc func(rec *CredentialRecord) (*CredentialRecord, error)
