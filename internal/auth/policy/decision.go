package policy

import (
	"time"

	"github.com/shandysiswandi/otplogin/internal/auth/entity"
)

// Outcome is the kind of decision the engine reached.
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeIssued
	OutcomeCooldown
	OutcomeLocked
	OutcomeNotFound
	OutcomeExpiredOrAbsent
	OutcomeSuccess
	OutcomeInvalidOtp
)

var outcomeNames = map[Outcome]string{
	OutcomeIssued:          "issued",
	OutcomeCooldown:        "cooldown",
	OutcomeLocked:          "locked",
	OutcomeNotFound:        "not_found",
	OutcomeExpiredOrAbsent: "expired_or_absent",
	OutcomeSuccess:         "success",
	OutcomeInvalidOtp:      "invalid_otp",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return "unknown"
}

// Decision is the result of one evaluation.
//
// Record is the state to persist and is set for Issued, Success and
// InvalidOtp. Remaining is set for Cooldown and Locked. Code is the
// plaintext code and is set only for Issued.
type Decision struct {
	Outcome   Outcome
	Remaining time.Duration
	Code      string
	Record    *entity.CredentialRecord

	// LockedNow marks an InvalidOtp that started a lockout. It is never
	// surfaced to callers.
	LockedNow bool
}

// Persist reports whether the decision carries a record mutation.
func (d Decision) Persist() bool {
	return d.Record != nil
}
