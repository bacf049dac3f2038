package event

import "time"

const OtpIssuedDestination string = "otp_issued"
const OtpIssuedDestinationConsumerNotification string = "otp_issued_notification"

// OtpIssuedMessage is published after a code has been stored. Code is
// plaintext; consumers must not log it.
type OtpIssuedMessage struct {
	EventID          string    `json:"eventId"`
	RecordID         int64     `json:"recordId,string"`
	Channel          string    `json:"channel"`
	Destination      string    `json:"destination"`
	Code             string    `json:"code"`
	ExpiresInMinutes int       `json:"expiresInMinutes"`
	IssuedAt         time.Time `json:"issuedAt"`
}
