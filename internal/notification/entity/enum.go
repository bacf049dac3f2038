package entity

import (
	"strings"
)

type Channel int16

const (
	ChannelUnknown Channel = 0
	ChannelEmail   Channel = 1
	ChannelSMS     Channel = 2
)

// ChannelFromString maps an identifier kind or channel name to a Channel.
func ChannelFromString(raw string) Channel {
	switch strings.TrimSpace(raw) {
	case "email":
		return ChannelEmail
	case "phone", "sms":
		return ChannelSMS
	default:
		return ChannelUnknown
	}
}

func (c Channel) String() string {
	switch c {
	case ChannelEmail:
		return "email"
	case ChannelSMS:
		return "sms"
	default:
		return "unknown"
	}
}
