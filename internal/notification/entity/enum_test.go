package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChannelFromString(t *testing.T) {
	tests := []struct {
		raw  string
		want Channel
	}{
		{raw: "email", want: ChannelEmail},
		{raw: " email ", want: ChannelEmail},
		{raw: "phone", want: ChannelSMS},
		{raw: "sms", want: ChannelSMS},
		{raw: "push", want: ChannelUnknown},
		{raw: "", want: ChannelUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got := ChannelFromString(tt.raw)
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Equal(t, "email", ChannelEmail.String())
	assert.Equal(t, "sms", ChannelSMS.String())
	assert.Equal(t, "unknown", ChannelUnknown.String())
}
