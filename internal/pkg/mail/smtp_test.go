package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	gomail "github.com/go-mail/mail"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDialer struct {
	fails int
	calls int
	sent  []*gomail.Message
}

func (f *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	f.calls++
	if f.calls <= f.fails {
		return errors.New("421 service not available")
	}
	f.sent = append(f.sent, m...)
	return nil
}

func newTestSMTP(d dialer, retries uint64) *SMTP {
	return &SMTP{dialer: d, defaultFrom: defaultFrom, maxRetries: retries, baseBackoff: time.Millisecond}
}

func TestSMTP_Send(t *testing.T) {
	d := &fakeDialer{}
	s := newTestSMTP(d, 0)

	err := s.Send(context.Background(), Message{
		To:       []string{"a@b.co"},
		Subject:  "Your OTP Code",
		TextBody: "Your OTP is 123456. It expires in 5 minutes.",
		HTMLBody: "<p>123456</p>",
	})
	require.NoError(t, err)
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{defaultFrom}, m.GetHeader("From"))
	assert.Equal(t, []string{"a@b.co"}, m.GetHeader("To"))
	assert.Equal(t, []string{"Your OTP Code"}, m.GetHeader("Subject"))
}

func TestSMTP_SendRetries(t *testing.T) {
	d := &fakeDialer{fails: 2}
	s := newTestSMTP(d, 3)

	require.NoError(t, s.Send(context.Background(), Message{To: []string{"a@b.co"}, TextBody: "x"}))
	assert.Equal(t, 3, d.calls)
}

func TestSMTP_SendGivesUp(t *testing.T) {
	d := &fakeDialer{fails: 10}
	s := newTestSMTP(d, 1)

	err := s.Send(context.Background(), Message{To: []string{"a@b.co"}, TextBody: "x"})
	assert.Error(t, err)
	assert.Equal(t, 2, d.calls)
}

func TestSMTP_NoRecipients(t *testing.T) {
	s := newTestSMTP(&fakeDialer{}, 0)
	assert.ErrorIs(t, s.Send(context.Background(), Message{}), ErrSMTPNoRecipients)
}

func TestNew_Factory(t *testing.T) {
	m, err := New(SMTPConfig{})
	require.NoError(t, err)
	assert.IsType(t, &Noop{}, m)
	assert.NoError(t, m.Send(context.Background(), Message{To: []string{"a@b.co"}}))

	m, err = New(SMTPConfig{Host: "smtp.example.com"})
	require.NoError(t, err)
	assert.IsType(t, &SMTP{}, m)
	assert.NoError(t, m.Close())
}
