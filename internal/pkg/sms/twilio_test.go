package sms

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTwilio_Send(t *testing.T) {
	var method, path, user, pass string
	var authOK bool
	var form map[string][]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = r.ParseForm()
		method, path = r.Method, r.URL.Path
		user, pass, authOK = r.BasicAuth()
		form = r.PostForm
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"sid":"SM123"}`))
	}))
	defer srv.Close()

	c := NewTwilio(TwilioConfig{AccountSID: "AC1", AuthToken: "tok", From: "+15550000000", BaseURL: srv.URL})
	defer c.Close()

	err := c.Send(context.Background(), Message{To: "+15551112222", Body: "Your OTP is 123456. It expires in 5 minutes."})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "/2010-04-01/Accounts/AC1/Messages.json", path)
	assert.True(t, authOK)
	assert.Equal(t, "AC1", user)
	assert.Equal(t, "tok", pass)
	assert.Equal(t, []string{"+15551112222"}, form["To"])
	assert.Equal(t, []string{"+15550000000"}, form["From"])
	assert.Equal(t, []string{"Your OTP is 123456. It expires in 5 minutes."}, form["Body"])
}

func TestTwilio_Rejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":21211,"message":"Invalid 'To' Phone Number"}`))
	}))
	defer srv.Close()

	c := NewTwilio(TwilioConfig{AccountSID: "AC1", AuthToken: "tok", From: "+1", BaseURL: srv.URL})

	err := c.Send(context.Background(), Message{To: "abc", Body: "x"})
	require.ErrorIs(t, err, ErrProviderRejected)
	assert.Contains(t, err.Error(), "21211")
}

func TestTwilio_RetriesOnServiceUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewTwilio(TwilioConfig{AccountSID: "AC1", AuthToken: "tok", From: "+1", BaseURL: srv.URL, RetryMax: 2})

	require.NoError(t, c.Send(context.Background(), Message{To: "+1555", Body: "x"}))
	assert.Equal(t, int32(2), calls.Load())
}

func TestNew_Factory(t *testing.T) {
	assert.IsType(t, &Noop{}, New(TwilioConfig{AccountSID: "AC1"}))
	assert.IsType(t, &Twilio{}, New(TwilioConfig{AccountSID: "AC1", AuthToken: "t", From: "+1"}))
	assert.NoError(t, NewNoop().Send(context.Background(), Message{To: "+1"}))
}
