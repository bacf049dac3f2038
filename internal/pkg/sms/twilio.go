package sms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

const twilioBaseURL = "https://api.twilio.com"

// ErrProviderRejected is returned when the provider answers with a non-2xx status.
var ErrProviderRejected = errors.New("sms provider rejected message")

// TwilioConfig configures the Twilio client.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	From       string
	// BaseURL overrides the API host; mainly for tests.
	BaseURL string
	// Timeout bounds a single HTTP attempt; 10s when zero.
	Timeout time.Duration
	// RetryMax is the number of retries on transport errors and 429/503.
	RetryMax int
}

// Twilio sends messages through the Twilio Messages API.
type Twilio struct {
	client  *retryablehttp.Client
	baseURL string
	sid     string
	token   string
	from    string
}

type twilioError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// NewTwilio builds a Twilio client with retrying HTTP transport.
func NewTwilio(cfg TwilioConfig) *Twilio {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = twilioBaseURL
	}

	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = cfg.RetryMax
	retryClient.RetryWaitMin = 200 * time.Millisecond
	retryClient.RetryWaitMax = 2 * time.Second
	retryClient.HTTPClient.Timeout = timeout
	retryClient.Logger = nil
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if err != nil {
			return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable {
			return true, nil
		}

		return false, nil
	}

	return &Twilio{
		client:  retryClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		sid:     cfg.AccountSID,
		token:   cfg.AuthToken,
		from:    cfg.From,
	}
}

// Send posts msg to the Messages resource.
func (t *Twilio) Send(ctx context.Context, msg Message) error {
	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json", t.baseURL, url.PathEscape(t.sid))

	form := url.Values{}
	form.Set("To", msg.To)
	form.Set("From", t.from)
	form.Set("Body", msg.Body)

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("sms: build request: %w", err)
	}
	req.SetBasicAuth(t.sid, t.token)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("sms: send: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var terr twilioError
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&terr)

	return fmt.Errorf("%w: status %d code %d: %s", ErrProviderRejected, resp.StatusCode, terr.Code, terr.Message)
}

// Close releases idle connections.
func (t *Twilio) Close() error {
	t.client.HTTPClient.CloseIdleConnections()
	return nil
}
