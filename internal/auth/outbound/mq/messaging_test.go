package mq

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shandysiswandi/otplogin/internal/auth/entity"
	"github.com/shandysiswandi/otplogin/internal/auth/usecase"
	"github.com/shandysiswandi/otplogin/internal/pkg/instrument"
	"github.com/shandysiswandi/otplogin/internal/pkg/messaging"
	"github.com/shandysiswandi/otplogin/internal/shared/event"
)

type recordingClient struct {
	destination string
	msg         messaging.OutgoingMessage
	err         error
}

func (r *recordingClient) Publish(_ context.Context, destination string, msg messaging.OutgoingMessage) (messaging.PublishResult, error) {
	r.destination = destination
	r.msg = msg
	return messaging.PublishResult{}, r.err
}

func (r *recordingClient) Consume(context.Context, string, messaging.Handler, ...messaging.ConsumeOption) error {
	return nil
}

func (r *recordingClient) Close() error { return nil }

func TestPublishOtpIssued(t *testing.T) {
	client := &recordingClient{}
	m := NewMessaging(client, instrument.NewNoop())

	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ctx := instrument.SetCorrelationID(context.Background(), "cid-42")

	err := m.PublishOtpIssued(ctx, usecase.OtpIssuedEvent{
		EventID:     "evt-1",
		RecordID:    99,
		Channel:     entity.IdentifierKindEmail,
		Destination: "a@b.co",
		Code:        "123456",
		ExpiresIn:   5 * time.Minute,
		IssuedAt:    issuedAt,
	})
	require.NoError(t, err)

	assert.Equal(t, event.OtpIssuedDestination, client.destination)
	assert.Equal(t, []byte("a@b.co"), client.msg.Key)
	require.Len(t, client.msg.Headers, 1)
	assert.Equal(t, "cID", client.msg.Headers[0].Key)
	assert.Equal(t, "cid-42", string(client.msg.Headers[0].Value))

	var got event.OtpIssuedMessage
	require.NoError(t, json.Unmarshal(client.msg.Body, &got))
	assert.Equal(t, event.OtpIssuedMessage{
		EventID:          "evt-1",
		RecordID:         99,
		Channel:          "email",
		Destination:      "a@b.co",
		Code:             "123456",
		ExpiresInMinutes: 5,
		IssuedAt:         issuedAt,
	}, got)
}

func TestPublishOtpIssued_Error(t *testing.T) {
	boom := errors.New("broker down")
	m := NewMessaging(&recordingClient{err: boom}, instrument.NewNoop())

	err := m.PublishOtpIssued(context.Background(), usecase.OtpIssuedEvent{Channel: entity.IdentifierKindPhone})
	assert.ErrorIs(t, err, boom)
}
