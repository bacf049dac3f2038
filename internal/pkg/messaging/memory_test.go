package messaging

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startConsumer(t *testing.T, m *Memory, source string, h Handler, opts ...ConsumeOption) context.CancelFunc {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	wg.Go(func() { _ = m.Consume(ctx, source, h, opts...) })

	require.Eventually(t, func() bool { return len(m.targets(source)) > 0 }, time.Second, time.Millisecond)
	t.Cleanup(func() {
		cancel()
		wg.Wait()
	})
	return cancel
}

func TestMemory_PublishDelivers(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	var got Message
	startConsumer(t, m, "otp_issued", func(_ context.Context, msg Message) error {
		got = msg
		return nil
	}, WithQueueGroup("otp_issued_notification"))

	res, err := m.Publish(context.Background(), "otp_issued", OutgoingMessage{
		Body:    []byte(`{"code":"123456"}`),
		Headers: []Header{{Key: "cID", Value: []byte("cid-1")}},
	})
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, res.MessageID, got.ID())
	assert.Equal(t, "otp_issued", got.Topic())
	assert.JSONEq(t, `{"code":"123456"}`, string(got.Body()))
	assert.Equal(t, "cid-1", HeaderValue(got, "cID"))
	assert.Empty(t, HeaderValue(got, "missing"))
	assert.NoError(t, got.Ack(context.Background()))
}

func TestMemory_PublishReturnsHandlerError(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	boom := errors.New("smtp down")
	startConsumer(t, m, "otp_issued", func(context.Context, Message) error { return boom })

	_, err := m.Publish(context.Background(), "otp_issued", OutgoingMessage{Body: []byte("{}")})
	assert.ErrorIs(t, err, boom)
}

func TestMemory_PublishRecoversPanic(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	startConsumer(t, m, "t", func(context.Context, Message) error { panic("bad handler") })

	_, err := m.Publish(context.Background(), "t", OutgoingMessage{})
	assert.ErrorContains(t, err, "panic")
}

func TestMemory_NoSubscribers(t *testing.T) {
	m := NewMemory()

	_, err := m.Publish(context.Background(), "nobody", OutgoingMessage{})
	assert.ErrorIs(t, err, ErrNoSubscribers)
}

func TestMemory_QueueGroupDeliversOnce(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	var mu sync.Mutex
	calls := 0
	h := func(context.Context, Message) error {
		mu.Lock()
		calls++
		mu.Unlock()
		return nil
	}

	startConsumer(t, m, "t", h, WithQueueGroup("g"))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = m.Consume(ctx, "t", h, WithQueueGroup("g")) }()
	require.Eventually(t, func() bool {
		m.mu.RLock()
		defer m.mu.RUnlock()
		return len(m.subs["t"]) == 2
	}, time.Second, time.Millisecond)

	_, err := m.Publish(context.Background(), "t", OutgoingMessage{})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestMemory_Close(t *testing.T) {
	m := NewMemory()

	done := make(chan error, 1)
	go func() { done <- m.Consume(context.Background(), "t", func(context.Context, Message) error { return nil }) }()
	require.Eventually(t, func() bool { return len(m.targets("t")) == 1 }, time.Second, time.Millisecond)

	require.NoError(t, m.Close())
	require.NoError(t, <-done)

	_, err := m.Publish(context.Background(), "t", OutgoingMessage{})
	assert.Error(t, err)
	assert.NoError(t, m.Close())
}

func TestMemory_SubscribeIsLiveOnReturn(t *testing.T) {
	m := NewMemory()
	defer m.Close()

	var got []string
	unsubscribe, err := m.Subscribe("t", func(_ context.Context, msg Message) error {
		got = append(got, string(msg.Body()))
		return nil
	}, WithQueueGroup("g"))
	require.NoError(t, err)

	_, err = m.Publish(context.Background(), "t", OutgoingMessage{Body: []byte("first")})
	require.NoError(t, err)
	assert.Equal(t, []string{"first"}, got)

	unsubscribe()
	unsubscribe()

	_, err = m.Publish(context.Background(), "t", OutgoingMessage{Body: []byte("second")})
	assert.ErrorIs(t, err, ErrNoSubscribers)
}

func TestMemory_SubscribeRejects(t *testing.T) {
	m := NewMemory()

	_, err := m.Subscribe("t", nil)
	assert.ErrorIs(t, err, ErrHandlerRequired)

	require.NoError(t, m.Close())
	_, err = m.Subscribe("t", func(context.Context, Message) error { return nil })
	assert.Error(t, err)
}

func TestNewFromDriver(t *testing.T) {
	msg, err := NewFromDriver("", FactoryOptions{})
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, msg)

	_, err = NewFromDriver("kafka", FactoryOptions{})
	assert.ErrorIs(t, err, ErrKafkaBrokersRequired)

	_, err = NewFromDriver("nats", FactoryOptions{})
	assert.ErrorIs(t, err, ErrNATSURLRequired)

	_, err = NewFromDriver("sqs", FactoryOptions{})
	assert.ErrorIs(t, err, ErrUnknownDriver)
}
