package messaging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"go.uber.org/atomic"
)

// ErrNoSubscribers is returned by the memory driver when nothing consumes
// the destination.
var ErrNoSubscribers = errors.New("messaging: no subscribers for destination")

// Memory delivers messages synchronously to in-process consumers.
//
// Each distinct queue group receives a message once. Publish returns the
// joined handler errors, so the caller learns about delivery failures.
type Memory struct {
	closed atomic.Bool
	seq    atomic.Int64
	done   chan struct{}

	mu   sync.RWMutex
	subs map[string][]*memorySub
}

type memorySub struct {
	group   string
	handler Handler
	next    atomic.Uint32
}

// NewMemory returns an empty in-process broker.
func NewMemory() *Memory {
	return &Memory{done: make(chan struct{}), subs: map[string][]*memorySub{}}
}

// Close stops all Consume calls and rejects further publishes.
func (m *Memory) Close() error {
	if m.closed.CompareAndSwap(false, true) {
		close(m.done)
	}
	return nil
}

// Publish runs every consumer group's handler for destination in the
// caller's goroutine.
func (m *Memory) Publish(ctx context.Context, destination string, msg OutgoingMessage) (PublishResult, error) {
	if m.closed.Load() {
		return PublishResult{}, io.ErrClosedPipe
	}
	if err := ctx.Err(); err != nil {
		return PublishResult{}, err
	}

	targets := m.targets(destination)
	if len(targets) == 0 {
		return PublishResult{}, fmt.Errorf("%w: %s", ErrNoSubscribers, destination)
	}

	now := time.Now()
	id := strconv.FormatInt(m.seq.Inc(), 10)

	var errs []error
	for _, sub := range targets {
		delivered := &memoryMessage{
			id:        id,
			topic:     destination,
			body:      append([]byte(nil), msg.Body...),
			headers:   append([]Header(nil), msg.Headers...),
			timestamp: now,
		}
		if err := callHandler(ctx, DriverMemory, sub.handler, delivered); err != nil {
			errs = append(errs, err)
		}
	}

	if err := errors.Join(errs...); err != nil {
		return PublishResult{}, fmt.Errorf("messaging: memory delivery: %w", err)
	}

	return PublishResult{MessageID: id, Topic: destination, Timestamp: now}, nil
}

// Subscribe registers handler for source and returns once it is live, so a
// Publish that follows is delivered. The returned func removes it.
func (m *Memory) Subscribe(source string, handler Handler, opts ...ConsumeOption) (func(), error) {
	if handler == nil {
		return nil, ErrHandlerRequired
	}
	if m.closed.Load() {
		return nil, io.ErrClosedPipe
	}

	co := newConsumeOptions(opts...)
	group := co.queueGroup
	if group == "" {
		group = co.group
	}

	sub := &memorySub{group: group, handler: handler}

	m.mu.Lock()
	m.subs[source] = append(m.subs[source], sub)
	m.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { m.remove(source, sub) }) }, nil
}

// Consume registers handler for source and blocks until ctx ends or the
// broker is closed.
func (m *Memory) Consume(ctx context.Context, source string, handler Handler, opts ...ConsumeOption) error {
	unsubscribe, err := m.Subscribe(source, handler, opts...)
	if err != nil {
		return err
	}
	defer unsubscribe()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-m.done:
		return nil
	}
}

// targets picks one subscriber per group, rotating within a group.
func (m *Memory) targets(destination string) []*memorySub {
	m.mu.RLock()
	defer m.mu.RUnlock()

	byGroup := map[string][]*memorySub{}
	var order []string
	for _, s := range m.subs[destination] {
		if _, seen := byGroup[s.group]; !seen {
			order = append(order, s.group)
		}
		byGroup[s.group] = append(byGroup[s.group], s)
	}

	out := make([]*memorySub, 0, len(order))
	for _, g := range order {
		members := byGroup[g]
		if g == "" {
			out = append(out, members...)
			continue
		}
		i := members[0].next.Inc() % uint32(len(members))
		out = append(out, members[i])
	}
	return out
}

func (m *Memory) remove(source string, sub *memorySub) {
	m.mu.Lock()
	defer m.mu.Unlock()

	subs := m.subs[source]
	for i, s := range subs {
		if s == sub {
			m.subs[source] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(m.subs[source]) == 0 {
		delete(m.subs, source)
	}
}

type memoryMessage struct {
	id        string
	topic     string
	body      []byte
	headers   []Header
	timestamp time.Time
}

func (m *memoryMessage) Body() []byte              { return m.body }
func (m *memoryMessage) Headers() []Header         { return m.headers }
func (m *memoryMessage) ID() string                { return m.id }
func (m *memoryMessage) Topic() string             { return m.topic }
func (m *memoryMessage) Timestamp() time.Time      { return m.timestamp }
func (m *memoryMessage) Ack(context.Context) error { return nil }
