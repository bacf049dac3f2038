// Package idempotency guards side effects that may be triggered more than
// once for the same logical operation, such as redelivered broker messages.
package idempotency

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrAlreadyInProgress is returned when another worker holds the key.
	ErrAlreadyInProgress = errors.New("operation already in progress")
	// ErrAlreadyCompleted is returned when the key was completed before.
	ErrAlreadyCompleted = errors.New("operation already completed")
	// ErrInvalidState is returned when the stored state is unrecognized.
	ErrInvalidState = errors.New("invalid state")
)

// State is the lifecycle stage recorded for a key.
type State string

const (
	StateNone       State = "none"
	StateInProgress State = "in_progress"
	StateCompleted  State = "completed"
)

func (s State) String() string {
	return string(s)
}

// Idempotency runs fn at most once per key until the completed state expires.
type Idempotency interface {
	Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error
}

// store is the minimal key/value contract a tracker needs.
type store interface {
	setNX(ctx context.Context, key, val string, ttl time.Duration) (bool, error)
	get(ctx context.Context, key string) (string, bool, error)
	set(ctx context.Context, key, val string, ttl time.Duration) error
	del(ctx context.Context, key string) error
}

// StateTracker implements Idempotency on top of a key/value store.
type StateTracker struct {
	store  store
	prefix string
}

const (
	defaultLockDuration = time.Minute
	defaultStateTTL     = 24 * time.Hour
)

// Option customizes a single Exec call.
type Option func(*execOptions)

type execOptions struct {
	lockDuration time.Duration
	stateTTL     time.Duration
}

// WithLockDuration bounds how long an in-progress marker survives a crash.
func WithLockDuration(lockDuration time.Duration) Option {
	return func(o *execOptions) {
		o.lockDuration = lockDuration
	}
}

// WithStateTTL sets how long the completed marker is kept.
func WithStateTTL(stateTTL time.Duration) Option {
	return func(o *execOptions) {
		o.stateTTL = stateTTL
	}
}

// Acquire tries to start an operation.
func (s *StateTracker) Acquire(ctx context.Context, key string, lockDuration time.Duration) (State, error) {
	fk := s.prefix + key

	acquired, err := s.store.setNX(ctx, fk, StateInProgress.String(), lockDuration)
	if err != nil {
		return StateNone, err
	}
	if acquired {
		return StateNone, nil
	}

	result, found, err := s.store.get(ctx, fk)
	if err != nil {
		return StateNone, err
	}
	if !found {
		// expired between the two calls
		acquired, err = s.store.setNX(ctx, fk, StateInProgress.String(), lockDuration)
		if err != nil {
			return StateNone, err
		}
		if acquired {
			return StateNone, nil
		}
		return StateNone, ErrInvalidState
	}

	switch State(result) {
	case StateInProgress:
		return StateInProgress, nil
	case StateCompleted:
		return StateCompleted, nil
	default:
		return StateNone, ErrInvalidState
	}
}

// MarkCompleted records that the operation finished.
func (s *StateTracker) MarkCompleted(ctx context.Context, key string, ttl time.Duration) error {
	return s.store.set(ctx, s.prefix+key, StateCompleted.String(), ttl)
}

// Release drops the in-progress marker so a later attempt may retry.
func (s *StateTracker) Release(ctx context.Context, key string) error {
	return s.store.del(ctx, s.prefix+key)
}

// Exec runs fn unless key is in progress or completed. A failed fn releases
// the key so redelivery can retry it.
func (s *StateTracker) Exec(ctx context.Context, key string, fn func(context.Context) error, opts ...Option) error {
	execOpt := &execOptions{
		lockDuration: defaultLockDuration,
		stateTTL:     defaultStateTTL,
	}
	for _, opt := range opts {
		opt(execOpt)
	}
	if execOpt.lockDuration <= 0 {
		execOpt.lockDuration = defaultLockDuration
	}
	if execOpt.stateTTL <= 0 {
		execOpt.stateTTL = defaultStateTTL
	}

	state, err := s.Acquire(ctx, key, execOpt.lockDuration)
	if err != nil {
		return err
	}

	switch state {
	case StateInProgress:
		return ErrAlreadyInProgress
	case StateCompleted:
		return ErrAlreadyCompleted
	}

	if err := fn(ctx); err != nil {
		if relErr := s.Release(ctx, key); relErr != nil {
			return errors.Join(err, relErr)
		}
		return err
	}

	return s.MarkCompleted(ctx, key, execOpt.stateTTL)
}
