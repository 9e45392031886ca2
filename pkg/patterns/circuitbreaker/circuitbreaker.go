package circuitbreaker

import (
	"context"
	"errors"
	"sync"
	"time"
)

type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

var ErrOpen = errors.New("circuit breaker is open")

type Option func(*settings)

type settings struct {
	now           func() time.Time
	onStateChange func(from, to State)
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithStateChange registers a callback run on every transition. It is
// called with the breaker lock held and must not call back into it.
func WithStateChange(fn func(from, to State)) Option {
	return func(s *settings) { s.onStateChange = fn }
}

// Breaker opens after maxFailures consecutive failures and rejects calls
// until resetTimeout has passed. It then lets a single trial call through;
// success closes it, failure opens it again.
type Breaker[T any] struct {
	maxFailures  int
	resetTimeout time.Duration
	settings

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	trialing bool
}

func New[T any](maxFailures int, resetTimeout time.Duration, opts ...Option) *Breaker[T] {
	if maxFailures < 1 {
		maxFailures = 1
	}
	cb := &Breaker[T]{
		maxFailures:  maxFailures,
		resetTimeout: resetTimeout,
		settings:     settings{now: time.Now},
	}
	for _, opt := range opts {
		opt(&cb.settings)
	}
	return cb
}

// Execute runs fn unless the breaker is open.
func (cb *Breaker[T]) Execute(ctx context.Context, fn func(ctx context.Context) (T, error)) (T, error) {
	if !cb.acquire() {
		var zero T
		return zero, ErrOpen
	}

	result, err := fn(ctx)
	cb.record(err)
	return result, err
}

func (cb *Breaker[T]) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

func (cb *Breaker[T]) acquire() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.openedAt) < cb.resetTimeout {
			return false
		}
		cb.transition(StateHalfOpen)
		cb.trialing = true
		return true
	default:
		if cb.trialing {
			return false
		}
		cb.trialing = true
		return true
	}
}

func (cb *Breaker[T]) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err == nil {
		cb.failures = 0
		if cb.state == StateHalfOpen {
			cb.trialing = false
			cb.transition(StateClosed)
		}
		return
	}

	cb.failures++
	if cb.state == StateHalfOpen || cb.failures >= cb.maxFailures {
		cb.trialing = false
		cb.openedAt = cb.now()
		cb.transition(StateOpen)
	}
}

func (cb *Breaker[T]) transition(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	if cb.onStateChange != nil {
		cb.onStateChange(from, to)
	}
}
