// Package breaker implements a per-adapter circuit breaker (CLOSED/OPEN/
// HALF_OPEN) shielding the system from cascading failures, plus a
// Retry-After/X-RateLimit-* response header parser.
package breaker

import (
	"errors"
	"sync"
	"time"
)

// State is one of the three circuit breaker states.
type State string

const (
	StateClosed   State = "closed"
	StateOpen     State = "open"
	StateHalfOpen State = "half_open"
)

// ErrOpen is returned by Allow when the circuit is open and rejecting
// calls immediately.
var ErrOpen = errors.New("circuit breaker is open")

// Config holds the thresholds governing state transitions.
type Config struct {
	FailureThreshold int
	SuccessThreshold int
	Timeout          time.Duration
	Window           time.Duration
}

// Breaker is a concurrency-safe circuit breaker instance, one per adapter.
type Breaker struct {
	cfg Config

	mu           sync.Mutex
	state        State
	failureCount int
	successCount int
	openedAt     time.Time
}

// New returns a breaker in the CLOSED state.
func New(cfg Config) *Breaker {
	return &Breaker{cfg: cfg, state: StateClosed}
}

// Allow reports whether a call may proceed. If the circuit is OPEN and the
// configured timeout has elapsed since it opened, Allow transitions the
// breaker to HALF_OPEN and permits the call (the HALF_OPEN probe).
func (b *Breaker) Allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if time.Since(b.openedAt) >= b.cfg.Timeout {
			b.state = StateHalfOpen
			b.successCount = 0
			return nil
		}
		return ErrOpen
	default:
		return nil
	}
}

// RecordSuccess registers a successful call.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failureCount = 0
	case StateHalfOpen:
		b.successCount++
		if b.successCount >= b.cfg.SuccessThreshold {
			b.state = StateClosed
			b.failureCount = 0
			b.successCount = 0
		}
	}
}

// RecordFailure registers a counted failure. Callers must only invoke this
// for failures classified as counted (see IsCountedFailure).
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failureCount++
		if b.failureCount >= b.cfg.FailureThreshold {
			b.state = StateOpen
			b.openedAt = time.Now()
		}
	case StateHalfOpen:
		b.state = StateOpen
		b.openedAt = time.Now()
		b.successCount = 0
	}
}

// CurrentState returns the breaker's current state.
func (b *Breaker) CurrentState() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// IsCountedFailure reports whether an HTTP status code or error condition
// counts toward the circuit breaker: HTTP >=500, HTTP 429, or any
// transport-level timeout/connect error (represented here by status 0).
func IsCountedFailure(statusCode int, isTimeoutOrConnectError bool) bool {
	if isTimeoutOrConnectError {
		return true
	}
	if statusCode == 429 {
		return true
	}
	return statusCode >= 500
}
