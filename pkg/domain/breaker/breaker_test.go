package breaker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestBreakerOpensAtFailureThreshold(t *testing.T) {
	b := New(Config{FailureThreshold: 3, SuccessThreshold: 2, Timeout: 50 * time.Millisecond})
	require.NoError(t, b.Allow())
	b.RecordFailure()
	b.RecordFailure()
	require.Equal(t, StateClosed, b.CurrentState())
	b.RecordFailure()
	require.Equal(t, StateOpen, b.CurrentState())
	require.ErrorIs(t, b.Allow(), ErrOpen)
}

func TestBreakerHalfOpenAfterTimeout(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 1, Timeout: 10 * time.Millisecond})
	b.RecordFailure()
	require.Equal(t, StateOpen, b.CurrentState())

	time.Sleep(20 * time.Millisecond)
	require.NoError(t, b.Allow())
	require.Equal(t, StateHalfOpen, b.CurrentState())
}

func TestBreakerHalfOpenSuccessClosesCircuit(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 2, Timeout: 5 * time.Millisecond})
	b.RecordFailure()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, b.Allow())

	b.RecordSuccess()
	require.Equal(t, StateHalfOpen, b.CurrentState())
	b.RecordSuccess()
	require.Equal(t, StateClosed, b.CurrentState())
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	b := New(Config{FailureThreshold: 1, SuccessThreshold: 2, Timeout: 5 * time.Millisecond})
	b.RecordFailure()
	time.Sleep(10 * time.Millisecond)
	require.NoError(t, b.Allow())

	b.RecordFailure()
	require.Equal(t, StateOpen, b.CurrentState())
}

func TestIsCountedFailure(t *testing.T) {
	require.True(t, IsCountedFailure(500, false))
	require.True(t, IsCountedFailure(429, false))
	require.True(t, IsCountedFailure(0, true))
	require.False(t, IsCountedFailure(404, false))
	require.False(t, IsCountedFailure(200, false))
}
