package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestAllowsWithinLimits(t *testing.T) {
	l := New(Config{RequestsPerHour: 5, TokensPerHour: 1000, WindowSize: time.Hour, Enabled: true}, nil)
	allowed, reason, _ := l.Check("client-a", "")
	require.True(t, allowed)
	require.Empty(t, reason)
}

func TestDeniesAfterRequestLimitExceeded(t *testing.T) {
	l := New(Config{RequestsPerHour: 2, TokensPerHour: 1000000, WindowSize: time.Hour, Enabled: true}, nil)
	l.Record("client-a", 0)
	l.Record("client-a", 0)

	allowed, reason, retryAfter := l.Check("client-a", "")
	require.False(t, allowed)
	require.Contains(t, reason, "Request rate limit exceeded")
	require.Greater(t, retryAfter, time.Duration(0))
}

func TestDeniesAfterTokenBudgetExceeded(t *testing.T) {
	l := New(Config{RequestsPerHour: 1000, TokensPerHour: 100, WindowSize: time.Hour, Enabled: true}, nil)
	l.Record("client-a", 60)
	l.Record("client-a", 50)

	allowed, reason, _ := l.Check("client-a", "")
	require.False(t, allowed)
	require.Contains(t, reason, "Token budget exceeded")
}

func TestAdminBypassAlwaysAllowed(t *testing.T) {
	l := New(Config{RequestsPerHour: 1, TokensPerHour: 1, WindowSize: time.Hour, Enabled: true, AdminBypassKey: "secret"}, nil)
	l.Record("client-a", 0)

	allowed, _, _ := l.Check("client-a", "secret")
	require.True(t, allowed)
}

func TestWrongAdminKeyDoesNotBypass(t *testing.T) {
	l := New(Config{RequestsPerHour: 1, TokensPerHour: 1000, WindowSize: time.Hour, Enabled: true, AdminBypassKey: "secret"}, nil)
	l.Record("client-a", 0)

	allowed, _, _ := l.Check("client-a", "wrong")
	require.False(t, allowed)
}

func TestDisabledLimiterAlwaysAllows(t *testing.T) {
	l := New(Config{RequestsPerHour: 1, TokensPerHour: 1, WindowSize: time.Hour, Enabled: false}, nil)
	l.Record("client-a", 0)

	allowed, _, _ := l.Check("client-a", "")
	require.True(t, allowed)
}

func TestClientStatsReflectsUsage(t *testing.T) {
	l := New(Config{RequestsPerHour: 10, TokensPerHour: 1000, WindowSize: time.Hour, Enabled: true}, nil)
	l.Record("client-a", 100)
	l.Record("client-a", 50)

	stats := l.ClientStats("client-a")
	require.Equal(t, "client-a", stats.ClientID)
	require.Equal(t, 8, stats.RequestsRemaining)
	require.Equal(t, 850, stats.TokensRemaining)
}

func TestOldEntriesAreEvictedOutsideWindow(t *testing.T) {
	l := New(Config{RequestsPerHour: 1, TokensPerHour: 1000, WindowSize: 10 * time.Millisecond, Enabled: true}, nil)
	l.Record("client-a", 0)
	time.Sleep(20 * time.Millisecond)

	allowed, _, _ := l.Check("client-a", "")
	require.True(t, allowed)
}

func TestClientsAreIsolated(t *testing.T) {
	l := New(Config{RequestsPerHour: 1, TokensPerHour: 1000, WindowSize: time.Hour, Enabled: true}, nil)
	l.Record("client-a", 0)

	allowedA, _, _ := l.Check("client-a", "")
	allowedB, _, _ := l.Check("client-b", "")
	require.False(t, allowedA)
	require.True(t, allowedB)
}
