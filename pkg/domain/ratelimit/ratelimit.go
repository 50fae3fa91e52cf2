// Package ratelimit implements a per-client sliding-window rate limiter
// for LLM-backed endpoints: a request/hour cap, a token/hour budget, and
// an admin bypass key.
package ratelimit

import (
	"container/list"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Config controls a Limiter's thresholds.
type Config struct {
	RequestsPerHour int
	TokensPerHour   int
	WindowSize      time.Duration
	Enabled         bool
	AdminBypassKey  string
}

// DefaultConfig matches the original sliding-window defaults.
func DefaultConfig() Config {
	return Config{
		RequestsPerHour: 100,
		TokensPerHour:   100000,
		WindowSize:      time.Hour,
		Enabled:         true,
	}
}

type tokenEntry struct {
	at     time.Time
	tokens int
}

// clientState tracks one client's sliding windows. requestTimes and
// tokenUsage are ordered oldest-first so eviction only ever trims the
// front.
type clientState struct {
	requestTimes *list.List // of time.Time
	tokenUsage   *list.List // of tokenEntry
}

func newClientState() *clientState {
	return &clientState{requestTimes: list.New(), tokenUsage: list.New()}
}

// Limiter is an in-memory per-client sliding-window rate limiter. Safe for
// concurrent use.
type Limiter struct {
	config  Config
	mu      sync.Mutex
	clients map[string]*clientState
	logger  *slog.Logger
}

// New constructs a Limiter. A nil logger defaults to slog.Default().
func New(config Config, logger *slog.Logger) *Limiter {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("ratelimit.initialized",
		"requests_per_hour", config.RequestsPerHour,
		"tokens_per_hour", config.TokensPerHour,
		"enabled", config.Enabled,
	)
	return &Limiter{config: config, clients: make(map[string]*clientState), logger: logger}
}

// Stats reports a client's current sliding-window usage.
type Stats struct {
	ClientID          string `json:"client_id"`
	RequestsRemaining int    `json:"requests_remaining"`
	RequestsLimit     int    `json:"requests_limit"`
	TokensRemaining   int    `json:"tokens_remaining"`
	TokensLimit       int    `json:"tokens_limit"`
	WindowSeconds     int    `json:"window_seconds"`
}

// Check reports whether clientID may proceed. adminKey, when non-empty and
// matching config.AdminBypassKey, always allows. When the limiter is
// disabled, it always allows. Otherwise it enforces both the request and
// token sliding-window caps, returning a human-readable reason and
// retry-after duration when denied.
func (l *Limiter) Check(clientID, adminKey string) (allowed bool, reason string, retryAfter time.Duration) {
	if adminKey != "" && l.config.AdminBypassKey != "" && adminKey == l.config.AdminBypassKey {
		l.logger.Debug("ratelimit.admin_bypass", "client_id", clientID)
		return true, "", 0
	}
	if !l.config.Enabled {
		return true, "", 0
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.clientFor(clientID)
	now := time.Now()
	windowStart := now.Add(-l.config.WindowSize)
	evictOlderThan(state, windowStart)

	requestCount := state.requestTimes.Len()
	if requestCount >= l.config.RequestsPerHour {
		oldest := state.requestTimes.Front().Value.(time.Time)
		retryAfter = oldest.Add(l.config.WindowSize).Sub(now)
		l.logger.Warn("ratelimit.request_limit_exceeded",
			"client_id", clientID, "requests", requestCount, "limit", l.config.RequestsPerHour,
			"retry_after_seconds", int(retryAfter.Seconds()))
		return false, fmt.Sprintf("Request rate limit exceeded (%d requests/hour). Retry after %d seconds.",
			l.config.RequestsPerHour, int(retryAfter.Seconds())), retryAfter
	}

	tokenCount := sumTokens(state)
	if tokenCount >= l.config.TokensPerHour {
		oldest := state.tokenUsage.Front().Value.(tokenEntry)
		retryAfter = oldest.at.Add(l.config.WindowSize).Sub(now)
		l.logger.Warn("ratelimit.token_budget_exceeded",
			"client_id", clientID, "tokens", tokenCount, "limit", l.config.TokensPerHour,
			"retry_after_seconds", int(retryAfter.Seconds()))
		return false, fmt.Sprintf("Token budget exceeded (%d tokens/hour). Retry after %d seconds.",
			l.config.TokensPerHour, int(retryAfter.Seconds())), retryAfter
	}

	return true, "", 0
}

// Record accounts one request (and, if positive, its token usage) against
// clientID's sliding windows.
func (l *Limiter) Record(clientID string, tokensUsed int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.clientFor(clientID)
	now := time.Now()
	state.requestTimes.PushBack(now)
	if tokensUsed > 0 {
		state.tokenUsage.PushBack(tokenEntry{at: now, tokens: tokensUsed})
	}

	l.logger.Debug("ratelimit.request_recorded",
		"client_id", clientID, "tokens_used", tokensUsed,
		"total_requests", state.requestTimes.Len(), "total_tokens", sumTokens(state))
}

// ClientStats returns clientID's current usage, after evicting expired
// window entries.
func (l *Limiter) ClientStats(clientID string) Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.clientFor(clientID)
	now := time.Now()
	evictOlderThan(state, now.Add(-l.config.WindowSize))

	requestCount := state.requestTimes.Len()
	tokenCount := sumTokens(state)

	return Stats{
		ClientID:          clientID,
		RequestsRemaining: maxInt(0, l.config.RequestsPerHour-requestCount),
		RequestsLimit:     l.config.RequestsPerHour,
		TokensRemaining:   maxInt(0, l.config.TokensPerHour-tokenCount),
		TokensLimit:       l.config.TokensPerHour,
		WindowSeconds:     int(l.config.WindowSize.Seconds()),
	}
}

func (l *Limiter) clientFor(clientID string) *clientState {
	state, ok := l.clients[clientID]
	if !ok {
		state = newClientState()
		l.clients[clientID] = state
	}
	return state
}

func evictOlderThan(state *clientState, windowStart time.Time) {
	for e := state.requestTimes.Front(); e != nil; {
		next := e.Next()
		if e.Value.(time.Time).Before(windowStart) {
			state.requestTimes.Remove(e)
			e = next
			continue
		}
		break
	}
	for e := state.tokenUsage.Front(); e != nil; {
		next := e.Next()
		if e.Value.(tokenEntry).at.Before(windowStart) {
			state.tokenUsage.Remove(e)
			e = next
			continue
		}
		break
	}
}

func sumTokens(state *clientState) int {
	total := 0
	for e := state.tokenUsage.Front(); e != nil; e = e.Next() {
		total += e.Value.(tokenEntry).tokens
	}
	return total
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
