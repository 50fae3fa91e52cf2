// Package httpadapter implements the HTTP realization of SourceAdapter:
// POST JSON to /api/tools/<tool>, with bearer-token auth, MCP session
// re-initialization, retry/backoff and circuit-breaker integration.
package httpadapter

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/bascanada/domain-mcp/pkg/domain/breaker"
)

// Config configures one HTTP-realized source adapter instance.
type Config struct {
	Endpoint         string
	APIKey           string
	TimeoutSeconds   int
	MaxRetries       int
	BackoffInitialMS int
	BackoffMultiplier float64
	InsecureSkipTLSVerify bool

	Breaker breaker.Config
}

// Adapter is the HTTP realization of adapter.SourceAdapter.
type Adapter struct {
	cfg     Config
	client  *http.Client
	logger  *slog.Logger
	breaker *breaker.Breaker

	sessionMu sync.RWMutex
	sessionID string
}

// New returns an HTTP adapter for cfg. A nil logger defaults to
// slog.Default().
func New(cfg Config, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}
	if cfg.BackoffInitialMS == 0 {
		cfg.BackoffInitialMS = 200
	}
	if cfg.BackoffMultiplier == 0 {
		cfg.BackoffMultiplier = 2.0
	}
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 30
	}

	transport := http.DefaultTransport
	if cfg.InsecureSkipTLSVerify {
		if t, ok := http.DefaultTransport.(*http.Transport); ok {
			cloned := t.Clone()
			cloned.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
			transport = cloned
		}
	}

	return &Adapter{
		cfg: cfg,
		client: &http.Client{
			Timeout:   time.Duration(cfg.TimeoutSeconds) * time.Second,
			Transport: transport,
		},
		logger:  logger,
		breaker: breaker.New(cfg.Breaker),
	}
}

// ErrFatalClientError marks a non-retryable 4xx (other than the
// session-expiry codes, which trigger re-init, and 429, which retries).
var ErrFatalClientError = errors.New("fatal client error")

func (a *Adapter) sessionSnapshot() string {
	a.sessionMu.RLock()
	defer a.sessionMu.RUnlock()
	return a.sessionID
}

func (a *Adapter) setSession(id string) {
	a.sessionMu.Lock()
	defer a.sessionMu.Unlock()
	a.sessionID = id
}

// call invokes one Source MCP tool over HTTP, applying the breaker, retry
// and session-reinit logic described in the source-adapter contract.
func (a *Adapter) call(ctx context.Context, tool string, req, resp interface{}) error {
	if err := a.breaker.Allow(); err != nil {
		return err
	}

	delay := time.Duration(a.cfg.BackoffInitialMS) * time.Millisecond
	var lastErr error

	for attempt := 0; attempt <= a.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
			delay = time.Duration(float64(delay) * a.cfg.BackoffMultiplier)
		}

		status, retryable, err := a.doOnce(ctx, tool, req, resp)
		if err == nil {
			a.breaker.RecordSuccess()
			return nil
		}

		if breaker.IsCountedFailure(status, status == 0) {
			a.breaker.RecordFailure()
		}

		lastErr = err
		if !retryable {
			return err
		}
	}

	return fmt.Errorf("tool %q failed after %d attempts: %w", tool, a.cfg.MaxRetries+1, lastErr)
}

// doOnce performs a single HTTP attempt, returning the observed status
// code (0 for transport-level failures), whether the failure is
// retryable, and an error if the call did not succeed.
func (a *Adapter) doOnce(ctx context.Context, tool string, req, resp interface{}) (int, bool, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return 0, false, err
	}

	url := strings.TrimRight(a.cfg.Endpoint, "/") + "/api/tools/" + tool
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, false, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}
	if sid := a.sessionSnapshot(); sid != "" {
		httpReq.Header.Set("mcp-session-id", sid)
	}

	httpResp, err := a.client.Do(httpReq)
	if err != nil {
		a.logger.Warn("source adapter transport error", "tool", tool, "error", err)
		return 0, true, err
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return httpResp.StatusCode, true, err
	}

	rateInfo := breaker.ParseRateLimitInfo(httpResp.Header)
	if rateInfo.Remaining != nil {
		a.logger.Debug("source adapter rate limit", "tool", tool, "remaining", *rateInfo.Remaining)
	}

	needsReinit := httpResp.StatusCode == 401 || httpResp.StatusCode == 403 || httpResp.StatusCode == 440 ||
		httpResp.Header.Get("mcp-session-reinit") != "" || httpResp.Header.Get("mcp-session-id-expired") != ""
	if needsReinit {
		if reinitErr := a.reinitSession(ctx); reinitErr != nil {
			return httpResp.StatusCode, false, fmt.Errorf("session reinit failed: %w", reinitErr)
		}
		return httpResp.StatusCode, true, fmt.Errorf("session expired, retrying")
	}

	if httpResp.StatusCode == 429 || httpResp.StatusCode == 503 {
		return httpResp.StatusCode, true, fmt.Errorf("tool %q returned status %d", tool, httpResp.StatusCode)
	}

	if httpResp.StatusCode >= 400 && httpResp.StatusCode < 500 {
		preview := string(raw)
		if len(preview) > 500 {
			preview = preview[:500]
		}
		a.logger.Error("source adapter client error", "tool", tool, "status", httpResp.StatusCode, "body", preview)
		return httpResp.StatusCode, false, fmt.Errorf("%w: tool %q status %d", ErrFatalClientError, tool, httpResp.StatusCode)
	}

	if httpResp.StatusCode >= 500 {
		return httpResp.StatusCode, true, fmt.Errorf("tool %q returned status %d", tool, httpResp.StatusCode)
	}

	if resp != nil {
		if err := json.Unmarshal(raw, resp); err != nil {
			return httpResp.StatusCode, false, err
		}
	}
	return httpResp.StatusCode, false, nil
}

type initializeResponse struct {
	SessionID string `json:"session_id"`
}

func (a *Adapter) reinitSession(ctx context.Context) error {
	url := strings.TrimRight(a.cfg.Endpoint, "/") + "/mcp/initialize"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader([]byte("{}")))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if a.cfg.APIKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+a.cfg.APIKey)
	}

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("initialize returned status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	var parsed initializeResponse
	_ = json.Unmarshal(raw, &parsed)

	sessionID := parsed.SessionID
	if sessionID == "" {
		sessionID = resp.Header.Get("mcp-session-id")
	}
	if sessionID != "" {
		a.setSession(sessionID)
	}
	return nil
}
