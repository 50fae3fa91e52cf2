package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bascanada/domain-mcp/pkg/domain/correlation"
	"github.com/stretchr/testify/require"
)

func TestCorrelationMiddlewareMintsIDWhenAbsent(t *testing.T) {
	s := newTestServer(t)
	var seen string
	handler := s.correlationMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = correlation.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.NotEmpty(t, seen)
	require.Equal(t, seen, rec.Header().Get(correlation.HeaderName))
}

func TestCorrelationMiddlewareHonorsIncomingHeader(t *testing.T) {
	s := newTestServer(t)
	var seen string
	handler := s.correlationMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = correlation.FromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(correlation.HeaderName, "fixed-id")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "fixed-id", seen)
}

func TestRecoveryMiddlewareConvertsPanicToInternalError(t *testing.T) {
	s := newTestServer(t)
	handler := s.recoveryMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	require.NotPanics(t, func() { handler.ServeHTTP(rec, req) })
	require.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestCORSMiddlewareDisabledWithNoOrigins(t *testing.T) {
	s := newTestServer(t)
	handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddlewareAllowsConfiguredOrigin(t *testing.T) {
	s := newTestServer(t)
	s.corsOrigins = []string{"https://example.com"}
	handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, "https://example.com", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSMiddlewareHandlesPreflight(t *testing.T) {
	s := newTestServer(t)
	s.corsOrigins = []string{"*"}
	called := false
	handler := s.corsMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://anywhere.example")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.False(t, called)
}

func TestAuthMiddlewareNoopWhenTokenUnset(t *testing.T) {
	s := newTestServer(t)
	called := false
	handler := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, called)
}

func TestAuthMiddlewareAcceptsMatchingBearerToken(t *testing.T) {
	s := newTestServer(t)
	s.httpToken = "secret"
	called := false
	handler := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer secret")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.True(t, called)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthMiddlewareRejectsWrongToken(t *testing.T) {
	s := newTestServer(t)
	s.httpToken = "secret"
	handler := s.authMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler should not be reached")
	}))

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
}
