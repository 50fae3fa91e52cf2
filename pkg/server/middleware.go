package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/bascanada/domain-mcp/pkg/domain/correlation"
)

// correlationMiddleware stamps each request's context with a correlation
// id (honoring an incoming X-Correlation-Id header), matching the
// teacher's requestIDMiddleware but delegating id handling to the
// correlation package shared with the rest of the domain.
func (s *Server) correlationMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := correlation.FromRequest(r)
		ctx := correlation.WithID(r.Context(), id)
		w.Header().Set(correlation.HeaderName, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{w, http.StatusOK}
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs details about each request.
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := newResponseWriter(w)

		next.ServeHTTP(rw, r)

		s.logger.Info("request handled",
			"correlation_id", correlation.FromContext(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"remote_addr", r.RemoteAddr,
			"status", rw.statusCode,
			"duration", time.Since(start).String(),
		)
	})
}

// recoveryMiddleware recovers from panics, logs the stack server-side and
// returns a generic internal_server_error — unhandled exceptions never
// leak implementation detail to the client (spec.md §6.3).
func (s *Server) recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				s.logger.Error("recovered from panic", "err", err, "correlation_id", correlation.FromContext(r.Context()))
				s.writeError(w, http.StatusInternalServerError, "internal_server_error", "the server encountered a problem")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware enables CORS only when corsOrigins is non-empty, per
// spec.md §6.3 ("Enabled if DOMAIN_MCP_CORS_ORIGINS is a non-empty comma
// list; otherwise disabled").
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(s.corsOrigins) > 0 {
			origin := r.Header.Get("Origin")
			if allowOrigin(s.corsOrigins, origin) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Authorization, "+correlation.HeaderName)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func allowOrigin(allowed []string, origin string) bool {
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

// authMiddleware enforces the bearer token from DOMAIN_MCP_HTTP_TOKEN on
// the tool/query endpoints when one is configured; an empty token
// disables auth entirely.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.httpToken == "" {
			next.ServeHTTP(w, r)
			return
		}
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || strings.TrimPrefix(header, "Bearer ") != s.httpToken {
			s.writeError(w, http.StatusUnauthorized, "validation_error", "missing or invalid bearer token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// chainMiddleware applies a list of middleware to a handler.
func (s *Server) chainMiddleware(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}
