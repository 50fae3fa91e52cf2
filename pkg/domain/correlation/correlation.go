// Package correlation propagates a per-request correlation id through a
// context.Context so that every log line produced while handling a request
// carries the same id, matching the teacher's request-id middleware idiom
// but honoring an incoming header before minting a new one.
package correlation

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type contextKey string

const correlationIDKey contextKey = "correlationID"

// HeaderName is the HTTP header clients may use to supply their own
// correlation id.
const HeaderName = "X-Correlation-Id"

// WithID returns a context carrying the given correlation id.
func WithID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// FromContext returns the correlation id stored in ctx, or "" if none.
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(correlationIDKey).(string)
	return id
}

// FromRequest returns the correlation id carried by the request's
// X-Correlation-Id header if present, else mints a fresh UUID.
func FromRequest(r *http.Request) string {
	if id := r.Header.Get(HeaderName); id != "" {
		return id
	}
	return uuid.New().String()
}
