// Package logcapture lets a single request scoped to a context.Context
// collect every slog record emitted during it, without disturbing the
// process-wide logger used by everything else. It backs the
// /debug/extract endpoint's captured_logs field: plugins log through
// their ordinary constructor-injected *slog.Logger, and as long as that
// logger's handler is wrapped with Wrap, any record emitted while a
// capturing context is in flight is both recorded and still delegated to
// the underlying handler.
package logcapture

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

type contextKey struct{}

var sinkKey = contextKey{}

// Sink accumulates formatted log lines for one in-flight request.
type Sink struct {
	mu    sync.Mutex
	lines []string
}

func (s *Sink) append(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lines = append(s.lines, line)
}

// Lines returns every line recorded so far.
func (s *Sink) Lines() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// WithCapture returns a derived context carrying a fresh Sink, and the
// Sink itself so the caller can read it back after the scoped call
// returns.
func WithCapture(ctx context.Context) (context.Context, *Sink) {
	sink := &Sink{}
	return context.WithValue(ctx, sinkKey, sink), sink
}

func fromContext(ctx context.Context) (*Sink, bool) {
	sink, ok := ctx.Value(sinkKey).(*Sink)
	return sink, ok
}

// Handler wraps a base slog.Handler: every record handled while the
// record's context carries a Sink (installed via WithCapture) is also
// appended to that Sink, in addition to being passed through to base.
type Handler struct {
	base slog.Handler
}

// Wrap returns a Handler delegating to base.
func Wrap(base slog.Handler) *Handler {
	return &Handler{base: base}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.base.Enabled(ctx, level)
}

func (h *Handler) Handle(ctx context.Context, record slog.Record) error {
	if sink, ok := fromContext(ctx); ok {
		line := fmt.Sprintf("level=%s msg=%q", record.Level, record.Message)
		record.Attrs(func(a slog.Attr) bool {
			line += fmt.Sprintf(" %s=%v", a.Key, a.Value.Any())
			return true
		})
		sink.append(line)
	}
	return h.base.Handle(ctx, record)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{base: h.base.WithAttrs(attrs)}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{base: h.base.WithGroup(name)}
}
