package plugin

import (
	"context"
	"testing"

	"github.com/bascanada/domain-mcp/pkg/domain/model"
	"github.com/stretchr/testify/require"
)

type stubPlugin struct{ id string }

func (s *stubPlugin) ID() string                      { return s.id }
func (s *stubPlugin) Glossary() map[string]MetricMeta { return nil }
func (s *stubPlugin) KPIs() []string                  { return nil }
func (s *stubPlugin) Extract(ctx context.Context, in ExtractInput) ([]model.MetricPoint, error) {
	return nil, nil
}

func TestRegistryRegisterIsIdempotentOnID(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubPlugin{id: "a"})
	r.Register(&stubPlugin{id: "a"})
	require.Len(t, r.List(), 1)
}

func TestRegistryReset(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubPlugin{id: "a"})
	r.Reset(&stubPlugin{id: "b"}, &stubPlugin{id: "c"})
	require.Len(t, r.List(), 2)
	_, ok := r.Get("a")
	require.False(t, ok)
}

func TestRegistryApplyEnabled(t *testing.T) {
	r := NewRegistry()
	r.Reset(&stubPlugin{id: "a"}, &stubPlugin{id: "b"})
	r.ApplyEnabled(map[string]bool{"a": true, "b": false})
	_, okA := r.Get("a")
	_, okB := r.Get("b")
	require.True(t, okA)
	require.False(t, okB)
}

func TestRegistryApplyEnabledEmptyIsNoop(t *testing.T) {
	r := NewRegistry()
	r.Reset(&stubPlugin{id: "a"})
	r.ApplyEnabled(nil)
	require.Len(t, r.List(), 1)
}
