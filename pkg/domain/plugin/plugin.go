// Package plugin defines the metric-extraction plugin contract and the
// process-wide registry that holds the built-in and user-enabled plugins.
package plugin

import (
	"context"

	"github.com/bascanada/domain-mcp/pkg/domain/model"
)

// MetricMeta documents one metric id a plugin can emit.
type MetricMeta struct {
	Description string `json:"description"`
	Unit        string `json:"unit"`
}

// ExtractInput bundles everything a plugin's Extract needs: the raw dataset
// body (fallback path), contextual references, optional pre-aggregated
// label values (preferred path when non-empty), and client-side filters.
type ExtractInput struct {
	JSONBody      interface{}
	Refs          map[string]string
	LabelValues   []model.ExportedLabelValues
	OSFilter      string
	RunTypeFilter string
}

// Plugin extracts canonical MetricPoints from a backend-specific dataset or
// label-value bundle. Implementations must prefer LabelValues over
// JSONBody when LabelValues is non-empty and yields at least one point.
type Plugin interface {
	ID() string
	Glossary() map[string]MetricMeta
	KPIs() []string
	Extract(ctx context.Context, in ExtractInput) ([]model.MetricPoint, error)
}
