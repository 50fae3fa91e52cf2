// Package eslogs implements the elasticsearch-logs reference plugin: one
// log.count point per document plus an optional log.duration_ms point,
// dimensioned by level/service/host with ECS dotted-name fallbacks.
package eslogs

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bascanada/domain-mcp/pkg/domain/model"
	"github.com/bascanada/domain-mcp/pkg/domain/plugin"
	"github.com/bascanada/domain-mcp/pkg/domain/stats"
)

// ID is the canonical identifier this plugin registers under.
const ID = "elasticsearch-logs"

// Plugin extracts count/duration metrics from Elasticsearch log documents.
type Plugin struct{}

// New returns an elasticsearch-logs plugin.
func New() *Plugin { return &Plugin{} }

func (p *Plugin) ID() string                           { return ID }
func (p *Plugin) KPIs() []string                        { return []string{"log.count", "log.duration_ms"} }
func (p *Plugin) Glossary() map[string]plugin.MetricMeta { return map[string]plugin.MetricMeta{} }

var durationFields = []string{"duration", "duration_ms", "latency", "latency_ms", "took"}

func (p *Plugin) Extract(ctx context.Context, in plugin.ExtractInput) ([]model.MetricPoint, error) {
	body, ok := in.JSONBody.(map[string]interface{})
	if !ok {
		return nil, nil
	}

	ts := time.Now().UTC()
	if raw, ok := body["@timestamp"]; ok {
		if s, ok := raw.(string); ok {
			if parsed, err := stats.ParseTimestamp(s); err == nil {
				ts = parsed
			}
		}
	}

	dims := map[string]string{}
	if level, ok := firstString(body, "level", "log.level"); ok {
		dims["level"] = strings.ToUpper(level)
	}
	if service, ok := firstString(body, "service", "service.name"); ok {
		dims["service"] = service
	}
	if host, ok := firstString(body, "host", "host.name"); ok {
		dims["host"] = host
	}
	var dimsOrNil map[string]string
	if len(dims) > 0 {
		dimsOrNil = dims
	}

	points := []model.MetricPoint{{
		MetricID: "log.count", Timestamp: ts, Value: 1.0, Unit: "count",
		Dimensions: dimsOrNil, Source: p.ID(),
	}}

	for _, field := range durationFields {
		if v, ok := body[field]; ok {
			if f, ok := toFloat(v); ok && stats.IsValidFloat(f) {
				points = append(points, model.MetricPoint{
					MetricID: "log.duration_ms", Timestamp: ts, Value: f, Unit: "ms",
					Dimensions: dimsOrNil, Source: p.ID(),
				})
				break
			}
		}
	}

	return points, nil
}

func firstString(body map[string]interface{}, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := body[k]; ok {
			return fmt.Sprint(v), true
		}
	}
	return "", false
}

func toFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	default:
		return 0, false
	}
}
