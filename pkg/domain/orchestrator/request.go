package orchestrator

import (
	"github.com/bascanada/domain-mcp/pkg/domain/model"
	"github.com/bascanada/domain-mcp/pkg/domain/normalize"
	"github.com/bascanada/domain-mcp/pkg/ty"
)

// RequestFromParams turns a raw parameter map (HTTP body, MCP tool
// arguments, or LLM tool-call arguments) into a normalized Request,
// giving every entry point the same parameter contract.
func RequestFromParams(raw ty.MI) Request {
	params := normalize.GetKeyMetricsParams(raw)

	req := Request{
		SourceID:      params.GetString("source_id"),
		TestID:        params.GetString("test_id"),
		RunID:         params.GetString("run_id"),
		SchemaURI:     params.GetString("schema_uri"),
		From:          params.GetString("from"),
		To:            params.GetString("to"),
		MergeStrategy: model.MergeStrategy(params.GetString("merge_strategy")),
		PlanOnly:      params.GetBool("plan_only"),
	}

	switch v := params["limit"].(type) {
	case int:
		req.Limit = v
	case float64:
		req.Limit = int(v)
	}

	if types, ok := params.GetListOfStringsOk("dataset_types"); ok {
		req.DatasetTypes = types
	}
	if data, ok := params["data"].([]interface{}); ok {
		req.Data = data
	}
	if v, ok := params[normalize.DetectedOSFilterKey].(string); ok {
		req.OSFilter = v
	}
	if v, ok := params[normalize.DetectedRunTypeKey].(string); ok {
		req.RunTypeFilter = v
	}

	return req
}
