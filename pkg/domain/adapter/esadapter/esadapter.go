// Package esadapter reinterprets the Source MCP contract against an
// Elasticsearch MCP bridge: indices stand in for tests, documents for
// datasets, and composite "<index>::<doc_id>" ids carry enough context
// for datasets.get to find its way back to the right index. It reuses
// the stdio transport (this is itself an MCP server reached over stdio)
// but maps every operation to Elasticsearch's vocabulary rather than
// Horreum's.
package esadapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/bascanada/domain-mcp/pkg/domain/adapter/stdioadapter"
	"github.com/bascanada/domain-mcp/pkg/domain/model"
)

// Adapter is the Elasticsearch reinterpretation of SourceAdapter, built
// on top of the same stdio MCP transport as the Horreum stdio-bridge.
type Adapter struct {
	stdio  *stdioadapter.Adapter
	logger *slog.Logger
}

// New wraps an already-connected stdio transport.
func New(stdio *stdioadapter.Adapter, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{stdio: stdio, logger: logger}
}

// ErrInvalidDatasetID is returned when a dataset id does not carry the
// "<index>::<doc_id>" composite format this adapter mints.
var ErrInvalidDatasetID = errors.New("invalid dataset_id format, expected \"index::doc_id\"")

// ErrArtifactsUnsupported marks artifacts.get, which has no Elasticsearch
// equivalent.
var ErrArtifactsUnsupported = errors.New("artifacts not supported by the elasticsearch adapter")

func (a *Adapter) callTool(ctx context.Context, tool string, args map[string]interface{}) (map[string]interface{}, error) {
	var raw json.RawMessage
	if err := a.stdio.CallRaw(ctx, tool, args, &raw); err != nil {
		return nil, err
	}
	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("es tool %q returned non-object result: %w", tool, err)
	}
	return result, nil
}

// SourceDescribe reports the Elasticsearch realization's capabilities,
// which are narrower than Horreum's: no artifact storage, no native
// rate-limit surface, no dataset size cap.
func (a *Adapter) SourceDescribe(ctx context.Context) (model.SourceDescribeResponse, error) {
	return model.SourceDescribeResponse{
		SourceType:      "elasticsearch",
		Version:         "1.0.0",
		ContractVersion: "1.0.0",
		Capabilities:    []string{"pagination", "schemas"},
		Limits: map[string]interface{}{
			"max_page_size": 1000,
		},
	}, nil
}

// TestsList maps to list_indices: an index pattern match ("*" by default),
// with pagination sliced client-side since list_indices returns every
// matching index in one shot.
func (a *Adapter) TestsList(ctx context.Context, req model.TestsListRequest) (model.TestsListResponse, error) {
	pattern := req.Query
	if pattern == "" {
		pattern = "*"
	}

	result, err := a.callTool(ctx, "list_indices", map[string]interface{}{"index_pattern": pattern})
	if err != nil {
		a.logger.Error("failed to list indices", "error", err)
		return model.TestsListResponse{Pagination: model.Pagination{HasMore: false}}, nil
	}

	indices := extractStringList(result, "indices", "items")

	tests := make([]model.TestInfo, 0, len(indices))
	for _, name := range indices {
		tests = append(tests, model.TestInfo{ID: name, Name: name})
	}

	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = model.DefaultPageSize
	}
	start := 0
	if req.PageToken != "" {
		if parsed, err := strconv.Atoi(req.PageToken); err == nil {
			start = parsed
		}
	}
	end := start + pageSize
	if end > len(tests) {
		end = len(tests)
	}
	if start > len(tests) {
		start = len(tests)
	}
	page := tests[start:end]

	hasMore := end < len(tests)
	var nextToken *string
	if hasMore {
		s := strconv.Itoa(end)
		nextToken = &s
	}
	total := len(tests)

	return model.TestsListResponse{
		Tests: page,
		Pagination: model.Pagination{
			HasMore:       hasMore,
			NextPageToken: nextToken,
			TotalCount:    &total,
		},
	}, nil
}

// RunsList has no Elasticsearch equivalent: there is no run concept, so
// this always returns empty.
func (a *Adapter) RunsList(ctx context.Context, req model.RunsListRequest) (model.RunsListResponse, error) {
	zero := 0
	return model.RunsListResponse{
		Pagination: model.Pagination{HasMore: false, TotalCount: &zero},
	}, nil
}

// DatasetsSearch maps to a search tool call against the index named by
// TestID, with from/to translated into an @timestamp range filter and
// page_token translated into Elasticsearch's from/size pagination.
func (a *Adapter) DatasetsSearch(ctx context.Context, req model.DatasetsSearchRequest) (model.DatasetsSearchResponse, error) {
	if req.TestID == "" {
		return model.DatasetsSearchResponse{Pagination: model.Pagination{HasMore: false}}, nil
	}

	index := req.TestID
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = model.DefaultPageSize
	}

	filters := []map[string]interface{}{}
	if req.From != "" || req.To != "" {
		rangeClause := map[string]interface{}{}
		if req.From != "" {
			rangeClause["gte"] = req.From
		}
		if req.To != "" {
			rangeClause["lte"] = req.To
		}
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"@timestamp": rangeClause},
		})
	}

	queryBody := map[string]interface{}{
		"size": pageSize,
		"sort": []map[string]interface{}{{"@timestamp": "desc"}},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{"filter": filters},
		},
	}

	from := 0
	if req.PageToken != "" {
		if parsed, err := strconv.Atoi(req.PageToken); err == nil {
			from = parsed
		}
	}
	if from > 0 {
		queryBody["from"] = from
	}

	result, err := a.callTool(ctx, "search", map[string]interface{}{"index": index, "query_body": queryBody})
	if err != nil {
		a.logger.Error("elasticsearch search failed", "index", index, "error", err)
		return model.DatasetsSearchResponse{Pagination: model.Pagination{HasMore: false}}, nil
	}

	hitsContainer, _ := result["hits"].(map[string]interface{})
	rawHits, _ := hitsContainer["hits"].([]interface{})
	totalVal := extractTotal(hitsContainer)

	datasets := make([]model.DatasetInfo, 0, len(rawHits))
	for _, rawHit := range rawHits {
		hit, ok := rawHit.(map[string]interface{})
		if !ok {
			continue
		}
		docID := fmt.Sprint(hit["_id"])
		source, _ := hit["_source"].(map[string]interface{})

		createdAt := ""
		if ts, ok := source["@timestamp"]; ok {
			createdAt = fmt.Sprint(ts)
		}

		datasets = append(datasets, model.DatasetInfo{
			ID:          compositeDatasetID(index, docID),
			RunID:       "unknown",
			TestID:      index,
			ContentType: "application/json",
			CreatedAt:   createdAt,
		})
	}

	nextFrom := from + len(rawHits)
	hasMore := nextFrom < totalVal
	var nextToken *string
	if hasMore {
		s := strconv.Itoa(nextFrom)
		nextToken = &s
	}

	return model.DatasetsSearchResponse{
		Datasets: datasets,
		Pagination: model.Pagination{
			HasMore:       hasMore,
			NextPageToken: nextToken,
			TotalCount:    &totalVal,
		},
	}, nil
}

// DatasetsGet splits the composite dataset id back into index and
// document id, then fetches the document by id via a search tool call.
func (a *Adapter) DatasetsGet(ctx context.Context, req model.DatasetsGetRequest) (model.DatasetsGetResponse, error) {
	index, docID, ok := splitCompositeDatasetID(req.DatasetID)
	if !ok {
		return model.DatasetsGetResponse{}, ErrInvalidDatasetID
	}

	queryBody := map[string]interface{}{
		"query": map[string]interface{}{
			"ids": map[string]interface{}{"values": []string{docID}},
		},
	}

	result, err := a.callTool(ctx, "search", map[string]interface{}{"index": index, "query_body": queryBody})
	if err != nil {
		return model.DatasetsGetResponse{}, err
	}

	hitsContainer, _ := result["hits"].(map[string]interface{})
	rawHits, _ := hitsContainer["hits"].([]interface{})
	if len(rawHits) == 0 {
		return model.DatasetsGetResponse{}, fmt.Errorf("document not found: %s", req.DatasetID)
	}

	doc, _ := rawHits[0].(map[string]interface{})
	content, _ := doc["_source"].(map[string]interface{})
	if content == nil {
		content = map[string]interface{}{}
	}
	content["_es_id"] = doc["_id"]
	content["_es_index"] = doc["_index"]

	return model.DatasetsGetResponse{
		DatasetID:   req.DatasetID,
		Content:     content,
		ContentType: "application/json",
	}, nil
}

// ArtifactsGet has no Elasticsearch equivalent.
func (a *Adapter) ArtifactsGet(ctx context.Context, req model.ArtifactsGetRequest) (model.ArtifactsGetResponse, error) {
	return model.ArtifactsGetResponse{}, ErrArtifactsUnsupported
}

// GetRunLabelValues, GetTestLabelValues and GetDatasetLabelValues all
// return empty: standard Elasticsearch has no label-value aggregation
// equivalent, which deliberately forces the orchestrator onto the
// dataset-search fallback path for this source type.
func (a *Adapter) GetRunLabelValues(ctx context.Context, req model.RunLabelValuesGetRequest) (model.LabelValuesResponse, error) {
	return model.LabelValuesResponse{Pagination: model.Pagination{HasMore: false}}, nil
}

func (a *Adapter) GetTestLabelValues(ctx context.Context, req model.TestLabelValuesGetRequest) (model.LabelValuesResponse, error) {
	return model.LabelValuesResponse{Pagination: model.Pagination{HasMore: false}}, nil
}

func (a *Adapter) GetDatasetLabelValues(ctx context.Context, req model.DatasetLabelValuesGetRequest) (model.DatasetLabelValuesGetResponse, error) {
	return model.DatasetLabelValuesGetResponse{}, nil
}

func compositeDatasetID(index, docID string) string {
	return index + "::" + docID
}

func splitCompositeDatasetID(id string) (index, docID string, ok bool) {
	parts := strings.SplitN(id, "::", 2)
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

func extractStringList(result map[string]interface{}, keys ...string) []string {
	for _, key := range keys {
		raw, ok := result[key].([]interface{})
		if !ok {
			continue
		}
		out := make([]string, 0, len(raw))
		for _, v := range raw {
			switch item := v.(type) {
			case string:
				out = append(out, item)
			case map[string]interface{}:
				if name, ok := item["name"].(string); ok {
					out = append(out, name)
				} else {
					out = append(out, fmt.Sprint(item))
				}
			default:
				out = append(out, fmt.Sprint(item))
			}
		}
		return out
	}
	return nil
}

func extractTotal(hitsContainer map[string]interface{}) int {
	totalField, ok := hitsContainer["total"]
	if !ok {
		return 0
	}
	switch v := totalField.(type) {
	case map[string]interface{}:
		if value, ok := v["value"].(float64); ok {
			return int(value)
		}
	case float64:
		return int(v)
	}
	return 0
}
