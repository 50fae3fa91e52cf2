package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/bascanada/domain-mcp/pkg/domain/adapter"
	"github.com/bascanada/domain-mcp/pkg/domain/model"
	"github.com/bascanada/domain-mcp/pkg/domain/plugin"
)

// minDatasetSuccessRate is the partial-results floor below which a
// dataset-path fetch is treated as a hard failure.
const minDatasetSuccessRate = 0.5

// Request is the normalized get_key_metrics request (see the §4.6
// normalizer for how raw client params become this shape).
type Request struct {
	SourceID      string
	DatasetTypes  []string
	TestID        string
	RunID         string
	SchemaURI     string
	From          string
	To            string
	Limit         int
	MergeStrategy model.MergeStrategy
	OSFilter      string
	RunTypeFilter string
	PlanOnly      bool
	Data          []interface{}
}

// GetKeyMetrics implements the full get_key_metrics entry point: plan-only,
// raw, and source-driven modes.
func (o *Orchestrator) GetKeyMetrics(ctx context.Context, req Request) (GetKeyMetricsResponse, error) {
	if req.PlanOnly {
		return GetKeyMetricsResponse{
			FetchPlan:          BuildFetchPlan(req.TestID, req.SchemaURI, req.Limit),
			DomainModelVersion: "1.0.0",
		}, nil
	}

	if len(req.Data) > 0 {
		points, err := o.GetKeyMetricsRaw(ctx, req.DatasetTypes, req.Data, req.OSFilter, req.RunTypeFilter)
		if err != nil {
			return GetKeyMetricsResponse{}, err
		}
		return GetKeyMetricsResponse{MetricPoints: points, DomainModelVersion: "1.0.0"}, nil
	}

	return o.getKeyMetricsSourceDriven(ctx, req)
}

func (o *Orchestrator) getKeyMetricsSourceDriven(ctx context.Context, req Request) (GetKeyMetricsResponse, error) {
	sourceID := req.SourceID
	if sourceID == "" {
		sourceID = o.Sources.Default()
	}
	datasetTypes := req.DatasetTypes
	if len(datasetTypes) == 0 {
		datasetTypes = []string{DefaultDatasetType}
	}

	a, ok := o.Sources.Get(sourceID)
	if !ok {
		return GetKeyMetricsResponse{}, fmt.Errorf("%w: %s", ErrUnknownSource, sourceID)
	}

	testID := req.TestID
	if testID == "" && req.RunID == "" {
		testID = o.autoDiscoverTestID(ctx, a, datasetTypes, testID)
	}
	req.TestID = testID
	req.DatasetTypes = datasetTypes

	labelPoints, datasetPoints, err := o.fetchFromSources(ctx, a, req)
	if err != nil {
		return GetKeyMetricsResponse{}, err
	}

	merged := mergeMetricPoints(labelPoints, datasetPoints, req.MergeStrategy)
	return GetKeyMetricsResponse{MetricPoints: merged, DomainModelVersion: "1.0.0"}, nil
}

// fetchFromSources runs the label and/or dataset fetch paths according to
// the merge-strategy dispatch table.
func (o *Orchestrator) fetchFromSources(ctx context.Context, a adapter.SourceAdapter, req Request) ([]model.MetricPoint, []model.MetricPoint, error) {
	var labelPoints, datasetPoints []model.MetricPoint

	strategy := req.MergeStrategy
	if strategy == "" {
		strategy = model.MergePreferFast
	}

	fetchLabels := strategy == model.MergePreferFast || strategy == model.MergeComprehensive || strategy == model.MergeLabelsOnly
	fetchDatasets := strategy == model.MergeDatasetsOnly || strategy == model.MergeComprehensive

	if fetchLabels {
		items, err := o.preferLabelValuesWhenAvailable(ctx, a, req)
		if err != nil {
			return nil, nil, err
		}
		if len(items) > 0 {
			p, ok := o.Plugins.Get(req.DatasetTypes[0])
			if !ok {
				return nil, nil, fmt.Errorf("unknown plugin %q", req.DatasetTypes[0])
			}
			extracted, err := p.Extract(ctx, plugin.ExtractInput{
				LabelValues:   items,
				OSFilter:      req.OSFilter,
				RunTypeFilter: req.RunTypeFilter,
			})
			if err != nil {
				return nil, nil, fmt.Errorf("label-value extraction failed: %w", err)
			}
			labelPoints = extracted
			o.Logger.Info("fetch.label_values.complete", "points", len(labelPoints), "strategy", strategy)
		}
	}

	if strategy == model.MergePreferFast {
		if len(labelPoints) > 0 {
			return labelPoints, nil, nil
		}
		fetchDatasets = true
	}

	if fetchDatasets {
		bodies, err := o.fetchSourceDatasets(ctx, a, req)
		if err != nil {
			return nil, nil, err
		}
		points, err := o.GetKeyMetricsRaw(ctx, req.DatasetTypes, bodies, req.OSFilter, req.RunTypeFilter)
		if err != nil {
			return nil, nil, err
		}
		datasetPoints = points
		o.Logger.Info("fetch.datasets.complete", "points", len(datasetPoints), "strategy", strategy)
	}

	if strategy == model.MergeLabelsOnly && len(labelPoints) == 0 {
		return nil, nil, ErrLabelsOnlyEmpty
	}

	return labelPoints, datasetPoints, nil
}

// fetchSourceDatasets paginates datasets.search to collect every matching
// dataset id, then fetches each dataset body with partial-results handling,
// requiring at least a 50% success rate.
func (o *Orchestrator) fetchSourceDatasets(ctx context.Context, a adapter.SourceAdapter, req Request) ([]interface{}, error) {
	searchReq := model.DatasetsSearchRequest{
		TestID:    req.TestID,
		SchemaURI: req.SchemaURI,
		PageSize:  req.Limit,
		From:      req.From,
		To:        req.To,
	}
	if req.RunID != "" {
		searchReq.RunIDs = []string{req.RunID}
		searchReq.From, searchReq.To = "", ""
		o.Logger.Info("fetch.datasets.run_id_filter", "run_id", req.RunID)
	}

	var datasetIDs []string
	pageCount := 0
	for {
		pageCount++
		o.Logger.Debug("fetch.datasets.page", "page", pageCount, "page_size", req.Limit)

		resp, err := a.DatasetsSearch(ctx, searchReq)
		if err != nil {
			return nil, fmt.Errorf("datasets.search failed: %w", err)
		}
		for _, ds := range resp.Datasets {
			datasetIDs = append(datasetIDs, ds.ID)
		}

		if !resp.Pagination.HasMore {
			break
		}
		if resp.Pagination.NextPageToken == nil || *resp.Pagination.NextPageToken == "" {
			o.Logger.Warn("pagination indicated has_more=true but no next_page_token provided")
			break
		}
		searchReq.PageToken = *resp.Pagination.NextPageToken
	}

	if len(datasetIDs) == 0 {
		o.Logger.Info("fetch.datasets.done", "total", 0, "pages", pageCount)
		return nil, nil
	}

	ops := make(map[string]func(context.Context) (interface{}, error), len(datasetIDs))
	for _, id := range datasetIDs {
		id := id
		ops[id] = func(ctx context.Context) (interface{}, error) {
			return a.DatasetsGet(ctx, model.DatasetsGetRequest{DatasetID: id})
		}
	}

	result, err := gatherPartial(ctx, ops, "dataset_fetch", minDatasetSuccessRate)
	if err != nil {
		return nil, err
	}
	if result.HasFailures() {
		o.Logger.Warn("fetch.datasets.partial_failure", "successes", len(result.Successes), "failures", len(result.Failures), "success_rate", result.SuccessRate())
	}

	var bodies []interface{}
	for _, success := range result.Successes {
		resp, ok := success.(model.DatasetsGetResponse)
		if !ok {
			continue
		}
		switch content := resp.Content.(type) {
		case []interface{}:
			bodies = append(bodies, content...)
		default:
			bodies = append(bodies, content)
		}
	}

	o.Logger.Info("fetch.datasets.done", "total", len(bodies), "pages", pageCount, "failures", len(result.Failures), "success_rate", result.SuccessRate())
	return bodies, nil
}

// preferLabelValuesWhenAvailable fetches label values when the plugin set
// supports the fast path and inputs allow it; returns nil (not an error)
// when the fast path does not apply, so the caller falls through to the
// dataset path.
func (o *Orchestrator) preferLabelValuesWhenAvailable(ctx context.Context, a adapter.SourceAdapter, req Request) ([]model.ExportedLabelValues, error) {
	if !containsString(req.DatasetTypes, DefaultDatasetType) {
		return nil, nil
	}

	pageSize := req.Limit
	if pageSize <= 0 {
		pageSize = model.DefaultPageSize
	}

	if req.RunID != "" {
		resp, err := a.GetRunLabelValues(ctx, model.RunLabelValuesGetRequest{RunID: req.RunID, PageSize: pageSize})
		if err != nil {
			return nil, nil
		}
		return resp.Items, nil
	}

	if req.TestID == "" {
		return nil, nil
	}

	testReq := model.TestLabelValuesGetRequest{
		TestID:    req.TestID,
		PageSize:  pageSize,
		Metrics:   true,
		Filtering: true,
		Before:    req.To,
		After:     req.From,
	}

	filter := map[string][]string{}
	if req.OSFilter != "" {
		filter["OS ID"] = []string{req.OSFilter}
	}
	if req.RunTypeFilter != "" {
		filter["Run type"] = []string{req.RunTypeFilter}
	}
	if len(filter) > 0 {
		encoded, err := json.Marshal(filter)
		if err == nil {
			testReq.Filter = string(encoded)
			testReq.MultiFilter = true
		}
	}

	resp, err := a.GetTestLabelValues(ctx, testReq)
	if err != nil {
		return nil, nil
	}
	return resp.Items, nil
}
