package orchestrator

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bascanada/domain-mcp/pkg/domain/model"
	"github.com/bascanada/domain-mcp/pkg/domain/plugin"
	"github.com/stretchr/testify/require"
)

// fakeAdapter is a scriptable adapter.SourceAdapter for orchestrator tests.
type fakeAdapter struct {
	testsListResp       model.TestsListResponse
	runLabelValuesResp  model.LabelValuesResponse
	testLabelValuesResp model.LabelValuesResponse
	datasetsSearchPages []model.DatasetsSearchResponse
	datasetsSearchCall  int
	datasetsGetErrIDs   map[string]bool
	datasetsGetContent  map[string]interface{}
}

func (f *fakeAdapter) SourceDescribe(ctx context.Context) (model.SourceDescribeResponse, error) {
	return model.SourceDescribeResponse{}, nil
}

func (f *fakeAdapter) TestsList(ctx context.Context, req model.TestsListRequest) (model.TestsListResponse, error) {
	return f.testsListResp, nil
}

func (f *fakeAdapter) RunsList(ctx context.Context, req model.RunsListRequest) (model.RunsListResponse, error) {
	return model.RunsListResponse{}, nil
}

func (f *fakeAdapter) DatasetsSearch(ctx context.Context, req model.DatasetsSearchRequest) (model.DatasetsSearchResponse, error) {
	if f.datasetsSearchCall >= len(f.datasetsSearchPages) {
		return model.DatasetsSearchResponse{Pagination: model.Pagination{HasMore: false}}, nil
	}
	resp := f.datasetsSearchPages[f.datasetsSearchCall]
	f.datasetsSearchCall++
	return resp, nil
}

func (f *fakeAdapter) DatasetsGet(ctx context.Context, req model.DatasetsGetRequest) (model.DatasetsGetResponse, error) {
	if f.datasetsGetErrIDs[req.DatasetID] {
		return model.DatasetsGetResponse{}, errors.New("boom")
	}
	return model.DatasetsGetResponse{DatasetID: req.DatasetID, Content: f.datasetsGetContent[req.DatasetID]}, nil
}

func (f *fakeAdapter) ArtifactsGet(ctx context.Context, req model.ArtifactsGetRequest) (model.ArtifactsGetResponse, error) {
	return model.ArtifactsGetResponse{}, nil
}

func (f *fakeAdapter) GetRunLabelValues(ctx context.Context, req model.RunLabelValuesGetRequest) (model.LabelValuesResponse, error) {
	return f.runLabelValuesResp, nil
}

func (f *fakeAdapter) GetTestLabelValues(ctx context.Context, req model.TestLabelValuesGetRequest) (model.LabelValuesResponse, error) {
	return f.testLabelValuesResp, nil
}

func (f *fakeAdapter) GetDatasetLabelValues(ctx context.Context, req model.DatasetLabelValuesGetRequest) (model.DatasetLabelValuesGetResponse, error) {
	return model.DatasetLabelValuesGetResponse{}, nil
}

// fakePlugin emits one fixed MetricPoint per label-value bundle or per
// dataset body, so orchestrator tests can assert fetch counts without
// depending on the real boottime plugin's matching rules.
type fakePlugin struct {
	id string
}

func (p *fakePlugin) ID() string                          { return p.id }
func (p *fakePlugin) Glossary() map[string]plugin.MetricMeta { return nil }
func (p *fakePlugin) KPIs() []string                       { return nil }

func (p *fakePlugin) Extract(ctx context.Context, in plugin.ExtractInput) ([]model.MetricPoint, error) {
	if len(in.LabelValues) > 0 {
		out := make([]model.MetricPoint, len(in.LabelValues))
		for i := range in.LabelValues {
			out[i] = model.MetricPoint{MetricID: "fake.metric", Timestamp: time.Unix(int64(i), 0), Value: 1.0, Source: "label"}
		}
		return out, nil
	}
	return []model.MetricPoint{{MetricID: "fake.metric", Timestamp: time.Unix(0, 0), Value: 2.0, Source: "dataset"}}, nil
}

func newTestOrchestrator(a *fakeAdapter) *Orchestrator {
	sources := NewRegistry()
	sources.Register("horreum", a)
	plugins := plugin.NewRegistry()
	plugins.Register(&fakePlugin{id: DefaultDatasetType})
	return New(sources, plugins, nil)
}

func TestGetKeyMetricsPlanOnly(t *testing.T) {
	o := newTestOrchestrator(&fakeAdapter{})
	resp, err := o.GetKeyMetrics(context.Background(), Request{PlanOnly: true, TestID: "109", Limit: 50})
	require.NoError(t, err)
	require.Len(t, resp.FetchPlan, 2)
	require.Equal(t, "datasets.search", resp.FetchPlan[0].Tool)
}

func TestGetKeyMetricsRawMode(t *testing.T) {
	o := newTestOrchestrator(&fakeAdapter{})
	resp, err := o.GetKeyMetrics(context.Background(), Request{
		DatasetTypes: []string{DefaultDatasetType},
		Data:         []interface{}{map[string]interface{}{}},
	})
	require.NoError(t, err)
	require.Len(t, resp.MetricPoints, 1)
	require.Equal(t, "dataset", resp.MetricPoints[0].Source)
}

func TestPreferFastUsesLabelsWhenAvailable(t *testing.T) {
	a := &fakeAdapter{
		testLabelValuesResp: model.LabelValuesResponse{Items: []model.ExportedLabelValues{{}}},
	}
	o := newTestOrchestrator(a)

	resp, err := o.GetKeyMetrics(context.Background(), Request{
		SourceID:      "horreum",
		DatasetTypes:  []string{DefaultDatasetType},
		TestID:        "109",
		MergeStrategy: model.MergePreferFast,
	})
	require.NoError(t, err)
	require.Len(t, resp.MetricPoints, 1)
	require.Equal(t, "label", resp.MetricPoints[0].Source)
}

func TestPreferFastFallsBackToDatasetsWhenLabelsEmpty(t *testing.T) {
	a := &fakeAdapter{
		datasetsSearchPages: []model.DatasetsSearchResponse{
			{Datasets: []model.DatasetInfo{{ID: "d1"}}, Pagination: model.Pagination{HasMore: false}},
		},
		datasetsGetContent: map[string]interface{}{"d1": map[string]interface{}{}},
		datasetsGetErrIDs:  map[string]bool{},
	}
	o := newTestOrchestrator(a)

	resp, err := o.GetKeyMetrics(context.Background(), Request{
		SourceID:      "horreum",
		DatasetTypes:  []string{DefaultDatasetType},
		TestID:        "109",
		MergeStrategy: model.MergePreferFast,
	})
	require.NoError(t, err)
	require.Len(t, resp.MetricPoints, 1)
	require.Equal(t, "dataset", resp.MetricPoints[0].Source)
}

func TestLabelsOnlyFailsWhenEmpty(t *testing.T) {
	o := newTestOrchestrator(&fakeAdapter{})
	_, err := o.GetKeyMetrics(context.Background(), Request{
		SourceID:      "horreum",
		DatasetTypes:  []string{DefaultDatasetType},
		TestID:        "109",
		MergeStrategy: model.MergeLabelsOnly,
	})
	require.ErrorIs(t, err, ErrLabelsOnlyEmpty)
}

func TestDatasetPaginationCollectsAllPages(t *testing.T) {
	nextToken := "1"
	a := &fakeAdapter{
		datasetsSearchPages: []model.DatasetsSearchResponse{
			{Datasets: []model.DatasetInfo{{ID: "d1"}}, Pagination: model.Pagination{HasMore: true, NextPageToken: &nextToken}},
			{Datasets: []model.DatasetInfo{{ID: "d2"}}, Pagination: model.Pagination{HasMore: false}},
		},
		datasetsGetContent: map[string]interface{}{
			"d1": map[string]interface{}{"a": 1},
			"d2": map[string]interface{}{"b": 2},
		},
		datasetsGetErrIDs: map[string]bool{},
	}
	o := newTestOrchestrator(a)

	resp, err := o.GetKeyMetrics(context.Background(), Request{
		SourceID:      "horreum",
		DatasetTypes:  []string{DefaultDatasetType},
		TestID:        "109",
		MergeStrategy: model.MergeDatasetsOnly,
	})
	require.NoError(t, err)
	require.Len(t, resp.MetricPoints, 2)
	require.Equal(t, 2, a.datasetsSearchCall)
}

func TestDatasetFetchFailsBelowSuccessRate(t *testing.T) {
	a := &fakeAdapter{
		datasetsSearchPages: []model.DatasetsSearchResponse{
			{Datasets: []model.DatasetInfo{{ID: "d1"}, {ID: "d2"}, {ID: "d3"}}, Pagination: model.Pagination{HasMore: false}},
		},
		datasetsGetErrIDs: map[string]bool{"d1": true, "d2": true, "d3": false},
		datasetsGetContent: map[string]interface{}{
			"d3": map[string]interface{}{},
		},
	}
	o := newTestOrchestrator(a)

	_, err := o.GetKeyMetrics(context.Background(), Request{
		SourceID:      "horreum",
		DatasetTypes:  []string{DefaultDatasetType},
		TestID:        "109",
		MergeStrategy: model.MergeDatasetsOnly,
	})
	require.Error(t, err)
	require.ErrorIs(t, err, ErrLowSuccessRate)
}

func TestComprehensiveMergesAndLabelsWinOnConflict(t *testing.T) {
	merged := mergeMetricPoints(
		[]model.MetricPoint{{MetricID: "m1", Timestamp: time.Unix(0, 0), Value: 99, Source: "label"}},
		[]model.MetricPoint{{MetricID: "m1", Timestamp: time.Unix(0, 0), Value: 1, Source: "dataset"}},
		model.MergeComprehensive,
	)
	require.Len(t, merged, 1)
	require.Equal(t, "label", merged[0].Source)
}

func TestAutoDiscoverTestIDFallsBackToHardcodedDefault(t *testing.T) {
	a := &fakeAdapter{testsListResp: model.TestsListResponse{}}
	o := newTestOrchestrator(a)
	id := o.autoDiscoverTestID(context.Background(), a, []string{DefaultDatasetType}, "")
	require.Equal(t, DefaultBootTimeTestID, id)
}

func TestUnknownSourceIDErrors(t *testing.T) {
	o := newTestOrchestrator(&fakeAdapter{})
	_, err := o.GetKeyMetrics(context.Background(), Request{SourceID: "nope", DatasetTypes: []string{DefaultDatasetType}})
	require.ErrorIs(t, err, ErrUnknownSource)
}
