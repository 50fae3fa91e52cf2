package httpadapter

import (
	"context"

	"github.com/bascanada/domain-mcp/pkg/domain/model"
)

// SourceDescribe is answered locally, without a round-trip: capabilities
// and limits are declared by the adapter's own configuration, not fetched
// from the backend.
func (a *Adapter) SourceDescribe(ctx context.Context) (model.SourceDescribeResponse, error) {
	return model.SourceDescribeResponse{
		SourceType:      "horreum",
		Version:         "1.0.0",
		ContractVersion: "1.0.0",
		Capabilities:    []string{"pagination", "caching", "streaming", "schemas"},
		Limits: map[string]interface{}{
			"max_page_size":         1000,
			"max_dataset_size":      10 * 1024 * 1024,
			"rate_limit_per_minute": 600,
		},
	}, nil
}

func (a *Adapter) TestsList(ctx context.Context, req model.TestsListRequest) (model.TestsListResponse, error) {
	var resp model.TestsListResponse
	err := a.call(ctx, "tests.list", req, &resp)
	return resp, err
}

func (a *Adapter) RunsList(ctx context.Context, req model.RunsListRequest) (model.RunsListResponse, error) {
	var resp model.RunsListResponse
	err := a.call(ctx, "runs.list", req, &resp)
	return resp, err
}

func (a *Adapter) DatasetsSearch(ctx context.Context, req model.DatasetsSearchRequest) (model.DatasetsSearchResponse, error) {
	var resp model.DatasetsSearchResponse
	err := a.call(ctx, "datasets.search", req, &resp)
	return resp, err
}

func (a *Adapter) DatasetsGet(ctx context.Context, req model.DatasetsGetRequest) (model.DatasetsGetResponse, error) {
	var resp model.DatasetsGetResponse
	err := a.call(ctx, "datasets.get", req, &resp)
	return resp, err
}

func (a *Adapter) ArtifactsGet(ctx context.Context, req model.ArtifactsGetRequest) (model.ArtifactsGetResponse, error) {
	var resp model.ArtifactsGetResponse
	err := a.call(ctx, "artifacts.get", req, &resp)
	return resp, err
}

func (a *Adapter) GetRunLabelValues(ctx context.Context, req model.RunLabelValuesGetRequest) (model.LabelValuesResponse, error) {
	var resp model.LabelValuesResponse
	err := a.call(ctx, "run_label_values.get", req, &resp)
	return resp, err
}

func (a *Adapter) GetTestLabelValues(ctx context.Context, req model.TestLabelValuesGetRequest) (model.LabelValuesResponse, error) {
	var resp model.LabelValuesResponse
	err := a.call(ctx, "test_label_values.get", req, &resp)
	return resp, err
}

func (a *Adapter) GetDatasetLabelValues(ctx context.Context, req model.DatasetLabelValuesGetRequest) (model.DatasetLabelValuesGetResponse, error) {
	var resp model.DatasetLabelValuesGetResponse
	err := a.call(ctx, "dataset_label_values.get", req, &resp)
	return resp, err
}
