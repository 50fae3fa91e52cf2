package stdioadapter

import (
	"context"
	"encoding/json"

	"github.com/bascanada/domain-mcp/pkg/domain/model"
)

// toArgs round-trips req through JSON into a plain map, the shape the MCP
// CallTool arguments field expects.
func toArgs(req interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	var args map[string]interface{}
	if err := json.Unmarshal(raw, &args); err != nil {
		return nil, err
	}
	return args, nil
}

func (a *Adapter) invoke(ctx context.Context, tool string, req, resp interface{}) error {
	args, err := toArgs(req)
	if err != nil {
		return err
	}
	return a.callTool(ctx, tool, args, resp)
}

// SourceDescribe is the only operation with no request payload.
func (a *Adapter) SourceDescribe(ctx context.Context) (model.SourceDescribeResponse, error) {
	var resp model.SourceDescribeResponse
	err := a.callTool(ctx, "source.describe", nil, &resp)
	return resp, err
}

func (a *Adapter) TestsList(ctx context.Context, req model.TestsListRequest) (model.TestsListResponse, error) {
	var resp model.TestsListResponse
	err := a.invoke(ctx, "tests.list", req, &resp)
	return resp, err
}

func (a *Adapter) RunsList(ctx context.Context, req model.RunsListRequest) (model.RunsListResponse, error) {
	var resp model.RunsListResponse
	err := a.invoke(ctx, "runs.list", req, &resp)
	return resp, err
}

func (a *Adapter) DatasetsSearch(ctx context.Context, req model.DatasetsSearchRequest) (model.DatasetsSearchResponse, error) {
	var resp model.DatasetsSearchResponse
	err := a.invoke(ctx, "datasets.search", req, &resp)
	return resp, err
}

func (a *Adapter) DatasetsGet(ctx context.Context, req model.DatasetsGetRequest) (model.DatasetsGetResponse, error) {
	var resp model.DatasetsGetResponse
	err := a.invoke(ctx, "datasets.get", req, &resp)
	return resp, err
}

func (a *Adapter) ArtifactsGet(ctx context.Context, req model.ArtifactsGetRequest) (model.ArtifactsGetResponse, error) {
	var resp model.ArtifactsGetResponse
	err := a.invoke(ctx, "artifacts.get", req, &resp)
	return resp, err
}

func (a *Adapter) GetRunLabelValues(ctx context.Context, req model.RunLabelValuesGetRequest) (model.LabelValuesResponse, error) {
	var resp model.LabelValuesResponse
	err := a.invoke(ctx, "run_label_values.get", req, &resp)
	return resp, err
}

func (a *Adapter) GetTestLabelValues(ctx context.Context, req model.TestLabelValuesGetRequest) (model.LabelValuesResponse, error) {
	var resp model.LabelValuesResponse
	err := a.invoke(ctx, "test_label_values.get", req, &resp)
	return resp, err
}

func (a *Adapter) GetDatasetLabelValues(ctx context.Context, req model.DatasetLabelValuesGetRequest) (model.DatasetLabelValuesGetResponse, error) {
	var resp model.DatasetLabelValuesGetResponse
	err := a.invoke(ctx, "dataset_label_values.get", req, &resp)
	return resp, err
}
