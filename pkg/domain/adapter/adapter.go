// Package adapter defines the SourceAdapter interface consumed by the
// fetch/merge orchestrator, uniform across the HTTP, stdio-bridge and
// Elasticsearch realizations.
package adapter

import (
	"context"

	"github.com/bascanada/domain-mcp/pkg/domain/model"
)

// SourceAdapter is the single typed interface through which the
// orchestrator talks to a backend, regardless of transport.
type SourceAdapter interface {
	SourceDescribe(ctx context.Context) (model.SourceDescribeResponse, error)
	TestsList(ctx context.Context, req model.TestsListRequest) (model.TestsListResponse, error)
	RunsList(ctx context.Context, req model.RunsListRequest) (model.RunsListResponse, error)
	DatasetsSearch(ctx context.Context, req model.DatasetsSearchRequest) (model.DatasetsSearchResponse, error)
	DatasetsGet(ctx context.Context, req model.DatasetsGetRequest) (model.DatasetsGetResponse, error)
	ArtifactsGet(ctx context.Context, req model.ArtifactsGetRequest) (model.ArtifactsGetResponse, error)
	GetRunLabelValues(ctx context.Context, req model.RunLabelValuesGetRequest) (model.LabelValuesResponse, error)
	GetTestLabelValues(ctx context.Context, req model.TestLabelValuesGetRequest) (model.LabelValuesResponse, error)
	GetDatasetLabelValues(ctx context.Context, req model.DatasetLabelValuesGetRequest) (model.DatasetLabelValuesGetResponse, error)
}
