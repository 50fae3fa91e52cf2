package esadapter

import (
	"context"
	"testing"

	"github.com/bascanada/domain-mcp/pkg/domain/adapter/stdioadapter"
	"github.com/bascanada/domain-mcp/pkg/domain/model"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/require"
)

type fakeToolCaller struct {
	responses map[string]string
}

func (f *fakeToolCaller) Initialize(ctx context.Context, req mcp.InitializeRequest) (*mcp.InitializeResult, error) {
	return &mcp.InitializeResult{}, nil
}

func (f *fakeToolCaller) Close() error { return nil }

func (f *fakeToolCaller) CallTool(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text := f.responses[req.Params.Name]
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
	}, nil
}

func newTestAdapter(responses map[string]string) *Adapter {
	fake := &fakeToolCaller{responses: responses}
	stdio := stdioadapter.NewWithClient(stdioadapter.Config{}, nil, fake)
	return New(stdio, nil)
}

func TestTestsListMapsIndicesToTests(t *testing.T) {
	a := newTestAdapter(map[string]string{
		"list_indices": `{"indices":["boot-logs","app-logs"]}`,
	})

	resp, err := a.TestsList(context.Background(), model.TestsListRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Tests, 2)
	require.Equal(t, "boot-logs", resp.Tests[0].ID)
}

func TestDatasetsSearchMapsHitsToDatasets(t *testing.T) {
	a := newTestAdapter(map[string]string{
		"search": `{"hits":{"total":{"value":1},"hits":[{"_id":"abc123","_source":{"@timestamp":"2026-01-01T00:00:00Z"}}]}}`,
	})

	resp, err := a.DatasetsSearch(context.Background(), model.DatasetsSearchRequest{TestID: "boot-logs"})
	require.NoError(t, err)
	require.Len(t, resp.Datasets, 1)
	require.Equal(t, "boot-logs::abc123", resp.Datasets[0].ID)
	require.False(t, resp.Pagination.HasMore)
}

func TestDatasetsGetSplitsCompositeID(t *testing.T) {
	a := newTestAdapter(map[string]string{
		"search": `{"hits":{"hits":[{"_id":"abc123","_index":"boot-logs","_source":{"message":"hello"}}]}}`,
	})

	resp, err := a.DatasetsGet(context.Background(), model.DatasetsGetRequest{DatasetID: "boot-logs::abc123"})
	require.NoError(t, err)
	content, ok := resp.Content.(map[string]interface{})
	require.True(t, ok)
	require.Equal(t, "hello", content["message"])
}

func TestDatasetsGetRejectsMalformedID(t *testing.T) {
	a := newTestAdapter(nil)
	_, err := a.DatasetsGet(context.Background(), model.DatasetsGetRequest{DatasetID: "no-separator"})
	require.ErrorIs(t, err, ErrInvalidDatasetID)
}

func TestArtifactsGetUnsupported(t *testing.T) {
	a := newTestAdapter(nil)
	_, err := a.ArtifactsGet(context.Background(), model.ArtifactsGetRequest{RunID: "r1", Name: "log.txt"})
	require.ErrorIs(t, err, ErrArtifactsUnsupported)
}

func TestLabelValuesEndpointsReturnEmpty(t *testing.T) {
	a := newTestAdapter(nil)

	runResp, err := a.GetRunLabelValues(context.Background(), model.RunLabelValuesGetRequest{RunID: "r1"})
	require.NoError(t, err)
	require.Empty(t, runResp.Items)

	testResp, err := a.GetTestLabelValues(context.Background(), model.TestLabelValuesGetRequest{TestID: "t1"})
	require.NoError(t, err)
	require.Empty(t, testResp.Items)

	dsResp, err := a.GetDatasetLabelValues(context.Background(), model.DatasetLabelValuesGetRequest{DatasetID: "boot-logs::abc123"})
	require.NoError(t, err)
	require.Empty(t, dsResp.Values)
}
