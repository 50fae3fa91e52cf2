package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bascanada/domain-mcp/pkg/config"
	"github.com/bascanada/domain-mcp/pkg/domain/model"
	"github.com/bascanada/domain-mcp/pkg/domain/orchestrator"
	"github.com/bascanada/domain-mcp/pkg/domain/plugin"
	"github.com/bascanada/domain-mcp/pkg/domain/ratelimit"
	"github.com/bascanada/domain-mcp/pkg/domain/resources"
	"github.com/stretchr/testify/require"
)

type fakePlugin struct {
	id        string
	points    []model.MetricPoint
	err       error
	lastInput plugin.ExtractInput
}

func (p *fakePlugin) ID() string                             { return p.id }
func (p *fakePlugin) Glossary() map[string]plugin.MetricMeta { return nil }
func (p *fakePlugin) KPIs() []string                         { return nil }
func (p *fakePlugin) Extract(ctx context.Context, in plugin.ExtractInput) ([]model.MetricPoint, error) {
	p.lastInput = in
	return p.points, p.err
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	plugins := plugin.NewRegistry()
	plugins.Register(&fakePlugin{
		id: "boot-time-verbose",
		points: []model.MetricPoint{
			{MetricID: "boot.time.total_ms", Value: 4200, Unit: "ms"},
		},
	})

	sources := orchestrator.NewRegistry()
	orch := orchestrator.New(sources, plugins, nil)

	res, err := resources.NewRegistry(nil)
	require.NoError(t, err)

	limiter := ratelimit.New(ratelimit.Config{Enabled: false}, nil)

	s := NewServer("127.0.0.1", "0", Deps{
		Orchestrator:   orch,
		Plugins:        plugins,
		Resources:      res,
		RateLimiter:    limiter,
		QueryMaxLength: 4000,
		Config:         &config.Config{Sources: map[string]config.Source{}},
	}, nil)
	return s
}

func doRequest(s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func TestHealthHandlerAlwaysOK(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyHandlerReportsNotReadyWithoutSources(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestReadyHandlerReportsReadyWithSources(t *testing.T) {
	s := newTestServer(t)
	s.deps.Config = &config.Config{Sources: map[string]config.Source{"h1": {Endpoint: "http://x"}}}
	rec := doRequest(s, http.MethodGet, "/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestCapabilitiesHandlerListsPluginsAndTools(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/capabilities", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp capabilitiesResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp.Plugins, "boot-time-verbose")
	require.Contains(t, resp.Tools, "get_key_metrics")
	require.False(t, resp.HTTPAuth)
}

func TestResourcesListHandlerReturnsEntries(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/resources", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "domain://glossary/")
}

func TestResourcesReadHandlerReturnsContent(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/resources/glossary/boot-time", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestResourcesReadHandlerUnknownReturns404(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodGet, "/resources/glossary/does-not-exist", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetKeyMetricsRawReturnsPluginPoints(t *testing.T) {
	s := newTestServer(t)
	body := map[string]interface{}{
		"dataset_types": []string{"boot-time-verbose"},
		"data":          []interface{}{map[string]interface{}{"x": 1}},
	}
	rec := doRequest(s, http.MethodPost, "/tools/get_key_metrics_raw", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	points := resp["metric_points"].([]interface{})
	require.Len(t, points, 1)
}

func TestGetKeyMetricsRawRequiresData(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/tools/get_key_metrics_raw", map[string]interface{}{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetKeyMetricsRawRejectsUnknownDatasetType(t *testing.T) {
	s := newTestServer(t)
	body := map[string]interface{}{
		"dataset_types": []string{"not-a-real-type"},
		"data":          []interface{}{map[string]interface{}{"x": 1}},
	}
	rec := doRequest(s, http.MethodPost, "/tools/get_key_metrics_raw", body)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetKeyMetricsRejectsUnknownSourceID(t *testing.T) {
	s := newTestServer(t)
	s.deps.Config = &config.Config{Sources: map[string]config.Source{"h1": {Endpoint: "http://x"}}}

	body := map[string]interface{}{"source_id": "nope"}
	rec := doRequest(s, http.MethodPost, "/tools/get_key_metrics", body)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "unknown_source_id", resp.Detail.ErrorType)
	require.Contains(t, resp.Detail.AvailableOptions, "h1")
}

func TestAPIQueryReturnsMissingConfigWithoutLLM(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/api/query", map[string]string{"query": "how slow did it boot?"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAPIQueryRejectsEmptyQuery(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/api/query", map[string]string{"query": ""})
	require.NotEqual(t, http.StatusOK, rec.Code)
}

func TestDebugExtractUnknownPluginReturns404(t *testing.T) {
	s := newTestServer(t)
	rec := doRequest(s, http.MethodPost, "/debug/extract", map[string]interface{}{"plugin_id": "nope"})
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDebugExtractRunsPluginAndReturnsPoints(t *testing.T) {
	s := newTestServer(t)
	body := map[string]interface{}{"plugin_id": "boot-time-verbose", "data": map[string]interface{}{}}
	rec := doRequest(s, http.MethodPost, "/debug/extract", body)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp debugExtractResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.MetricPoints, 1)
}

func TestDebugExtractPrefersLabelValuesOverData(t *testing.T) {
	fp := &fakePlugin{id: "boot-time-verbose"}
	plugins := plugin.NewRegistry()
	plugins.Register(fp)

	sources := orchestrator.NewRegistry()
	orch := orchestrator.New(sources, plugins, nil)

	res, err := resources.NewRegistry(nil)
	require.NoError(t, err)

	limiter := ratelimit.New(ratelimit.Config{Enabled: false}, nil)

	s := NewServer("127.0.0.1", "0", Deps{
		Orchestrator:   orch,
		Plugins:        plugins,
		Resources:      res,
		RateLimiter:    limiter,
		QueryMaxLength: 4000,
		Config:         &config.Config{Sources: map[string]config.Source{}},
	}, nil)

	body := map[string]interface{}{
		"plugin_id": "boot-time-verbose",
		"label_values": []map[string]interface{}{
			{
				"run_id": "run-1",
				"values": []map[string]interface{}{
					{"name": "boot.time.total_ms", "value": 4200},
				},
			},
		},
		"os_id":    "rhel9",
		"run_type": "verbose",
	}
	rec := doRequest(s, http.MethodPost, "/debug/extract", body)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, fp.lastInput.LabelValues, 1)
	require.Equal(t, "run-1", fp.lastInput.LabelValues[0].RunID)
	require.Equal(t, "boot.time.total_ms", fp.lastInput.LabelValues[0].Values[0].Name)
	require.Equal(t, "rhel9", fp.lastInput.OSFilter)
	require.Equal(t, "verbose", fp.lastInput.RunTypeFilter)
	require.Nil(t, fp.lastInput.JSONBody)
}

func TestAuthMiddlewareBlocksWithoutBearerToken(t *testing.T) {
	s := newTestServer(t)
	s.httpToken = "secret"

	body := map[string]interface{}{"dataset_types": []string{"boot-time-verbose"}, "data": []interface{}{map[string]interface{}{}}}
	rec := doRequest(s, http.MethodPost, "/tools/get_key_metrics_raw", body)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealthAndReadyNeverRequireAuth(t *testing.T) {
	s := newTestServer(t)
	s.httpToken = "secret"

	require.Equal(t, http.StatusOK, doRequest(s, http.MethodGet, "/health", nil).Code)
}
