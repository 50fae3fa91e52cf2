package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/bascanada/domain-mcp/pkg/domain/apperr"
	"github.com/bascanada/domain-mcp/pkg/domain/logcapture"
	"github.com/bascanada/domain-mcp/pkg/domain/model"
	"github.com/bascanada/domain-mcp/pkg/domain/orchestrator"
	"github.com/bascanada/domain-mcp/pkg/domain/plugin"
	"github.com/bascanada/domain-mcp/pkg/ty"
)

// healthHandler reports liveness; it is never authenticated or rate
// limited, per spec.md §6.3.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readyHandler reports readiness: at least one configured source.
func (s *Server) readyHandler(w http.ResponseWriter, r *http.Request) {
	cfg := s.GetConfig()
	if cfg == nil || len(cfg.Sources) == 0 {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_ready", "reason": "no sources configured"})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type capabilitiesResponse struct {
	DomainVersion string          `json:"domain_version"`
	HTTPAuth      bool            `json:"http_auth"`
	CORSOrigins   []string        `json:"cors_origins"`
	Modes         map[string]bool `json:"modes"`
	Tools         []string        `json:"tools"`
	Plugins       []string        `json:"plugins"`
	Sources       []string        `json:"sources"`
}

func (s *Server) capabilitiesHandler(w http.ResponseWriter, r *http.Request) {
	var pluginIDs []string
	if s.deps.Plugins != nil {
		for _, p := range s.deps.Plugins.List() {
			pluginIDs = append(pluginIDs, p.ID())
		}
	}

	var sourceIDs []string
	if cfg := s.GetConfig(); cfg != nil {
		for id := range cfg.Sources {
			sourceIDs = append(sourceIDs, id)
		}
	}

	s.writeJSON(w, http.StatusOK, capabilitiesResponse{
		DomainVersion: "1.0.0",
		HTTPAuth:      s.httpToken != "",
		CORSOrigins:   s.corsOrigins,
		Modes:         map[string]bool{"raw": true, "source_driven": true},
		Tools:         []string{"get_key_metrics", "get_key_metrics_raw"},
		Plugins:       pluginIDs,
		Sources:       sourceIDs,
	})
}

func (s *Server) resourcesListHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.Resources == nil {
		s.writeJSON(w, http.StatusOK, map[string]interface{}{"resources": []interface{}{}})
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{"resources": s.deps.Resources.List()})
}

// resourcesReadHandler serves GET /resources/<category>/<name>, mapping
// the path onto the domain://<category>/<name> resource URI scheme.
func (s *Server) resourcesReadHandler(w http.ResponseWriter, r *http.Request) {
	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/resources/"), "/")
	if rest == "" || s.deps.Resources == nil {
		s.writeError(w, http.StatusNotFound, string(apperr.KindValidation), "resource not found")
		return
	}

	uri := "domain://" + rest
	result, ok := s.deps.Resources.Read(uri)
	if !ok {
		s.writeError(w, http.StatusNotFound, string(apperr.KindValidation), "resource not found: "+rest)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}

// getKeyMetricsHandler handles POST /tools/get_key_metrics: the
// source-driven path (fast-path labels merged with fallback dataset
// search, or a fetch plan when plan_only is set).
func (s *Server) getKeyMetricsHandler(w http.ResponseWriter, r *http.Request) {
	var raw ty.MI
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, string(apperr.KindValidation), "invalid JSON body")
		return
	}

	req := orchestrator.RequestFromParams(raw)
	if err := s.validateSourceID(req); err != nil {
		s.writeDomainError(w, err)
		return
	}
	if err := s.validateDatasetTypes(req); err != nil {
		s.writeDomainError(w, err)
		return
	}

	resp, err := s.deps.Orchestrator.GetKeyMetrics(r.Context(), req)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// getKeyMetricsRawHandler handles POST /tools/get_key_metrics_raw: plugin
// extraction directly over caller-supplied data, no source fetch.
func (s *Server) getKeyMetricsRawHandler(w http.ResponseWriter, r *http.Request) {
	var raw ty.MI
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, string(apperr.KindValidation), "invalid JSON body")
		return
	}

	req := orchestrator.RequestFromParams(raw)
	if len(req.Data) == 0 {
		s.writeDomainError(w, apperr.New(apperr.KindValidation, "get_key_metrics_raw requires a non-empty data array"))
		return
	}
	if err := s.validateDatasetTypes(req); err != nil {
		s.writeDomainError(w, err)
		return
	}

	points, err := s.deps.Orchestrator.GetKeyMetricsRaw(r.Context(), req.DatasetTypes, req.Data, req.OSFilter, req.RunTypeFilter)
	if err != nil {
		s.writeDomainError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]interface{}{
		"metric_points":        points,
		"domain_model_version": "1.0.0",
	})
}

type apiQueryRequest struct {
	Query    string `json:"query"`
	ClientID string `json:"client_id"`
}

// apiQueryHandler handles POST /api/query: the LLM-driven natural-language
// orchestrator, gated by the sliding-window rate limiter.
func (s *Server) apiQueryHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.LLM == nil {
		s.writeDomainError(w, apperr.New(apperr.KindMissingConfig, "no LLM provider is configured"))
		return
	}

	var req apiQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, string(apperr.KindValidation), "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		s.writeDomainError(w, apperr.New(apperr.KindValidation, "query must not be empty"))
		return
	}
	if len(req.Query) > s.queryMaxLength {
		s.writeDomainError(w, apperr.New(apperr.KindValidation, "query exceeds maximum length"))
		return
	}

	clientID := req.ClientID
	if clientID == "" {
		clientID = r.RemoteAddr
	}

	if s.deps.RateLimiter != nil {
		adminKey := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		allowed, reason, retryAfter := s.deps.RateLimiter.Check(clientID, adminKey)
		if !allowed {
			s.writeDomainError(w, apperr.RateLimitExceeded(reason, int(retryAfter.Seconds())))
			return
		}
	}

	result, err := s.deps.LLM.ExecuteQuery(r.Context(), req.Query)
	if err != nil {
		s.writeDomainError(w, apperr.Wrap(apperr.KindUpstreamError, "query execution failed", err))
		return
	}

	if s.deps.RateLimiter != nil {
		s.deps.RateLimiter.Record(clientID, result.TotalTokens)
	}

	s.writeJSON(w, http.StatusOK, result)
}

type debugExtractRequest struct {
	PluginID    string                      `json:"plugin_id"`
	Data        interface{}                 `json:"data,omitempty"`
	LabelValues []model.ExportedLabelValues `json:"label_values,omitempty"`
	OSID        string                      `json:"os_id,omitempty"`
	RunType     string                      `json:"run_type,omitempty"`
}

type debugExtractResponse struct {
	MetricPoints []model.MetricPoint `json:"metric_points"`
	CapturedLogs []string            `json:"captured_logs"`
}

// debugExtractHandler handles POST /debug/extract: runs a single named
// plugin directly against caller-supplied data, capturing every log
// record the plugin emits during that one call via a request-scoped
// context (pkg/domain/logcapture) rather than the process-wide logger.
func (s *Server) debugExtractHandler(w http.ResponseWriter, r *http.Request) {
	var req debugExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, string(apperr.KindValidation), "invalid JSON body")
		return
	}
	if req.PluginID == "" {
		s.writeDomainError(w, apperr.New(apperr.KindValidation, "plugin_id is required"))
		return
	}

	p, ok := s.deps.Plugins.Get(req.PluginID)
	if !ok {
		s.writeDomainError(w, apperr.New(apperr.KindUnknownSourceID, "unknown plugin_id: "+req.PluginID))
		return
	}

	ctx, sink := logcapture.WithCapture(r.Context())

	in := plugin.ExtractInput{
		JSONBody:      req.Data,
		LabelValues:   req.LabelValues,
		OSFilter:      req.OSID,
		RunTypeFilter: req.RunType,
	}

	points, err := p.Extract(ctx, in)
	if err != nil {
		s.logger.Error("debug extract failed", "plugin_id", req.PluginID, "err", err)
		s.writeJSON(w, http.StatusOK, debugExtractResponse{CapturedLogs: sink.Lines()})
		return
	}

	s.writeJSON(w, http.StatusOK, debugExtractResponse{MetricPoints: points, CapturedLogs: sink.Lines()})
}
