package server

import (
	"sort"

	"github.com/bascanada/domain-mcp/pkg/domain/apperr"
	"github.com/bascanada/domain-mcp/pkg/domain/orchestrator"
)

// knownDatasetTypes is the closed set get_key_metrics accepts today;
// widen this as plugins are added.
var knownDatasetTypes = map[string]bool{
	"boot-time-verbose":  true,
	"elasticsearch-logs": true,
}

// validateSourceID checks req.SourceID against the configured source
// set, returning an unknown_source_id error (with the valid id list, per
// spec.md §7) when it isn't empty and isn't registered.
func (s *Server) validateSourceID(req orchestrator.Request) error {
	if req.SourceID == "" {
		return nil
	}
	cfg := s.GetConfig()
	if cfg == nil {
		return nil
	}
	if _, ok := cfg.Sources[req.SourceID]; ok {
		return nil
	}

	ids := make([]string, 0, len(cfg.Sources))
	for id := range cfg.Sources {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return apperr.UnknownSourceID(req.SourceID, ids)
}

// validateDatasetTypes rejects any dataset_types entry outside the known
// set, so a typo produces a clear 400 instead of silently returning no
// metric points.
func (s *Server) validateDatasetTypes(req orchestrator.Request) error {
	for _, dt := range req.DatasetTypes {
		if !knownDatasetTypes[dt] {
			return apperr.New(apperr.KindUnknownDatasetType, "unknown dataset_type: "+dt)
		}
	}
	return nil
}
