// Package server provides the HTTP surface for the domain MCP server:
// health/readiness, capabilities, resources, the get_key_metrics tool
// endpoints, the LLM query endpoint and the debug/extract diagnostic.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/bascanada/domain-mcp/pkg/domain/apperr"
)

// ErrorDetail is the body of every error response's "detail" field.
type ErrorDetail struct {
	Detail           string   `json:"detail"`
	ErrorType        string   `json:"error_type"`
	AvailableOptions []string `json:"available_options,omitempty"`
	RetryAfter       int      `json:"retry_after,omitempty"`
}

// ErrorResponse is the uniform {detail:{...}} wire shape spec.md §6.3
// requires for every error response.
type ErrorResponse struct {
	Detail ErrorDetail `json:"detail"`
}

// writeJSON writes a JSON response with a given status code.
func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("failed to write json response", "err", err)
	}
}

// writeError writes the {detail:{...}} shape for a plain message/status
// pair, used for validation failures that never reach a DomainError.
func (s *Server) writeError(w http.ResponseWriter, statusCode int, errorType, message string) {
	s.writeJSON(w, statusCode, ErrorResponse{Detail: ErrorDetail{Detail: message, ErrorType: errorType}})
}

// writeDomainError maps a *apperr.DomainError's Kind to an HTTP status per
// spec.md §7 and writes the {detail:{...}} shape. A non-DomainError err is
// treated as an opaque internal_server_error with a generic message (the
// real error is only logged, never echoed to the client).
func (s *Server) writeDomainError(w http.ResponseWriter, err error) {
	var de *apperr.DomainError
	if !errors.As(err, &de) {
		s.logger.Error("unhandled error", "err", err)
		s.writeError(w, http.StatusInternalServerError, string(apperr.KindInternal), "internal server error")
		return
	}

	status := statusForKind(de.Kind)
	if status >= 500 {
		s.logger.Error("domain error", "kind", de.Kind, "err", de)
	} else {
		s.logger.Warn("domain error", "kind", de.Kind, "err", de)
	}

	s.writeJSON(w, status, ErrorResponse{Detail: ErrorDetail{
		Detail:           de.Message,
		ErrorType:        string(de.Kind),
		AvailableOptions: de.AvailableOptions,
		RetryAfter:       de.RetryAfter,
	}})
}

func statusForKind(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation, apperr.KindUnknownDatasetType:
		return http.StatusBadRequest
	case apperr.KindUnknownSourceID:
		return http.StatusNotFound
	case apperr.KindRateLimitExceeded:
		return http.StatusTooManyRequests
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	case apperr.KindUpstreamHTTPError, apperr.KindUpstreamError, apperr.KindNetworkError:
		return http.StatusBadGateway
	case apperr.KindMissingConfig, apperr.KindHTTPError:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
