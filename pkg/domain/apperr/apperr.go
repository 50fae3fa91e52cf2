// Package apperr defines the closed set of domain error kinds and the
// typed error carrying the detail the HTTP layer turns into the
// {detail:{detail, error_type, available_options}} wire shape.
package apperr

import "fmt"

// Kind is the closed set of error kinds a domain operation can fail with.
type Kind string

const (
	KindValidation         Kind = "validation_error"
	KindUnknownSourceID    Kind = "unknown_source_id"
	KindUnknownDatasetType Kind = "unknown_dataset_type"
	KindMissingConfig      Kind = "missing_configuration"
	KindTimeout            Kind = "timeout"
	KindNetworkError       Kind = "network_error"
	KindUpstreamHTTPError  Kind = "upstream_http_error"
	KindUpstreamError      Kind = "upstream_error"
	KindHTTPError          Kind = "http_error"
	KindRateLimitExceeded  Kind = "rate_limit_exceeded"
	KindInternal           Kind = "internal_server_error"
)

// DomainError is the typed error every domain operation returns on
// failure. AvailableOptions carries the valid-id list for
// unknown_source_id responses; RetryAfter carries the suggested wait for
// rate_limit_exceeded responses.
type DomainError struct {
	Kind             Kind
	Message          string
	AvailableOptions []string
	RetryAfter       int
	Cause            error
}

func (e *DomainError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// New constructs a DomainError with no cause.
func New(kind Kind, message string) *DomainError {
	return &DomainError{Kind: kind, Message: message}
}

// Wrap constructs a DomainError carrying an underlying cause.
func Wrap(kind Kind, message string, cause error) *DomainError {
	return &DomainError{Kind: kind, Message: message, Cause: cause}
}

// UnknownSourceID builds the 404 error listing the valid source ids.
func UnknownSourceID(id string, available []string) *DomainError {
	return &DomainError{
		Kind:             KindUnknownSourceID,
		Message:          fmt.Sprintf("unknown source_id %q", id),
		AvailableOptions: available,
	}
}

// RateLimitExceeded builds the 429 error with the computed retry delay.
func RateLimitExceeded(reason string, retryAfterSeconds int) *DomainError {
	return &DomainError{
		Kind:       KindRateLimitExceeded,
		Message:    reason,
		RetryAfter: retryAfterSeconds,
	}
}

// Timeout builds the 504 error including the configured timeout value, per
// spec.md's "human hint to increase timeout_seconds" requirement.
func Timeout(timeoutSeconds int) *DomainError {
	return &DomainError{
		Kind:    KindTimeout,
		Message: fmt.Sprintf("request timed out after %ds; consider increasing timeout_seconds", timeoutSeconds),
	}
}
