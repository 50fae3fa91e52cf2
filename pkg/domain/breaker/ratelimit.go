package breaker

import (
	"net/http"
	"strconv"
	"time"
)

// RateLimitInfo is the observability record extracted from a backend
// response's rate-limit headers, independent of whether the circuit
// breaker counted the response as a failure.
type RateLimitInfo struct {
	RetryAfter *time.Duration
	Limit      *int
	Remaining  *int
	Reset      *int
}

// ParseRateLimitInfo reads Retry-After (seconds or HTTP-date) and
// X-RateLimit-{Limit,Remaining,Reset} from resp headers.
func ParseRateLimitInfo(header http.Header) RateLimitInfo {
	var info RateLimitInfo

	if ra := header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil {
			d := time.Duration(secs) * time.Second
			info.RetryAfter = &d
		} else if t, err := http.ParseTime(ra); err == nil {
			d := time.Until(t)
			info.RetryAfter = &d
		}
	}

	if v := parseIntHeader(header, "X-RateLimit-Limit"); v != nil {
		info.Limit = v
	}
	if v := parseIntHeader(header, "X-RateLimit-Remaining"); v != nil {
		info.Remaining = v
	}
	if v := parseIntHeader(header, "X-RateLimit-Reset"); v != nil {
		info.Reset = v
	}

	return info
}

func parseIntHeader(header http.Header, name string) *int {
	raw := header.Get(name)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}
