package breaker

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseRateLimitInfoSeconds(t *testing.T) {
	h := http.Header{}
	h.Set("Retry-After", "30")
	h.Set("X-RateLimit-Limit", "100")
	h.Set("X-RateLimit-Remaining", "5")
	h.Set("X-RateLimit-Reset", "1700000000")

	info := ParseRateLimitInfo(h)
	require.NotNil(t, info.RetryAfter)
	require.Equal(t, 30.0, info.RetryAfter.Seconds())
	require.Equal(t, 100, *info.Limit)
	require.Equal(t, 5, *info.Remaining)
	require.Equal(t, 1700000000, *info.Reset)
}

func TestParseRateLimitInfoEmpty(t *testing.T) {
	info := ParseRateLimitInfo(http.Header{})
	require.Nil(t, info.RetryAfter)
	require.Nil(t, info.Limit)
}
