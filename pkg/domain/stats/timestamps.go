package stats

import (
	"fmt"
	"strings"
	"time"
)

// unixMillisThreshold is the boundary above which a bare numeric timestamp
// is interpreted as milliseconds since epoch rather than seconds.
const unixMillisThreshold = 1e10

// ParseTimestamp accepts an ISO-8601 string (trailing "Z" is treated as
// "+00:00"), a Unix timestamp in seconds, or a Unix timestamp in
// milliseconds (values >= 1e10), and returns the equivalent UTC instant.
func ParseTimestamp(value interface{}) (time.Time, error) {
	switch v := value.(type) {
	case string:
		return parseISO8601(v)
	case int:
		return parseUnixTimestamp(float64(v)), nil
	case int64:
		return parseUnixTimestamp(float64(v)), nil
	case float64:
		return parseUnixTimestamp(v), nil
	default:
		return time.Time{}, fmt.Errorf("unsupported timestamp type %T", value)
	}
}

func parseISO8601(s string) (time.Time, error) {
	normalized := s
	if strings.HasSuffix(normalized, "Z") {
		normalized = strings.TrimSuffix(normalized, "Z") + "+00:00"
	}

	for _, layout := range []string{
		"2006-01-02T15:04:05.999999999Z07:00",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05",
	} {
		if t, err := time.Parse(layout, normalized); err == nil {
			if t.Location() == time.UTC || layout == "2006-01-02T15:04:05" {
				return t.UTC(), nil
			}
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid ISO-8601 timestamp: %q", s)
}

func parseUnixTimestamp(value float64) time.Time {
	if value >= unixMillisThreshold {
		seconds := int64(value) / 1000
		nanos := (int64(value) % 1000) * int64(time.Millisecond)
		return time.Unix(seconds, nanos).UTC()
	}
	whole := int64(value)
	frac := value - float64(whole)
	return time.Unix(whole, int64(frac*float64(time.Second))).UTC()
}

// CalculateTimeDeltaMS returns the number of milliseconds from start to end.
func CalculateTimeDeltaMS(start, end time.Time) float64 {
	return float64(end.Sub(start).Nanoseconds()) / float64(time.Millisecond)
}

// ToISO8601 serializes t in UTC with a trailing "Z" instead of "+00:00".
func ToISO8601(t time.Time) string {
	s := t.UTC().Format("2006-01-02T15:04:05.999999999Z07:00")
	s = strings.TrimSuffix(s, "+00:00")
	if !strings.HasSuffix(s, "Z") {
		s += "Z"
	}
	return s
}

// ToUnixTimestamp returns the Unix timestamp for t, in milliseconds if
// milliseconds is true, else in seconds.
func ToUnixTimestamp(t time.Time, milliseconds bool) int64 {
	if milliseconds {
		return t.UnixMilli()
	}
	return t.Unix()
}
