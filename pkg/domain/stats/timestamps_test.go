package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimestampISO8601Z(t *testing.T) {
	ts, err := ParseTimestamp("2025-09-22T10:30:00Z")
	require.NoError(t, err)
	require.Equal(t, 2025, ts.Year())
	require.Equal(t, time.UTC, ts.Location())
}

func TestParseTimestampUnixSecondsVsMillis(t *testing.T) {
	seconds, err := ParseTimestamp(float64(1700000000))
	require.NoError(t, err)
	require.Equal(t, int64(1700000000), seconds.Unix())

	millis, err := ParseTimestamp(float64(1700000000123))
	require.NoError(t, err)
	require.Equal(t, int64(1700000000), millis.Unix())
	require.Equal(t, 123, millis.Nanosecond()/int(time.Millisecond))
}

func TestToISO8601RoundTrip(t *testing.T) {
	s := "2025-09-22T10:30:00Z"
	ts, err := ParseTimestamp(s)
	require.NoError(t, err)
	require.Equal(t, s, ToISO8601(ts))
}

func TestToUnixTimestampRoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	seconds := ToUnixTimestamp(now, false)
	back, err := ParseTimestamp(float64(seconds))
	require.NoError(t, err)
	require.Equal(t, now, back)
}

func TestCalculateTimeDeltaMS(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(1500 * time.Millisecond)
	require.Equal(t, 1500.0, CalculateTimeDeltaMS(start, end))
}
