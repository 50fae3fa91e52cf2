package stats

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConvertTimeRoundTrip(t *testing.T) {
	v, ok := ConvertTime(90, TimeMinutes, TimeHours)
	require.True(t, ok)
	require.Equal(t, 1.5, v)

	back, ok := ConvertTime(v, TimeHours, TimeMinutes)
	require.True(t, ok)
	require.InDelta(t, 90, back, 1e-9)
}

func TestConvertTimeNegative(t *testing.T) {
	_, ok := ConvertTime(-1, TimeSeconds, TimeMinutes)
	require.False(t, ok)
}

func TestConvertDataBinaryKB(t *testing.T) {
	v, ok := ConvertData(1, DataKilobytes, DataBytes)
	require.True(t, ok)
	require.Equal(t, 1024.0, v)
}

func TestAutoScaleTime(t *testing.T) {
	v, unit := AutoScaleTime(90000, 2)
	require.Equal(t, TimeMinutes, unit)
	require.Equal(t, 1.5, v)
}

func TestAutoScaleData(t *testing.T) {
	v, unit := AutoScaleData(1536, 2)
	require.Equal(t, DataKilobytes, unit)
	require.Equal(t, 1.5, v)
}
