package adapter

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCoerceIDToStringFromFloat(t *testing.T) {
	require.Equal(t, "12345", CoerceIDToString(float64(12345)))
}

func TestCoerceIDToStringFromString(t *testing.T) {
	require.Equal(t, "abc", CoerceIDToString("abc"))
}

func TestCoerceIDsToString(t *testing.T) {
	out := CoerceIDsToString([]interface{}{float64(1), float64(2), "3"})
	require.Equal(t, []string{"1", "2", "3"}, out)
}

func TestCoerceIDToIntRoundTrip(t *testing.T) {
	v, ok := CoerceIDToInt("12345")
	require.True(t, ok)
	require.Equal(t, int64(12345), v)

	_, ok = CoerceIDToInt("not-a-number")
	require.False(t, ok)
}
