package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsValidFloat(t *testing.T) {
	assert.True(t, IsValidFloat(1.5))
	assert.True(t, IsValidFloat(0))
	assert.False(t, IsValidFloat(math.NaN()))
	assert.False(t, IsValidFloat(math.Inf(1)))
	assert.False(t, IsValidFloat(math.Inf(-1)))
}

func TestSanitizeFloat(t *testing.T) {
	min0, max100 := 0.0, 100.0

	require.Equal(t, 50.0, SanitizeFloat(50, &min0, &max100, -1))
	require.Equal(t, -1.0, SanitizeFloat(math.NaN(), &min0, &max100, -1))
	require.Equal(t, -1.0, SanitizeFloat(-5, &min0, &max100, -1))
	require.Equal(t, -1.0, SanitizeFloat(200, &min0, &max100, -1))
	require.Equal(t, 5.0, SanitizeFloat(5, nil, nil, -1))
}

func TestFilterValidFloats(t *testing.T) {
	values := []float64{1, math.NaN(), 2, math.Inf(1), 3}
	valid, dropped := FilterValidFloats(values)
	assert.Equal(t, []float64{1, 2, 3}, valid)
	assert.Equal(t, 2, dropped)
}
