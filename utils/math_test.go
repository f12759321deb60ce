// utils/math_test.go
package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFloatEquals(t *testing.T) {
	assert.True(t, FloatEquals(0.1+0.2, 0.3))
	assert.False(t, FloatEquals(0.1, 0.2))
}

func TestRoundToPrecision(t *testing.T) {
	assert.Equal(t, 3.14, RoundToPrecision(3.14159, 2))
	assert.Equal(t, 3.0, RoundToPrecision(3.14159, 0))
	assert.Equal(t, -1.5, RoundToPrecision(-1.4999, 1))
}

func TestIsFinite(t *testing.T) {
	assert.True(t, IsFinite(1.0))
	assert.False(t, IsFinite(math.NaN()))
	assert.False(t, IsFinite(math.Inf(1)))
	assert.False(t, IsFinite(math.Inf(-1)))
}
