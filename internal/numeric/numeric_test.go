package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	tests := []struct {
		name     string
		in       float64
		expected float64
	}{
		{"Exact", 1.5, 1.5},
		{"Down", 1.23444, 1.2344},
		{"Up", 1.23456, 1.2346},
		{"Negative", -0.00004, 0},
		{"Large", 12345.678901, 12345.6789},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Round(tt.in))
		})
	}
}

func TestMinMax(t *testing.T) {
	lo, hi, ok := MinMax([]float64{3, -1, 7, 2})
	assert.True(t, ok)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 7.0, hi)

	_, _, ok = MinMax(nil)
	assert.False(t, ok)
}
