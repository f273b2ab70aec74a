package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmericanToDecimal(t *testing.T) {
	tests := []struct {
		american int
		want     float64
	}{
		{150, 2.50},
		{100, 2.00},
		{-120, 1.0 + 100.0/120.0},
		{-110, 1.0 + 100.0/110.0},
		{-100, 2.00},
		{0, 0},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, AmericanToDecimal(tt.american), 1e-9, "odds %d", tt.american)
	}
}

func TestParlayDecimal(t *testing.T) {
	assert.InDelta(t, 1.0, ParlayDecimal(nil), 1e-9)
	assert.InDelta(t, 2.5, ParlayDecimal([]int{150}), 1e-9)

	want := (1 + 100.0/110.0) * (1 + 100.0/110.0) * 2.5
	assert.InDelta(t, want, ParlayDecimal([]int{-110, -110, 150}), 1e-9)
}

func TestFormatPayout(t *testing.T) {
	assert.Equal(t, "2.50", FormatPayout(2.5))
	assert.Equal(t, "1.83", FormatPayout(1.0+100.0/120.0))
	assert.Equal(t, "9.08", FormatPayout(9.0750001))
	assert.Equal(t, "1.00", FormatPayout(1))
}
