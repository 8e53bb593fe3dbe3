package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRotate(t *testing.T) {
	tests := []struct {
		name  string
		angle float64
		wantX float64
		wantY float64
	}{
		{"identity", 0, 0, -5},
		{"quarter_turn", math.Pi / 2, 5, 0},
		{"half_turn", math.Pi, 0, 5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			x, y := Rotate(0, -5, tc.angle)
			assert.InDelta(t, tc.wantX, x, 1e-9)
			assert.InDelta(t, tc.wantY, y, 1e-9)
		})
	}
}

func TestTicks(t *testing.T) {
	assert.Equal(t, 0, Ticks(0))
	assert.Equal(t, 60, Ticks(1))
	assert.Equal(t, 30, Ticks(0.5))
	assert.Equal(t, 1, Ticks(0.001))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(5, 0, 1))
	assert.Equal(t, 0.0, Clamp(-1, 0, 1))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}
