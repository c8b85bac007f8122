package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSmoothstep(t *testing.T) {
	tests := []struct {
		t, want float32
	}{
		{-1, 0}, {0, 0}, {2.5, 0.15625}, {5, 0.5}, {10, 1}, {11, 1},
	}
	for _, tt := range tests {
		assert.InDelta(t, tt.want, Smoothstep(0, 10, tt.t), 1e-6, "t=%v", tt.t)
	}
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 3, Clamp(5, 0, 3))
	assert.Equal(t, 0, Clamp(-2, 0, 3))
	assert.Equal(t, 0.25, Clamp(0.25, 0.0, 1.0))
}

func TestSpriteMatrix(t *testing.T) {
	var m [16]float32
	dir := Direction2D(math.Pi/2, 2)
	SpriteMatrix(&m, [2]float32{3, 4}, dir, 0.5)

	// The local +x axis maps to world +y with length scale*ease = 1.
	assert.InDelta(t, 0, m[0], 1e-6)
	assert.InDelta(t, 1, m[1], 1e-6)
	assert.InDelta(t, -1, m[4], 1e-6)
	assert.InDelta(t, 0, m[5], 1e-6)
	assert.Equal(t, float32(1), m[10])
	assert.Equal(t, float32(1), m[15])
	assert.Equal(t, float32(3), m[12])
	assert.Equal(t, float32(4), m[13])
}

func TestOrthographicMapsBoxToClipSpace(t *testing.T) {
	proj := make([]float32, 16)
	Orthographic(proj, -4, 4, -2, 2, -1, 1)

	apply := func(x, y, z float32) [3]float32 {
		return [3]float32{
			proj[0]*x + proj[4]*y + proj[8]*z + proj[12],
			proj[1]*x + proj[5]*y + proj[9]*z + proj[13],
			proj[2]*x + proj[6]*y + proj[10]*z + proj[14],
		}
	}
	lo, hi := apply(-4, -2, -1), apply(4, 2, 1)
	assert.InDeltaSlice(t, []float32{-1, -1, 0}, lo[:], 1e-6)
	assert.InDeltaSlice(t, []float32{1, 1, 1}, hi[:], 1e-6)
}

func TestMul4Identity(t *testing.T) {
	id := make([]float32, 16)
	Identity(id)
	m := make([]float32, 16)
	for i := range m {
		m[i] = float32(i)
	}
	out := make([]float32, 16)
	Mul4(out, id, m)
	assert.Equal(t, m, out)
}

func TestCeilDiv(t *testing.T) {
	assert.Equal(t, 0, CeilDiv(0, 7))
	assert.Equal(t, 1, CeilDiv(2, 7))
	assert.Equal(t, 1, CeilDiv(7, 7))
	assert.Equal(t, 3, CeilDiv(16, 7))
}
