package camera

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func project(m [16]float32, x, y float32) (float32, float32) {
	return m[0]*x + m[4]*y + m[12], m[1]*x + m[5]*y + m[13]
}

func TestViewProjectionMapsVisibleArea(t *testing.T) {
	c := NewCamera(WithSize(4), WithAspect(2), WithPosition(1, 1))
	vp := c.ViewProjectionMatrix()

	x, y := project(vp, 1, 1)
	assert.InDelta(t, 0, x, 1e-6)
	assert.InDelta(t, 0, y, 1e-6)

	x, y = project(vp, 1+8, 1+4)
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, 1, y, 1e-6)
}

func TestZoomClampsToBounds(t *testing.T) {
	c := NewCamera(WithSize(5), WithSizeBounds(1, 10), WithZoomSpeed(0.5))
	c.Zoom(1)
	assert.InDelta(t, 2.5, c.Size(), 1e-6)
	for range 10 {
		c.Zoom(1)
	}
	assert.Equal(t, float32(1), c.Size())

	c.SetSize(50)
	assert.Equal(t, float32(10), c.Size())
}

func TestPanScalesWithSize(t *testing.T) {
	c := NewCamera(WithSize(10), WithPanSpeed(0.1))
	c.Pan(1, -1)
	x, y := c.Position()
	assert.InDelta(t, 1, x, 1e-6)
	assert.InDelta(t, -1, y, 1e-6)
}

func TestUniformMarshal(t *testing.T) {
	c := NewCamera(WithPosition(2, 3))
	u := c.Uniform()
	assert.Equal(t, 80, u.Size())
	buf := u.Marshal()
	assert.Len(t, buf, 80)
	assert.Equal(t, c.ViewProjectionMatrix(), u.ViewProj)
	assert.Equal(t, [2]float32{2, 3}, u.Position)
}
