package window

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// These tests exercise the platform-independent state only; no GLFW window is created.

func TestWindowOptions(t *testing.T) {
	w := &engineWindow{}
	for _, opt := range []WindowBuilderOption{
		WithTitle("swarm"),
		WithSize(800, 600),
		WithSizeLimits(100, 50, 1920, 0),
	} {
		opt(w)
	}

	assert.Equal(t, "swarm", w.title)
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
	assert.Equal(t, [4]int{100, 50, 1920, 0}, [4]int{w.minWidth, w.minHeight, w.maxWidth, w.maxHeight})
}

func TestAspectRatio(t *testing.T) {
	tests := []struct {
		name          string
		width, height int
		want          float32
	}{
		{name: "landscape", width: 1280, height: 720, want: 1280.0 / 720.0},
		{name: "square", width: 512, height: 512, want: 1},
		{name: "minimized", width: 0, height: 0, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &engineWindow{width: tt.width, height: tt.height}
			assert.InDelta(t, tt.want, w.AspectRatio(), 1e-6)
		})
	}
}

func TestSizeLimit(t *testing.T) {
	assert.Equal(t, 640, sizeLimit(640))
	assert.Equal(t, -1, sizeLimit(0))
	assert.Equal(t, -1, sizeLimit(-5))
}

func TestUninitializedWindow(t *testing.T) {
	w := &engineWindow{}
	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.Error(t, w.Close())
	w.SetTitle("ignored")
	assert.Equal(t, "ignored", w.title)
}
