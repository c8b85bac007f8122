package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/common"
)

type cameraImpl struct {
	mu *sync.Mutex

	position [2]float32
	// size is the half-height of the visible area in world units.
	size    float32
	minSize float32
	maxSize float32
	aspect  float32
	near    float32
	far     float32

	panSpeed  float32
	zoomSpeed float32

	viewMatrix           [16]float32
	projectionMatrix     [16]float32
	viewProjectionMatrix [16]float32
}

// Camera defines the interface for the 2D orthographic camera.
// The camera looks down the -z axis at the xy plane; x grows right and y grows up.
// All matrices are recomputed eagerly whenever a parameter changes.
type Camera interface {
	// Position returns the world-space point at the centre of the view.
	//
	// Returns:
	//   - x, y: world-space camera position
	Position() (x, y float32)

	// SetPosition moves the centre of the view and recomputes matrices.
	//
	// Parameters:
	//   - x, y: world-space coordinates
	SetPosition(x, y float32)

	// Size returns the half-height of the visible area in world units.
	//
	// Returns:
	//   - float32: the orthographic size
	Size() float32

	// SetSize sets the half-height of the visible area, clamped to the size bounds, and recomputes matrices.
	//
	// Parameters:
	//   - size: the new orthographic size
	SetSize(size float32)

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// SetAspect sets the aspect ratio (width / height) and recomputes matrices.
	// Typically called from the window resize callback.
	//
	// Parameters:
	//   - aspect: the new aspect ratio
	SetAspect(aspect float32)

	// Pan moves the view by the given direction scaled by the pan speed and the current size,
	// so panning covers the same share of the screen at every zoom level.
	//
	// Parameters:
	//   - dx, dy: pan direction, typically -1, 0 or 1 per axis
	Pan(dx, dy float32)

	// Zoom shrinks (positive delta) or grows (negative delta) the visible area by the zoom speed.
	//
	// Parameters:
	//   - delta: zoom amount
	Zoom(delta float32)

	// ViewMatrix returns the current 4x4 view matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the view matrix
	ViewMatrix() [16]float32

	// ProjectionMatrix returns the current 4x4 orthographic projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the projection matrix
	ProjectionMatrix() [16]float32

	// ViewProjectionMatrix returns the current combined view-projection matrix as 16 floats (column-major).
	//
	// Returns:
	//   - [16]float32: the combined view-projection matrix
	ViewProjectionMatrix() [16]float32

	// Uniform returns the GPU uniform for the current camera state.
	//
	// Returns:
	//   - GPUCameraUniform: the uniform data
	Uniform() GPUCameraUniform
}

var _ Camera = &cameraImpl{}

// NewCamera creates an orthographic camera centred at the origin showing 10 world units vertically.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the new camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:        &sync.Mutex{},
		size:      5,
		minSize:   0.5,
		maxSize:   500,
		aspect:    16.0 / 9.0,
		near:      -100,
		far:       100,
		panSpeed:  0.02,
		zoomSpeed: 0.1,
	}
	for _, opt := range options {
		opt(c)
	}
	c.size = common.Clamp(c.size, c.minSize, c.maxSize)
	c.updateMatrices()
	return c
}

func (c *cameraImpl) updateMatrices() {
	common.Identity(c.viewMatrix[:])
	c.viewMatrix[12] = -c.position[0]
	c.viewMatrix[13] = -c.position[1]

	halfW := c.size * c.aspect
	common.Orthographic(c.projectionMatrix[:], -halfW, halfW, -c.size, c.size, c.near, c.far)
	common.Mul4(c.viewProjectionMatrix[:], c.projectionMatrix[:], c.viewMatrix[:])
}

func (c *cameraImpl) Position() (x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.position[0], c.position[1]
}

func (c *cameraImpl) SetPosition(x, y float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.position = [2]float32{x, y}
	c.updateMatrices()
}

func (c *cameraImpl) Size() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

func (c *cameraImpl) SetSize(size float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.size = common.Clamp(size, c.minSize, c.maxSize)
	c.updateMatrices()
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) SetAspect(aspect float32) {
	if aspect <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Pan(dx, dy float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	step := c.panSpeed * c.size
	c.position[0] += dx * step
	c.position[1] += dy * step
	c.updateMatrices()
}

func (c *cameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.size = common.Clamp(c.size*(1-delta*c.zoomSpeed), c.minSize, c.maxSize)
	c.updateMatrices()
}

func (c *cameraImpl) ViewMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) ViewProjectionMatrix() [16]float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewProjectionMatrix
}

func (c *cameraImpl) Uniform() GPUCameraUniform {
	c.mu.Lock()
	defer c.mu.Unlock()
	return GPUCameraUniform{ViewProj: c.viewProjectionMatrix, Position: c.position}
}
