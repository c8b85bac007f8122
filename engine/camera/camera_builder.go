package camera

type CameraBuilderOption func(*cameraImpl)

// WithPosition sets the camera's world-space position.
//
// Parameters:
//   - x, y: world-space coordinates
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera position
func WithPosition(x, y float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.position = [2]float32{x, y}
	}
}

// WithSize sets the half-height of the visible area in world units.
//
// Parameters:
//   - size: the orthographic size
//
// Returns:
//   - CameraBuilderOption: a function that sets the orthographic size
func WithSize(size float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.size = size
	}
}

// WithSizeBounds sets the limits Zoom and SetSize clamp the orthographic size to.
//
// Parameters:
//   - min: smallest allowed size
//   - max: largest allowed size
//
// Returns:
//   - CameraBuilderOption: a function that sets the size bounds
func WithSizeBounds(min, max float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.minSize = min
		c.maxSize = max
	}
}

// WithAspect sets the camera's aspect ratio (width / height).
//
// Parameters:
//   - aspect: the aspect ratio to set
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's aspect ratio
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithDepthRange sets the near and far planes along the view axis.
//
// Parameters:
//   - near: near plane
//   - far: far plane
//
// Returns:
//   - CameraBuilderOption: a function that sets the depth range
func WithDepthRange(near, far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.near = near
		c.far = far
	}
}

func WithPanSpeed(speed float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.panSpeed = speed
	}
}

func WithZoomSpeed(speed float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.zoomSpeed = speed
	}
}
