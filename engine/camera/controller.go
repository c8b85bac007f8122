package camera

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/common"
)

// Controller turns window input into camera movement. Keys pan (WASD or arrows) and zoom (Q/E)
// while held, the scroll wheel zooms and a middle-button drag moves the view with the cursor.
type Controller struct {
	mu   *sync.Mutex
	cam  Camera
	held map[uint32]bool
}

// NewController creates a controller driving cam.
func NewController(cam Camera) *Controller {
	return &Controller{mu: &sync.Mutex{}, cam: cam, held: make(map[uint32]bool)}
}

// KeyDown records a pressed key. Wire it to Window.SetKeyDownCallback.
func (c *Controller) KeyDown(keyCode uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.held[keyCode] = true
}

// KeyUp records a released key. Wire it to Window.SetKeyUpCallback.
func (c *Controller) KeyUp(keyCode uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.held, keyCode)
}

// Scroll zooms by the wheel delta.
func (c *Controller) Scroll(delta float32) {
	c.cam.Zoom(delta)
}

// Drag moves the view so the world point under the cursor follows it.
//
// Parameters:
//   - dx, dy: the cursor delta in pixels, y growing downwards
//   - viewportHeight: the framebuffer height in pixels
func (c *Controller) Drag(dx, dy float32, viewportHeight int) {
	if viewportHeight <= 0 {
		return
	}
	perPixel := 2 * c.cam.Size() / float32(viewportHeight)
	x, y := c.cam.Position()
	c.cam.SetPosition(x-dx*perPixel, y+dy*perPixel)
}

// Update applies one step of movement for every held key. Call it once per tick.
func (c *Controller) Update() {
	c.mu.Lock()
	var dx, dy, zoom float32
	if c.held[common.KeyD] || c.held[common.KeyRight] {
		dx++
	}
	if c.held[common.KeyA] || c.held[common.KeyLeft] {
		dx--
	}
	if c.held[common.KeyW] || c.held[common.KeyUp] {
		dy++
	}
	if c.held[common.KeyS] || c.held[common.KeyDown] {
		dy--
	}
	if c.held[common.KeyE] {
		zoom += 0.1
	}
	if c.held[common.KeyQ] {
		zoom -= 0.1
	}
	c.mu.Unlock()

	if dx != 0 || dy != 0 {
		c.cam.Pan(dx, dy)
	}
	if zoom != 0 {
		c.cam.Zoom(zoom)
	}
}
