package renderer

import (
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/batch_renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-swarm/engine/sprite"
)

// NewRenderInfo pairs a sprite quad with the material it is drawn with.
// The same info is handed to the batch renderer and to NewSpriteSurface.
//
// Parameters:
//   - s: the sprite whose quad is drawn once per instance
//   - m: the material
//
// Returns:
//   - batch_renderer.RenderInfo: the render info
func NewRenderInfo(s sprite.Sprite, m material.Material) batch_renderer.RenderInfo {
	return batch_renderer.RenderInfo{Geometry: s, Material: m}
}
