package sprite

import (
	"math"

	"github.com/Carmen-Shannon/oxy-swarm/common"
)

// Disc generates a white disc with a soft alpha edge, used when no sprite image is configured.
//
// Parameters:
//   - size: the width and height of the texture in pixels
//
// Returns:
//   - common.TextureStagingData: the generated texture
func Disc(size int) common.TextureStagingData {
	if size < 2 {
		size = 2
	}
	pix := make([]byte, size*size*4)
	r := float32(size) / 2
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float32(x) + 0.5 - r
			dy := float32(y) + 0.5 - r
			d := float32(math.Sqrt(float64(dx*dx+dy*dy))) / r
			a := 1 - common.Smoothstep[float32](0.8, 1, d)

			i := (y*size + x) * 4
			pix[i], pix[i+1], pix[i+2] = 255, 255, 255
			pix[i+3] = byte(common.Clamp(a, 0, 1) * 255)
		}
	}
	return common.TextureStagingData{Pixels: pix, Width: uint32(size), Height: uint32(size)}
}
