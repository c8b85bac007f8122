package sprite

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUVertexSource is the canonical WGSL definition of the VertexInput struct for sprite pipelines.
// Matches GPUVertex layout exactly (16 bytes).
//
//go:embed assets/sprite_vertex.wgsl
var GPUVertexSource string

// GPUVertex is the GPU-aligned representation of a single sprite quad corner.
// Matches the WGSL VertexInput struct layout exactly (see GPUVertexSource).
type GPUVertex struct {
	Position [2]float32 // offset 0: corner position in sprite units, pivot at the origin (8 bytes)
	UV       [2]float32 // offset 8: texture coordinate, v grows downwards (8 bytes)
}

// Size returns the size of the GPUVertex struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUVertex) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUVertex struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 16-byte buffer ready for GPU upload.
func (g *GPUVertex) Marshal() []byte {
	buf := make([]byte, 16)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Position[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Position[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.UV[0]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.UV[1]))
	return buf
}
