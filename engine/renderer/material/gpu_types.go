package material

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUMaterialParamsSource is the canonical WGSL definition of the MaterialParams struct.
// Matches GPUMaterialParams layout exactly (32 bytes, uniform aligned).
//
//go:embed assets/material_params.wgsl
var GPUMaterialParamsSource string

// GPUMaterialParams is the GPU-aligned uniform for the sprite fragment shaders.
// Matches the WGSL MaterialParams struct layout exactly (see GPUMaterialParamsSource).
// Size: 32 bytes.
type GPUMaterialParams struct {
	Tint    [4]float32 // offset  0: RGBA multiplier applied to the sampled texel (16 bytes)
	TimeHue float32    // offset 16: strength of the lifetime-driven hue shift, 0 disables it (4 bytes)
	_       [3]float32 // offset 20: padding to a 16-byte multiple (12 bytes)
}

// Size returns the size of the GPUMaterialParams struct in bytes.
//
// Returns:
//   - int: the size of the struct in bytes.
func (g *GPUMaterialParams) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUMaterialParams struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: 32-byte buffer ready for GPU upload.
func (g *GPUMaterialParams) Marshal() []byte {
	buf := make([]byte, 32)
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(g.Tint[0]))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(g.Tint[1]))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(g.Tint[2]))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(g.Tint[3]))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(g.TimeHue))
	return buf
}
