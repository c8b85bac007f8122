package batch_renderer

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
)

// Mode selects how batches are submitted to the Surface.
type Mode int

const (
	// ModeDirect computes per-instance transforms on the CPU and submits them as a transform array.
	ModeDirect Mode = iota
	// ModeIndirect writes per-instance data to pooled buffers and submits an argument-buffer driven draw.
	ModeIndirect
)

func (m Mode) String() string {
	switch m {
	case ModeDirect:
		return "direct"
	case ModeIndirect:
		return "indirect"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts "direct" or "indirect" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "direct":
		return ModeDirect, nil
	case "indirect":
		return ModeIndirect, nil
	default:
		return 0, fmt.Errorf("unknown submission mode %q: %w", s, core.ErrInvalidConfig)
	}
}

// Shader property names bound on every batch.
const (
	// PropertyPosDir is the direct path vector array of (position.xy, direction.xy).
	PropertyPosDir = "posDirBuffer"
	// PropertyTime is the per-instance lifetime, a float array on the direct path and a buffer on the indirect path.
	PropertyTime = "timeBuffer"
	// PropertyPosition is the indirect path position buffer.
	PropertyPosition = "positionBuffer"
	// PropertyDirection is the indirect path direction buffer.
	PropertyDirection = "directionBuffer"
)

// Geometry is the mesh drawn once per instance.
type Geometry interface {
	// IndexCount returns the number of indices drawn per instance.
	//
	// Returns:
	//   - int: the index count
	IndexCount() int
}

// Material is the shading state a batch is drawn with.
type Material interface {
	// InstancingEnabled reports whether the material's shader reads per-instance data.
	//
	// Returns:
	//   - bool: true if instanced draws are supported
	InstancingEnabled() bool
}

// RenderInfo pairs the geometry and material shared by every batch. Immutable after setup.
type RenderInfo struct {
	Geometry Geometry
	Material Material
}

// Bounds is an axis-aligned box handed to the surface with every draw.
type Bounds struct {
	Center [3]float32
	Size   [3]float32
}

// DefaultBounds is a static 1000 unit box around the origin. Tight per-batch bounds are never computed.
var DefaultBounds = Bounds{Size: [3]float32{1000, 1000, 1000}}

// DrawParams are the per-pass draw settings, identical for every batch and both submission modes.
type DrawParams struct {
	Layer          int
	Camera         camera.Camera
	CastShadows    bool
	ReceiveShadows bool
	Bounds         Bounds
}

// InstanceSource supplies the per-instance state a pass renders.
type InstanceSource interface {
	// Count returns the number of instances to render this pass.
	//
	// Returns:
	//   - int: the instance count
	Count() int

	// InstanceAt returns the render state of instance i.
	//
	// Parameters:
	//   - i: the instance index, 0 <= i < Count()
	//
	// Returns:
	//   - [2]float32: the position
	//   - [2]float32: the scaled facing vector
	//   - float32: the lifetime
	InstanceAt(i int) (pos, dir [2]float32, lifetime float32)
}

// Surface is the graphics submission target. Every batch results in exactly one call to one of its methods.
// Slices and property block contents are only valid for the duration of the call.
type Surface interface {
	// DrawInstanced draws count instances of info.Geometry using one transform per instance.
	//
	// Parameters:
	//   - info: the geometry and material
	//   - transforms: column-major model matrices, len(transforms) == count
	//   - count: the number of instances
	//   - props: per-batch shader properties
	//   - params: the pass draw settings
	//
	// Returns:
	//   - error: submission failure
	DrawInstanced(info RenderInfo, transforms [][16]float32, count int, props *PropertyBlock, params DrawParams) error

	// DrawInstancedIndirect draws info.Geometry with the instance count read from an argument buffer.
	//
	// Parameters:
	//   - info: the geometry and material
	//   - args: a buffer holding an IndirectArgs record
	//   - offset: the byte offset of the record within args
	//   - props: per-batch shader properties
	//   - params: the pass draw settings
	//
	// Returns:
	//   - error: submission failure
	DrawInstancedIndirect(info RenderInfo, args buffer_pool.Buffer, offset int, props *PropertyBlock, params DrawParams) error
}

// IndirectArgs is the argument record of an indexed indirect draw.
// Size: 20 bytes (5 × u32), little-endian.
type IndirectArgs struct {
	IndexCount    uint32 // offset 0: number of indices per instance
	InstanceCount uint32 // offset 4: number of instances in the batch
	FirstIndex    uint32 // offset 8: always 0
	BaseVertex    int32  // offset 12: always 0
	FirstInstance uint32 // offset 16: always 0
}

// IndirectArgsSize is the byte size of one IndirectArgs record.
const IndirectArgsSize = int(unsafe.Sizeof(IndirectArgs{}))

// Marshal serializes the record for GPU upload.
//
// Returns:
//   - []byte: 20-byte buffer
func (a *IndirectArgs) Marshal() []byte {
	buf := make([]byte, IndirectArgsSize)
	binary.LittleEndian.PutUint32(buf[0:4], a.IndexCount)
	binary.LittleEndian.PutUint32(buf[4:8], a.InstanceCount)
	binary.LittleEndian.PutUint32(buf[8:12], a.FirstIndex)
	binary.LittleEndian.PutUint32(buf[12:16], uint32(a.BaseVertex))
	binary.LittleEndian.PutUint32(buf[16:20], a.FirstInstance)
	return buf
}

// UnmarshalIndirectArgs decodes a record written by Marshal.
func UnmarshalIndirectArgs(buf []byte) (IndirectArgs, error) {
	if len(buf) < IndirectArgsSize {
		return IndirectArgs{}, fmt.Errorf("indirect args need %d bytes, got %d", IndirectArgsSize, len(buf))
	}
	return IndirectArgs{
		IndexCount:    binary.LittleEndian.Uint32(buf[0:4]),
		InstanceCount: binary.LittleEndian.Uint32(buf[4:8]),
		FirstIndex:    binary.LittleEndian.Uint32(buf[8:12]),
		BaseVertex:    int32(binary.LittleEndian.Uint32(buf[12:16])),
		FirstInstance: binary.LittleEndian.Uint32(buf[16:20]),
	}, nil
}

// PassStats summarizes one Render call.
type PassStats struct {
	Mode      Mode
	Instances int
	// Batches is the number of batches the pass was partitioned into.
	Batches int
	// Submitted is the number of draws issued. Equals Batches unless the pass aborted.
	Submitted int
	// Trimmed is the number of free buffers released at the start of the pass.
	Trimmed int
}
