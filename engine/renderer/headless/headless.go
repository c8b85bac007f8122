// Package headless provides a batch_renderer.Surface that records draws instead of submitting them
// to a graphics device. It backs the bench command and the renderer tests.
package headless

import (
	"encoding/binary"
	"errors"
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/batch_renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
)

// ErrInjected is returned by a Surface configured with FailAfter.
var ErrInjected = errors.New("injected draw failure")

// Geometry is a mesh stand-in with a fixed index count.
type Geometry struct {
	Indices int
}

func (g Geometry) IndexCount() int { return g.Indices }

// Material is a material stand-in.
type Material struct {
	Instancing bool
}

func (m Material) InstancingEnabled() bool { return m.Instancing }

// Quad returns render info for a two-triangle quad with an instancing material.
func Quad() batch_renderer.RenderInfo {
	return batch_renderer.RenderInfo{Geometry: Geometry{Indices: 6}, Material: Material{Instancing: true}}
}

// Draw is one recorded draw call. All slices are copies taken during the call.
type Draw struct {
	Mode   batch_renderer.Mode
	Count  int
	Params batch_renderer.DrawParams

	// Transforms is set for direct draws.
	Transforms [][16]float32
	// PosDir and Times are the per-instance property arrays (direct) or decoded channel buffers (indirect).
	PosDir [][4]float32
	Times  []float32

	// Args is set for indirect draws.
	Args       batch_renderer.IndirectArgs
	ArgsOffset int
	// ArgsBuffer is the pooled buffer the args were read from.
	ArgsBuffer buffer_pool.Buffer
	// Buffers are the channel buffers bound on an indirect draw, in position, direction, time order.
	Buffers [3]buffer_pool.Buffer
}

// Surface records every draw it receives. It is safe for concurrent use.
type Surface struct {
	mu        *sync.Mutex
	draws     []Draw
	failAfter int
}

var _ batch_renderer.Surface = &Surface{}

// NewSurface creates an empty recording surface.
func NewSurface() *Surface {
	return &Surface{mu: &sync.Mutex{}, failAfter: -1}
}

// FailAfter makes the surface accept n more draws and fail every draw after that with ErrInjected.
// A negative n disables failure injection.
func (s *Surface) FailAfter(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failAfter = n
}

// Draws returns the recorded draws.
func (s *Surface) Draws() []Draw {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Draw(nil), s.draws...)
}

// Reset forgets every recorded draw.
func (s *Surface) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draws = s.draws[:0]
}

func (s *Surface) admit() error {
	if s.failAfter == 0 {
		return ErrInjected
	}
	if s.failAfter > 0 {
		s.failAfter--
	}
	return nil
}

func (s *Surface) DrawInstanced(info batch_renderer.RenderInfo, transforms [][16]float32, count int, props *batch_renderer.PropertyBlock, params batch_renderer.DrawParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.admit(); err != nil {
		return err
	}
	s.draws = append(s.draws, Draw{
		Mode:       batch_renderer.ModeDirect,
		Count:      count,
		Params:     params,
		Transforms: append([][16]float32(nil), transforms...),
		PosDir:     append([][4]float32(nil), props.VectorArray(batch_renderer.PropertyPosDir)...),
		Times:      append([]float32(nil), props.FloatArray(batch_renderer.PropertyTime)...),
	})
	return nil
}

func (s *Surface) DrawInstancedIndirect(info batch_renderer.RenderInfo, args buffer_pool.Buffer, offset int, props *batch_renderer.PropertyBlock, params batch_renderer.DrawParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.admit(); err != nil {
		return err
	}

	d := Draw{
		Mode:       batch_renderer.ModeIndirect,
		Params:     params,
		ArgsOffset: offset,
		ArgsBuffer: args,
		Buffers: [3]buffer_pool.Buffer{
			props.Buffer(batch_renderer.PropertyPosition),
			props.Buffer(batch_renderer.PropertyDirection),
			props.Buffer(batch_renderer.PropertyTime),
		},
	}
	if hb, ok := args.(*buffer_pool.HostBuffer); ok {
		a, err := batch_renderer.UnmarshalIndirectArgs(hb.Bytes()[offset:])
		if err != nil {
			return err
		}
		d.Args = a
		d.Count = int(a.InstanceCount)
	}

	pos := floats(d.Buffers[0], d.Count*2)
	dir := floats(d.Buffers[1], d.Count*2)
	if pos != nil && dir != nil {
		d.PosDir = make([][4]float32, d.Count)
		for i := range d.PosDir {
			d.PosDir[i] = [4]float32{pos[2*i], pos[2*i+1], dir[2*i], dir[2*i+1]}
		}
	}
	d.Times = floats(d.Buffers[2], d.Count)

	s.draws = append(s.draws, d)
	return nil
}

// floats decodes the first n little-endian float32 values of a host buffer.
func floats(buf buffer_pool.Buffer, n int) []float32 {
	hb, ok := buf.(*buffer_pool.HostBuffer)
	if !ok || len(hb.Bytes()) < n*4 {
		return nil
	}
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(hb.Bytes()[i*4:]))
	}
	return out
}
