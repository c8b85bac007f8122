package batch_renderer

import "github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"

// PropertyBlock carries named per-batch shader inputs alongside a draw.
// Arrays are stored by reference, so the block is reused across batches without copying.
type PropertyBlock struct {
	vectors map[string][][4]float32
	floats  map[string][]float32
	buffers map[string]buffer_pool.Buffer
}

// NewPropertyBlock creates an empty property block.
func NewPropertyBlock() *PropertyBlock {
	return &PropertyBlock{
		vectors: make(map[string][][4]float32),
		floats:  make(map[string][]float32),
		buffers: make(map[string]buffer_pool.Buffer),
	}
}

func (p *PropertyBlock) SetVectorArray(name string, values [][4]float32) {
	p.vectors[name] = values
}

func (p *PropertyBlock) VectorArray(name string) [][4]float32 {
	return p.vectors[name]
}

func (p *PropertyBlock) SetFloatArray(name string, values []float32) {
	p.floats[name] = values
}

func (p *PropertyBlock) FloatArray(name string) []float32 {
	return p.floats[name]
}

// SetBuffer binds a pooled buffer under name.
func (p *PropertyBlock) SetBuffer(name string, buf buffer_pool.Buffer) {
	p.buffers[name] = buf
}

func (p *PropertyBlock) Buffer(name string) buffer_pool.Buffer {
	return p.buffers[name]
}

// Clear removes every property.
func (p *PropertyBlock) Clear() {
	clear(p.vectors)
	clear(p.floats)
	clear(p.buffers)
}
