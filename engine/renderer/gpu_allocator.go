package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
	"github.com/cogentcore/webgpu/wgpu"
)

// gpuAllocator creates pooled buffers on the device owned by a backend.
type gpuAllocator struct {
	backend wgpuRendererBackend

	mu        *sync.Mutex
	onRelease []func(*wgpu.Buffer)
}

// gpuBuffer is a buffer_pool.Buffer backed by a wgpu buffer. Writes are staged on the queue.
type gpuBuffer struct {
	desc     buffer_pool.Descriptor
	handle   *wgpu.Buffer
	owner    *gpuAllocator
	released bool
}

var _ buffer_pool.Allocator = &gpuAllocator{}
var _ buffer_pool.Buffer = &gpuBuffer{}

func newGPUAllocator(backend wgpuRendererBackend) *gpuAllocator {
	return &gpuAllocator{backend: backend, mu: &sync.Mutex{}}
}

func bufferUsage(kind buffer_pool.BufferKind) (wgpu.BufferUsage, error) {
	switch kind {
	case buffer_pool.BufferKindStructured:
		return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst, nil
	case buffer_pool.BufferKindIndirectArguments:
		return wgpu.BufferUsageIndirect | wgpu.BufferUsageCopyDst, nil
	case buffer_pool.BufferKindConstant:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst, nil
	default:
		return 0, fmt.Errorf("buffer kind %v: %w", kind, core.ErrInvalidBufferShape)
	}
}

// observeRelease registers fn to run with the wgpu handle of every buffer released from this allocator.
func (a *gpuAllocator) observeRelease(fn func(*wgpu.Buffer)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onRelease = append(a.onRelease, fn)
}

func (a *gpuAllocator) CreateBuffer(desc buffer_pool.Descriptor) (buffer_pool.Buffer, error) {
	usage, err := bufferUsage(desc.Kind)
	if err != nil {
		return nil, err
	}
	// wgpu requires buffer sizes to be a multiple of 4.
	size := uint64(desc.Size()+3) &^ 3
	handle, err := a.backend.CreateBuffer(desc.Label, size, usage)
	if err != nil {
		return nil, err
	}
	return &gpuBuffer{desc: desc, handle: handle, owner: a}, nil
}

func (b *gpuBuffer) Descriptor() buffer_pool.Descriptor {
	return b.desc
}

func (b *gpuBuffer) Write(offset int, data []byte) error {
	if b.released {
		return fmt.Errorf("%s: write after release", b.desc.Label)
	}
	if offset < 0 || offset+len(data) > b.desc.Size() {
		return fmt.Errorf("%s: write [%d, %d) of %d bytes: %w", b.desc.Label, offset, offset+len(data), b.desc.Size(), core.ErrBufferOverflow)
	}
	// Queue writes must be 4-byte aligned in offset and length.
	if len(data)%4 != 0 {
		padded := make([]byte, (len(data)+3)&^3)
		copy(padded, data)
		data = padded
	}
	return b.owner.backend.WriteBuffer(b.handle, uint64(offset), data)
}

func (b *gpuBuffer) Release() {
	if b.released {
		return
	}
	b.released = true

	b.owner.mu.Lock()
	hooks := append(([]func(*wgpu.Buffer))(nil), b.owner.onRelease...)
	b.owner.mu.Unlock()
	for _, fn := range hooks {
		fn(b.handle)
	}
	b.handle.Release()
}

// Handle returns the wgpu buffer.
func (b *gpuBuffer) Handle() *wgpu.Buffer {
	return b.handle
}
