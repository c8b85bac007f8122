package buffer_pool

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
)

// HostAllocator creates buffers backed by host memory. It stands in for a graphics device in
// headless runs and lets tests observe allocations and buffer contents.
type HostAllocator struct {
	mu *sync.Mutex
	// limit caps the number of live buffers; 0 means unlimited.
	limit   int
	created int
	live    int
}

var _ Allocator = &HostAllocator{}

// HostBuffer is a Buffer backed by a byte slice.
type HostBuffer struct {
	desc     Descriptor
	data     []byte
	owner    *HostAllocator
	released bool
}

var _ Buffer = &HostBuffer{}

// NewHostAllocator creates a host memory allocator.
//
// Parameters:
//   - limit: the maximum number of live buffers, 0 for no limit
//
// Returns:
//   - *HostAllocator: the allocator
func NewHostAllocator(limit int) *HostAllocator {
	return &HostAllocator{mu: &sync.Mutex{}, limit: limit}
}

func (a *HostAllocator) CreateBuffer(desc Descriptor) (Buffer, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.limit > 0 && a.live >= a.limit {
		return nil, fmt.Errorf("host allocator limit of %d buffers reached", a.limit)
	}
	a.created++
	a.live++
	return &HostBuffer{desc: desc, data: make([]byte, desc.Size()), owner: a}, nil
}

// Created returns the number of buffers ever allocated.
func (a *HostAllocator) Created() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.created
}

// Live returns the number of allocated buffers not yet released.
func (a *HostAllocator) Live() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.live
}

func (b *HostBuffer) Descriptor() Descriptor {
	return b.desc
}

func (b *HostBuffer) Write(offset int, data []byte) error {
	if b.released {
		return fmt.Errorf("%s: write after release", b.desc.Label)
	}
	if offset < 0 || offset+len(data) > len(b.data) {
		return fmt.Errorf("%s: write [%d, %d) of %d bytes: %w", b.desc.Label, offset, offset+len(data), len(b.data), core.ErrBufferOverflow)
	}
	copy(b.data[offset:], data)
	return nil
}

func (b *HostBuffer) Release() {
	if b.released {
		return
	}
	b.released = true
	b.data = nil
	b.owner.mu.Lock()
	b.owner.live--
	b.owner.mu.Unlock()
}

// Bytes returns the buffer contents. The slice aliases the buffer memory.
func (b *HostBuffer) Bytes() []byte {
	return b.data
}

// Released reports whether Release has been called.
func (b *HostBuffer) Released() bool {
	return b.released
}
