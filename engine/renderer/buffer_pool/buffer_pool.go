package buffer_pool

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/charmbracelet/log"
	"github.com/eapache/queue"
	"github.com/google/uuid"
)

// bufferPool is the unexported implementation of BufferPool.
type bufferPool struct {
	// label is a debug label, also used as the prefix of every buffer label this pool creates.
	label string
	// desc is the fixed shape of every buffer in the pool.
	desc Descriptor
	// alloc creates new buffers when the free ring is empty.
	alloc Allocator
	// logger receives allocation, trim and dispose events.
	logger *log.Logger

	mu *sync.Mutex
	// free holds buffers available for renting, oldest first.
	free *queue.Queue
	// active holds buffers rented since the last Flush.
	active []Buffer

	allocated int
	released  int
	disposed  bool
}

// PoolStats is a snapshot of a pool's bookkeeping.
type PoolStats struct {
	// Allocated is the number of buffers ever created by the pool.
	Allocated int
	// Free is the number of buffers currently available for renting.
	Free int
	// Active is the number of buffers rented since the last Flush.
	Active int
	// Released is the number of buffers released by Trim or Dispose.
	Released int
}

// BufferPool hands out reusable buffers of one fixed shape so a renderer never allocates GPU memory
// on the steady-state frame path. Buffers move between two sets: free and active. Rent moves one
// buffer from free to active (allocating when free is empty), Flush moves all of active back to free.
//
// Usage pattern:
//  1. The renderer creates one pool per buffer shape at setup.
//  2. At the start of every pass the renderer calls Flush.
//  3. During the pass the renderer calls Rent for every buffer it needs and fills it.
//  4. At teardown the renderer calls Dispose.
type BufferPool interface {
	// Rent returns a buffer of the pool's shape that is not rented by anyone else.
	// A free buffer is reused when one exists, otherwise a new one is allocated.
	// Buffer contents are unspecified; the renter must write everything it reads.
	//
	// Returns:
	//   - Buffer: the rented buffer
	//   - error: core.ErrPoolDisposed after Dispose, or an error wrapping core.ErrBufferAllocation
	Rent() (Buffer, error)

	// Flush returns every rented buffer to the free set. Contents are left untouched.
	// Calling Flush with nothing rented has no effect.
	Flush()

	// Trim releases free buffers beyond keep, bounding the pool after a spike in demand.
	// Rented buffers are never touched.
	//
	// Parameters:
	//   - keep: the number of free buffers to retain
	//
	// Returns:
	//   - int: the number of buffers released
	Trim(keep int) int

	// Dispose releases every buffer the pool holds, free or rented. The pool cannot be used afterwards.
	// Calling Dispose more than once has no effect.
	Dispose()

	// Descriptor returns the shape of the buffers in this pool.
	//
	// Returns:
	//   - Descriptor: the pool's buffer shape
	Descriptor() Descriptor

	// Label returns the debug label for this pool.
	//
	// Returns:
	//   - string: the debug label
	Label() string

	// Stats returns a snapshot of the pool's bookkeeping.
	//
	// Returns:
	//   - PoolStats: allocated, free, active and released counts
	Stats() PoolStats
}

var _ BufferPool = &bufferPool{}

// NewBufferPool creates an empty pool of buffers with count elements of stride bytes each.
// No buffer is allocated until the first Rent.
//
// Parameters:
//   - alloc: the allocator used to create buffers
//   - count: element capacity of every buffer (must be > 0)
//   - stride: element size in bytes (must be > 0)
//   - kind: the binding kind of every buffer
//   - options: functional options applied after the defaults
//
// Returns:
//   - BufferPool: the new pool
//   - error: an error wrapping core.ErrInvalidBufferShape for a non-positive count or stride
func NewBufferPool(alloc Allocator, count, stride int, kind BufferKind, options ...BufferPoolBuilderOption) (BufferPool, error) {
	if count <= 0 || stride <= 0 {
		return nil, fmt.Errorf("count=%d stride=%d: %w", count, stride, core.ErrInvalidBufferShape)
	}

	p := &bufferPool{
		label:  "pool-" + uuid.NewString()[:8],
		desc:   Descriptor{Count: count, Stride: stride, Kind: kind},
		alloc:  alloc,
		mu:     &sync.Mutex{},
		free:   queue.New(),
		active: make([]Buffer, 0, 8),
	}
	for _, opt := range options {
		opt(p)
	}
	p.desc.Label = p.label
	if p.logger == nil {
		p.logger = core.Logger()
	}
	p.logger = p.logger.With("pool", p.label)
	return p, nil
}

func (p *bufferPool) Rent() (Buffer, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return nil, core.ErrPoolDisposed
	}

	var buf Buffer
	if p.free.Length() > 0 {
		buf = p.free.Remove().(Buffer)
	} else {
		desc := p.desc
		desc.Label = fmt.Sprintf("%s#%d", p.label, p.allocated)
		b, err := p.alloc.CreateBuffer(desc)
		if err != nil {
			return nil, fmt.Errorf("failed to allocate %s (%d bytes): %w: %w", desc.Label, desc.Size(), core.ErrBufferAllocation, err)
		}
		p.allocated++
		p.logger.Debug("allocated buffer", "label", desc.Label, "kind", desc.Kind, "bytes", desc.Size(), "total", p.allocated)
		buf = b
	}

	p.active = append(p.active, buf)
	return buf, nil
}

func (p *bufferPool) Flush() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, b := range p.active {
		p.free.Add(b)
		p.active[i] = nil
	}
	p.active = p.active[:0]
}

func (p *bufferPool) Trim(keep int) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	keep = max(keep, 0)
	n := 0
	for p.free.Length() > keep {
		p.free.Remove().(Buffer).Release()
		n++
	}
	if n > 0 {
		p.released += n
		p.logger.Debug("trimmed free buffers", "released", n, "kept", keep)
	}
	return n
}

func (p *bufferPool) Dispose() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.disposed {
		return
	}
	n := p.free.Length() + len(p.active)
	for p.free.Length() > 0 {
		p.free.Remove().(Buffer).Release()
	}
	for i, b := range p.active {
		b.Release()
		p.active[i] = nil
	}
	p.active = p.active[:0]
	p.released += n
	p.disposed = true
	p.logger.Debug("disposed", "released", n)
}

func (p *bufferPool) Descriptor() Descriptor {
	return p.desc
}

func (p *bufferPool) Label() string {
	return p.label
}

func (p *bufferPool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()

	return PoolStats{
		Allocated: p.allocated,
		Free:      p.free.Length(),
		Active:    len(p.active),
		Released:  p.released,
	}
}
