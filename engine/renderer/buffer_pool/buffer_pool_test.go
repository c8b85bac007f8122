package buffer_pool

import (
	"encoding/binary"
	"io"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPool(t *testing.T, alloc Allocator, count, stride int) BufferPool {
	t.Helper()
	p, err := NewBufferPool(alloc, count, stride, BufferKindStructured,
		WithLabel("test"), WithLogger(core.NewLogger(io.Discard, "test")))
	require.NoError(t, err)
	return p
}

func rentN(t *testing.T, p BufferPool, n int) []Buffer {
	t.Helper()
	out := make([]Buffer, 0, n)
	for i := 0; i < n; i++ {
		b, err := p.Rent()
		require.NoError(t, err)
		out = append(out, b)
	}
	return out
}

func TestNewBufferPoolRejectsInvalidShape(t *testing.T) {
	alloc := NewHostAllocator(0)
	for _, shape := range [][2]int{{0, 8}, {7, 0}, {-1, 8}, {7, -4}} {
		_, err := NewBufferPool(alloc, shape[0], shape[1], BufferKindStructured)
		assert.ErrorIs(t, err, core.ErrInvalidBufferShape, "shape %v", shape)
	}
}

func TestRentReturnsDistinctBuffers(t *testing.T) {
	p := newTestPool(t, NewHostAllocator(0), 7, 8)
	bufs := rentN(t, p, 5)

	seen := map[Buffer]bool{}
	for _, b := range bufs {
		assert.False(t, seen[b], "buffer rented twice")
		seen[b] = true
		assert.Equal(t, 7, b.Descriptor().Count)
		assert.Equal(t, 8, b.Descriptor().Stride)
	}
	assert.Equal(t, PoolStats{Allocated: 5, Active: 5}, p.Stats())
}

func TestFlushConservesBuffers(t *testing.T) {
	p := newTestPool(t, NewHostAllocator(0), 7, 8)
	rentN(t, p, 3)
	before := p.Stats()

	p.Flush()
	after := p.Stats()
	assert.Equal(t, before.Free+before.Active, after.Free)
	assert.Zero(t, after.Active)
}

func TestFlushIsIdempotent(t *testing.T) {
	p := newTestPool(t, NewHostAllocator(0), 7, 8)
	rentN(t, p, 4)

	p.Flush()
	once := p.Stats()
	p.Flush()
	assert.Equal(t, once, p.Stats())
}

func TestReuseAfterFlushDoesNotAllocate(t *testing.T) {
	alloc := NewHostAllocator(0)
	p := newTestPool(t, alloc, 7, 8)

	first := rentN(t, p, 3)
	p.Flush()
	second := rentN(t, p, 3)

	assert.Equal(t, 3, alloc.Created())
	assert.ElementsMatch(t, first, second)
}

func TestRentGrowsPastFreeSet(t *testing.T) {
	alloc := NewHostAllocator(0)
	p := newTestPool(t, alloc, 7, 8)

	rentN(t, p, 2)
	p.Flush()
	rentN(t, p, 5)

	assert.Equal(t, 5, alloc.Created())
	assert.Equal(t, PoolStats{Allocated: 5, Active: 5}, p.Stats())
}

func TestFlushLeavesContentsUntouched(t *testing.T) {
	p := newTestPool(t, NewHostAllocator(0), 2, 4)
	b, err := p.Rent()
	require.NoError(t, err)
	require.NoError(t, WriteElements(b, []float32{1.5, -2}))

	p.Flush()
	again, err := p.Rent()
	require.NoError(t, err)
	require.Same(t, b, again)

	data := again.(*HostBuffer).Bytes()
	assert.Equal(t, float32(1.5), math.Float32frombits(binary.LittleEndian.Uint32(data[0:4])))
	assert.Equal(t, float32(-2), math.Float32frombits(binary.LittleEndian.Uint32(data[4:8])))
}

func TestRentAllocationFailure(t *testing.T) {
	p := newTestPool(t, NewHostAllocator(2), 7, 8)
	rentN(t, p, 2)

	_, err := p.Rent()
	require.ErrorIs(t, err, core.ErrBufferAllocation)
	assert.Equal(t, 2, p.Stats().Active)
}

func TestTrimReleasesOnlyFreeBuffers(t *testing.T) {
	alloc := NewHostAllocator(0)
	p := newTestPool(t, alloc, 7, 8)

	rentN(t, p, 6)
	p.Flush()
	kept := rentN(t, p, 2)

	released := p.Trim(1)
	assert.Equal(t, 3, released)
	assert.Equal(t, PoolStats{Allocated: 6, Free: 1, Active: 2, Released: 3}, p.Stats())
	assert.Equal(t, 3, alloc.Live())
	for _, b := range kept {
		assert.False(t, b.(*HostBuffer).Released())
	}

	assert.Zero(t, p.Trim(5))
}

func TestDisposeReleasesEverything(t *testing.T) {
	alloc := NewHostAllocator(0)
	p := newTestPool(t, alloc, 7, 8)

	rentN(t, p, 3)
	p.Flush()
	rentN(t, p, 1)
	p.Dispose()

	assert.Zero(t, alloc.Live())
	stats := p.Stats()
	assert.Zero(t, stats.Free)
	assert.Zero(t, stats.Active)

	_, err := p.Rent()
	assert.ErrorIs(t, err, core.ErrPoolDisposed)

	p.Dispose()
	assert.Equal(t, 3, p.Stats().Released)
}

func TestWriteElements(t *testing.T) {
	p := newTestPool(t, NewHostAllocator(0), 3, 8)
	b, err := p.Rent()
	require.NoError(t, err)

	require.NoError(t, WriteElements(b, [][2]float32{{1, 2}, {3, 4}}))
	require.NoError(t, WriteElements(b, [][2]float32{}))

	assert.ErrorIs(t, WriteElements(b, []float32{1, 2}), core.ErrStrideMismatch)
	assert.ErrorIs(t, WriteElements(b, make([][2]float32, 4)), core.ErrBufferOverflow)
}

func TestHostBufferWriteBounds(t *testing.T) {
	b, err := NewHostAllocator(0).CreateBuffer(Descriptor{Label: "b", Count: 1, Stride: 4})
	require.NoError(t, err)

	require.NoError(t, b.Write(0, []byte{1, 2, 3, 4}))
	assert.ErrorIs(t, b.Write(2, []byte{1, 2, 3}), core.ErrBufferOverflow)
	assert.ErrorIs(t, b.Write(-1, []byte{1}), core.ErrBufferOverflow)
}
