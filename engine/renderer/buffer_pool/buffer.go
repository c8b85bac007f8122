package buffer_pool

import "fmt"

// BufferKind identifies how the graphics layer binds a pooled buffer.
type BufferKind int

const (
	// BufferKindStructured is generic shader-visible storage indexed per instance.
	BufferKindStructured BufferKind = iota
	// BufferKindIndirectArguments holds the argument record of an indirect draw.
	BufferKindIndirectArguments
	// BufferKindConstant is a uniform block, used for per-batch transform arrays on the direct path.
	BufferKindConstant
)

func (k BufferKind) String() string {
	switch k {
	case BufferKindStructured:
		return "structured"
	case BufferKindIndirectArguments:
		return "indirect-arguments"
	case BufferKindConstant:
		return "constant"
	default:
		return fmt.Sprintf("BufferKind(%d)", int(k))
	}
}

// Descriptor is the fixed shape of every buffer a pool hands out.
type Descriptor struct {
	// Label is a debug label forwarded to the graphics backend.
	Label string
	// Count is the element capacity.
	Count int
	// Stride is the size of one element in bytes.
	Stride int
	// Kind is the binding kind of the buffer.
	Kind BufferKind
}

// Size returns the byte size of the buffer, Count * Stride.
func (d Descriptor) Size() int {
	return d.Count * d.Stride
}

// Buffer is a GPU-side (or host-side) buffer of fixed shape handed out by a BufferPool.
// A Buffer is only meaningful to its renter between the Rent that returned it and the next Flush
// of the pool that owns it.
type Buffer interface {
	// Descriptor returns the shape the buffer was created with.
	//
	// Returns:
	//   - Descriptor: the buffer shape
	Descriptor() Descriptor

	// Write copies data into the buffer starting at the given byte offset.
	// Returns an error wrapping core.ErrBufferOverflow if the write would exceed the buffer size.
	//
	// Parameters:
	//   - offset: the byte offset to start writing at
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: overflow or backend write error
	Write(offset int, data []byte) error

	// Release frees the underlying resource. Calling Release more than once has no effect.
	Release()
}

// Allocator creates buffers for a BufferPool. Implementations wrap a graphics device or plain host memory.
type Allocator interface {
	// CreateBuffer allocates a new buffer with the given shape.
	//
	// Parameters:
	//   - desc: the buffer shape
	//
	// Returns:
	//   - Buffer: the new buffer
	//   - error: allocation failure
	CreateBuffer(desc Descriptor) (Buffer, error)
}
