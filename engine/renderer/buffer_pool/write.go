package buffer_pool

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
)

// WriteElements writes elems to the start of buf as tightly packed fixed-stride elements.
// The in-memory size of T must equal the buffer stride and len(elems) must not exceed its capacity.
//
// Parameters:
//   - buf: the destination buffer
//   - elems: the elements to write
//
// Returns:
//   - error: wrapping core.ErrStrideMismatch or core.ErrBufferOverflow, or the backend write error
func WriteElements[T any](buf Buffer, elems []T) error {
	desc := buf.Descriptor()
	if size := common.SizeOf[T](); size != desc.Stride {
		return fmt.Errorf("%s: element size %d, stride %d: %w", desc.Label, size, desc.Stride, core.ErrStrideMismatch)
	}
	if len(elems) > desc.Count {
		return fmt.Errorf("%s: %d elements, capacity %d: %w", desc.Label, len(elems), desc.Count, core.ErrBufferOverflow)
	}
	if len(elems) == 0 {
		return nil
	}
	return buf.Write(0, common.SliceToBytes(elems))
}
