package batch_renderer

import (
	"iter"

	"github.com/Carmen-Shannon/oxy-swarm/common"
)

// Batch is a run of consecutive instances submitted with a single draw.
type Batch struct {
	// Index is the position of the batch within its pass.
	Index int
	// Start is the index of the first instance in the batch.
	Start int
	// Run is the number of instances in the batch, 1 <= Run <= batch size.
	Run int
}

// Batches partitions n instances into consecutive batches of at most size instances.
// Every batch but the last carries exactly size instances; the last carries the remainder.
// n <= 0 yields no batches. size must be positive.
//
// Parameters:
//   - n: the number of instances
//   - size: the batch size
//
// Returns:
//   - iter.Seq[Batch]: the batches in instance order
func Batches(n, size int) iter.Seq[Batch] {
	return func(yield func(Batch) bool) {
		for i, start := 0, 0; start < n; i, start = i+1, start+size {
			if !yield(Batch{Index: i, Start: start, Run: min(size, n-start)}) {
				return
			}
		}
	}
}

// BatchCount returns the number of batches Batches(n, size) yields, ceil(n / size).
func BatchCount(n, size int) int {
	if n <= 0 {
		return 0
	}
	return common.CeilDiv(n, size)
}
