package buffer_pool

import "github.com/charmbracelet/log"

// BufferPoolBuilderOption is a functional option used to configure a BufferPool during construction.
type BufferPoolBuilderOption func(*bufferPool)

// WithLabel sets the debug label of the pool. Buffer labels are derived from it.
//
// Parameters:
//   - label: the debug label
//
// Returns:
//   - BufferPoolBuilderOption: a function that sets the pool label
func WithLabel(label string) BufferPoolBuilderOption {
	return func(p *bufferPool) {
		if label != "" {
			p.label = label
		}
	}
}

// WithLogger sets the logger that receives pool events. Defaults to the process logger.
//
// Parameters:
//   - l: the logger
//
// Returns:
//   - BufferPoolBuilderOption: a function that sets the pool logger
func WithLogger(l *log.Logger) BufferPoolBuilderOption {
	return func(p *bufferPool) {
		p.logger = l
	}
}
