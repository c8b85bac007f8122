package batch_renderer

import "github.com/charmbracelet/log"

// BatchRendererBuilderOption is a functional option used to configure a BatchRenderer during construction.
type BatchRendererBuilderOption func(*batchRenderer)

// WithBatchSize sets the maximum number of instances per draw. Must be positive.
//
// Parameters:
//   - size: the batch size
//
// Returns:
//   - BatchRendererBuilderOption: a function that sets the batch size
func WithBatchSize(size int) BatchRendererBuilderOption {
	return func(r *batchRenderer) {
		r.batchSize = size
	}
}

// WithMode sets the initial submission mode.
//
// Parameters:
//   - m: ModeDirect or ModeIndirect
//
// Returns:
//   - BatchRendererBuilderOption: a function that sets the mode
func WithMode(m Mode) BatchRendererBuilderOption {
	return func(r *batchRenderer) {
		r.mode = m
	}
}

// WithLayer sets the render layer index handed to the surface with every draw.
//
// Parameters:
//   - layer: the layer index
//
// Returns:
//   - BatchRendererBuilderOption: a function that sets the layer
func WithLayer(layer int) BatchRendererBuilderOption {
	return func(r *batchRenderer) {
		r.layer = layer
	}
}

// WithBounds overrides the static bounding box handed to the surface with every draw.
func WithBounds(b Bounds) BatchRendererBuilderOption {
	return func(r *batchRenderer) {
		r.bounds = b
	}
}

// WithChannelStrides sets the configured element strides, in bytes, of the position, direction and
// time channels. They are checked against the channel element sizes (8, 8 and 4) at construction.
//
// Parameters:
//   - position: position channel stride
//   - direction: direction channel stride
//   - time: time channel stride
//
// Returns:
//   - BatchRendererBuilderOption: a function that sets the channel strides
func WithChannelStrides(position, direction, time int) BatchRendererBuilderOption {
	return func(r *batchRenderer) {
		r.strides = [3]int{position, direction, time}
	}
}

// WithRetainSlack sets how many free buffers beyond a pass's demand each pool keeps after the
// start-of-pass trim. A negative value disables trimming.
//
// Parameters:
//   - n: the number of spare buffers to keep per pool
//
// Returns:
//   - BatchRendererBuilderOption: a function that sets the retain slack
func WithRetainSlack(n int) BatchRendererBuilderOption {
	return func(r *batchRenderer) {
		r.retainSlack = n
	}
}

// WithEase overrides the lifetime to visual scale mapping used for transforms.
func WithEase(ease func(lifetime float32) float32) BatchRendererBuilderOption {
	return func(r *batchRenderer) {
		r.ease = ease
	}
}

func WithLabel(label string) BatchRendererBuilderOption {
	return func(r *batchRenderer) {
		r.label = label
	}
}

func WithLogger(l *log.Logger) BatchRendererBuilderOption {
	return func(r *batchRenderer) {
		r.logger = l
	}
}
