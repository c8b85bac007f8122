package batch_renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
	"github.com/Carmen-Shannon/oxy-swarm/engine/simulation"
	"github.com/charmbracelet/log"
)

// DefaultBatchSize matches the per-draw array capacity of the sprite shaders.
const DefaultBatchSize = 7

// batchRenderer is the unexported implementation of BatchRenderer.
type batchRenderer struct {
	label  string
	logger *log.Logger
	mu     *sync.Mutex

	source  InstanceSource
	info    RenderInfo
	surface Surface
	alloc   buffer_pool.Allocator

	batchSize   int
	mode        Mode
	layer       int
	bounds      Bounds
	retainSlack int
	strides     [3]int
	ease        func(float32) float32

	submitter submitter
	scratch   *scratch
	props     *PropertyBlock

	positionPool  buffer_pool.BufferPool
	directionPool buffer_pool.BufferPool
	timePool      buffer_pool.BufferPool
	argsPool      buffer_pool.BufferPool

	disposed bool
}

// BatchRenderer draws every instance of an InstanceSource once per Render call, partitioned into
// batches of at most BatchSize instances with one draw per batch.
//
// Usage pattern:
//  1. Create the renderer at setup with NewBatchRenderer; pools are created empty.
//  2. Call Render once per frame from the frame driver. Render flushes every pool first, so buffers
//     rented in one pass are only reused in a later pass.
//  3. Call Dispose at teardown once no pass is in flight.
type BatchRenderer interface {
	// Render submits every instance of the source. Pools are flushed and trimmed before the first
	// batch. Batches are staged and submitted strictly in order. The first error aborts the pass:
	// no further batch is staged or submitted and the error is returned alongside the partial stats.
	//
	// Parameters:
	//   - cam: the camera handed to the surface with every draw
	//
	// Returns:
	//   - PassStats: the pass summary
	//   - error: core.ErrRendererDisposed, or the rent, write or submission failure that aborted the pass
	Render(cam camera.Camera) (PassStats, error)

	// Mode returns the active submission mode.
	//
	// Returns:
	//   - Mode: the mode
	Mode() Mode

	// SetMode switches the submission mode. Takes effect at the next Render.
	//
	// Parameters:
	//   - m: the new mode
	SetMode(m Mode)

	// BatchSize returns the maximum number of instances per draw.
	//
	// Returns:
	//   - int: the batch size
	BatchSize() int

	// Layer returns the render layer index handed to the surface.
	//
	// Returns:
	//   - int: the layer index
	Layer() int

	// PoolStats returns the bookkeeping of every pool keyed by pool label.
	//
	// Returns:
	//   - map[string]buffer_pool.PoolStats: per-pool stats
	PoolStats() map[string]buffer_pool.PoolStats

	// Dispose releases every pooled buffer. Render returns core.ErrRendererDisposed afterwards.
	// Calling Dispose more than once has no effect.
	Dispose()
}

var _ BatchRenderer = &batchRenderer{}

// NewBatchRenderer validates the configuration and creates a renderer with empty channel pools.
//
// Parameters:
//   - source: the instances to draw
//   - info: the geometry and material shared by every batch
//   - surface: the draw target
//   - alloc: the allocator backing the channel and argument pools
//   - options: functional options applied before validation
//
// Returns:
//   - BatchRenderer: the renderer
//   - error: a configuration error (core.ErrInvalidBatchSize, core.ErrStrideMismatch,
//     core.ErrInstancingDisabled) or a pool construction error
func NewBatchRenderer(source InstanceSource, info RenderInfo, surface Surface, alloc buffer_pool.Allocator, options ...BatchRendererBuilderOption) (BatchRenderer, error) {
	r := &batchRenderer{
		label:       "swarm",
		mu:          &sync.Mutex{},
		source:      source,
		info:        info,
		surface:     surface,
		alloc:       alloc,
		batchSize:   DefaultBatchSize,
		mode:        ModeDirect,
		bounds:      DefaultBounds,
		retainSlack: 8,
		strides:     [3]int{common.SizeOf[[2]float32](), common.SizeOf[[2]float32](), common.SizeOf[float32]()},
		ease:        simulation.Ease,
		props:       NewPropertyBlock(),
	}
	for _, opt := range options {
		opt(r)
	}
	if r.logger == nil {
		r.logger = core.Logger()
	}

	if err := r.validate(); err != nil {
		return nil, err
	}

	r.submitter = newSubmitter(r.mode)
	r.scratch = newScratch(r.batchSize, r.ease)

	var err error
	poolOpt := buffer_pool.WithLogger(r.logger)
	if r.positionPool, err = buffer_pool.NewBufferPool(alloc, r.batchSize, r.strides[0], buffer_pool.BufferKindStructured,
		buffer_pool.WithLabel(r.label+"-position"), poolOpt); err != nil {
		return nil, err
	}
	if r.directionPool, err = buffer_pool.NewBufferPool(alloc, r.batchSize, r.strides[1], buffer_pool.BufferKindStructured,
		buffer_pool.WithLabel(r.label+"-direction"), poolOpt); err != nil {
		return nil, err
	}
	if r.timePool, err = buffer_pool.NewBufferPool(alloc, r.batchSize, r.strides[2], buffer_pool.BufferKindStructured,
		buffer_pool.WithLabel(r.label+"-time"), poolOpt); err != nil {
		return nil, err
	}
	if r.argsPool, err = buffer_pool.NewBufferPool(alloc, 1, IndirectArgsSize, buffer_pool.BufferKindIndirectArguments,
		buffer_pool.WithLabel(r.label+"-args"), poolOpt); err != nil {
		return nil, err
	}

	r.logger.Info("batch renderer ready", "label", r.label, "batchSize", r.batchSize, "mode", r.mode, "layer", r.layer)
	return r, nil
}

func (r *batchRenderer) validate() error {
	if r.batchSize <= 0 {
		return fmt.Errorf("batch size %d: %w", r.batchSize, core.ErrInvalidBatchSize)
	}
	want := [3]int{common.SizeOf[[2]float32](), common.SizeOf[[2]float32](), common.SizeOf[float32]()}
	for i, name := range [3]string{"position", "direction", "time"} {
		if r.strides[i] != want[i] {
			return fmt.Errorf("%s channel stride %d, element size %d: %w", name, r.strides[i], want[i], core.ErrStrideMismatch)
		}
	}
	if r.ease == nil {
		return fmt.Errorf("ease function is nil: %w", core.ErrInvalidConfig)
	}
	if r.info.Geometry == nil || r.info.Material == nil {
		return fmt.Errorf("render info needs geometry and material: %w", core.ErrInvalidConfig)
	}
	if !r.info.Material.InstancingEnabled() {
		return core.ErrInstancingDisabled
	}
	if r.mode != ModeDirect && r.mode != ModeIndirect {
		return fmt.Errorf("mode %v: %w", r.mode, core.ErrInvalidConfig)
	}
	return nil
}

func (r *batchRenderer) pools() [4]buffer_pool.BufferPool {
	return [4]buffer_pool.BufferPool{r.positionPool, r.directionPool, r.timePool, r.argsPool}
}

func (r *batchRenderer) Render(cam camera.Camera) (PassStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.disposed {
		return PassStats{}, core.ErrRendererDisposed
	}

	n := r.source.Count()
	stats := PassStats{
		Mode:      r.submitter.Mode(),
		Instances: n,
		Batches:   BatchCount(n, r.batchSize),
	}

	// Every pool is flushed exactly once per pass, before any rent.
	keep := stats.Batches*r.submitter.Demand() + r.retainSlack
	for _, p := range r.pools() {
		p.Flush()
		if r.retainSlack >= 0 {
			stats.Trimmed += p.Trim(keep)
		}
	}

	r.props.Clear()
	ctx := &submitContext{
		info:          r.info,
		surface:       r.surface,
		scratch:       r.scratch,
		props:         r.props,
		positionPool:  r.positionPool,
		directionPool: r.directionPool,
		timePool:      r.timePool,
		argsPool:      r.argsPool,
		params: DrawParams{
			Layer:          r.layer,
			Camera:         cam,
			CastShadows:    false,
			ReceiveShadows: false,
			Bounds:         r.bounds,
		},
	}

	for b := range Batches(n, r.batchSize) {
		r.scratch.fill(r.source, b.Start, b.Run)
		if err := r.submitter.Submit(ctx, b.Run); err != nil {
			r.logger.Error("render pass aborted", "label", r.label, "batch", b.Index, "start", b.Start, "run", b.Run, "err", err)
			return stats, fmt.Errorf("batch %d of %d (start %d, run %d): %w", b.Index, stats.Batches, b.Start, b.Run, err)
		}
		stats.Submitted++
	}
	return stats, nil
}

func (r *batchRenderer) Mode() Mode {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mode
}

func (r *batchRenderer) SetMode(m Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m == r.mode {
		return
	}
	r.mode = m
	r.submitter = newSubmitter(m)
	r.logger.Info("submission mode changed", "label", r.label, "mode", m)
}

func (r *batchRenderer) BatchSize() int {
	return r.batchSize
}

func (r *batchRenderer) Layer() int {
	return r.layer
}

func (r *batchRenderer) PoolStats() map[string]buffer_pool.PoolStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]buffer_pool.PoolStats, 4)
	for _, p := range r.pools() {
		out[p.Label()] = p.Stats()
	}
	return out
}

func (r *batchRenderer) Dispose() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.disposed {
		return
	}
	for _, p := range r.pools() {
		p.Dispose()
	}
	r.disposed = true
	r.logger.Debug("batch renderer disposed", "label", r.label)
}
