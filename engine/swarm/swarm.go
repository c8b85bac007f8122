package swarm

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/config"
	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/batch_renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
	"github.com/Carmen-Shannon/oxy-swarm/engine/simulation"
	"github.com/charmbracelet/log"
)

// swarm is the implementation of the Swarm interface.
type swarm struct {
	// frameMu serializes Tick, Render and Apply so a pass never observes a half-stepped population.
	frameMu *sync.Mutex
	logger  *log.Logger
	label   string

	cfg      config.SwarmConfig
	layers   *batch_renderer.LayerRegistry
	layer    int
	cam      camera.Camera
	sim      simulation.Simulation
	renderer batch_renderer.BatchRenderer
	spawn    *simulation.SpawnRanges

	paused   bool
	disposed bool
}

// Swarm owns one simulated population together with the batch renderer, camera and layer it is drawn with.
// Tick and Render may be called from different goroutines; they never run concurrently.
type Swarm interface {
	// Tick advances the simulation by dt seconds unless the swarm is paused.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Tick(dt float32)

	// Render draws the whole population once through the batch renderer.
	//
	// Returns:
	//   - batch_renderer.PassStats: the pass summary
	//   - error: the error that aborted the pass, or core.ErrRendererDisposed after Dispose
	Render() (batch_renderer.PassStats, error)

	// Apply takes the hot-reloadable part of a new configuration: instance count and mode.
	// Batch size, strides, layer and seed are fixed at construction; changes to them are logged and ignored.
	//
	// Parameters:
	//   - cfg: the reloaded configuration
	//
	// Returns:
	//   - error: a validation error; nothing is applied in that case
	Apply(cfg *config.Config) error

	// SetMode switches the submission mode from the next Render on.
	//
	// Parameters:
	//   - m: the new mode
	SetMode(m batch_renderer.Mode)

	// ToggleMode flips between direct and indirect submission.
	//
	// Returns:
	//   - batch_renderer.Mode: the mode now active
	ToggleMode() batch_renderer.Mode

	// SetPaused stops or resumes Tick. Render keeps drawing the frozen population.
	//
	// Parameters:
	//   - paused: true to pause
	SetPaused(paused bool)

	// Paused reports whether Tick is suspended.
	Paused() bool

	// Camera returns the camera handed to every draw.
	Camera() camera.Camera

	// Simulation returns the owned simulation.
	Simulation() simulation.Simulation

	// BatchRenderer returns the owned batch renderer.
	BatchRenderer() batch_renderer.BatchRenderer

	// Layer returns the resolved render layer index.
	Layer() int

	// Dispose releases the batch renderer pools. Tick and Render become no-op and error respectively.
	Dispose()
}

var _ Swarm = &swarm{}

// NewSwarm builds the simulation and batch renderer described by cfg and resolves its layer.
//
// Parameters:
//   - cfg: the configuration; validated before anything is built
//   - info: the geometry and material every instance is drawn with
//   - surface: the draw target
//   - alloc: the allocator backing the batch renderer pools, matching the surface's device
//   - options: functional options
//
// Returns:
//   - Swarm: the swarm
//   - error: a configuration error (core.ErrUnknownLayer, core.ErrInvalidConfig, ...) or a renderer setup error
func NewSwarm(cfg *config.Config, info batch_renderer.RenderInfo, surface batch_renderer.Surface, alloc buffer_pool.Allocator, options ...SwarmBuilderOption) (Swarm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	s := &swarm{
		frameMu: &sync.Mutex{},
		label:   "swarm",
		cfg:     cfg.Swarm,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.logger == nil {
		s.logger = core.Logger()
	}
	if s.layers == nil {
		layers, err := batch_renderer.NewLayerRegistry()
		if err != nil {
			return nil, err
		}
		s.layers = layers
	}
	if s.cam == nil {
		s.cam = camera.NewCamera()
	}

	layer, err := s.layers.Resolve(s.cfg.LayerName)
	if err != nil {
		return nil, err
	}
	s.layer = layer

	mode, err := batch_renderer.ParseMode(s.cfg.Mode)
	if err != nil {
		return nil, err
	}

	simOpts := []simulation.SimulationBuilderOption{
		simulation.WithSeed(s.cfg.Seed),
		simulation.WithWorkers(s.cfg.Workers),
		simulation.WithLogger(s.logger),
	}
	if s.spawn != nil {
		simOpts = append(simOpts, simulation.WithSpawnRanges(*s.spawn))
	}
	s.sim = simulation.NewSimulation(s.cfg.InstanceCount, simOpts...)

	s.renderer, err = batch_renderer.NewBatchRenderer(s.sim, info, surface, alloc,
		batch_renderer.WithLabel(s.label),
		batch_renderer.WithLogger(s.logger),
		batch_renderer.WithBatchSize(s.cfg.BatchSize),
		batch_renderer.WithMode(mode),
		batch_renderer.WithLayer(layer),
		batch_renderer.WithChannelStrides(s.cfg.Strides.Position, s.cfg.Strides.Direction, s.cfg.Strides.Time),
		batch_renderer.WithRetainSlack(s.cfg.RetainSlack),
	)
	if err != nil {
		return nil, fmt.Errorf("swarm %s: %w", s.label, err)
	}

	s.logger.Info("swarm ready", "label", s.label, "instances", s.sim.Count(), "layer", s.cfg.LayerName, "layerIndex", layer, "mode", mode)
	return s, nil
}

func (s *swarm) Tick(dt float32) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	if s.paused || s.disposed {
		return
	}
	s.sim.Step(dt)
}

func (s *swarm) Render() (batch_renderer.PassStats, error) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return s.renderer.Render(s.cam)
}

func (s *swarm) Apply(cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	mode, err := batch_renderer.ParseMode(cfg.Swarm.Mode)
	if err != nil {
		return err
	}

	s.frameMu.Lock()
	defer s.frameMu.Unlock()

	next := cfg.Swarm
	if next.BatchSize != s.cfg.BatchSize || next.Strides != s.cfg.Strides || next.LayerName != s.cfg.LayerName || next.Seed != s.cfg.Seed {
		s.logger.Warn("swarm settings changed that only apply on restart", "label", s.label,
			"batchSize", next.BatchSize, "strides", next.Strides, "layer", next.LayerName, "seed", next.Seed)
	}
	if next.InstanceCount != s.sim.Count() {
		s.logger.Info("swarm resized", "label", s.label, "from", s.sim.Count(), "to", next.InstanceCount)
		s.sim.Resize(next.InstanceCount)
	}
	s.renderer.SetMode(mode)
	s.cfg.InstanceCount = next.InstanceCount
	s.cfg.Mode = next.Mode
	return nil
}

func (s *swarm) SetMode(m batch_renderer.Mode) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	s.renderer.SetMode(m)
	s.cfg.Mode = m.String()
}

func (s *swarm) ToggleMode() batch_renderer.Mode {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	next := batch_renderer.ModeIndirect
	if s.renderer.Mode() == batch_renderer.ModeIndirect {
		next = batch_renderer.ModeDirect
	}
	s.renderer.SetMode(next)
	s.cfg.Mode = next.String()
	return next
}

func (s *swarm) SetPaused(paused bool) {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	s.paused = paused
}

func (s *swarm) Paused() bool {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	return s.paused
}

func (s *swarm) Camera() camera.Camera {
	return s.cam
}

func (s *swarm) Simulation() simulation.Simulation {
	return s.sim
}

func (s *swarm) BatchRenderer() batch_renderer.BatchRenderer {
	return s.renderer
}

func (s *swarm) Layer() int {
	return s.layer
}

func (s *swarm) Dispose() {
	s.frameMu.Lock()
	defer s.frameMu.Unlock()
	if s.disposed {
		return
	}
	s.renderer.Dispose()
	s.disposed = true
}
