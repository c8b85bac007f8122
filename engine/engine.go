package engine

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/Carmen-Shannon/oxy-swarm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-swarm/engine/swarm"
	"github.com/Carmen-Shannon/oxy-swarm/engine/window"
	"github.com/charmbracelet/log"
)

// FrameTarget owns the per-frame lifecycle around the swarm render passes.
// renderer.Renderer satisfies it; a nil target renders the swarms alone, which is how headless runs work.
type FrameTarget interface {
	BeginFrame() error
	EndFrame() (int, error)
	Present()
	Resize(width, height int)
}

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	tickRateChannel chan time.Duration

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once

	// swarmMu guards swarms; it is never held while a swarm ticks or renders.
	swarmMu *sync.Mutex
	swarms  map[int]swarm.Swarm

	window window.Window
	target FrameTarget
	logger *log.Logger

	profiler         *profiler.Profiler
	profilingEnabled bool
	reportCallback   func(profiler.Report)
	updateCallback   func()

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // 0 = uncapped
}

// Engine drives registered swarms: a fixed-rate tick loop steps their simulations and a render loop
// draws them in ascending key order inside one frame of the FrameTarget.
type Engine interface {
	// Window returns the window the engine processes messages for, or nil for a headless engine.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Profiler returns the profiler render passes are recorded into.
	Profiler() *profiler.Profiler

	// SetTickRate sets the engine tick rate in ticks per second.
	//
	// Parameters:
	//   - fps: target ticks per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick after the swarms are stepped.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each render frame.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetUpdateCallback registers the function called on the window thread between message polls.
	// Window calls such as SetTitle belong here.
	//
	// Parameters:
	//   - callback: function to call each window update
	SetUpdateCallback(callback func())

	// SetReportCallback registers the function called with each profiler report while profiling is enabled.
	//
	// Parameters:
	//   - callback: function receiving the report
	SetReportCallback(callback func(profiler.Report))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddSwarm registers a swarm at the given key. Swarms render in ascending key order.
	//
	// Parameters:
	//   - key: the draw order key (lower renders first)
	//   - s: the swarm
	AddSwarm(key int, s swarm.Swarm)

	// RemoveSwarm unregisters the swarm at key. The swarm is not disposed.
	//
	// Parameters:
	//   - key: the key of the swarm to remove
	RemoveSwarm(key int)

	// Swarm returns the swarm registered at key, or nil.
	//
	// Parameters:
	//   - key: the key to look up
	//
	// Returns:
	//   - swarm.Swarm: the swarm, or nil if not found
	Swarm(key int) swarm.Swarm

	// Swarms returns a copy of the registered swarms keyed by draw order.
	//
	// Returns:
	//   - map[int]swarm.Swarm: a copy of the swarm map
	Swarms() map[int]swarm.Swarm

	// Step advances every swarm by dt seconds and fires the tick callback. The tick loop calls it;
	// headless callers may drive it directly.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Step(dt float32)

	// RenderFrame runs one frame: BeginFrame, one Render per swarm, EndFrame and Present.
	// A failed pass is logged and recorded; the remaining swarms still render.
	//
	// Returns:
	//   - error: every pass and frame error of this frame joined together, or nil
	RenderFrame() error

	// Run starts the tick and render loops. With a window it blocks in the window message loop until the
	// window closes; without one it blocks until Quit.
	Run()

	// Quit signals all engine goroutines to stop and closes the window once they have. Safe to call
	// multiple times and from any goroutine.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		swarmMu:         &sync.Mutex{},
		swarms:          make(map[int]swarm.Swarm),
		wg:              sync.WaitGroup{},
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}
	if e.logger == nil {
		e.logger = core.Logger()
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithLogger(e.logger))
	}

	if e.window != nil {
		e.window.SetUpdateCallback(e.handleWindowUpdate)
		e.window.SetResizeCallback(func(width, height int) {
			if width <= 0 || height <= 0 {
				return
			}
			if e.target != nil {
				e.target.Resize(width, height)
			}
			for _, s := range e.Swarms() {
				s.Camera().SetAspect(float32(width) / float32(height))
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Profiler() *profiler.Profiler {
	return e.profiler
}

func (e *engine) Run() {
	e.running.Store(true)
	e.handle()
	if e.window == nil {
		e.wg.Wait()
		return
	}
	e.window.ProcessMessages()
	e.signalQuit()
	e.wg.Wait()
}

func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel exactly once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// handle launches the engine, render, and quit goroutines.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate tick loop and listens for rate changes on tickRateChannel.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now
			e.Step(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop.
// Recovers from panics and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			// Errors are already logged per pass; the loop moves on to the next frame.
			_ = e.RenderFrame()

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleWindowUpdate runs on the window thread between message polls. Once quit is signalled it waits
// for the loops to drain and closes the window, which ends ProcessMessages.
func (e *engine) handleWindowUpdate() {
	if e.updateCallback != nil {
		e.updateCallback()
	}
	select {
	case <-e.quitChannel:
		e.wg.Wait()
		if err := e.window.Close(); err != nil {
			e.logger.Warn("window close failed", "err", err)
		}
	default:
	}
}

// handleQuit blocks until the quit channel is closed.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// ordered returns the registered swarms in ascending key order.
func (e *engine) ordered() []swarm.Swarm {
	e.swarmMu.Lock()
	defer e.swarmMu.Unlock()
	keys := make([]int, 0, len(e.swarms))
	for k := range e.swarms {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]swarm.Swarm, 0, len(keys))
	for _, k := range keys {
		out = append(out, e.swarms[k])
	}
	return out
}

func (e *engine) Step(dt float32) {
	for _, s := range e.ordered() {
		s.Tick(dt)
	}
	if e.tickCallback != nil {
		e.tickCallback(dt)
	}
}

func (e *engine) RenderFrame() error {
	var errs []error
	if e.target != nil {
		if err := e.target.BeginFrame(); err != nil {
			e.logger.Warn("frame skipped", "err", err)
			return fmt.Errorf("begin frame: %w", err)
		}
	}

	for _, s := range e.ordered() {
		start := time.Now()
		stats, err := s.Render()
		e.profiler.RecordPass(stats, time.Since(start), err)
		if err != nil {
			e.logger.Error("render pass failed", "layer", s.Layer(), "mode", stats.Mode, "submitted", stats.Submitted, "batches", stats.Batches, "err", err)
			errs = append(errs, err)
		}
	}

	if e.target != nil {
		if _, err := e.target.EndFrame(); err != nil {
			e.logger.Error("end frame failed", "err", err)
			errs = append(errs, fmt.Errorf("end frame: %w", err))
		} else {
			e.target.Present()
		}
	}

	if e.profilingEnabled {
		if report, ok := e.profiler.Tick(); ok && e.reportCallback != nil {
			e.reportCallback(report)
		}
	}
	return errors.Join(errs...)
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in ticks per second.
// If the engine is running, the change takes effect on the next tick.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if !e.running.Load() {
		e.engineTickRate = newRate
		return
	}
	// Non-blocking send; a pending update is replaced.
	select {
	case e.tickRateChannel <- newRate:
	default:
		select {
		case <-e.tickRateChannel:
		default:
		}
		e.tickRateChannel <- newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetUpdateCallback(callback func()) {
	e.updateCallback = callback
}

func (e *engine) SetReportCallback(callback func(profiler.Report)) {
	e.reportCallback = callback
}

func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddSwarm(key int, s swarm.Swarm) {
	e.swarmMu.Lock()
	defer e.swarmMu.Unlock()
	e.swarms[key] = s
}

func (e *engine) RemoveSwarm(key int) {
	e.swarmMu.Lock()
	defer e.swarmMu.Unlock()
	delete(e.swarms, key)
}

func (e *engine) Swarm(key int) swarm.Swarm {
	e.swarmMu.Lock()
	defer e.swarmMu.Unlock()
	return e.swarms[key]
}

func (e *engine) Swarms() map[int]swarm.Swarm {
	e.swarmMu.Lock()
	defer e.swarmMu.Unlock()
	out := make(map[int]swarm.Swarm, len(e.swarms))
	for k, s := range e.swarms {
		out[k] = s
	}
	return out
}
