package engine_test

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-swarm/engine"
	"github.com/Carmen-Shannon/oxy-swarm/engine/config"
	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/Carmen-Shannon/oxy-swarm/engine/profiler"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/headless"
	"github.com/Carmen-Shannon/oxy-swarm/engine/swarm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = core.NewLogger(io.Discard, "test")

// recordingTarget logs the frame lifecycle calls it receives.
type recordingTarget struct {
	mu       sync.Mutex
	calls    []string
	beginErr error
}

func (t *recordingTarget) record(c string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.calls = append(t.calls, c)
}

func (t *recordingTarget) BeginFrame() error {
	t.record("begin")
	return t.beginErr
}

func (t *recordingTarget) EndFrame() (int, error) {
	t.record("end")
	return 0, nil
}

func (t *recordingTarget) Present()                 { t.record("present") }
func (t *recordingTarget) Resize(width, height int) { t.record("resize") }

func (t *recordingTarget) Calls() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.calls...)
}

func newSwarm(t *testing.T, count int, surface *headless.Surface) swarm.Swarm {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Swarm.InstanceCount = count
	cfg.Swarm.Workers = 1
	s, err := swarm.NewSwarm(cfg, headless.Quad(), surface, buffer_pool.NewHostAllocator(0), swarm.WithLogger(quiet))
	require.NoError(t, err)
	t.Cleanup(s.Dispose)
	return s
}

func TestRenderFrameLifecycle(t *testing.T) {
	surface := headless.NewSurface()
	target := &recordingTarget{}
	e := engine.NewEngine(
		engine.WithLogger(quiet),
		engine.WithFrameTarget(target),
		engine.WithSwarm(0, newSwarm(t, 10, surface)),
	)

	require.NoError(t, e.RenderFrame())
	assert.Equal(t, []string{"begin", "end", "present"}, target.Calls())
	assert.Len(t, surface.Draws(), 2)
}

func TestRenderFrameSkippedWhenBeginFails(t *testing.T) {
	surface := headless.NewSurface()
	target := &recordingTarget{beginErr: errors.New("surface lost")}
	e := engine.NewEngine(
		engine.WithLogger(quiet),
		engine.WithFrameTarget(target),
		engine.WithSwarm(0, newSwarm(t, 10, surface)),
	)

	require.Error(t, e.RenderFrame())
	assert.Equal(t, []string{"begin"}, target.Calls())
	assert.Empty(t, surface.Draws())
}

func TestRenderFrameOrderAndFailure(t *testing.T) {
	back := headless.NewSurface()
	front := headless.NewSurface()
	front.FailAfter(1)

	p := profiler.NewProfiler(profiler.WithLogger(nil), profiler.WithInterval(0))
	e := engine.NewEngine(
		engine.WithLogger(quiet),
		engine.WithProfiler(p),
		engine.WithProfiling(true),
		engine.WithSwarm(5, newSwarm(t, 14, front)),
		engine.WithSwarm(-1, newSwarm(t, 7, back)),
	)

	var reports []profiler.Report
	e.SetReportCallback(func(r profiler.Report) { reports = append(reports, r) })

	err := e.RenderFrame()
	require.ErrorIs(t, err, headless.ErrInjected)

	assert.Len(t, back.Draws(), 1)
	assert.Len(t, front.Draws(), 1)

	require.Len(t, reports, 1)
	assert.Equal(t, 2, reports[0].Passes)
	assert.Equal(t, 1, reports[0].Failed)
	assert.Equal(t, 2, reports[0].Draws)
	assert.Equal(t, 21, reports[0].Instances)
}

func TestStep(t *testing.T) {
	s := newSwarm(t, 3, headless.NewSurface())
	e := engine.NewEngine(engine.WithLogger(quiet), engine.WithSwarm(0, s))

	var ticked []float32
	e.SetTickCallback(func(dt float32) { ticked = append(ticked, dt) })

	before := s.Simulation().Objects()[0].Time
	e.Step(0.25)
	assert.InDelta(t, before+0.25, s.Simulation().Objects()[0].Time, 1e-6)
	assert.Equal(t, []float32{0.25}, ticked)
}

func TestSwarmRegistry(t *testing.T) {
	e := engine.NewEngine(engine.WithLogger(quiet))
	s := newSwarm(t, 1, headless.NewSurface())

	assert.Nil(t, e.Swarm(2))
	e.AddSwarm(2, s)
	assert.Same(t, s, e.Swarm(2))

	copied := e.Swarms()
	delete(copied, 2)
	assert.Len(t, e.Swarms(), 1)

	e.RemoveSwarm(2)
	assert.Empty(t, e.Swarms())
	assert.Nil(t, e.Window())
}

func TestRunHeadlessUntilQuit(t *testing.T) {
	surface := headless.NewSurface()
	s := newSwarm(t, 7, surface)
	e := engine.NewEngine(
		engine.WithLogger(quiet),
		engine.WithTickRate(500),
		engine.WithRenderFrameLimit(500),
		engine.WithSwarm(0, s),
	)

	var mu sync.Mutex
	frames := 0
	e.SetRenderCallback(func(float32) {
		mu.Lock()
		defer mu.Unlock()
		frames++
	})

	done := make(chan struct{})
	go func() {
		e.Run()
		close(done)
	}()

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return frames >= 3
	}, 2*time.Second, 5*time.Millisecond)

	e.Quit()
	e.Quit()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Quit")
	}
	assert.Greater(t, s.Simulation().Objects()[0].Time, float32(0))
}
