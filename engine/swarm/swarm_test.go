package swarm_test

import (
	"io"
	"testing"

	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/config"
	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/batch_renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/headless"
	"github.com/Carmen-Shannon/oxy-swarm/engine/swarm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = core.NewLogger(io.Discard, "test")

func testConfig(count int, mode string) *config.Config {
	cfg := config.DefaultConfig()
	cfg.Swarm.InstanceCount = count
	cfg.Swarm.Mode = mode
	cfg.Swarm.Workers = 1
	return cfg
}

func newSwarm(t *testing.T, cfg *config.Config, opts ...swarm.SwarmBuilderOption) (swarm.Swarm, *headless.Surface) {
	t.Helper()
	surface := headless.NewSurface()
	opts = append([]swarm.SwarmBuilderOption{swarm.WithLogger(quiet)}, opts...)
	s, err := swarm.NewSwarm(cfg, headless.Quad(), surface, buffer_pool.NewHostAllocator(0), opts...)
	require.NoError(t, err)
	t.Cleanup(s.Dispose)
	return s, surface
}

func TestNewSwarmRendersPopulation(t *testing.T) {
	s, surface := newSwarm(t, testConfig(20, "direct"))

	stats, err := s.Render()
	require.NoError(t, err)
	assert.Equal(t, batch_renderer.PassStats{Mode: batch_renderer.ModeDirect, Instances: 20, Batches: 3, Submitted: 3}, stats)

	draws := surface.Draws()
	require.Len(t, draws, 3)
	assert.Equal(t, 6, draws[2].Count)
	assert.Equal(t, 0, s.Layer())
	assert.Equal(t, config.DefaultBatchSize, s.BatchRenderer().BatchSize())
}

func TestNewSwarmConfigErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*config.Config)
		want   error
	}{
		{name: "unknown layer", mutate: func(c *config.Config) { c.Swarm.LayerName = "Nowhere" }, want: core.ErrUnknownLayer},
		{name: "zero batch size", mutate: func(c *config.Config) { c.Swarm.BatchSize = 0 }, want: core.ErrInvalidBatchSize},
		{name: "bad mode", mutate: func(c *config.Config) { c.Swarm.Mode = "sideways" }, want: core.ErrInvalidConfig},
		{name: "negative count", mutate: func(c *config.Config) { c.Swarm.InstanceCount = -1 }, want: core.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(10, "direct")
			tt.mutate(cfg)
			_, err := swarm.NewSwarm(cfg, headless.Quad(), headless.NewSurface(), buffer_pool.NewHostAllocator(0), swarm.WithLogger(quiet))
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNewSwarmInstancingDisabled(t *testing.T) {
	info := batch_renderer.RenderInfo{Geometry: headless.Geometry{Indices: 6}, Material: headless.Material{}}
	_, err := swarm.NewSwarm(testConfig(10, "direct"), info, headless.NewSurface(), buffer_pool.NewHostAllocator(0), swarm.WithLogger(quiet))
	require.ErrorIs(t, err, core.ErrInstancingDisabled)
}

func TestSwarmCustomLayer(t *testing.T) {
	layers, err := batch_renderer.NewLayerRegistry("Particles")
	require.NoError(t, err)
	cfg := testConfig(7, "direct")
	cfg.Swarm.LayerName = "Particles"

	s, surface := newSwarm(t, cfg, swarm.WithLayerRegistry(layers))
	want, err := layers.Resolve("Particles")
	require.NoError(t, err)
	assert.Equal(t, want, s.Layer())

	_, err = s.Render()
	require.NoError(t, err)
	require.Len(t, surface.Draws(), 1)
	assert.Equal(t, want, surface.Draws()[0].Params.Layer)
}

func TestSwarmTickAndPause(t *testing.T) {
	s, _ := newSwarm(t, testConfig(5, "direct"))
	before := append([]float32(nil), lifetimes(s)...)

	s.Tick(0.5)
	after := lifetimes(s)
	for i := range before {
		assert.InDelta(t, before[i]+0.5, after[i], 1e-5)
	}

	s.SetPaused(true)
	assert.True(t, s.Paused())
	s.Tick(0.5)
	assert.Equal(t, after, lifetimes(s))

	s.SetPaused(false)
	s.Tick(0.25)
	assert.InDelta(t, after[0]+0.25, lifetimes(s)[0], 1e-5)
}

func lifetimes(s swarm.Swarm) []float32 {
	objs := s.Simulation().Objects()
	out := make([]float32, len(objs))
	for i, o := range objs {
		out[i] = o.Time
	}
	return out
}

func TestSwarmToggleMode(t *testing.T) {
	s, surface := newSwarm(t, testConfig(10, "direct"))

	assert.Equal(t, batch_renderer.ModeIndirect, s.ToggleMode())
	stats, err := s.Render()
	require.NoError(t, err)
	assert.Equal(t, batch_renderer.ModeIndirect, stats.Mode)
	for _, d := range surface.Draws() {
		assert.Equal(t, batch_renderer.ModeIndirect, d.Mode)
	}

	assert.Equal(t, batch_renderer.ModeDirect, s.ToggleMode())
	s.SetMode(batch_renderer.ModeIndirect)
	assert.Equal(t, batch_renderer.ModeIndirect, s.BatchRenderer().Mode())
}

func TestSwarmApply(t *testing.T) {
	s, surface := newSwarm(t, testConfig(10, "direct"))

	next := testConfig(30, "indirect")
	next.Swarm.BatchSize = 3
	require.NoError(t, s.Apply(next))

	assert.Equal(t, 30, s.Simulation().Count())
	assert.Equal(t, batch_renderer.ModeIndirect, s.BatchRenderer().Mode())
	assert.Equal(t, config.DefaultBatchSize, s.BatchRenderer().BatchSize())

	stats, err := s.Render()
	require.NoError(t, err)
	assert.Equal(t, 30, stats.Instances)
	assert.Equal(t, 5, stats.Batches)
	assert.Len(t, surface.Draws(), 5)

	bad := testConfig(10, "sideways")
	require.ErrorIs(t, s.Apply(bad), core.ErrInvalidConfig)
	assert.Equal(t, 30, s.Simulation().Count())
}

func TestSwarmCamera(t *testing.T) {
	cam := camera.NewCamera(camera.WithSize(12))
	s, surface := newSwarm(t, testConfig(3, "direct"), swarm.WithCamera(cam))
	assert.Same(t, cam, s.Camera())

	_, err := s.Render()
	require.NoError(t, err)
	assert.Same(t, cam, surface.Draws()[0].Params.Camera)
}

func TestSwarmDispose(t *testing.T) {
	s, _ := newSwarm(t, testConfig(3, "direct"))
	s.Dispose()
	s.Dispose()

	_, err := s.Render()
	require.ErrorIs(t, err, core.ErrRendererDisposed)
	s.Tick(1)
}
