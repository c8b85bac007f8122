package batch_renderer_test

import (
	"io"
	"testing"

	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/batch_renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/headless"
	"github.com/Carmen-Shannon/oxy-swarm/engine/simulation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = core.NewLogger(io.Discard, "test")

// lineSource places instance i at (i, -i) facing +x with lifetime i.
type lineSource struct {
	n int
}

func (s *lineSource) Count() int { return s.n }

func (s *lineSource) InstanceAt(i int) (pos, dir [2]float32, lifetime float32) {
	return [2]float32{float32(i), -float32(i)}, [2]float32{1, 0}, float32(i)
}

type fixture struct {
	alloc   *buffer_pool.HostAllocator
	surface *headless.Surface
	cam     camera.Camera
	r       batch_renderer.BatchRenderer
}

func newFixture(t *testing.T, src batch_renderer.InstanceSource, opts ...batch_renderer.BatchRendererBuilderOption) *fixture {
	t.Helper()
	f := &fixture{
		alloc:   buffer_pool.NewHostAllocator(0),
		surface: headless.NewSurface(),
		cam:     camera.NewCamera(),
	}
	opts = append([]batch_renderer.BatchRendererBuilderOption{batch_renderer.WithLogger(quiet)}, opts...)
	r, err := batch_renderer.NewBatchRenderer(src, headless.Quad(), f.surface, f.alloc, opts...)
	require.NoError(t, err)
	t.Cleanup(r.Dispose)
	f.r = r
	return f
}

func counts(draws []headless.Draw) []int {
	out := make([]int, 0, len(draws))
	for _, d := range draws {
		out = append(out, d.Count)
	}
	return out
}

func TestRenderDirectBatches(t *testing.T) {
	f := newFixture(t, &lineSource{n: 16}, batch_renderer.WithLayer(3))

	stats, err := f.r.Render(f.cam)
	require.NoError(t, err)
	assert.Equal(t, batch_renderer.PassStats{Mode: batch_renderer.ModeDirect, Instances: 16, Batches: 3, Submitted: 3}, stats)

	draws := f.surface.Draws()
	require.Equal(t, []int{7, 7, 2}, counts(draws))
	for i, d := range draws {
		assert.Equal(t, batch_renderer.ModeDirect, d.Mode)
		assert.Len(t, d.Transforms, d.Count)
		assert.Len(t, d.PosDir, d.Count)
		assert.Len(t, d.Times, d.Count)
		assert.Equal(t, 3, d.Params.Layer)
		assert.Same(t, f.cam, d.Params.Camera)
		assert.False(t, d.Params.CastShadows)
		assert.False(t, d.Params.ReceiveShadows)
		assert.Equal(t, batch_renderer.DefaultBounds, d.Params.Bounds)
		assert.Equal(t, float32(i*7), d.Times[0])
	}

	// The short tail carries instances 14 and 15 only.
	last := draws[2]
	assert.Equal(t, [4]float32{14, -14, 1, 0}, last.PosDir[0])
	assert.Equal(t, [4]float32{15, -15, 1, 0}, last.PosDir[1])
	assert.Zero(t, f.alloc.Created())
}

func TestRenderIndirectBatches(t *testing.T) {
	f := newFixture(t, &lineSource{n: 16}, batch_renderer.WithMode(batch_renderer.ModeIndirect))

	stats, err := f.r.Render(f.cam)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Submitted)

	draws := f.surface.Draws()
	require.Len(t, draws, 3)
	for i, want := range []uint32{7, 7, 2} {
		d := draws[i]
		assert.Equal(t, batch_renderer.ModeIndirect, d.Mode)
		assert.Equal(t, batch_renderer.IndirectArgs{IndexCount: 6, InstanceCount: want}, d.Args)
		assert.Zero(t, d.ArgsOffset)
		assert.Equal(t, float32(i*7), d.Times[0])
	}
	assert.Equal(t, [4]float32{15, -15, 1, 0}, draws[2].PosDir[1])

	// One buffer per channel per batch plus one argument buffer per batch, all distinct within the pass.
	assert.Equal(t, 12, f.alloc.Created())
	seen := map[buffer_pool.Buffer]bool{}
	for _, d := range draws {
		for _, b := range append(d.Buffers[:], d.ArgsBuffer) {
			assert.False(t, seen[b], "buffer reused within a pass")
			seen[b] = true
		}
	}
}

func TestRenderReusesBuffersAcrossPasses(t *testing.T) {
	f := newFixture(t, &lineSource{n: 16}, batch_renderer.WithMode(batch_renderer.ModeIndirect))

	for range 5 {
		_, err := f.r.Render(f.cam)
		require.NoError(t, err)
	}
	assert.Equal(t, 12, f.alloc.Created())
	for label, s := range f.r.PoolStats() {
		assert.Equal(t, 3, s.Allocated, label)
		assert.Equal(t, 3, s.Active, label)
		assert.Zero(t, s.Free, label)
	}
}

func TestRenderZeroInstances(t *testing.T) {
	for _, m := range []batch_renderer.Mode{batch_renderer.ModeDirect, batch_renderer.ModeIndirect} {
		f := newFixture(t, &lineSource{n: 0}, batch_renderer.WithMode(m))
		stats, err := f.r.Render(f.cam)
		require.NoError(t, err)
		assert.Zero(t, stats.Batches)
		assert.Zero(t, stats.Submitted)
		assert.Empty(t, f.surface.Draws())
		assert.Zero(t, f.alloc.Created())
	}
}

func TestRenderFewerInstancesThanBatchSize(t *testing.T) {
	f := newFixture(t, &lineSource{n: 5}, batch_renderer.WithMode(batch_renderer.ModeIndirect))
	_, err := f.r.Render(f.cam)
	require.NoError(t, err)

	draws := f.surface.Draws()
	require.Len(t, draws, 1)
	assert.Equal(t, uint32(5), draws[0].Args.InstanceCount)
}

func TestDirectAndIndirectAgree(t *testing.T) {
	sim := simulation.NewSimulation(23, simulation.WithSeed(11), simulation.WithLogger(quiet))
	sim.Step(3)

	direct := newFixture(t, sim)
	indirect := newFixture(t, sim, batch_renderer.WithMode(batch_renderer.ModeIndirect))
	_, err := direct.r.Render(direct.cam)
	require.NoError(t, err)
	_, err = indirect.r.Render(indirect.cam)
	require.NoError(t, err)

	dd, id := direct.surface.Draws(), indirect.surface.Draws()
	require.Len(t, dd, 4)
	require.Equal(t, counts(dd), counts(id))
	for i := range dd {
		assert.Equal(t, dd[i].PosDir, id[i].PosDir)
		assert.Equal(t, dd[i].Times, id[i].Times)

		// The shader rebuilds each transform from the channel data exactly as the direct path does.
		for j, pd := range id[i].PosDir {
			var m [16]float32
			common.SpriteMatrix(&m, [2]float32{pd[0], pd[1]}, [2]float32{pd[2], pd[3]}, simulation.Ease(id[i].Times[j]))
			assert.Equal(t, dd[i].Transforms[j], m)
		}
	}
}

func TestRenderAbortsOnSubmissionFailure(t *testing.T) {
	f := newFixture(t, &lineSource{n: 30})
	f.surface.FailAfter(1)

	stats, err := f.r.Render(f.cam)
	require.ErrorIs(t, err, headless.ErrInjected)
	assert.Equal(t, 5, stats.Batches)
	assert.Equal(t, 1, stats.Submitted)
	assert.Len(t, f.surface.Draws(), 1)

	f.surface.FailAfter(-1)
	f.surface.Reset()
	stats, err = f.r.Render(f.cam)
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Submitted)
}

func TestRenderAbortsOnAllocationFailure(t *testing.T) {
	alloc := buffer_pool.NewHostAllocator(2)
	surface := headless.NewSurface()
	r, err := batch_renderer.NewBatchRenderer(&lineSource{n: 16}, headless.Quad(), surface, alloc,
		batch_renderer.WithMode(batch_renderer.ModeIndirect), batch_renderer.WithLogger(quiet))
	require.NoError(t, err)
	defer r.Dispose()

	stats, err := r.Render(camera.NewCamera())
	require.ErrorIs(t, err, core.ErrBufferAllocation)
	assert.Zero(t, stats.Submitted)
	assert.Empty(t, surface.Draws())
}

func TestTrimAfterSpike(t *testing.T) {
	src := &lineSource{n: 70}
	f := newFixture(t, src, batch_renderer.WithMode(batch_renderer.ModeIndirect), batch_renderer.WithRetainSlack(2))

	_, err := f.r.Render(f.cam)
	require.NoError(t, err)
	assert.Equal(t, 40, f.alloc.Live())

	src.n = 7
	stats, err := f.r.Render(f.cam)
	require.NoError(t, err)
	assert.Equal(t, 4*7, stats.Trimmed)
	assert.Equal(t, 4*3, f.alloc.Live())
	for label, s := range f.r.PoolStats() {
		assert.Equal(t, 1, s.Active, label)
		assert.Equal(t, 2, s.Free, label)
	}
}

func TestSetModeSwitchesStrategy(t *testing.T) {
	f := newFixture(t, &lineSource{n: 8})
	_, err := f.r.Render(f.cam)
	require.NoError(t, err)

	f.r.SetMode(batch_renderer.ModeIndirect)
	assert.Equal(t, batch_renderer.ModeIndirect, f.r.Mode())
	stats, err := f.r.Render(f.cam)
	require.NoError(t, err)
	assert.Equal(t, batch_renderer.ModeIndirect, stats.Mode)

	draws := f.surface.Draws()
	require.Len(t, draws, 4)
	assert.Equal(t, batch_renderer.ModeDirect, draws[1].Mode)
	assert.Equal(t, batch_renderer.ModeIndirect, draws[2].Mode)
}

func TestNewBatchRendererRejectsBadConfig(t *testing.T) {
	alloc := buffer_pool.NewHostAllocator(0)
	surface := headless.NewSurface()
	src := &lineSource{n: 1}

	_, err := batch_renderer.NewBatchRenderer(src, headless.Quad(), surface, alloc, batch_renderer.WithBatchSize(0))
	assert.ErrorIs(t, err, core.ErrInvalidBatchSize)

	_, err = batch_renderer.NewBatchRenderer(src, headless.Quad(), surface, alloc, batch_renderer.WithChannelStrides(8, 8, 8))
	assert.ErrorIs(t, err, core.ErrStrideMismatch)

	noInstancing := batch_renderer.RenderInfo{Geometry: headless.Geometry{Indices: 6}, Material: headless.Material{}}
	_, err = batch_renderer.NewBatchRenderer(src, noInstancing, surface, alloc)
	assert.ErrorIs(t, err, core.ErrInstancingDisabled)

	assert.Zero(t, alloc.Created())
}

func TestDisposeReleasesPools(t *testing.T) {
	alloc := buffer_pool.NewHostAllocator(0)
	r, err := batch_renderer.NewBatchRenderer(&lineSource{n: 20}, headless.Quad(), headless.NewSurface(), alloc,
		batch_renderer.WithMode(batch_renderer.ModeIndirect), batch_renderer.WithLogger(quiet))
	require.NoError(t, err)

	_, err = r.Render(camera.NewCamera())
	require.NoError(t, err)
	require.NotZero(t, alloc.Live())

	r.Dispose()
	r.Dispose()
	assert.Zero(t, alloc.Live())

	_, err = r.Render(camera.NewCamera())
	assert.ErrorIs(t, err, core.ErrRendererDisposed)
}
