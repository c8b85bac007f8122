package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/batch_renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/pipeline"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// spriteSurface draws a batch_renderer pass with the sprite pipelines.
type spriteSurface struct {
	mu      *sync.Mutex
	logger  *log.Logger
	label   string
	backend wgpuRendererBackend
	alloc   *gpuAllocator

	pipelines map[batch_renderer.Mode]pipeline.Pipeline
	mesh      bind_group_provider.BindGroupProvider
	material  material.Material
	camera    bind_group_provider.BindGroupProvider

	// Direct path staging, flushed at the start of every frame.
	transformPool buffer_pool.BufferPool
	posDirPool    buffer_pool.BufferPool
	timePool      buffer_pool.BufferPool
	retainSlack   int

	// instanceGroups caches group 2 bind groups per mode by the buffers they bind.
	instanceGroups map[instanceKey]*wgpu.BindGroup

	cameraWritten bool
	draws         int
}

type instanceKey struct {
	mode    batch_renderer.Mode
	buffers [3]*wgpu.Buffer
}

var _ batch_renderer.Surface = &spriteSurface{}

func newSpriteSurface(label string, backend wgpuRendererBackend, alloc *gpuAllocator, pipelines map[batch_renderer.Mode]pipeline.Pipeline,
	mesh bind_group_provider.BindGroupProvider, mat material.Material, batchSize, retainSlack int, logger *log.Logger) (*spriteSurface, error) {
	s := &spriteSurface{
		mu:             &sync.Mutex{},
		logger:         logger,
		label:          label,
		backend:        backend,
		alloc:          alloc,
		pipelines:      pipelines,
		mesh:           mesh,
		material:       mat,
		retainSlack:    retainSlack,
		instanceGroups: make(map[instanceKey]*wgpu.BindGroup),
	}

	var err error
	poolOpt := buffer_pool.WithLogger(logger)
	if s.transformPool, err = buffer_pool.NewBufferPool(alloc, batchSize, common.SizeOf[[16]float32](), buffer_pool.BufferKindConstant,
		buffer_pool.WithLabel(label+"-transforms"), poolOpt); err != nil {
		return nil, err
	}
	if s.posDirPool, err = buffer_pool.NewBufferPool(alloc, batchSize, common.SizeOf[[4]float32](), buffer_pool.BufferKindConstant,
		buffer_pool.WithLabel(label+"-posdir"), poolOpt); err != nil {
		return nil, err
	}
	if s.timePool, err = buffer_pool.NewBufferPool(alloc, batchSize, common.SizeOf[float32](), buffer_pool.BufferKindStructured,
		buffer_pool.WithLabel(label+"-times"), poolOpt); err != nil {
		return nil, err
	}

	var uniform camera.GPUCameraUniform
	camBuf, err := backend.CreateBuffer(label+" Camera Uniform", uint64(uniform.Size()), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	s.camera = bind_group_provider.NewBindGroupProvider(label+"-camera", bind_group_provider.WithBuffer(0, camBuf))
	camGroup, err := backend.CreateBindGroup(label+" Camera", s.anyPipeline().BindGroupLayout(groupCamera), []wgpu.BindGroupEntry{
		{Binding: 0, Buffer: camBuf, Offset: 0, Size: wgpu.WholeSize},
	})
	if err != nil {
		return nil, err
	}
	s.camera.SetBindGroup(camGroup)

	alloc.observeRelease(s.evict)
	return s, nil
}

func (s *spriteSurface) anyPipeline() pipeline.Pipeline {
	if p, ok := s.pipelines[batch_renderer.ModeDirect]; ok {
		return p
	}
	return s.pipelines[batch_renderer.ModeIndirect]
}

// beginFrame returns the direct path buffers to their pools and marks the camera for upload.
// Trim releases buffers, which re-enters evict, so the pools are maintained outside s.mu.
func (s *spriteSurface) beginFrame() {
	keep := s.transformPool.Stats().Active + s.retainSlack
	for _, p := range []buffer_pool.BufferPool{s.transformPool, s.posDirPool, s.timePool} {
		p.Flush()
		p.Trim(keep)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.cameraWritten = false
	s.draws = 0
}

// drawCount returns the number of draws issued since the last beginFrame.
func (s *spriteSurface) drawCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.draws
}

// evict drops every cached bind group that references a released buffer.
func (s *spriteSurface) evict(buf *wgpu.Buffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, bg := range s.instanceGroups {
		for _, b := range k.buffers {
			if b == buf {
				bg.Release()
				delete(s.instanceGroups, k)
				break
			}
		}
	}
}

func (s *spriteSurface) writeCamera(cam camera.Camera) error {
	if s.cameraWritten || cam == nil {
		return nil
	}
	uniform := cam.Uniform()
	if err := s.backend.WriteBuffer(s.camera.Buffer(0), 0, uniform.Marshal()); err != nil {
		return err
	}
	s.cameraWritten = true
	return nil
}

func (s *spriteSurface) instanceGroup(mode batch_renderer.Mode, p pipeline.Pipeline, bufs [3]*wgpu.Buffer) (*wgpu.BindGroup, error) {
	key := instanceKey{mode: mode, buffers: bufs}
	if bg, ok := s.instanceGroups[key]; ok {
		return bg, nil
	}
	entries := make([]wgpu.BindGroupEntry, len(bufs))
	for i, b := range bufs {
		entries[i] = wgpu.BindGroupEntry{Binding: uint32(i), Buffer: b, Offset: 0, Size: wgpu.WholeSize}
	}
	bg, err := s.backend.CreateBindGroup(fmt.Sprintf("%s %v instances", s.label, mode), p.BindGroupLayout(groupInstances), entries)
	if err != nil {
		return nil, err
	}
	s.instanceGroups[key] = bg
	return bg, nil
}

func (s *spriteSurface) bindGroups(instances *wgpu.BindGroup) []*wgpu.BindGroup {
	return []*wgpu.BindGroup{s.camera.BindGroup(), s.material.BindGroupProvider().BindGroup(), instances}
}

func (s *spriteSurface) pipelineFor(mode batch_renderer.Mode) (pipeline.Pipeline, error) {
	p, ok := s.pipelines[mode]
	if !ok || p.RenderPipeline() == nil {
		return nil, fmt.Errorf("%s: no registered pipeline for %v submission", s.label, mode)
	}
	return p, nil
}

func handleOf(buf buffer_pool.Buffer) (*wgpu.Buffer, error) {
	gb, ok := buf.(*gpuBuffer)
	if !ok || gb == nil {
		return nil, fmt.Errorf("buffer %T was not allocated on this device", buf)
	}
	return gb.Handle(), nil
}

func (s *spriteSurface) DrawInstanced(info batch_renderer.RenderInfo, transforms [][16]float32, count int, props *batch_renderer.PropertyBlock, params batch_renderer.DrawParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.pipelineFor(batch_renderer.ModeDirect)
	if err != nil {
		return err
	}
	if err := s.writeCamera(params.Camera); err != nil {
		return err
	}

	transformBuf, err := s.transformPool.Rent()
	if err != nil {
		return err
	}
	if err := buffer_pool.WriteElements(transformBuf, transforms[:count]); err != nil {
		return err
	}
	posDirBuf, err := s.posDirPool.Rent()
	if err != nil {
		return err
	}
	if err := buffer_pool.WriteElements(posDirBuf, props.VectorArray(batch_renderer.PropertyPosDir)); err != nil {
		return err
	}
	timeBuf, err := s.timePool.Rent()
	if err != nil {
		return err
	}
	if err := buffer_pool.WriteElements(timeBuf, props.FloatArray(batch_renderer.PropertyTime)); err != nil {
		return err
	}

	var bufs [3]*wgpu.Buffer
	for i, b := range []buffer_pool.Buffer{transformBuf, posDirBuf, timeBuf} {
		if bufs[i], err = handleOf(b); err != nil {
			return err
		}
	}
	instances, err := s.instanceGroup(batch_renderer.ModeDirect, p, bufs)
	if err != nil {
		return err
	}

	s.draws++
	return s.backend.DrawCall(p, s.mesh, uint32(count), s.bindGroups(instances))
}

func (s *spriteSurface) DrawInstancedIndirect(info batch_renderer.RenderInfo, args buffer_pool.Buffer, offset int, props *batch_renderer.PropertyBlock, params batch_renderer.DrawParams) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.pipelineFor(batch_renderer.ModeIndirect)
	if err != nil {
		return err
	}
	if err := s.writeCamera(params.Camera); err != nil {
		return err
	}

	var bufs [3]*wgpu.Buffer
	for i, name := range []string{batch_renderer.PropertyPosition, batch_renderer.PropertyDirection, batch_renderer.PropertyTime} {
		if bufs[i], err = handleOf(props.Buffer(name)); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	argsHandle, err := handleOf(args)
	if err != nil {
		return fmt.Errorf("indirect args: %w", err)
	}
	instances, err := s.instanceGroup(batch_renderer.ModeIndirect, p, bufs)
	if err != nil {
		return err
	}

	s.draws++
	return s.backend.DrawCallIndirect(p, s.mesh, argsHandle, uint64(offset), s.bindGroups(instances))
}

// release frees the direct path pools, the camera uniform and every cached bind group.
func (s *spriteSurface) release() {
	for _, p := range []buffer_pool.BufferPool{s.transformPool, s.posDirPool, s.timePool} {
		p.Dispose()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, bg := range s.instanceGroups {
		bg.Release()
		delete(s.instanceGroups, k)
	}
	s.camera.Release()
}
