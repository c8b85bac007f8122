package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/batch_renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-swarm/engine/sprite"
	"github.com/Carmen-Shannon/oxy-swarm/engine/window"
	"github.com/charmbracelet/log"
	"github.com/cogentcore/webgpu/wgpu"
)

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu     *sync.Mutex
	logger *log.Logger

	pipelineCache map[string]pipeline.Pipeline
	surfaces      []*spriteSurface

	backendType RendererBackendType
	backend     RendererBackend
	alloc       *gpuAllocator

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
	clearColor           wgpu.Color
}

// Renderer defines the interface for the rendering system.
//
// This is a high-level API over the backend that owns the pipeline cache and every sprite surface.
// A frame is driven as BeginFrame, any number of batch renderer passes against surfaces created by
// NewSpriteSurface, EndFrame and Present.
type Renderer interface {
	// Pipeline retrieves the cached Pipeline associated with the given key.
	// If the Pipeline does not exist, this will return nil.
	//
	// Parameters:
	//   - key: the unique identifier for the Pipeline to retrieve
	//
	// Returns:
	//   - pipeline.Pipeline: the Pipeline associated with the key, or nil if not found
	Pipeline(key string) pipeline.Pipeline

	// RegisterPipelines creates the GPU pipeline objects for one or more pipelines via the backend,
	// then caches them by PipelineKey. Pipelines whose keys are already registered are skipped.
	//
	// Parameters:
	//   - pipelines: the Pipelines to register
	//
	// Returns:
	//   - error: an error if pipeline creation fails
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize configures the underlying backend to handle a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. A call to Resize is required for it to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// Allocator returns a buffer_pool.Allocator whose buffers live on this renderer's device.
	// Batch renderers drawing to a surface of this renderer must allocate through it.
	//
	// Returns:
	//   - buffer_pool.Allocator: the device allocator
	Allocator() buffer_pool.Allocator

	// InitMeshBuffers creates GPU vertex and index buffers from raw byte data and stores them
	// on the given BindGroupProvider for later use in draw calls.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created buffers on
	//   - vertexData: the raw vertex data bytes to upload to the GPU
	//   - indexData: the raw index data bytes to upload to the GPU
	//   - indexCount: the number of indices, used for draw calls
	//
	// Returns:
	//   - error: an error if buffer creation fails
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitTextureView creates a GPU texture from staging data and stores the resulting texture view
	// on the given BindGroupProvider at the specified binding index.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created texture view on
	//   - bindingKey: the binding index for this texture
	//   - stagingData: the pixel data and dimensions for the texture
	//
	// Returns:
	//   - error: an error if texture creation fails
	InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error

	// InitSampler creates a GPU sampler from staging data and stores it on the given BindGroupProvider
	// at the specified binding index.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the created sampler on
	//   - bindingKey: the binding index for this sampler
	//   - samplerStagingData: the sampler configuration
	//
	// Returns:
	//   - error: an error if sampler creation fails
	InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData bind_group_provider.SamplerStagingData) error

	// NewSpriteSurface registers the sprite pipelines for both submission modes, uploads the sprite
	// mesh and the material, and returns a batch_renderer.Surface that draws them.
	//
	// Parameters:
	//   - label: the debug label of the surface and its pools
	//   - s: the sprite drawn once per instance
	//   - m: the material the sprite is shaded with
	//   - batchSize: the batch size of the batch renderer drawing to the surface
	//   - retainSlack: free direct path buffers kept beyond last frame's demand
	//
	// Returns:
	//   - batch_renderer.Surface: the surface
	//   - error: a pipeline, upload or allocation error
	NewSpriteSurface(label string, s sprite.Sprite, m material.Material, batchSize, retainSlack int) (batch_renderer.Surface, error)

	// BeginFrame acquires the swapchain texture, begins the main render pass, and resets every
	// sprite surface for the new frame.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface; call Present() after EndFrame to display the frame.
	//
	// Returns:
	//   - int: the number of draws issued during the frame
	//   - error: an error if the command buffer could not be finished
	EndFrame() (int, error)

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()

	// Release frees every surface, pipeline and device resource owned by the renderer.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type, presenting to w.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - w: the window providing the surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, w window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:            &sync.Mutex{},
		pipelineCache: make(map[string]pipeline.Pipeline),
		backendType:   backendType,
		clearColor:    wgpu.Color{R: 0.05, G: 0.05, B: 0.08, A: 1.0},
	}

	// Options carry adapter config, so they apply before the backend is created.
	for _, opt := range options {
		opt(r)
	}
	if r.logger == nil {
		r.logger = core.Logger()
	}

	msaa := MSAA4x
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(w.SurfaceDescriptor(), r.forceFallbackAdapter, msaa, r.clearColor)
	}
	r.alloc = newGPUAllocator(r.backend)

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(w.Width(), w.Height())
	r.logger.Info("renderer ready", "width", w.Width(), "height", w.Height(), "msaa", uint32(msaa), "fallback", r.forceFallbackAdapter)
	return r
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelineCache[key]
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range pipelines {
		key := p.PipelineKey()
		if _, exists := r.pipelineCache[key]; exists {
			continue
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("failed to register pipeline %q: %w", key, err)
		}
		r.pipelineCache[key] = p
	}
	return nil
}

func (r *renderer) Allocator() buffer_pool.Allocator {
	return r.alloc
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitTextureView(provider bind_group_provider.BindGroupProvider, bindingKey int, stagingData common.TextureStagingData) error {
	return r.backend.InitTextureView(provider, bindingKey, stagingData)
}

func (r *renderer) InitSampler(provider bind_group_provider.BindGroupProvider, bindingKey int, samplerStagingData bind_group_provider.SamplerStagingData) error {
	return r.backend.InitSampler(provider, bindingKey, samplerStagingData)
}

// spritePipelines returns the registered sprite pipeline of every mode, creating them on first use.
func (r *renderer) spritePipelines(batchSize int) (map[batch_renderer.Mode]pipeline.Pipeline, error) {
	out := make(map[batch_renderer.Mode]pipeline.Pipeline, 2)
	for _, mode := range []batch_renderer.Mode{batch_renderer.ModeDirect, batch_renderer.ModeIndirect} {
		if p := r.Pipeline(PipelineKey(mode, batchSize)); p != nil {
			out[mode] = p
			continue
		}
		p, err := NewSpritePipeline(mode, batchSize)
		if err != nil {
			return nil, err
		}
		if err := r.RegisterPipelines(p); err != nil {
			return nil, err
		}
		out[mode] = p
	}
	return out, nil
}

// uploadMaterial creates the material's texture, sampler and params uniform and its group 1 bind group.
func (r *renderer) uploadMaterial(m material.Material, layout *wgpu.BindGroupLayout) error {
	if m.BindGroupProvider() != nil {
		return nil
	}
	provider := bind_group_provider.NewBindGroupProvider(m.Name())
	if err := r.InitTextureView(provider, 0, m.Texture()); err != nil {
		return err
	}
	if err := r.InitSampler(provider, 1, m.Sampler()); err != nil {
		return err
	}

	params := m.Params()
	buf, err := r.backend.CreateBuffer(m.Name()+" Params", uint64(params.Size()), wgpu.BufferUsageUniform|wgpu.BufferUsageCopyDst)
	if err != nil {
		return err
	}
	provider.SetBuffer(2, buf)
	if err := r.backend.WriteBuffer(buf, 0, params.Marshal()); err != nil {
		return err
	}

	bg, err := r.backend.CreateBindGroup(m.Name(), layout, []wgpu.BindGroupEntry{
		{Binding: 0, TextureView: provider.TextureView(0)},
		{Binding: 1, Sampler: provider.Sampler(1)},
		{Binding: 2, Buffer: buf, Offset: 0, Size: wgpu.WholeSize},
	})
	if err != nil {
		return err
	}
	provider.SetBindGroup(bg)
	m.SetBindGroupProvider(provider)
	return nil
}

func (r *renderer) NewSpriteSurface(label string, s sprite.Sprite, m material.Material, batchSize, retainSlack int) (batch_renderer.Surface, error) {
	if !m.InstancingEnabled() {
		return nil, fmt.Errorf("material %q: %w", m.Name(), core.ErrInstancingDisabled)
	}
	pipelines, err := r.spritePipelines(batchSize)
	if err != nil {
		return nil, err
	}

	if err := r.uploadMaterial(m, pipelines[batch_renderer.ModeDirect].BindGroupLayout(groupMaterial)); err != nil {
		return nil, fmt.Errorf("failed to upload material %q: %w", m.Name(), err)
	}
	mesh := bind_group_provider.NewBindGroupProvider(s.Name())
	if err := r.InitMeshBuffers(mesh, s.VertexData(), s.IndexData(), s.IndexCount()); err != nil {
		return nil, fmt.Errorf("failed to upload sprite %q: %w", s.Name(), err)
	}

	surface, err := newSpriteSurface(label, r.backend, r.alloc, pipelines, mesh, m, batchSize, retainSlack, r.logger)
	if err != nil {
		mesh.Release()
		return nil, err
	}

	r.mu.Lock()
	r.surfaces = append(r.surfaces, surface)
	r.mu.Unlock()
	r.logger.Debug("sprite surface created", "label", label, "sprite", s.Name(), "material", m.Name(), "batchSize", batchSize)
	return surface, nil
}

func (r *renderer) BeginFrame() error {
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	r.mu.Lock()
	surfaces := append([]*spriteSurface(nil), r.surfaces...)
	r.mu.Unlock()
	for _, s := range surfaces {
		s.beginFrame()
	}
	return nil
}

func (r *renderer) EndFrame() (int, error) {
	r.mu.Lock()
	draws := 0
	for _, s := range r.surfaces {
		draws += s.drawCount()
	}
	r.mu.Unlock()
	return draws, r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	surfaces := r.surfaces
	r.surfaces = nil
	r.mu.Unlock()

	for _, s := range surfaces {
		s.mesh.Release()
		s.release()
		if mp := s.material.BindGroupProvider(); mp != nil {
			mp.Release()
			s.material.SetBindGroupProvider(nil)
		}
	}
	r.backend.Release()
	r.logger.Debug("renderer released")
}
