package material

import (
	"github.com/Carmen-Shannon/oxy-swarm/common"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/bind_group_provider"
)

// material is the implementation of the Material interface.
type material struct {
	name              string
	tint              [4]float32
	timeHue           float32
	texture           common.TextureStagingData
	sampler           bind_group_provider.SamplerStagingData
	instancing        bool
	bindGroupProvider bind_group_provider.BindGroupProvider
}

// Material defines the interface for a sprite material: the texture, sampler and tint a swarm
// is drawn with, plus the GPU resources the Renderer creates for them.
//
// Surface properties are set at construction and are read-only through this interface. The bind
// group provider is mutable so it can be attached once the Renderer has uploaded the texture.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Tint retrieves the RGBA multiplier applied to every texel.
	//
	// Returns:
	//   - [4]float32: the tint
	Tint() [4]float32

	// Texture retrieves the sprite texture pixels.
	//
	// Returns:
	//   - common.TextureStagingData: the texture data
	Texture() common.TextureStagingData

	// Sampler retrieves the sampler configuration used with the texture.
	//
	// Returns:
	//   - bind_group_provider.SamplerStagingData: the sampler configuration
	Sampler() bind_group_provider.SamplerStagingData

	// InstancingEnabled reports whether the material may be drawn with instanced draws.
	// The batch renderer refuses materials without instancing.
	//
	// Returns:
	//   - bool: true if instancing is enabled
	InstancingEnabled() bool

	// Params returns the uniform block uploaded for this material.
	//
	// Returns:
	//   - GPUMaterialParams: the uniform data
	Params() GPUMaterialParams

	// BindGroupProvider retrieves the bind group provider holding GPU-side resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the bind group provider, or nil if not yet initialized
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider sets the bind group provider for this material.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)
}

var _ Material = &material{}

// NewMaterial creates a new Material instance configured with the provided options.
// Instancing is enabled by default.
//
// Parameters:
//   - texture: the sprite texture
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: a new Material instance
func NewMaterial(texture common.TextureStagingData, options ...MaterialBuilderOption) Material {
	m := &material{
		name:       "sprite",
		tint:       [4]float32{1, 1, 1, 1},
		texture:    texture,
		instancing: true,
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Tint() [4]float32 {
	return m.tint
}

func (m *material) Texture() common.TextureStagingData {
	return m.texture
}

func (m *material) Sampler() bind_group_provider.SamplerStagingData {
	return m.sampler
}

func (m *material) InstancingEnabled() bool {
	return m.instancing
}

func (m *material) Params() GPUMaterialParams {
	return GPUMaterialParams{Tint: m.tint, TimeHue: m.timeHue}
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
}
