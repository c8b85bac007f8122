package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// SamplerStagingData holds the configuration for a sampler binding pending GPU creation.
// Zero fields fall back to the renderer's defaults.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV, AddressModeW specify the addressing mode outside the [0, 1] range.
	AddressModeU, AddressModeV, AddressModeW wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
	MipmapFilter         wgpu.MipmapFilterMode
	LodMinClamp          float32
	LodMaxClamp          float32
	MaxAnisotropy        uint16
}
