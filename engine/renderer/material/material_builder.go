package material

import (
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/bind_group_provider"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithTint is an option builder that sets the RGBA multiplier of the material.
//
// Parameters:
//   - tint: the tint as RGBA float32 values
//
// Returns:
//   - MaterialBuilderOption: a function that applies the tint option to a material
func WithTint(tint [4]float32) MaterialBuilderOption {
	return func(m *material) {
		m.tint = tint
	}
}

// WithTimeHue is an option builder that sets how strongly instance lifetime shifts the hue.
//
// Parameters:
//   - strength: 0 disables the shift, 1 applies it fully
//
// Returns:
//   - MaterialBuilderOption: a function that applies the hue option to a material
func WithTimeHue(strength float32) MaterialBuilderOption {
	return func(m *material) {
		m.timeHue = strength
	}
}

// WithSampler is an option builder that sets the sampler configuration of the material.
//
// Parameters:
//   - sampler: the sampler staging data
//
// Returns:
//   - MaterialBuilderOption: a function that applies the sampler option to a material
func WithSampler(sampler bind_group_provider.SamplerStagingData) MaterialBuilderOption {
	return func(m *material) {
		m.sampler = sampler
	}
}

// WithInstancing is an option builder that enables or disables instanced drawing.
//
// Parameters:
//   - enabled: whether instancing is enabled
//
// Returns:
//   - MaterialBuilderOption: a function that applies the instancing option to a material
func WithInstancing(enabled bool) MaterialBuilderOption {
	return func(m *material) {
		m.instancing = enabled
	}
}
