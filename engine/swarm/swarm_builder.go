package swarm

import (
	"github.com/Carmen-Shannon/oxy-swarm/engine/camera"
	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/batch_renderer"
	"github.com/Carmen-Shannon/oxy-swarm/engine/simulation"
	"github.com/charmbracelet/log"
)

// SwarmBuilderOption is a functional option applied to a swarm during construction via NewSwarm.
type SwarmBuilderOption func(*swarm)

// WithLabel sets the label used for logging and as the batch renderer pool prefix.
//
// Parameters:
//   - label: the label
//
// Returns:
//   - SwarmBuilderOption: a function that applies the label
func WithLabel(label string) SwarmBuilderOption {
	return func(s *swarm) {
		s.label = label
	}
}

// WithCamera sets the camera handed to every draw. Defaults to camera.NewCamera().
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SwarmBuilderOption: a function that applies the camera
func WithCamera(cam camera.Camera) SwarmBuilderOption {
	return func(s *swarm) {
		s.cam = cam
	}
}

// WithLayerRegistry sets the registry the configured layer name is resolved against.
// Defaults to a registry holding batch_renderer.DefaultLayers.
//
// Parameters:
//   - layers: the registry
//
// Returns:
//   - SwarmBuilderOption: a function that applies the registry
func WithLayerRegistry(layers *batch_renderer.LayerRegistry) SwarmBuilderOption {
	return func(s *swarm) {
		s.layers = layers
	}
}

// WithSpawnRanges overrides the ranges new objects are sampled from.
func WithSpawnRanges(ranges simulation.SpawnRanges) SwarmBuilderOption {
	return func(s *swarm) {
		s.spawn = &ranges
	}
}

func WithLogger(l *log.Logger) SwarmBuilderOption {
	return func(s *swarm) {
		s.logger = l
	}
}
