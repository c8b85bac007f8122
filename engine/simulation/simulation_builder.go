package simulation

import "github.com/charmbracelet/log"

// SimulationBuilderOption is a functional option used to configure a Simulation during construction.
type SimulationBuilderOption func(*simulation)

// WithSeed sets the seed of the spawn generator.
//
// Parameters:
//   - seed: the generator seed
//
// Returns:
//   - SimulationBuilderOption: a function that sets the seed
func WithSeed(seed int64) SimulationBuilderOption {
	return func(s *simulation) {
		s.seed = seed
	}
}

// WithSpawnRanges overrides the intervals new objects are spawned from.
//
// Parameters:
//   - ranges: the spawn intervals
//
// Returns:
//   - SimulationBuilderOption: a function that sets the spawn ranges
func WithSpawnRanges(ranges SpawnRanges) SimulationBuilderOption {
	return func(s *simulation) {
		s.spawn = ranges
	}
}

// WithWorkers sets the number of workers Step fans out to for large populations.
// Values below 2 keep integration on the calling goroutine.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - SimulationBuilderOption: a function that sets the worker count
func WithWorkers(n int) SimulationBuilderOption {
	return func(s *simulation) {
		s.workers = max(n, 1)
	}
}

func WithLogger(l *log.Logger) SimulationBuilderOption {
	return func(s *simulation) {
		s.logger = l
	}
}
