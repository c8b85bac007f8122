package simulation

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/charmbracelet/log"
)

// parallelChunk is the number of objects integrated by one worker task.
const parallelChunk = 2048

// simulation is the unexported implementation of Simulation.
type simulation struct {
	objects []SimObject
	rng     *rand.Rand
	seed    int64
	spawn   SpawnRanges
	logger  *log.Logger

	// workers is the number of goroutines Step fans out to. 1 integrates on the caller.
	workers int
	pool    worker.DynamicWorkerPool
}

// Simulation owns a population of SimObjects and advances them in time.
// All objects are independent; Step updates each one in place exactly once.
type Simulation interface {
	// Step advances every object by dt seconds: position += velocity*dt, rotation += rate*dt and
	// lifetime += dt. A negative or NaN dt is ignored.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Step(dt float32)

	// Objects returns the live object slice. The slice is owned by the simulation and is only
	// valid until the next Step or Resize.
	//
	// Returns:
	//   - []SimObject: the objects
	Objects() []SimObject

	// Count returns the number of objects.
	//
	// Returns:
	//   - int: the object count
	Count() int

	// InstanceAt returns the render state of object i.
	//
	// Parameters:
	//   - i: the object index, 0 <= i < Count()
	//
	// Returns:
	//   - [2]float32: the position
	//   - [2]float32: the scaled facing vector
	//   - float32: the lifetime
	InstanceAt(i int) (pos, dir [2]float32, lifetime float32)

	// Resize grows the population with newly spawned objects or truncates it to n.
	//
	// Parameters:
	//   - n: the new object count, negative values are treated as 0
	Resize(n int)

	// Seed returns the seed the spawn generator was created with.
	//
	// Returns:
	//   - int64: the seed
	Seed() int64
}

var _ Simulation = &simulation{}

// NewSimulation creates a simulation with count objects spawned from a seeded generator.
// Two simulations with equal seed, ranges and count start in the same state.
//
// Parameters:
//   - count: the initial number of objects
//   - options: functional options applied before spawning
//
// Returns:
//   - Simulation: the new simulation
func NewSimulation(count int, options ...SimulationBuilderOption) Simulation {
	s := &simulation{
		seed:    1,
		spawn:   DefaultSpawnRanges(),
		workers: 1,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.logger == nil {
		s.logger = core.Logger()
	}
	s.rng = rand.New(rand.NewPCG(uint64(s.seed), uint64(s.seed)^0x9e3779b97f4a7c15))
	if s.workers > 1 {
		s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)
	}
	s.Resize(count)
	return s
}

func (s *simulation) Step(dt float32) {
	if !(dt >= 0) {
		return
	}

	if s.pool == nil || len(s.objects) < 2*parallelChunk {
		integrate(s.objects, dt)
		return
	}

	// Chunks cover disjoint ranges; the WaitGroup is the per-step barrier.
	var wg sync.WaitGroup
	id := 0
	for start := 0; start < len(s.objects); start += parallelChunk {
		chunk := s.objects[start:min(start+parallelChunk, len(s.objects))]
		wg.Add(1)
		s.pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				integrate(chunk, dt)
				return nil, nil
			},
		})
		id++
	}
	wg.Wait()
}

func integrate(objects []SimObject, dt float32) {
	for i := range objects {
		o := &objects[i]
		o.Position[0] += o.Velocity[0] * dt
		o.Position[1] += o.Velocity[1] * dt
		o.Rotation += o.RotationRate * dt
		o.Time += dt
	}
}

func (s *simulation) Objects() []SimObject {
	return s.objects
}

func (s *simulation) Count() int {
	return len(s.objects)
}

func (s *simulation) InstanceAt(i int) (pos, dir [2]float32, lifetime float32) {
	o := &s.objects[i]
	return o.Position, o.Direction(), o.Time
}

func (s *simulation) Resize(n int) {
	n = max(n, 0)
	prev := len(s.objects)
	switch {
	case n < prev:
		s.objects = s.objects[:n]
	case n > prev:
		s.objects = append(s.objects, make([]SimObject, n-prev)...)
		for i := prev; i < n; i++ {
			s.objects[i] = s.spawn.spawn(s.rng)
		}
	default:
		return
	}
	s.logger.Debug("resized simulation", "from", prev, "to", n)
}

func (s *simulation) Seed() int64 {
	return s.seed
}
