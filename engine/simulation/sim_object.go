package simulation

import (
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-swarm/common"
)

// SimObject is the kinematic state of one swarm member.
type SimObject struct {
	// Position is the world-space position.
	Position [2]float32
	// Velocity is the position change per second.
	Velocity [2]float32
	// Rotation is the facing angle in radians.
	Rotation float32
	// RotationRate is the rotation change per second.
	RotationRate float32
	// Scale is the uniform size of the object before easing.
	Scale float32
	// Time is the object's lifetime in seconds. It drives the ease-in of its visual scale.
	Time float32
}

// Direction returns the scaled facing vector (cos(Rotation)*Scale, sin(Rotation)*Scale).
func (o *SimObject) Direction() [2]float32 {
	return common.Direction2D(o.Rotation, o.Scale)
}

// Range is a half-open interval [Min, Max) sampled uniformly.
type Range struct {
	Min float32
	Max float32
}

func (r Range) sample(rng *rand.Rand) float32 {
	return r.Min + rng.Float32()*(r.Max-r.Min)
}

// SpawnRanges are the intervals new objects draw their initial state from.
type SpawnRanges struct {
	PositionX    Range
	PositionY    Range
	Velocity     Range
	Rotation     Range
	RotationRate Range
	Scale        Range
	Time         Range
}

// DefaultSpawnRanges returns a 10x8 unit spawn area with slow drift, slow spin and staggered lifetimes.
func DefaultSpawnRanges() SpawnRanges {
	return SpawnRanges{
		PositionX:    Range{-5, 5},
		PositionY:    Range{-4, 4},
		Velocity:     Range{-0.2, 0.2},
		Rotation:     Range{0, 1},
		RotationRate: Range{-0.2, 0.4},
		Scale:        Range{0.6, 1.4},
		Time:         Range{0, 6},
	}
}

func (s SpawnRanges) spawn(rng *rand.Rand) SimObject {
	return SimObject{
		Position:     [2]float32{s.PositionX.sample(rng), s.PositionY.sample(rng)},
		Velocity:     [2]float32{s.Velocity.sample(rng), s.Velocity.sample(rng)},
		Rotation:     s.Rotation.sample(rng),
		RotationRate: s.RotationRate.sample(rng),
		Scale:        s.Scale.sample(rng),
		Time:         s.Time.sample(rng),
	}
}

// EaseDuration is the lifetime in seconds over which an object grows to full scale.
const EaseDuration = 10

// Ease maps an object's lifetime to its visual scale multiplier: 0 at birth, 1 from EaseDuration on.
//
// Parameters:
//   - lifetime: the object lifetime in seconds
//
// Returns:
//   - float32: smoothstep(0, EaseDuration, lifetime)
func Ease(lifetime float32) float32 {
	return common.Smoothstep(0, EaseDuration, lifetime)
}
