package batch_renderer

import "github.com/Carmen-Shannon/oxy-swarm/common"

// scratch is the per-renderer arena the current batch is staged in. Every array holds exactly
// batchSize elements and is reused for every batch of every pass; only the first run entries are
// meaningful after fill.
type scratch struct {
	positions  [][2]float32
	directions [][2]float32
	posDir     [][4]float32
	times      []float32
	transforms [][16]float32
	ease       func(lifetime float32) float32
}

func newScratch(batchSize int, ease func(float32) float32) *scratch {
	return &scratch{
		positions:  make([][2]float32, batchSize),
		directions: make([][2]float32, batchSize),
		posDir:     make([][4]float32, batchSize),
		times:      make([]float32, batchSize),
		transforms: make([][16]float32, batchSize),
		ease:       ease,
	}
}

// fill stages instances [start, start+run) of src.
func (s *scratch) fill(src InstanceSource, start, run int) {
	for i := 0; i < run; i++ {
		pos, dir, t := src.InstanceAt(start + i)
		s.positions[i] = pos
		s.directions[i] = dir
		s.posDir[i] = [4]float32{pos[0], pos[1], dir[0], dir[1]}
		s.times[i] = t
		common.SpriteMatrix(&s.transforms[i], pos, dir, s.ease(t))
	}
}
