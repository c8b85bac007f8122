package main

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-swarm/engine/renderer/buffer_pool"
	"github.com/stretchr/testify/assert"
)

func TestPercentile(t *testing.T) {
	tests := []struct {
		name    string
		samples []float64
		q       float64
		want    float64
	}{
		{name: "empty", samples: nil, q: 0.99, want: 0},
		{name: "single", samples: []float64{4}, q: 0.5, want: 4},
		{name: "median", samples: []float64{5, 1, 3, 2, 4}, q: 0.5, want: 3},
		{name: "p99 of hundred", samples: seq(100), q: 0.99, want: 99},
		{name: "zero quantile", samples: []float64{2, 1}, q: 0, want: 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, percentile(tt.samples, tt.q))
		})
	}
}

func seq(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i + 1)
	}
	return out
}

func TestRenderReport(t *testing.T) {
	plotHeight = 4
	out := renderReport(1000, "indirect", benchResult{
		Frames:    3,
		Failed:    1,
		Instances: 3000,
		BatchSize: 7,
		Draws:     429,
		Total:     3 * time.Millisecond,
		PassMs:    []float64{1, 1.5, 0.5},
		Pools: map[string]buffer_pool.PoolStats{
			"bench.args": {Allocated: 143, Free: 143},
		},
	})

	assert.Contains(t, out, "oxy-swarm bench")
	assert.Contains(t, out, "indirect")
	assert.Contains(t, out, "143.0/frame")
	assert.Contains(t, out, "failed frames")
	assert.Contains(t, out, "bench.args")
	assert.Contains(t, out, "frame time (ms)")
}
