package batch_renderer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func runs(n, size int) []int {
	var out []int
	for b := range Batches(n, size) {
		out = append(out, b.Run)
	}
	return out
}

func TestBatches(t *testing.T) {
	tests := []struct {
		name    string
		n, size int
		want    []int
	}{
		{"empty", 0, 7, nil},
		{"negative", -3, 7, nil},
		{"smaller than batch", 3, 7, []int{3}},
		{"exact multiple", 14, 7, []int{7, 7}},
		{"short tail", 16, 7, []int{7, 7, 2}},
		{"single instance batches", 3, 1, []int{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, runs(tt.n, tt.size))
			assert.Equal(t, len(tt.want), BatchCount(tt.n, tt.size))
		})
	}
}

func TestBatchesCoverEveryInstanceOnce(t *testing.T) {
	for size := 1; size <= 9; size++ {
		for n := 0; n <= 60; n++ {
			next, total, count := 0, 0, 0
			for b := range Batches(n, size) {
				assert.Equal(t, count, b.Index)
				assert.Equal(t, next, b.Start)
				assert.True(t, b.Run > 0 && b.Run <= size)
				next += b.Run
				total += b.Run
				count++
			}
			assert.Equal(t, n, total, "n=%d size=%d", n, size)
			assert.Equal(t, (n+size-1)/size, count, "n=%d size=%d", n, size)
		}
	}
}

func TestBatchesStopsEarly(t *testing.T) {
	seen := 0
	for b := range Batches(100, 7) {
		seen++
		if b.Index == 2 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}

func TestIndirectArgsMarshal(t *testing.T) {
	a := IndirectArgs{IndexCount: 6, InstanceCount: 2}
	buf := a.Marshal()
	assert.Len(t, buf, 20)
	assert.Equal(t, []byte{6, 0, 0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0}, buf)

	back, err := UnmarshalIndirectArgs(buf)
	assert.NoError(t, err)
	assert.Equal(t, a, back)

	_, err = UnmarshalIndirectArgs(buf[:12])
	assert.Error(t, err)
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("indirect")
	assert.NoError(t, err)
	assert.Equal(t, ModeIndirect, m)
	assert.Equal(t, "indirect", m.String())

	_, err = ParseMode("procedural")
	assert.Error(t, err)
}
