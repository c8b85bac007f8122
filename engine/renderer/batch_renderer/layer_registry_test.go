package batch_renderer

import (
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLayerRegistryDefaults(t *testing.T) {
	r, err := NewLayerRegistry()
	require.NoError(t, err)

	for i, name := range DefaultLayers {
		idx, err := r.Resolve(name)
		require.NoError(t, err)
		assert.Equal(t, i, idx)

		got, ok := r.Name(i)
		assert.True(t, ok)
		assert.Equal(t, name, got)
	}
	assert.Equal(t, DefaultLayers, r.Names())
}

func TestLayerRegistryExtra(t *testing.T) {
	r, err := NewLayerRegistry("Swarm")
	require.NoError(t, err)

	idx, err := r.Resolve("Swarm")
	require.NoError(t, err)
	assert.Equal(t, len(DefaultLayers), idx)

	next, err := r.Register("Particles")
	require.NoError(t, err)
	assert.Equal(t, idx+1, next)
}

func TestLayerRegistryUnknown(t *testing.T) {
	r, err := NewLayerRegistry()
	require.NoError(t, err)

	_, err = r.Resolve("Nope")
	assert.ErrorIs(t, err, core.ErrUnknownLayer)

	_, ok := r.Name(-1)
	assert.False(t, ok)
	_, ok = r.Name(len(DefaultLayers))
	assert.False(t, ok)
}

func TestLayerRegistryInvalid(t *testing.T) {
	tests := []struct {
		name  string
		extra []string
	}{
		{name: "duplicate default", extra: []string{"Default"}},
		{name: "duplicate extra", extra: []string{"A", "A"}},
		{name: "empty", extra: []string{""}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewLayerRegistry(tt.extra...)
			assert.ErrorIs(t, err, core.ErrInvalidConfig)
		})
	}
}

func TestLayerRegistryCapacity(t *testing.T) {
	r, err := NewLayerRegistry()
	require.NoError(t, err)
	for i := len(DefaultLayers); i < MaxLayers; i++ {
		_, err := r.Register(fmt.Sprintf("layer-%d", i))
		require.NoError(t, err)
	}
	_, err = r.Register("one-too-many")
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}
