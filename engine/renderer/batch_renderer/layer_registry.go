package batch_renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
)

// MaxLayers is the number of layer slots a registry can hold.
const MaxLayers = 32

// DefaultLayers are the layers every registry starts with, at their slice index.
var DefaultLayers = []string{"Default", "Background", "Foreground", "Overlay"}

// LayerRegistry maps layer names to the layer indices handed to a Surface with every draw.
type LayerRegistry struct {
	mu      *sync.Mutex
	indices map[string]int
	names   []string
}

// NewLayerRegistry creates a registry holding DefaultLayers followed by extra.
//
// Parameters:
//   - extra: additional layer names, assigned the next free indices in order
//
// Returns:
//   - *LayerRegistry: the registry
//   - error: a duplicate or empty name, or more than MaxLayers layers, wrapping core.ErrInvalidConfig
func NewLayerRegistry(extra ...string) (*LayerRegistry, error) {
	r := &LayerRegistry{mu: &sync.Mutex{}, indices: make(map[string]int)}
	for _, name := range append(append([]string(nil), DefaultLayers...), extra...) {
		if _, err := r.Register(name); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register adds a layer and returns its index.
func (r *LayerRegistry) Register(name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return 0, fmt.Errorf("empty layer name: %w", core.ErrInvalidConfig)
	}
	if _, ok := r.indices[name]; ok {
		return 0, fmt.Errorf("layer %q already registered: %w", name, core.ErrInvalidConfig)
	}
	if len(r.names) >= MaxLayers {
		return 0, fmt.Errorf("layer %q exceeds %d layers: %w", name, MaxLayers, core.ErrInvalidConfig)
	}
	idx := len(r.names)
	r.indices[name] = idx
	r.names = append(r.names, name)
	return idx, nil
}

// Resolve returns the index of a registered layer.
//
// Parameters:
//   - name: the layer name
//
// Returns:
//   - int: the layer index
//   - error: core.ErrUnknownLayer if name was never registered
func (r *LayerRegistry) Resolve(name string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	idx, ok := r.indices[name]
	if !ok {
		return 0, fmt.Errorf("layer %q: %w", name, core.ErrUnknownLayer)
	}
	return idx, nil
}

// Name returns the name registered at idx.
func (r *LayerRegistry) Name(idx int) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if idx < 0 || idx >= len(r.names) {
		return "", false
	}
	return r.names[idx], true
}

// Names returns every registered name in index order.
func (r *LayerRegistry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.names...)
}
