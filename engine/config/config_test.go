package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 7, cfg.Swarm.BatchSize)
	assert.Equal(t, 8, cfg.Swarm.Strides.Position)
	assert.Equal(t, 8, cfg.Swarm.Strides.Direction)
	assert.Equal(t, 4, cfg.Swarm.Strides.Time)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	for _, ext := range []string{".toml", ".yaml", ".yml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "swarm"+ext)
			cfg := DefaultConfig()
			cfg.Swarm.InstanceCount = 4096
			cfg.Swarm.Mode = "indirect"
			cfg.Swarm.Seed = 99

			require.NoError(t, Save(path, cfg))
			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, cfg, loaded)
		})
	}
}

func TestLoadKeepsDefaultsForMissingFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.toml")
	require.NoError(t, os.WriteFile(path, []byte("[swarm]\ninstance_count = 16\n"), 0644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 16, cfg.Swarm.InstanceCount)
	assert.Equal(t, DefaultBatchSize, cfg.Swarm.BatchSize)
	assert.Equal(t, DefaultLayerName, cfg.Swarm.LayerName)
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.json")
	require.NoError(t, os.WriteFile(path, []byte("{}"), 0644))

	_, err := Load(path)
	require.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   error
	}{
		{"zero batch size", func(c *Config) { c.Swarm.BatchSize = 0 }, core.ErrInvalidBatchSize},
		{"negative instances", func(c *Config) { c.Swarm.InstanceCount = -1 }, core.ErrInvalidConfig},
		{"zero stride", func(c *Config) { c.Swarm.Strides.Time = 0 }, core.ErrInvalidBufferShape},
		{"unknown mode", func(c *Config) { c.Swarm.Mode = "compute" }, core.ErrInvalidConfig},
		{"empty layer", func(c *Config) { c.Swarm.LayerName = "" }, core.ErrInvalidConfig},
		{"no workers", func(c *Config) { c.Swarm.Workers = 0 }, core.ErrInvalidConfig},
		{"zero window", func(c *Config) { c.Window.Width = 0 }, core.ErrInvalidConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.want)
		})
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swarm.yaml")
	require.NoError(t, Save(path, DefaultConfig()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan *Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c *Config) { changes <- c })
	}()

	// Writes are retried until the watcher has registered the directory.
	next := DefaultConfig()
	next.Swarm.InstanceCount = 77
	var got *Config
	require.Eventually(t, func() bool {
		if err := Save(path, next); err != nil {
			return false
		}
		select {
		case got = <-changes:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, 77, got.Swarm.InstanceCount)

	cancel()
	require.NoError(t, <-done)
}
