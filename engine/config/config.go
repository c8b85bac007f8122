package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-swarm/engine/core"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const (
	DefaultInstanceCount   = 1000
	DefaultBatchSize       = 7
	DefaultPositionStride  = 8
	DefaultDirectionStride = 8
	DefaultTimeStride      = 4
	DefaultLayerName       = "Default"
	DefaultMode            = "direct"
	DefaultSeed            = 1
	DefaultRetainSlack     = 8
	DefaultTickRate        = 60
)

// Config is the full runtime configuration of a swarm run. It round-trips through both TOML and YAML.
type Config struct {
	Swarm  SwarmConfig  `toml:"swarm" yaml:"swarm"`
	Window WindowConfig `toml:"window" yaml:"window"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

// SwarmConfig holds the simulation and batching parameters.
type SwarmConfig struct {
	InstanceCount int           `toml:"instance_count" yaml:"instance_count"`
	BatchSize     int           `toml:"batch_size" yaml:"batch_size"`
	Strides       StridesConfig `toml:"strides" yaml:"strides"`
	LayerName     string        `toml:"layer_name" yaml:"layer_name"`
	// Mode selects the submission strategy: "direct" or "indirect".
	Mode        string  `toml:"mode" yaml:"mode"`
	Seed        int64   `toml:"seed" yaml:"seed"`
	Workers     int     `toml:"workers" yaml:"workers"`
	RetainSlack int     `toml:"retain_slack" yaml:"retain_slack"`
	TickRate    float64 `toml:"tick_rate" yaml:"tick_rate"`
	// SpritePath is an optional image; empty uses the built-in disc sprite.
	SpritePath    string  `toml:"sprite_path" yaml:"sprite_path"`
	PixelsPerUnit float32 `toml:"pixels_per_unit" yaml:"pixels_per_unit"`
}

// StridesConfig holds the per-channel element strides in bytes.
type StridesConfig struct {
	Position  int `toml:"position" yaml:"position"`
	Direction int `toml:"direction" yaml:"direction"`
	Time      int `toml:"time" yaml:"time"`
}

type WindowConfig struct {
	Title  string `toml:"title" yaml:"title"`
	Width  int    `toml:"width" yaml:"width"`
	Height int    `toml:"height" yaml:"height"`
	VSync  bool   `toml:"vsync" yaml:"vsync"`
	// FrameCap limits rendered frames per second; 0 renders uncapped.
	FrameCap float64 `toml:"frame_cap" yaml:"frame_cap"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

// DefaultConfig returns a configuration matching the reference swarm setup.
func DefaultConfig() *Config {
	return &Config{
		Swarm: SwarmConfig{
			InstanceCount: DefaultInstanceCount,
			BatchSize:     DefaultBatchSize,
			Strides: StridesConfig{
				Position:  DefaultPositionStride,
				Direction: DefaultDirectionStride,
				Time:      DefaultTimeStride,
			},
			LayerName:     DefaultLayerName,
			Mode:          DefaultMode,
			Seed:          DefaultSeed,
			Workers:       1,
			RetainSlack:   DefaultRetainSlack,
			TickRate:      DefaultTickRate,
			PixelsPerUnit: 100,
		},
		Window: WindowConfig{
			Title:  "oxy-swarm",
			Width:  1280,
			Height: 720,
			VSync:  true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads a configuration file, choosing the codec from the file extension (.toml, .yaml, .yml).
// Fields absent from the file keep their default values. The result is validated before returning.
//
// Parameters:
//   - path: the configuration file path
//
// Returns:
//   - *Config: the loaded configuration
//   - error: read, decode or validation failure
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		err = toml.Unmarshal(data, cfg)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		return nil, fmt.Errorf("unsupported config extension %q: %w", ext, core.ErrInvalidConfig)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration to path, choosing the codec from the file extension.
func Save(path string, cfg *Config) error {
	data, err := Marshal(cfg, filepath.Ext(path))
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal encodes the configuration as TOML (".toml") or YAML (".yaml", ".yml").
func Marshal(cfg *Config, ext string) ([]byte, error) {
	switch strings.ToLower(ext) {
	case ".toml", "toml":
		return toml.Marshal(cfg)
	case ".yaml", ".yml", "yaml", "yml":
		return yaml.Marshal(cfg)
	default:
		return nil, fmt.Errorf("unsupported config extension %q: %w", ext, core.ErrInvalidConfig)
	}
}

// Validate checks every field that would otherwise surface as a setup failure later on.
// All returned errors wrap core.ErrInvalidConfig or a more specific configuration sentinel.
func (c *Config) Validate() error {
	s := c.Swarm
	if s.InstanceCount < 0 {
		return fmt.Errorf("instance_count %d is negative: %w", s.InstanceCount, core.ErrInvalidConfig)
	}
	if s.BatchSize <= 0 {
		return fmt.Errorf("batch_size %d: %w", s.BatchSize, core.ErrInvalidBatchSize)
	}
	if s.Strides.Position <= 0 || s.Strides.Direction <= 0 || s.Strides.Time <= 0 {
		return fmt.Errorf("strides %+v: %w", s.Strides, core.ErrInvalidBufferShape)
	}
	if s.LayerName == "" {
		return fmt.Errorf("layer_name is empty: %w", core.ErrInvalidConfig)
	}
	switch s.Mode {
	case "direct", "indirect":
	default:
		return fmt.Errorf("mode %q must be direct or indirect: %w", s.Mode, core.ErrInvalidConfig)
	}
	if s.Workers < 1 {
		return fmt.Errorf("workers %d must be at least 1: %w", s.Workers, core.ErrInvalidConfig)
	}
	if s.TickRate <= 0 {
		return fmt.Errorf("tick_rate %v must be positive: %w", s.TickRate, core.ErrInvalidConfig)
	}
	if s.PixelsPerUnit <= 0 {
		return fmt.Errorf("pixels_per_unit %v must be positive: %w", s.PixelsPerUnit, core.ErrInvalidConfig)
	}
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return fmt.Errorf("window size %dx%d: %w", c.Window.Width, c.Window.Height, core.ErrInvalidConfig)
	}
	if c.Window.FrameCap < 0 {
		return fmt.Errorf("frame_cap %v is negative: %w", c.Window.FrameCap, core.ErrInvalidConfig)
	}
	return nil
}
