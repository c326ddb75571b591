package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/mirage/engine/math"
)

// Config is the renderer configuration, loaded from a TOML file.
type Config struct {
	// LogLevel is one of "debug", "info", "warn", "error".
	LogLevel string `toml:"log_level"`

	Shaders  ShadersConfig  `toml:"shaders"`
	Renderer RendererConfig `toml:"renderer"`
	Shadows  ShadowsConfig  `toml:"shadows"`
}

type ShadersConfig struct {
	// Directory holds the ".vert"/".frag" pairs.
	Directory string `toml:"directory"`
	HotReload bool   `toml:"hot_reload"`
}

type RendererConfig struct {
	DepthPrepass bool       `toml:"depth_prepass"`
	ClearColor   [4]float32 `toml:"clear_color"`
}

type ShadowsConfig struct {
	MapSize int        `toml:"map_size"`
	Bounds  [3]float32 `toml:"bounds"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Shaders: ShadersConfig{
			Directory: "assets/shaders",
		},
		Renderer: RendererConfig{
			ClearColor: [4]float32{0.1, 0.1, 0.15, 1.0},
		},
		Shadows: ShadowsConfig{
			MapSize: 1024,
			Bounds:  [3]float32{50, 50, 50},
		},
	}
}

// Load reads a TOML config file. Missing keys keep their defaults.
func Load(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config '%s': %w", path, err)
	}
	if err := toml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("failed to parse config '%s': %w", path, err)
	}
	return c, nil
}

// ClearColorVec returns the clear color as a vector.
func (c *Config) ClearColorVec() math.Vec4 {
	col := c.Renderer.ClearColor
	return math.NewVec4Create(col[0], col[1], col[2], col[3])
}

// ShadowBoundsVec returns the shadow camera extents as a vector.
func (c *Config) ShadowBoundsVec() math.Vec3 {
	b := c.Shadows.Bounds
	return math.NewVec3Create(b[0], b[1], b[2])
}
