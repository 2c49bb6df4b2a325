// Package config handles application configuration loading and
// management for the terrain viewer.
package config

// Config holds all terrain viewer settings.
type Config struct {
	Renderer RendererConfig `yaml:"renderer"`
	Terrain  TerrainConfig  `yaml:"terrain"`
	Shaders  ShaderConfig   `yaml:"shaders"`
	Output   OutputConfig   `yaml:"output"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// RendererConfig holds framebuffer and rasterizer settings.
type RendererConfig struct {
	Width         int     `yaml:"width"`
	Height        int     `yaml:"height"`
	Workers       int     `yaml:"workers"`
	SRGB          bool    `yaml:"srgb"`
	CullBackfaces bool    `yaml:"cull_backfaces"`
	Ambient       float32 `yaml:"ambient"`
	PBR           bool    `yaml:"pbr"`
}

// TerrainConfig selects the terrain preset and elevation source.
type TerrainConfig struct {
	Preset string `yaml:"preset"` // high_performance|balanced|high_quality|mobile
	Source string `yaml:"source"` // "procedural" or "tiff"
	Seed   int64  `yaml:"seed"`   // procedural source only
	TIFF   string `yaml:"tiff"`   // elevation raster path, tiff source only

	// Elevation range the raster is remapped to, in world units.
	ElevMin float32 `yaml:"elev_min"`
	ElevMax float32 `yaml:"elev_max"`
}

// ShaderConfig holds shader toolchain settings.
type ShaderConfig struct {
	CacheDir string `yaml:"cache_dir"`
}

// OutputConfig holds image output settings.
type OutputConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Renderer: RendererConfig{
			Width:         1280,
			Height:        720,
			Workers:       4,
			SRGB:          true,
			CullBackfaces: true,
			Ambient:       0.3,
			PBR:           false,
		},
		Terrain: TerrainConfig{
			Preset:  "balanced",
			Source:  "procedural",
			Seed:    1,
			ElevMin: 0,
			ElevMax: 120,
		},
		Shaders: ShaderConfig{
			CacheDir: "",
		},
		Output: OutputConfig{
			Path: "terrain.png",
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
