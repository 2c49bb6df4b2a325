// Package terrain provides terrain configuration, tessellation level
// selection, tile streaming and height-field mesh generation.
package terrain

import (
	"fmt"

	"github.com/Faultbox/heightforge/pkg/errs"
)

// TessellationMode selects how per-tile subdivision levels are chosen.
type TessellationMode string

const (
	// TessellationDisabled applies no amplification; tiles render at the
	// minimum level.
	TessellationDisabled TessellationMode = "disabled"
	// TessellationUniform applies the base level everywhere.
	TessellationUniform TessellationMode = "uniform"
	// TessellationDistanceBased interpolates between the maximum and
	// minimum levels by camera distance.
	TessellationDistanceBased TessellationMode = "distance_based"
)

// TessellationConfig bounds the subdivision level decision.
type TessellationConfig struct {
	Mode            TessellationMode `yaml:"mode"`
	BaseLevel       int              `yaml:"base_level"`
	MinLevel        int              `yaml:"min_level"`
	MaxLevel        int              `yaml:"max_level"`
	NearDistance    float32          `yaml:"near_distance"`
	FarDistance     float32          `yaml:"far_distance"`
	FalloffExponent float32          `yaml:"falloff_exponent"`
}

// LODConfig holds level-of-detail selection thresholds.
type LODConfig struct {
	// Distances are ascending range thresholds; the LOD tier for a tile is
	// the index of the first threshold beyond its camera distance.
	Distances            []float32 `yaml:"distances"`
	ScreenErrorThreshold float32   `yaml:"screen_error_threshold"`
	EnableMorphing       bool      `yaml:"enable_morphing"`
}

// MemoryConfig bounds the streaming cache.
type MemoryConfig struct {
	MaxTileCacheMB int     `yaml:"max_tile_cache_mb"`
	MaxLoadedTiles int     `yaml:"max_loaded_tiles"`
	PreloadRadius  float32 `yaml:"preload_radius"`
	UnloadDistance float32 `yaml:"unload_distance"`
}

// PerformanceConfig holds tuning hints for the rendering backend.
type PerformanceConfig struct {
	TargetFPS int `yaml:"target_fps"`
	// WorkerThreads is a hint for backends that parallelize per tile or
	// per band; the core renderer honors it for band rasterization.
	WorkerThreads int `yaml:"worker_threads"`
}

// Config is the complete terrain rendering configuration. It is treated
// as immutable once Validate returns no issues.
type Config struct {
	TileSize          int     `yaml:"tile_size"` // samples per tile edge, power of two
	HeightScale       float32 `yaml:"height_scale"`
	MaxRenderDistance float32 `yaml:"max_render_distance"`

	Tessellation TessellationConfig `yaml:"tessellation"`
	LOD          LODConfig          `yaml:"lod"`
	Memory       MemoryConfig       `yaml:"memory"`
	Performance  PerformanceConfig  `yaml:"performance"`
}

// Preset names accepted by FromPreset.
const (
	PresetHighPerformance = "high_performance"
	PresetBalanced        = "balanced"
	PresetHighQuality     = "high_quality"
	PresetMobile          = "mobile"
)

// Default returns the balanced configuration.
func Default() Config {
	return Config{
		TileSize:          256,
		HeightScale:       1.0,
		MaxRenderDistance: 10000,
		Tessellation: TessellationConfig{
			Mode:            TessellationDistanceBased,
			BaseLevel:       8,
			MinLevel:        1,
			MaxLevel:        32,
			NearDistance:    100,
			FarDistance:     5000,
			FalloffExponent: 1.5,
		},
		LOD: LODConfig{
			Distances:            []float32{500, 1000, 2500, 5000},
			ScreenErrorThreshold: 2.0,
			EnableMorphing:       true,
		},
		Memory: MemoryConfig{
			MaxTileCacheMB: 512,
			MaxLoadedTiles: 256,
			PreloadRadius:  2000,
			UnloadDistance: 5000,
		},
		Performance: PerformanceConfig{
			TargetFPS:     60,
			WorkerThreads: 4,
		},
	}
}

// FromPreset returns a fully populated, valid configuration for one of
// the named presets. Presets are total overrides, not layered deltas.
func FromPreset(name string) (Config, error) {
	switch name {
	case PresetHighPerformance:
		cfg := Default()
		cfg.Tessellation.BaseLevel = 4
		cfg.Tessellation.MaxLevel = 16
		cfg.Tessellation.FarDistance = 2000
		cfg.LOD.Distances = []float32{200, 500, 1000, 2000}
		cfg.LOD.EnableMorphing = false
		cfg.Memory.MaxTileCacheMB = 256
		cfg.Memory.MaxLoadedTiles = 128
		cfg.Performance.TargetFPS = 144
		return cfg, nil

	case PresetBalanced:
		return Default(), nil

	case PresetHighQuality:
		cfg := Default()
		cfg.Tessellation.BaseLevel = 16
		cfg.Tessellation.MaxLevel = 64
		cfg.Tessellation.NearDistance = 200
		cfg.Tessellation.FarDistance = 8000
		cfg.Tessellation.FalloffExponent = 2.0
		cfg.LOD.Distances = []float32{1000, 2000, 4000, 8000}
		cfg.Memory.MaxTileCacheMB = 1024
		cfg.Memory.MaxLoadedTiles = 512
		return cfg, nil

	case PresetMobile:
		cfg := Default()
		cfg.Tessellation.Mode = TessellationUniform
		cfg.Tessellation.BaseLevel = 2
		cfg.Tessellation.MaxLevel = 8
		cfg.Tessellation.NearDistance = 50
		cfg.Tessellation.FarDistance = 1000
		cfg.Tessellation.FalloffExponent = 1.0
		cfg.LOD.Distances = []float32{100, 250, 500, 1000}
		cfg.LOD.EnableMorphing = false
		cfg.Memory.MaxTileCacheMB = 64
		cfg.Memory.MaxLoadedTiles = 32
		cfg.Performance.TargetFPS = 30
		cfg.Performance.WorkerThreads = 2
		return cfg, nil
	}
	return Config{}, fmt.Errorf("%w: unknown preset %q (want %s|%s|%s|%s)",
		errs.ErrInvalidArgument, name,
		PresetHighPerformance, PresetBalanced, PresetHighQuality, PresetMobile)
}

// Validate returns every violated invariant. It never stops at the first
// problem so callers can report all of them at once; an empty slice means
// the configuration is usable.
func (c Config) Validate() []string {
	var issues []string

	if c.TileSize <= 0 {
		issues = append(issues, fmt.Sprintf("tile_size (%d) must be positive", c.TileSize))
	} else if c.TileSize&(c.TileSize-1) != 0 {
		issues = append(issues, fmt.Sprintf("tile_size (%d) must be a power of two", c.TileSize))
	}
	if c.HeightScale < 0 {
		issues = append(issues, fmt.Sprintf("height_scale (%g) must not be negative", c.HeightScale))
	}
	if c.MaxRenderDistance <= 0 {
		issues = append(issues, fmt.Sprintf("max_render_distance (%g) must be positive", c.MaxRenderDistance))
	}

	t := c.Tessellation
	switch t.Mode {
	case TessellationDisabled, TessellationUniform, TessellationDistanceBased:
	default:
		issues = append(issues, fmt.Sprintf("tessellation mode %q is not recognized", t.Mode))
	}
	if t.MinLevel < 1 {
		issues = append(issues, fmt.Sprintf("tessellation min_level (%d) must be at least 1", t.MinLevel))
	}
	if t.MaxLevel < 1 {
		issues = append(issues, fmt.Sprintf("tessellation max_level (%d) must be at least 1", t.MaxLevel))
	}
	if t.MinLevel > t.BaseLevel || t.BaseLevel > t.MaxLevel {
		issues = append(issues, fmt.Sprintf("tessellation levels must satisfy min (%d) <= base (%d) <= max (%d)",
			t.MinLevel, t.BaseLevel, t.MaxLevel))
	}
	if t.NearDistance >= t.FarDistance {
		issues = append(issues, fmt.Sprintf("tessellation near_distance (%g) must be less than far_distance (%g)",
			t.NearDistance, t.FarDistance))
	}
	if t.FalloffExponent <= 0 {
		issues = append(issues, fmt.Sprintf("tessellation falloff_exponent (%g) must be positive", t.FalloffExponent))
	}

	for i := 1; i < len(c.LOD.Distances); i++ {
		if c.LOD.Distances[i-1] >= c.LOD.Distances[i] {
			issues = append(issues, "lod distances must be sorted strictly ascending")
			break
		}
	}
	if len(c.LOD.Distances) > 0 && c.LOD.Distances[0] <= 0 {
		issues = append(issues, "lod distances must be positive")
	}
	if c.LOD.ScreenErrorThreshold <= 0 {
		issues = append(issues, fmt.Sprintf("lod screen_error_threshold (%g) must be positive", c.LOD.ScreenErrorThreshold))
	}

	if c.Memory.MaxTileCacheMB <= 0 {
		issues = append(issues, fmt.Sprintf("memory max_tile_cache_mb (%d) must be positive", c.Memory.MaxTileCacheMB))
	}
	if c.Memory.MaxLoadedTiles <= 0 {
		issues = append(issues, fmt.Sprintf("memory max_loaded_tiles (%d) must be positive", c.Memory.MaxLoadedTiles))
	}

	if c.Performance.TargetFPS <= 0 {
		issues = append(issues, fmt.Sprintf("performance target_fps (%d) must be positive", c.Performance.TargetFPS))
	}
	if c.Performance.WorkerThreads < 1 {
		issues = append(issues, fmt.Sprintf("performance worker_threads (%d) must be at least 1", c.Performance.WorkerThreads))
	}

	return issues
}
