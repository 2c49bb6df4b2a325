package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Renderer.Width != 1280 {
		t.Errorf("expected width 1280, got %d", cfg.Renderer.Width)
	}
	if cfg.Renderer.Height != 720 {
		t.Errorf("expected height 720, got %d", cfg.Renderer.Height)
	}
	if !cfg.Renderer.CullBackfaces {
		t.Error("expected backface culling on by default")
	}
	if !cfg.Renderer.SRGB {
		t.Error("expected srgb output by default")
	}

	if cfg.Terrain.Preset != "balanced" {
		t.Errorf("expected preset 'balanced', got %s", cfg.Terrain.Preset)
	}
	if cfg.Terrain.Source != "procedural" {
		t.Errorf("expected source 'procedural', got %s", cfg.Terrain.Source)
	}

	if cfg.Output.Path != "terrain.png" {
		t.Errorf("expected output terrain.png, got %s", cfg.Output.Path)
	}

	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
renderer:
  width: 1920
  height: 1080
  workers: 8
  srgb: false
  cull_backfaces: false
  ambient: 0.2

terrain:
  preset: "high_quality"
  source: "tiff"
  tiff: "alps.tif"
  elev_min: 500
  elev_max: 4800

output:
  path: "alps.png"

logging:
  level: "debug"
  log_file: "render.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Renderer.Width != 1920 {
		t.Errorf("expected width 1920, got %d", cfg.Renderer.Width)
	}
	if cfg.Renderer.Workers != 8 {
		t.Errorf("expected workers 8, got %d", cfg.Renderer.Workers)
	}
	if cfg.Renderer.SRGB {
		t.Error("expected srgb to be false")
	}
	if cfg.Renderer.Ambient != 0.2 {
		t.Errorf("expected ambient 0.2, got %f", cfg.Renderer.Ambient)
	}

	if cfg.Terrain.Preset != "high_quality" {
		t.Errorf("expected preset 'high_quality', got %s", cfg.Terrain.Preset)
	}
	if cfg.Terrain.Source != "tiff" || cfg.Terrain.TIFF != "alps.tif" {
		t.Errorf("expected tiff source alps.tif, got %s/%s", cfg.Terrain.Source, cfg.Terrain.TIFF)
	}
	if cfg.Terrain.ElevMax != 4800 {
		t.Errorf("expected elev_max 4800, got %f", cfg.Terrain.ElevMax)
	}

	if cfg.Output.Path != "alps.png" {
		t.Errorf("expected output alps.png, got %s", cfg.Output.Path)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
renderer:
  width: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/config.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name:  "preset flag",
			setup: func() { *flagPreset = "mobile" },
			verify: func(cfg *Config) {
				if cfg.Terrain.Preset != "mobile" {
					t.Errorf("expected preset 'mobile', got %s", cfg.Terrain.Preset)
				}
			},
			teardown: func() { *flagPreset = "" },
		},
		{
			name:  "tiff flag switches source",
			setup: func() { *flagTIFF = "dem.tif" },
			verify: func(cfg *Config) {
				if cfg.Terrain.Source != "tiff" || cfg.Terrain.TIFF != "dem.tif" {
					t.Errorf("expected tiff source dem.tif, got %s/%s", cfg.Terrain.Source, cfg.Terrain.TIFF)
				}
			},
			teardown: func() { *flagTIFF = "" },
		},
		{
			name: "dimension flags",
			setup: func() {
				*flagWidth = 2560
				*flagHeight = 1440
			},
			verify: func(cfg *Config) {
				if cfg.Renderer.Width != 2560 || cfg.Renderer.Height != 1440 {
					t.Errorf("expected 2560x1440, got %dx%d", cfg.Renderer.Width, cfg.Renderer.Height)
				}
			},
			teardown: func() {
				*flagWidth = 0
				*flagHeight = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)
			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
renderer:
  width: 1600
  height: 900
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	*flagWidth = 1920
	defer func() {
		*flagConfig = ""
		*flagWidth = 0
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Width comes from the flag, height from the file.
	if cfg.Renderer.Width != 1920 {
		t.Errorf("expected width 1920 from flag, got %d", cfg.Renderer.Width)
	}
	if cfg.Renderer.Height != 900 {
		t.Errorf("expected height 900 from file, got %d", cfg.Renderer.Height)
	}
}
