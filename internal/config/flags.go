package config

import "flag"

var (
	flagConfig  = flag.String("config", "", "Path to config file")
	flagDebug   = flag.Bool("debug", false, "Enable debug logging")
	flagPreset  = flag.String("preset", "", "Terrain preset (high_performance|balanced|high_quality|mobile)")
	flagTIFF    = flag.String("tiff", "", "Elevation raster to render instead of procedural terrain")
	flagSeed    = flag.Int64("seed", 0, "Procedural terrain seed")
	flagWidth   = flag.Int("width", 0, "Output image width")
	flagHeight  = flag.Int("height", 0, "Output image height")
	flagWorkers = flag.Int("workers", 0, "Rasterizer worker count")
	flagOut     = flag.String("out", "", "Output image path")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagPreset != "" {
		cfg.Terrain.Preset = *flagPreset
	}
	if *flagTIFF != "" {
		cfg.Terrain.Source = "tiff"
		cfg.Terrain.TIFF = *flagTIFF
	}
	if *flagSeed != 0 {
		cfg.Terrain.Seed = *flagSeed
	}
	if *flagWidth > 0 {
		cfg.Renderer.Width = *flagWidth
	}
	if *flagHeight > 0 {
		cfg.Renderer.Height = *flagHeight
	}
	if *flagWorkers > 0 {
		cfg.Renderer.Workers = *flagWorkers
	}
	if *flagOut != "" {
		cfg.Output.Path = *flagOut
	}
}
