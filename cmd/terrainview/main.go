// Command terrainview renders a terrain height field to a PNG using the
// CPU rasterizer: pick a preset, stream the tiles around the camera,
// tessellate them by distance and draw.
package main

import (
	"errors"
	"fmt"
	"image/png"
	"os"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/heightforge/internal/config"
	"github.com/Faultbox/heightforge/internal/logger"
	"github.com/Faultbox/heightforge/pkg/buffer"
	"github.com/Faultbox/heightforge/pkg/camera"
	"github.com/Faultbox/heightforge/pkg/errs"
	"github.com/Faultbox/heightforge/pkg/heightfield"
	"github.com/Faultbox/heightforge/pkg/mesh"
	"github.com/Faultbox/heightforge/pkg/render"
	"github.com/Faultbox/heightforge/pkg/shader"
	"github.com/Faultbox/heightforge/pkg/terrain"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(cfg); err != nil {
		logger.Fatal("render failed", zap.Error(err))
	}
}

func run(cfg *config.Config) error {
	tcfg, err := terrain.FromPreset(cfg.Terrain.Preset)
	if err != nil {
		return err
	}
	logger.Info("terrain preset",
		zap.String("name", cfg.Terrain.Preset),
		zap.Int("tile_size", tcfg.TileSize),
		zap.String("tessellation", string(tcfg.Tessellation.Mode)))

	checkShaderToolchain(cfg.Shaders.CacheDir)

	loader, err := buildLoader(cfg, tcfg)
	if err != nil {
		return err
	}
	streamer, err := terrain.NewStreamer(tcfg, loader, logger.Log)
	if err != nil {
		return err
	}

	extent := streamer.TileExtent()
	cam := camera.NewOrbit(mgl32.Vec3{extent / 2, 0, extent / 2}, extent*1.2)
	cam.Rotate(0.6, 0.15)

	views, err := streamer.Update(cam.Position())
	if err != nil {
		return err
	}
	logger.Info("tiles streamed", zap.Int("visible", len(views)))

	meshes, err := buildMeshes(views, tcfg)
	if err != nil {
		return err
	}

	opts := render.Options{
		CullBackfaces: cfg.Renderer.CullBackfaces,
		SRGB:          cfg.Renderer.SRGB,
		Ambient:       cfg.Renderer.Ambient,
		PBR:           cfg.Renderer.PBR,
		Workers:       cfg.Renderer.Workers,
	}
	r := render.New(opts, logger.Log)
	if err := r.SetRenderTarget(cfg.Renderer.Width, cfg.Renderer.Height); err != nil {
		return err
	}
	defer r.Cleanup()

	view := cam.ViewMatrix()
	proj := camera.Perspective(55,
		float32(cfg.Renderer.Width)/float32(cfg.Renderer.Height),
		0.5, tcfg.MaxRenderDistance)

	material := render.Material{
		BaseColor: mgl32.Vec4{0.42, 0.55, 0.32, 1},
		Roughness: 0.9,
	}
	if err := r.Render(meshes, []render.Material{material},
		[]render.DirectionalLight{render.DefaultLight()}, view, proj); err != nil {
		return err
	}

	stats := streamer.CacheStats()
	logger.Info("tile cache",
		zap.Int("resident", stats.TileCount),
		zap.Int64("bytes", stats.MemoryBytes),
		zap.Uint64("hits", stats.Hits),
		zap.Uint64("misses", stats.Misses),
		zap.Float64("hit_rate", stats.HitRate))

	return writePNG(r, cfg.Output.Path)
}

// buildLoader picks the elevation source from the config.
func buildLoader(cfg *config.Config, tcfg terrain.Config) (terrain.TileLoader, error) {
	switch cfg.Terrain.Source {
	case "tiff":
		field, err := heightfield.LoadTIFFFile(cfg.Terrain.TIFF)
		if err != nil {
			return nil, err
		}
		field.ScaleToRange(cfg.Terrain.ElevMin, cfg.Terrain.ElevMax)
		logger.Info("elevation raster loaded",
			zap.String("path", cfg.Terrain.TIFF),
			zap.Int("width", field.Width),
			zap.Int("height", field.Height))
		return heightfield.NewFieldLoader(field, tcfg.TileSize)
	case "procedural":
		return heightfield.NewProceduralLoader(
			heightfield.DefaultProcedural(cfg.Terrain.Seed), tcfg.TileSize)
	}
	return nil, fmt.Errorf("%w: unknown terrain source %q", errs.ErrInvalidArgument, cfg.Terrain.Source)
}

// buildMeshes tessellates the visible tiles and stages their data
// through the buffer layer, the same path a GPU backend would take for
// uploads.
func buildMeshes(views []terrain.TileView, tcfg terrain.Config) ([]*mesh.Mesh, error) {
	device := buffer.NewHostDevice()
	var meshes []*mesh.Mesh

	for _, v := range views {
		m, err := terrain.GenerateTileMesh(v.Tile, v.Level, tcfg.HeightScale, 1)
		if err != nil {
			return nil, err
		}

		mb := buffer.NewMultiBuffer(device)
		if err := stage(mb, m); err != nil {
			return nil, err
		}
		logger.Debug("tile tessellated",
			zap.String("tile", v.Tile.Key.String()),
			zap.Int("level", v.Level),
			zap.Int("lod", v.LODTier),
			zap.Int("triangles", m.TriangleCount()))

		meshes = append(meshes, m)
	}
	logger.Info("geometry staged", zap.Int("device_bytes", device.UsedBytes()))
	return meshes, nil
}

func stage(mb *buffer.MultiBuffer, m *mesh.Mesh) error {
	if _, err := mb.AddVertexBuffer("position", m.Positions); err != nil {
		return err
	}
	if m.Normals != nil {
		if _, err := mb.AddVertexBuffer("normal", m.Normals); err != nil {
			return err
		}
	}
	if m.UVs != nil {
		if _, err := mb.AddVertexBuffer("uv", m.UVs); err != nil {
			return err
		}
	}
	if _, err := mb.AddIndexBuffer(m.Indices); err != nil {
		return err
	}
	return mb.SyncAll()
}

// checkShaderToolchain probes for the SPIR-V tools so a missing SDK
// surfaces at startup instead of mid-pipeline. The CPU path keeps
// working without it.
func checkShaderToolchain(cacheDir string) {
	if _, err := shader.NewCompiler(cacheDir, logger.Log); err != nil {
		if errors.Is(err, errs.ErrExternalToolUnavailable) {
			logger.Info("shader toolchain not found, CPU rasterizer only")
			return
		}
		logger.Warn("shader toolchain", zap.Error(err))
	}
}

func writePNG(r *render.Renderer, path string) error {
	img, err := r.Image()
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("encoding %s: %w", path, err)
	}
	logger.Info("image written", zap.String("path", path))
	return nil
}
