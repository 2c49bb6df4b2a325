package terrain

import (
	"fmt"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/heightforge/pkg/errs"
)

// TileLoader produces tile height data on demand. Loaders may read from
// disk, decode elevation rasters or synthesize procedurally; the
// streamer does not care, it only caches the result.
type TileLoader interface {
	LoadTile(key TileKey) (*Tile, error)
}

// TileView is one tile the streamer considers visible this frame,
// together with its per-frame rendering decisions.
type TileView struct {
	Tile     *Tile
	Level    int     // tessellation level for this frame
	LODTier  int     // coarse LOD bucket from the configured thresholds
	Distance float32 // horizontal camera distance to the tile center
}

// Streamer drives tile residency from the camera position: it decides
// which tiles are in range, pulls them through the cache, and assigns
// each a tessellation level.
type Streamer struct {
	cfg    Config
	cache  *Cache
	loader TileLoader
	log    *zap.Logger

	spacing float32
}

// NewStreamer validates the configuration and builds a streamer. The
// cache is sized from cfg.Memory.MaxLoadedTiles.
func NewStreamer(cfg Config, loader TileLoader, log *zap.Logger) (*Streamer, error) {
	if issues := cfg.Validate(); len(issues) > 0 {
		return nil, fmt.Errorf("%w: config: %v", errs.ErrInvalidArgument, issues)
	}
	if loader == nil {
		return nil, fmt.Errorf("%w: nil tile loader", errs.ErrInvalidArgument)
	}
	if log == nil {
		log = zap.NewNop()
	}

	cache, err := NewCache(cfg.Memory.MaxLoadedTiles, LRUPolicy{})
	if err != nil {
		return nil, err
	}
	return &Streamer{
		cfg:     cfg,
		cache:   cache,
		loader:  loader,
		log:     log,
		spacing: 1,
	}, nil
}

// TileExtent returns the world-space edge length of one tile.
func (s *Streamer) TileExtent() float32 {
	return float32(s.cfg.TileSize-1) * s.spacing
}

// Update returns the tiles visible from the camera, loading any that
// are not resident. Tiles come back sorted by grid order with their
// tessellation level already decided; the caller turns them into meshes.
func (s *Streamer) Update(camera mgl32.Vec3) ([]TileView, error) {
	extent := s.TileExtent()
	radius := s.cfg.MaxRenderDistance

	cx := int32(gomath.Floor(float64(camera.X() / extent)))
	cy := int32(gomath.Floor(float64(camera.Z() / extent)))
	span := int32(gomath.Ceil(float64(radius/extent))) + 1

	var views []TileView
	for ty := cy - span; ty <= cy+span; ty++ {
		for tx := cx - span; tx <= cx+span; tx++ {
			centerX := (float32(tx) + 0.5) * extent
			centerZ := (float32(ty) + 0.5) * extent
			dx := camera.X() - centerX
			dz := camera.Z() - centerZ
			dist := float32(gomath.Sqrt(float64(dx*dx + dz*dz)))
			if dist > radius {
				continue
			}

			key := TileKey{X: tx, Y: ty}
			tile, err := s.tile(key)
			if err != nil {
				return nil, err
			}
			views = append(views, TileView{
				Tile:     tile,
				Level:    TessellationLevel(dist, s.cfg.Tessellation),
				LODTier:  LODForDistance(dist, s.cfg.LOD),
				Distance: dist,
			})
		}
	}
	return views, nil
}

// tile fetches from the cache or loads and inserts.
func (s *Streamer) tile(key TileKey) (*Tile, error) {
	if t, ok := s.cache.Get(key); ok {
		return t, nil
	}

	t, err := s.loader.LoadTile(key)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	if t.Size() != s.cfg.TileSize {
		return nil, fmt.Errorf("%w: %s loaded at size %d, configured %d",
			errs.ErrDataIntegrity, key, t.Size(), s.cfg.TileSize)
	}

	if victim, evicted := s.cache.Put(key, t); evicted {
		s.log.Debug("evicted tile",
			zap.String("victim", victim.String()),
			zap.String("loaded", key.String()))
	}
	return t, nil
}

// CacheStats exposes the underlying cache counters.
func (s *Streamer) CacheStats() CacheStats { return s.cache.Stats() }

// ResetCacheStats zeroes the cache counters.
func (s *Streamer) ResetCacheStats() { s.cache.ResetStats() }
