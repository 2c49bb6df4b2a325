package terrain

import (
	"fmt"
	"time"

	"github.com/Faultbox/heightforge/pkg/errs"
)

// TileKey identifies a terrain tile by grid coordinates and LOD tier.
type TileKey struct {
	X, Y int32
	LOD  int32
}

func (k TileKey) String() string {
	return fmt.Sprintf("tile(%d,%d)@lod%d", k.X, k.Y, k.LOD)
}

// Tile is one square patch of elevation samples. Height data is row
// major, size×size float32 samples.
type Tile struct {
	Key      TileKey
	Heights  []float32
	LoadedAt time.Time

	size int
}

// NewTile wraps height samples into a tile. The sample count must match
// size squared.
func NewTile(key TileKey, heights []float32, size int) (*Tile, error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: tile size %d must be positive", errs.ErrInvalidArgument, size)
	}
	if len(heights) != size*size {
		return nil, fmt.Errorf("%w: %s has %d samples, want %d",
			errs.ErrDataIntegrity, key, len(heights), size*size)
	}
	return &Tile{
		Key:      key,
		Heights:  heights,
		LoadedAt: time.Now(),
		size:     size,
	}, nil
}

// Size returns the samples per tile edge.
func (t *Tile) Size() int { return t.size }

// HeightAt returns the raw sample at integer grid coordinates, clamped
// to the tile edges.
func (t *Tile) HeightAt(x, y int) float32 {
	x = clampInt(x, 0, t.size-1)
	y = clampInt(y, 0, t.size-1)
	return t.Heights[y*t.size+x]
}

// SampleBilinear interpolates the height at fractional grid coordinates
// in [0, size-1].
func (t *Tile) SampleBilinear(x, y float32) float32 {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	max := float32(t.size - 1)
	if x > max {
		x = max
	}
	if y > max {
		y = max
	}

	x0, y0 := int(x), int(y)
	x1, y1 := clampInt(x0+1, 0, t.size-1), clampInt(y0+1, 0, t.size-1)
	fx, fy := x-float32(x0), y-float32(y0)

	h00 := t.Heights[y0*t.size+x0]
	h10 := t.Heights[y0*t.size+x1]
	h01 := t.Heights[y1*t.size+x0]
	h11 := t.Heights[y1*t.size+x1]

	top := h00 + (h10-h00)*fx
	bot := h01 + (h11-h01)*fx
	return top + (bot-top)*fy
}

// MemoryBytes returns the host footprint of the height samples.
func (t *Tile) MemoryBytes() int64 {
	return int64(t.size) * int64(t.size) * 4
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
