package heightfield

import (
	"fmt"

	"github.com/Faultbox/heightforge/pkg/errs"
	"github.com/Faultbox/heightforge/pkg/terrain"
)

// FieldLoader serves terrain tiles by windowing into one resident
// field. Adjacent tiles share their border row and column so tile
// meshes line up without cracks; coordinates outside the field clamp to
// its edges.
type FieldLoader struct {
	field    *Field
	tileSize int
}

// NewFieldLoader wraps a field as a tile source.
func NewFieldLoader(field *Field, tileSize int) (*FieldLoader, error) {
	if field == nil {
		return nil, fmt.Errorf("%w: nil field", errs.ErrInvalidArgument)
	}
	if tileSize < 2 {
		return nil, fmt.Errorf("%w: tile size %d must be at least 2", errs.ErrInvalidArgument, tileSize)
	}
	return &FieldLoader{field: field, tileSize: tileSize}, nil
}

// LoadTile extracts the tile's window from the field.
func (l *FieldLoader) LoadTile(key terrain.TileKey) (*terrain.Tile, error) {
	n := l.tileSize
	heights := make([]float32, n*n)
	baseX := int(key.X) * (n - 1)
	baseY := int(key.Y) * (n - 1)

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			heights[y*n+x] = l.field.At(baseX+x, baseY+y)
		}
	}
	return terrain.NewTile(key, heights, n)
}

// ProceduralLoader serves terrain tiles straight from a noise field,
// with no extent limit.
type ProceduralLoader struct {
	noise    Procedural
	tileSize int
}

// NewProceduralLoader wraps a noise source as a tile source.
func NewProceduralLoader(noise Procedural, tileSize int) (*ProceduralLoader, error) {
	if tileSize < 2 {
		return nil, fmt.Errorf("%w: tile size %d must be at least 2", errs.ErrInvalidArgument, tileSize)
	}
	return &ProceduralLoader{noise: noise, tileSize: tileSize}, nil
}

// LoadTile synthesizes the tile's samples. Borders are shared with the
// neighboring tiles because sampling happens in world coordinates.
func (l *ProceduralLoader) LoadTile(key terrain.TileKey) (*terrain.Tile, error) {
	n := l.tileSize
	heights := make([]float32, n*n)
	baseX := float64(int(key.X) * (n - 1))
	baseY := float64(int(key.Y) * (n - 1))

	for y := 0; y < n; y++ {
		for x := 0; x < n; x++ {
			heights[y*n+x] = l.noise.HeightAt(baseX+float64(x), baseY+float64(y))
		}
	}
	return terrain.NewTile(key, heights, n)
}
