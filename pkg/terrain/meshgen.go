package terrain

import (
	"fmt"

	"github.com/Faultbox/heightforge/pkg/errs"
	"github.com/Faultbox/heightforge/pkg/mesh"
)

// GenerateTileMesh amplifies a tile into a triangle grid at the given
// tessellation level. The level is the number of quad segments per tile
// edge, so the mesh has (level+1)^2 vertices and 2*level^2 triangles.
//
// Heights are sampled bilinearly from the tile and scaled by
// heightScale; spacing is the world distance between adjacent samples.
// The mesh is placed in world space by the tile's grid coordinates and
// carries smooth normals and [0,1] UVs.
func GenerateTileMesh(tile *Tile, level int, heightScale, spacing float32) (*mesh.Mesh, error) {
	if tile == nil {
		return nil, fmt.Errorf("%w: nil tile", errs.ErrInvalidArgument)
	}
	if level < 1 {
		return nil, fmt.Errorf("%w: tessellation level %d must be at least 1", errs.ErrInvalidArgument, level)
	}
	if spacing <= 0 {
		return nil, fmt.Errorf("%w: sample spacing %g must be positive", errs.ErrInvalidArgument, spacing)
	}

	extent := float32(tile.Size()-1) * spacing
	originX := float32(tile.Key.X) * extent
	originZ := float32(tile.Key.Y) * extent

	side := level + 1
	positions := make([]float32, 0, side*side*3)
	uvs := make([]float32, 0, side*side*2)

	for row := 0; row < side; row++ {
		v := float32(row) / float32(level)
		for col := 0; col < side; col++ {
			u := float32(col) / float32(level)

			h := tile.SampleBilinear(u*float32(tile.Size()-1), v*float32(tile.Size()-1))
			positions = append(positions,
				originX+u*extent,
				h*heightScale,
				originZ+v*extent,
			)
			uvs = append(uvs, u, v)
		}
	}

	indices := make([]uint32, 0, level*level*6)
	for row := 0; row < level; row++ {
		for col := 0; col < level; col++ {
			tl := uint32(row*side + col)
			tr := tl + 1
			bl := uint32((row+1)*side + col)
			br := bl + 1
			// Counter-clockwise winding as seen from +Y.
			indices = append(indices, tl, bl, tr, tr, bl, br)
		}
	}

	m, err := mesh.New(positions, nil, uvs, indices)
	if err != nil {
		return nil, fmt.Errorf("building %s mesh: %w", tile.Key, err)
	}
	m.ComputeNormals()
	return m, nil
}
