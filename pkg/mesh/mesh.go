// Package mesh holds triangle mesh data ready for rendering.
package mesh

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/heightforge/pkg/errs"
	"github.com/Faultbox/heightforge/pkg/vertex"
)

// Bounds is an axis-aligned bounding box as a min/max corner pair.
type Bounds struct {
	Min [3]float32
	Max [3]float32
}

// Mesh is a triangle mesh: flat position/normal/uv arrays, a triangle
// index array and the vertex format they interleave to. The format is
// fixed at construction; vertex and index contents may be replaced
// wholesale but the layout must stay constant.
type Mesh struct {
	Positions []float32 // xyz per vertex
	Normals   []float32 // xyz per vertex, may be nil
	UVs       []float32 // uv per vertex, may be nil
	Indices   []uint32  // triangle list, len divisible by 3

	format vertex.Format
	bounds Bounds
}

// New validates the arrays and builds a mesh. The vertex format is
// derived from which attribute arrays are present.
func New(positions, normals, uvs []float32, indices []uint32) (*Mesh, error) {
	if len(positions) == 0 || len(positions)%3 != 0 {
		return nil, fmt.Errorf("%w: position array length %d not a positive multiple of 3",
			errs.ErrInvalidArgument, len(positions))
	}
	vcount := len(positions) / 3

	if normals != nil && len(normals) != vcount*3 {
		return nil, fmt.Errorf("%w: %d normal components for %d vertices",
			errs.ErrInvalidArgument, len(normals), vcount)
	}
	if uvs != nil && len(uvs) != vcount*2 {
		return nil, fmt.Errorf("%w: %d uv components for %d vertices",
			errs.ErrInvalidArgument, len(uvs), vcount)
	}
	if len(indices)%3 != 0 {
		return nil, fmt.Errorf("%w: index count %d not divisible by 3",
			errs.ErrDataIntegrity, len(indices))
	}
	for i, idx := range indices {
		if int(idx) >= vcount {
			return nil, fmt.Errorf("%w: index %d at position %d exceeds vertex count %d",
				errs.ErrDataIntegrity, idx, i, vcount)
		}
	}

	m := &Mesh{
		Positions: positions,
		Normals:   normals,
		UVs:       uvs,
		Indices:   indices,
		format:    deriveFormat(normals != nil, uvs != nil),
	}
	m.recomputeBounds()
	return m, nil
}

func deriveFormat(hasNormals, hasUVs bool) vertex.Format {
	switch {
	case hasNormals && hasUVs:
		return vertex.PositionNormalUV
	case hasNormals:
		return vertex.PositionNormal
	default:
		return vertex.Position3
	}
}

// Format returns the vertex layout fixed at construction.
func (m *Mesh) Format() vertex.Format { return m.format }

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int { return len(m.Positions) / 3 }

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int { return len(m.Indices) / 3 }

// BoundingBox returns the axis-aligned bounds over all positions.
func (m *Mesh) BoundingBox() Bounds { return m.bounds }

// MemoryBytes returns the host footprint of all attribute and index data.
func (m *Mesh) MemoryBytes() int {
	return 4 * (len(m.Positions) + len(m.Normals) + len(m.UVs) + len(m.Indices))
}

// ReplaceVertices swaps in new vertex contents, e.g. for per-frame
// animation. The replacement must keep the vertex format and count
// relationship intact; changing the layout invalidates the mesh and is
// rejected.
func (m *Mesh) ReplaceVertices(positions, normals, uvs []float32) error {
	if len(positions) == 0 || len(positions)%3 != 0 {
		return fmt.Errorf("%w: position array length %d not a positive multiple of 3",
			errs.ErrInvalidArgument, len(positions))
	}
	vcount := len(positions) / 3
	if got := deriveFormat(normals != nil, uvs != nil); got.Stride() != m.format.Stride() {
		return fmt.Errorf("%w: vertex format is immutable after creation", errs.ErrInvalidState)
	}
	if normals != nil && len(normals) != vcount*3 {
		return fmt.Errorf("%w: %d normal components for %d vertices",
			errs.ErrInvalidArgument, len(normals), vcount)
	}
	if uvs != nil && len(uvs) != vcount*2 {
		return fmt.Errorf("%w: %d uv components for %d vertices",
			errs.ErrInvalidArgument, len(uvs), vcount)
	}
	for i, idx := range m.Indices {
		if int(idx) >= vcount {
			return fmt.Errorf("%w: existing index %d at position %d exceeds new vertex count %d",
				errs.ErrDataIntegrity, idx, i, vcount)
		}
	}

	m.Positions = positions
	m.Normals = normals
	m.UVs = uvs
	m.recomputeBounds()
	return nil
}

// ComputeNormals derives smooth per-vertex normals by accumulating
// area-weighted face normals and normalizing. Degenerate triangles
// contribute nothing.
func (m *Mesh) ComputeNormals() {
	normals := make([]float32, len(m.Positions))

	for i := 0; i+2 < len(m.Indices); i += 3 {
		i0, i1, i2 := m.Indices[i]*3, m.Indices[i+1]*3, m.Indices[i+2]*3
		e1x := m.Positions[i1] - m.Positions[i0]
		e1y := m.Positions[i1+1] - m.Positions[i0+1]
		e1z := m.Positions[i1+2] - m.Positions[i0+2]
		e2x := m.Positions[i2] - m.Positions[i0]
		e2y := m.Positions[i2+1] - m.Positions[i0+1]
		e2z := m.Positions[i2+2] - m.Positions[i0+2]

		// Cross product length is twice the face area, so accumulating the
		// raw cross weights by area.
		nx := e1y*e2z - e1z*e2y
		ny := e1z*e2x - e1x*e2z
		nz := e1x*e2y - e1y*e2x

		for _, base := range []uint32{i0, i1, i2} {
			normals[base] += nx
			normals[base+1] += ny
			normals[base+2] += nz
		}
	}

	for i := 0; i < len(normals); i += 3 {
		l := float32(gomath.Sqrt(float64(normals[i]*normals[i] + normals[i+1]*normals[i+1] + normals[i+2]*normals[i+2])))
		if l > 1e-10 {
			normals[i] /= l
			normals[i+1] /= l
			normals[i+2] /= l
		}
	}

	m.Normals = normals
	m.format = deriveFormat(true, m.UVs != nil)
}

func (m *Mesh) recomputeBounds() {
	b := Bounds{
		Min: [3]float32{gomath.MaxFloat32, gomath.MaxFloat32, gomath.MaxFloat32},
		Max: [3]float32{-gomath.MaxFloat32, -gomath.MaxFloat32, -gomath.MaxFloat32},
	}
	for i := 0; i+2 < len(m.Positions); i += 3 {
		for c := 0; c < 3; c++ {
			v := m.Positions[i+c]
			if v < b.Min[c] {
				b.Min[c] = v
			}
			if v > b.Max[c] {
				b.Max[c] = v
			}
		}
	}
	m.bounds = b
}
