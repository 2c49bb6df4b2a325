package render

import (
	gomath "math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/heightforge/pkg/mesh"
)

// wEpsilon guards the perspective divide. Triangles with any vertex at
// or behind the camera plane are rejected outright rather than clipped;
// the streamer keeps terrain in front of the camera so the simpler rule
// holds up in practice.
const wEpsilon = 1e-6

// screenTri is one triangle after projection, with attributes
// premultiplied by 1/w for perspective-correct interpolation.
type screenTri struct {
	sx, sy [3]float32 // screen position, y down
	z      [3]float32 // ndc depth
	invW   [3]float32
	norm   [3]mgl32.Vec3 // world normal * invW
	world  [3]mgl32.Vec3 // world position * invW
	mat    Material

	minX, minY, maxX, maxY int
}

// assemble projects every mesh triangle to screen space, rejecting
// near-plane crossers and, when enabled, backfaces.
func (r *Renderer) assemble(meshes []*mesh.Mesh, materials []Material, mvp mgl32.Mat4) []screenTri {
	var tris []screenTri
	halfW := float32(r.width) / 2
	halfH := float32(r.height) / 2

	for mi, m := range meshes {
		mat := materialFor(materials, mi)

		vcount := m.VertexCount()
		clip := make([]mgl32.Vec4, vcount)
		for v := 0; v < vcount; v++ {
			p := mgl32.Vec4{m.Positions[v*3], m.Positions[v*3+1], m.Positions[v*3+2], 1}
			clip[v] = mvp.Mul4x1(p)
		}

		for i := 0; i+2 < len(m.Indices); i += 3 {
			i0, i1, i2 := m.Indices[i], m.Indices[i+1], m.Indices[i+2]
			c0, c1, c2 := clip[i0], clip[i1], clip[i2]
			if c0.W() <= wEpsilon || c1.W() <= wEpsilon || c2.W() <= wEpsilon {
				continue
			}

			iw0, iw1, iw2 := 1/c0.W(), 1/c1.W(), 1/c2.W()
			n0 := mgl32.Vec3{c0.X() * iw0, c0.Y() * iw0, c0.Z() * iw0}
			n1 := mgl32.Vec3{c1.X() * iw1, c1.Y() * iw1, c1.Z() * iw1}
			n2 := mgl32.Vec3{c2.X() * iw2, c2.Y() * iw2, c2.Z() * iw2}

			// Winding in y-up NDC: counter-clockwise faces the camera.
			area := (n1.X()-n0.X())*(n2.Y()-n0.Y()) - (n2.X()-n0.X())*(n1.Y()-n0.Y())
			if area == 0 || (r.opts.CullBackfaces && area < 0) {
				continue
			}

			t := screenTri{
				sx:   [3]float32{(n0.X() + 1) * halfW, (n1.X() + 1) * halfW, (n2.X() + 1) * halfW},
				sy:   [3]float32{(1 - n0.Y()) * halfH, (1 - n1.Y()) * halfH, (1 - n2.Y()) * halfH},
				z:    [3]float32{n0.Z(), n1.Z(), n2.Z()},
				invW: [3]float32{iw0, iw1, iw2},
				mat:  mat,
			}
			for k, vi := range [3]uint32{i0, i1, i2} {
				t.norm[k] = vertexNormal(m, vi).Mul(t.invW[k])
				t.world[k] = mgl32.Vec3{
					m.Positions[vi*3], m.Positions[vi*3+1], m.Positions[vi*3+2],
				}.Mul(t.invW[k])
			}

			t.minX = clampPixel(int(minf3(t.sx)), r.width)
			t.maxX = clampPixel(int(maxf3(t.sx))+1, r.width)
			t.minY = clampPixel(int(minf3(t.sy)), r.height)
			t.maxY = clampPixel(int(maxf3(t.sy))+1, r.height)
			if t.minX >= t.maxX || t.minY >= t.maxY {
				continue
			}
			tris = append(tris, t)
		}
	}
	return tris
}

func materialFor(materials []Material, i int) Material {
	switch {
	case len(materials) == 0:
		return DefaultMaterial()
	case len(materials) == 1:
		return materials[0]
	default:
		return materials[i]
	}
}

// vertexNormal falls back to straight up when the mesh carries none.
func vertexNormal(m *mesh.Mesh, vi uint32) mgl32.Vec3 {
	if m.Normals == nil {
		return mgl32.Vec3{0, 1, 0}
	}
	return mgl32.Vec3{m.Normals[vi*3], m.Normals[vi*3+1], m.Normals[vi*3+2]}
}

// rasterize fills the framebuffer. With Workers >= 2 the rows split
// into contiguous bands, each owned by exactly one goroutine; every
// worker scans the triangles in submission order so the result matches
// the single-threaded path bit for bit.
func (r *Renderer) rasterize(tris []screenTri, lights []DirectionalLight, view mgl32.Mat4) {
	camPos := view.Inv().Col(3).Vec3()

	workers := r.opts.Workers
	if workers < 2 {
		r.rasterizeBand(tris, lights, camPos, 0, r.height)
		return
	}
	if workers > r.height {
		workers = r.height
	}

	var wg sync.WaitGroup
	rowsPer := (r.height + workers - 1) / workers
	for w := 0; w < workers; w++ {
		y0 := w * rowsPer
		y1 := y0 + rowsPer
		if y1 > r.height {
			y1 = r.height
		}
		if y0 >= y1 {
			break
		}
		wg.Add(1)
		go func(y0, y1 int) {
			defer wg.Done()
			r.rasterizeBand(tris, lights, camPos, y0, y1)
		}(y0, y1)
	}
	wg.Wait()
}

// rasterizeBand rasterizes rows [y0, y1). Only pixels inside the band
// are touched, which is what makes bands safe to run in parallel.
func (r *Renderer) rasterizeBand(tris []screenTri, lights []DirectionalLight, camPos mgl32.Vec3, y0, y1 int) {
	for ti := range tris {
		t := &tris[ti]
		top := t.minY
		if top < y0 {
			top = y0
		}
		bot := t.maxY
		if bot > y1 {
			bot = y1
		}
		if top >= bot {
			continue
		}

		// Barycentric denominator; sign cancels in the ratios so both
		// windings rasterize correctly when culling is off.
		den := (t.sy[1]-t.sy[2])*(t.sx[0]-t.sx[2]) + (t.sx[2]-t.sx[1])*(t.sy[0]-t.sy[2])
		if den == 0 {
			continue
		}
		invDen := 1 / den

		for y := top; y < bot; y++ {
			py := float32(y) + 0.5
			for x := t.minX; x < t.maxX; x++ {
				px := float32(x) + 0.5

				b0 := ((t.sy[1]-t.sy[2])*(px-t.sx[2]) + (t.sx[2]-t.sx[1])*(py-t.sy[2])) * invDen
				b1 := ((t.sy[2]-t.sy[0])*(px-t.sx[2]) + (t.sx[0]-t.sx[2])*(py-t.sy[2])) * invDen
				b2 := 1 - b0 - b1
				if b0 < 0 || b1 < 0 || b2 < 0 {
					continue
				}

				z := b0*t.z[0] + b1*t.z[1] + b2*t.z[2]
				di := y*r.width + x
				// Strict less-than: on exact ties the first triangle
				// drawn keeps the pixel.
				if z >= r.depth[di] {
					continue
				}
				r.depth[di] = z

				invW := b0*t.invW[0] + b1*t.invW[1] + b2*t.invW[2]
				n := t.norm[0].Mul(b0).Add(t.norm[1].Mul(b1)).Add(t.norm[2].Mul(b2)).Mul(1 / invW)
				if l := n.Len(); l > 0 {
					n = n.Mul(1 / l)
				}
				world := t.world[0].Mul(b0).Add(t.world[1].Mul(b1)).Add(t.world[2].Mul(b2)).Mul(1 / invW)

				cr, cg, cb := r.shade(t.mat, n, world, camPos, lights)
				ci := di * 4
				r.color[ci] = cr
				r.color[ci+1] = cg
				r.color[ci+2] = cb
				r.color[ci+3] = t.mat.BaseColor.W()
			}
		}
	}
}

// shade evaluates ambient plus per-light Lambertian diffuse, with an
// optional Blinn-Phong specular term shaped by roughness and metallic.
func (r *Renderer) shade(mat Material, n, world, camPos mgl32.Vec3, lights []DirectionalLight) (float32, float32, float32) {
	base := mat.BaseColor
	cr := base.X() * r.opts.Ambient
	cg := base.Y() * r.opts.Ambient
	cb := base.Z() * r.opts.Ambient

	for _, light := range lights {
		l := light.Direction.Mul(-1)
		if ll := l.Len(); ll > 0 {
			l = l.Mul(1 / ll)
		}
		diff := n.Dot(l)
		if diff <= 0 {
			continue
		}

		scale := diff * light.Intensity
		if r.opts.PBR {
			scale *= 1 - mat.Metallic
		}
		cr += base.X() * light.Color.X() * scale
		cg += base.Y() * light.Color.Y() * scale
		cb += base.Z() * light.Color.Z() * scale

		if r.opts.PBR {
			view := camPos.Sub(world)
			if vl := view.Len(); vl > 0 {
				view = view.Mul(1 / vl)
			}
			half := l.Add(view)
			if hl := half.Len(); hl > 0 {
				half = half.Mul(1 / hl)
			}
			nh := n.Dot(half)
			if nh > 0 {
				rough := mat.Roughness
				shininess := float64((1-rough)*(1-rough)*128 + 1)
				spec := float32(gomath.Pow(float64(nh), shininess)) * light.Intensity
				strength := 0.04 + 0.96*mat.Metallic
				cr += light.Color.X() * spec * strength
				cg += light.Color.Y() * spec * strength
				cb += light.Color.Z() * spec * strength
			}
		}
	}
	return cr, cg, cb
}

func clampPixel(v, max int) int {
	if v < 0 {
		return 0
	}
	if v > max {
		return max
	}
	return v
}

func minf3(v [3]float32) float32 {
	m := v[0]
	if v[1] < m {
		m = v[1]
	}
	if v[2] < m {
		m = v[2]
	}
	return m
}

func maxf3(v [3]float32) float32 {
	m := v[0]
	if v[1] > m {
		m = v[1]
	}
	if v[2] > m {
		m = v[2]
	}
	return m
}
