package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Faultbox/heightforge/pkg/errs"
)

// objCorner is one face corner as raw OBJ indices (1-based, 0 = absent).
type objCorner struct {
	v, vt, vn int
}

// LoadOBJ parses a Wavefront OBJ stream into a Mesh.
//
// Faces with more than three corners are fan-triangulated, OBJ's 1-based
// indices become 0-based, and negative (relative) indices resolve against
// the elements seen so far. Corners sharing the same v/vt/vn triple are
// deduplicated into one output vertex.
func LoadOBJ(r io.Reader) (*Mesh, error) {
	var (
		positions [][3]float32
		normals   [][3]float32
		uvs       [][2]float32
		faces     [][]objCorner
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "v":
			p, err := parseFloats3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: vertex: %v", errs.ErrDataIntegrity, lineNo, err)
			}
			positions = append(positions, p)
		case "vn":
			n, err := parseFloats3(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: normal: %v", errs.ErrDataIntegrity, lineNo, err)
			}
			normals = append(normals, n)
		case "vt":
			if len(fields) < 3 {
				return nil, fmt.Errorf("%w: line %d: texcoord needs 2 components", errs.ErrDataIntegrity, lineNo)
			}
			u, err1 := strconv.ParseFloat(fields[1], 32)
			v, err2 := strconv.ParseFloat(fields[2], 32)
			if err1 != nil || err2 != nil {
				return nil, fmt.Errorf("%w: line %d: bad texcoord", errs.ErrDataIntegrity, lineNo)
			}
			uvs = append(uvs, [2]float32{float32(u), float32(v)})
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("%w: line %d: face needs at least 3 corners", errs.ErrDataIntegrity, lineNo)
			}
			face := make([]objCorner, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				c, err := parseCorner(tok, len(positions), len(uvs), len(normals))
				if err != nil {
					return nil, fmt.Errorf("%w: line %d: %v", errs.ErrDataIntegrity, lineNo, err)
				}
				face = append(face, c)
			}
			faces = append(faces, face)
		}
		// o, g, s, usemtl, mtllib are ignored; materials come from the caller.
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading obj: %w", err)
	}
	if len(positions) == 0 {
		return nil, fmt.Errorf("%w: obj has no vertices", errs.ErrDataIntegrity)
	}

	return buildFromFaces(positions, normals, uvs, faces)
}

// LoadOBJFile opens and parses an OBJ file.
func LoadOBJFile(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	m, err := LoadOBJ(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return m, nil
}

// buildFromFaces triangulates faces and deduplicates corners into flat
// vertex arrays.
func buildFromFaces(positions [][3]float32, normals [][3]float32, uvs [][2]float32, faces [][]objCorner) (*Mesh, error) {
	type key struct{ v, vt, vn int }
	remap := make(map[key]uint32)

	var (
		outPos  []float32
		outNorm []float32
		outUV   []float32
		indices []uint32
	)
	hasNormals := len(normals) > 0
	hasUVs := len(uvs) > 0

	emit := func(c objCorner) uint32 {
		k := key{c.v, c.vt, c.vn}
		if idx, ok := remap[k]; ok {
			return idx
		}
		idx := uint32(len(outPos) / 3)
		remap[k] = idx

		p := positions[c.v]
		outPos = append(outPos, p[0], p[1], p[2])
		if hasNormals {
			var n [3]float32
			if c.vn >= 0 {
				n = normals[c.vn]
			}
			outNorm = append(outNorm, n[0], n[1], n[2])
		}
		if hasUVs {
			var t [2]float32
			if c.vt >= 0 {
				t = uvs[c.vt]
			}
			outUV = append(outUV, t[0], t[1])
		}
		return idx
	}

	for _, face := range faces {
		// Fan triangulation around the first corner.
		for i := 1; i+1 < len(face); i++ {
			indices = append(indices, emit(face[0]), emit(face[i]), emit(face[i+1]))
		}
	}

	if !hasNormals {
		outNorm = nil
	}
	if !hasUVs {
		outUV = nil
	}
	return New(outPos, outNorm, outUV, indices)
}

// parseCorner parses a face corner token "v", "v/vt", "v//vn" or
// "v/vt/vn" into 0-based indices, resolving negative references.
func parseCorner(tok string, numV, numVT, numVN int) (objCorner, error) {
	parts := strings.Split(tok, "/")
	c := objCorner{v: -1, vt: -1, vn: -1}

	resolve := func(s string, count int) (int, error) {
		n, err := strconv.Atoi(s)
		if err != nil {
			return -1, fmt.Errorf("bad index %q", s)
		}
		if n < 0 {
			n = count + n // relative to the end of the list so far
		} else {
			n-- // 1-based to 0-based
		}
		if n < 0 || n >= count {
			return -1, fmt.Errorf("index %q out of range (have %d)", s, count)
		}
		return n, nil
	}

	var err error
	if c.v, err = resolve(parts[0], numV); err != nil {
		return c, err
	}
	if len(parts) > 1 && parts[1] != "" {
		if c.vt, err = resolve(parts[1], numVT); err != nil {
			return c, err
		}
	}
	if len(parts) > 2 && parts[2] != "" {
		if c.vn, err = resolve(parts[2], numVN); err != nil {
			return c, err
		}
	}
	return c, nil
}

func parseFloats3(fields []string) ([3]float32, error) {
	var out [3]float32
	if len(fields) < 3 {
		return out, fmt.Errorf("need 3 components, have %d", len(fields))
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return out, fmt.Errorf("bad component %q", fields[i])
		}
		out[i] = float32(v)
	}
	return out, nil
}
