package heightfield

import (
	gomath "math"
)

// Procedural synthesizes elevation with seeded fractal value noise. The
// same seed and coordinates always produce the same height, so tiles
// generated from it are reproducible across runs.
type Procedural struct {
	Seed      int64
	Octaves   int
	Frequency float64 // base feature frequency in 1/world-units
	Amplitude float64 // height of the largest octave
}

// DefaultProcedural returns rolling-hills parameters.
func DefaultProcedural(seed int64) Procedural {
	return Procedural{
		Seed:      seed,
		Octaves:   5,
		Frequency: 0.01,
		Amplitude: 40,
	}
}

// HeightAt evaluates the noise field at a world position.
func (p Procedural) HeightAt(x, y float64) float32 {
	freq := p.Frequency
	amp := p.Amplitude
	var sum float64
	for o := 0; o < p.Octaves; o++ {
		sum += p.valueNoise(x*freq, y*freq, int64(o)) * amp
		freq *= 2
		amp *= 0.5
	}
	return float32(sum)
}

// Generate fills a width×height field sampled at integer world
// coordinates starting from (originX, originY).
func (p Procedural) Generate(originX, originY float64, width, height int) (*Field, error) {
	data := make([]float32, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			data[y*width+x] = p.HeightAt(originX+float64(x), originY+float64(y))
		}
	}
	return New(data, width, height)
}

// valueNoise is lattice noise with smoothstep interpolation.
func (p Procedural) valueNoise(x, y float64, octave int64) float64 {
	x0, y0 := gomath.Floor(x), gomath.Floor(y)
	fx, fy := x-x0, y-y0
	sx := fx * fx * (3 - 2*fx)
	sy := fy * fy * (3 - 2*fy)

	ix0, iy0 := int64(x0), int64(y0)
	v00 := p.lattice(ix0, iy0, octave)
	v10 := p.lattice(ix0+1, iy0, octave)
	v01 := p.lattice(ix0, iy0+1, octave)
	v11 := p.lattice(ix0+1, iy0+1, octave)

	top := v00 + (v10-v00)*sx
	bot := v01 + (v11-v01)*sx
	return top + (bot-top)*sy
}

// lattice hashes an integer lattice point to [-1, 1).
func (p Procedural) lattice(x, y, octave int64) float64 {
	h := uint64(x)*0x9E3779B97F4A7C15 ^ uint64(y)*0xC2B2AE3D27D4EB4F ^
		uint64(p.Seed)*0x165667B19E3779F9 ^ uint64(octave)*0xD6E8FEB86659FD93
	h ^= h >> 33
	h *= 0xFF51AFD7ED558CCD
	h ^= h >> 33
	return float64(h)/float64(gomath.MaxUint64)*2 - 1
}
