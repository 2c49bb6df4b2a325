// Package heightfield loads and samples 2D elevation grids.
package heightfield

import (
	"fmt"
	gomath "math"

	"github.com/Faultbox/heightforge/pkg/errs"
)

// GeoBounds is the georeference of a field: the lon/lat rectangle it
// covers and the elevation range of its samples.
type GeoBounds struct {
	MinLon, MaxLon float64
	MinLat, MaxLat float64
	MinElev        float64
	MaxElev        float64
}

// Field is a row-major grid of elevation samples in meters, optionally
// georeferenced.
type Field struct {
	Width  int
	Height int
	Data   []float32
	Bounds GeoBounds
	CRS    string // e.g. "EPSG:4326", empty when unreferenced
}

// New wraps a sample slice as a field. The slice length must be
// width*height.
func New(data []float32, width, height int) (*Field, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: field dimensions %dx%d must be positive",
			errs.ErrInvalidArgument, width, height)
	}
	if len(data) != width*height {
		return nil, fmt.Errorf("%w: %d samples for a %dx%d field",
			errs.ErrDataIntegrity, len(data), width, height)
	}
	f := &Field{Width: width, Height: height, Data: data}
	f.Bounds.MinElev, f.Bounds.MaxElev = f.minMax()
	return f, nil
}

// At returns the sample at integer coordinates, clamped to the edges.
func (f *Field) At(x, y int) float32 {
	if x < 0 {
		x = 0
	} else if x >= f.Width {
		x = f.Width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= f.Height {
		y = f.Height - 1
	}
	return f.Data[y*f.Width+x]
}

// Sample bilinearly interpolates at fractional grid coordinates.
func (f *Field) Sample(x, y float32) float32 {
	if x < 0 {
		x = 0
	}
	if y < 0 {
		y = 0
	}
	if mx := float32(f.Width - 1); x > mx {
		x = mx
	}
	if my := float32(f.Height - 1); y > my {
		y = my
	}

	x0, y0 := int(x), int(y)
	fx, fy := x-float32(x0), y-float32(y0)
	h00 := f.At(x0, y0)
	h10 := f.At(x0+1, y0)
	h01 := f.At(x0, y0+1)
	h11 := f.At(x0+1, y0+1)

	top := h00 + (h10-h00)*fx
	bot := h01 + (h11-h01)*fx
	return top + (bot-top)*fy
}

// ScaleToRange linearly remaps the samples so their min and max land on
// the given elevations. A constant field maps entirely to lo.
func (f *Field) ScaleToRange(lo, hi float32) {
	min, max := f.minMax()
	span := max - min
	if span == 0 {
		for i := range f.Data {
			f.Data[i] = lo
		}
	} else {
		scale := float64(hi-lo) / span
		for i, v := range f.Data {
			f.Data[i] = float32(float64(lo) + (float64(v)-min)*scale)
		}
	}
	f.Bounds.MinElev, f.Bounds.MaxElev = f.minMax()
}

func (f *Field) minMax() (float64, float64) {
	min, max := gomath.Inf(1), gomath.Inf(-1)
	for _, v := range f.Data {
		fv := float64(v)
		if fv < min {
			min = fv
		}
		if fv > max {
			max = fv
		}
	}
	return min, max
}
