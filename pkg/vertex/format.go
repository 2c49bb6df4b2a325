// Package vertex describes mesh vertex attribute layouts.
//
// A Format is an ordered list of named attributes packed into one
// interleaved record. Offsets are assigned in declaration order, each
// aligned to its element type's natural alignment, and the record stride
// is the packed size rounded up to the largest alignment present.
package vertex

import (
	"fmt"

	"github.com/Faultbox/heightforge/pkg/errs"
)

// ElemType identifies the scalar type of an attribute component.
type ElemType int

const (
	Float32 ElemType = iota
	Uint32
	Int32
	Uint16
	Uint8
)

// Size returns the size of one scalar in bytes.
func (t ElemType) Size() int {
	switch t {
	case Float32, Uint32, Int32:
		return 4
	case Uint16:
		return 2
	case Uint8:
		return 1
	}
	return 0
}

// String returns the type name used in logs and error messages.
func (t ElemType) String() string {
	switch t {
	case Float32:
		return "float32"
	case Uint32:
		return "uint32"
	case Int32:
		return "int32"
	case Uint16:
		return "uint16"
	case Uint8:
		return "uint8"
	}
	return fmt.Sprintf("ElemType(%d)", int(t))
}

// Attribute is one named vertex attribute within an interleaved record.
type Attribute struct {
	Name       string
	Type       ElemType
	Components int
	Offset     int // byte offset within the record, set by NewFormat
}

// SizeBytes returns the packed size of the attribute.
func (a Attribute) SizeBytes() int {
	return a.Type.Size() * a.Components
}

// Format is an immutable interleaved vertex record layout.
type Format struct {
	attrs  []Attribute
	stride int
}

// NewFormat builds a layout from attributes in declaration order.
// Each attribute is aligned to its element type's natural alignment and
// the stride is rounded to the largest alignment present.
func NewFormat(attrs ...Attribute) (Format, error) {
	if len(attrs) == 0 {
		return Format{}, fmt.Errorf("%w: format needs at least one attribute", errs.ErrInvalidArgument)
	}

	seen := make(map[string]bool, len(attrs))
	offset := 0
	maxAlign := 1
	out := make([]Attribute, len(attrs))

	for i, a := range attrs {
		if a.Name == "" {
			return Format{}, fmt.Errorf("%w: attribute %d has no name", errs.ErrInvalidArgument, i)
		}
		if seen[a.Name] {
			return Format{}, fmt.Errorf("%w: duplicate attribute %q", errs.ErrInvalidArgument, a.Name)
		}
		seen[a.Name] = true
		if a.Components < 1 || a.Components > 4 {
			return Format{}, fmt.Errorf("%w: attribute %q has %d components", errs.ErrInvalidArgument, a.Name, a.Components)
		}
		if a.Type.Size() == 0 {
			return Format{}, fmt.Errorf("%w: attribute %q has unsupported element type", errs.ErrInvalidArgument, a.Name)
		}

		align := a.Type.Size()
		if align > maxAlign {
			maxAlign = align
		}
		offset = roundUp(offset, align)
		a.Offset = offset
		offset += a.SizeBytes()
		out[i] = a
	}

	return Format{
		attrs:  out,
		stride: roundUp(offset, maxAlign),
	}, nil
}

// MustFormat is NewFormat for layouts known valid at compile time.
func MustFormat(attrs ...Attribute) Format {
	f, err := NewFormat(attrs...)
	if err != nil {
		panic(err)
	}
	return f
}

// Attributes returns the attributes in declaration order.
func (f Format) Attributes() []Attribute {
	return f.attrs
}

// Attribute looks up an attribute by name.
func (f Format) Attribute(name string) (Attribute, bool) {
	for _, a := range f.attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attribute{}, false
}

// Stride returns the byte stride of one interleaved record.
func (f Format) Stride() int {
	return f.stride
}

// Standard layouts used by the mesh loaders and the terrain generator.
var (
	// Position3 holds position only.
	Position3 = MustFormat(
		Attribute{Name: "position", Type: Float32, Components: 3},
	)

	// PositionNormal holds position and normal.
	PositionNormal = MustFormat(
		Attribute{Name: "position", Type: Float32, Components: 3},
		Attribute{Name: "normal", Type: Float32, Components: 3},
	)

	// PositionNormalUV is the full lit layout.
	PositionNormalUV = MustFormat(
		Attribute{Name: "position", Type: Float32, Components: 3},
		Attribute{Name: "normal", Type: Float32, Components: 3},
		Attribute{Name: "uv", Type: Float32, Components: 2},
	)

	// PositionColor is used by debug geometry.
	PositionColor = MustFormat(
		Attribute{Name: "position", Type: Float32, Components: 3},
		Attribute{Name: "color", Type: Float32, Components: 4},
	)
)

func roundUp(n, align int) int {
	rem := n % align
	if rem == 0 {
		return n
	}
	return n + align - rem
}
