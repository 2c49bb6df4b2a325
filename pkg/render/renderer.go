package render

import (
	"fmt"
	"image"
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/heightforge/pkg/errs"
	"github.com/Faultbox/heightforge/pkg/mesh"
)

// rendererState tracks the renderer lifecycle. Transitions only move
// forward into cleanedUp; a cleaned-up renderer is dead.
type rendererState int

const (
	stateUninitialized rendererState = iota
	stateTargetSet
	stateIdle // at least one frame rendered
	stateCleanedUp
)

func (s rendererState) String() string {
	switch s {
	case stateUninitialized:
		return "uninitialized"
	case stateTargetSet:
		return "target_set"
	case stateIdle:
		return "idle"
	case stateCleanedUp:
		return "cleaned_up"
	}
	return "unknown"
}

// Options tunes the rasterizer.
type Options struct {
	// CullBackfaces drops triangles wound away from the camera.
	CullBackfaces bool
	// SRGB gamma-encodes the final 8-bit output.
	SRGB bool
	// Ambient is the base illumination added before the lights.
	Ambient float32
	// PBR enables the roughness/metallic specular term on top of the
	// Lambertian base.
	PBR bool
	// Workers splits the target into horizontal bands rasterized in
	// parallel. Values below 2 keep rendering single-threaded; the
	// output is identical either way.
	Workers int
}

// DefaultOptions enables culling with a conventional ambient floor.
func DefaultOptions() Options {
	return Options{CullBackfaces: true, Ambient: 0.3}
}

// Renderer rasterizes meshes into an in-memory float framebuffer. It is
// not safe for concurrent use; band parallelism is internal.
type Renderer struct {
	state  rendererState
	width  int
	height int
	color  []float32 // rgba per pixel
	depth  []float32 // +inf = empty
	opts   Options
	log    *zap.Logger
}

// New builds a renderer with no target. SetRenderTarget must run before
// the first Render.
func New(opts Options, log *zap.Logger) *Renderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &Renderer{opts: opts, log: log}
}

// SetRenderTarget allocates a width×height framebuffer and clears it.
// Calling it again resizes and clears.
func (r *Renderer) SetRenderTarget(width, height int) error {
	if r.state == stateCleanedUp {
		return fmt.Errorf("%w: renderer is cleaned up", errs.ErrInvalidState)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("%w: render target %dx%d must have positive dimensions",
			errs.ErrInvalidArgument, width, height)
	}

	r.width, r.height = width, height
	r.color = make([]float32, width*height*4)
	r.depth = make([]float32, width*height)
	r.clear()
	r.state = stateTargetSet
	r.log.Debug("render target set", zap.Int("width", width), zap.Int("height", height))
	return nil
}

func (r *Renderer) clear() {
	for i := range r.color {
		r.color[i] = 0
	}
	inf := float32(gomath.Inf(1))
	for i := range r.depth {
		r.depth[i] = inf
	}
}

// Render draws the meshes with their materials under the lights. The
// framebuffer is cleared first, so each call produces a complete frame.
// Materials pair with meshes by index; a single material is shared
// across all meshes and an empty slice falls back to the default.
func (r *Renderer) Render(meshes []*mesh.Mesh, materials []Material, lights []DirectionalLight, view, proj mgl32.Mat4) error {
	switch r.state {
	case stateUninitialized:
		return fmt.Errorf("%w: no render target set", errs.ErrInvalidState)
	case stateCleanedUp:
		return fmt.Errorf("%w: renderer is cleaned up", errs.ErrInvalidState)
	}
	if len(materials) > 1 && len(materials) != len(meshes) {
		return fmt.Errorf("%w: %d materials for %d meshes",
			errs.ErrInvalidArgument, len(materials), len(meshes))
	}

	r.clear()

	mvp := proj.Mul4(view)
	tris := r.assemble(meshes, materials, mvp)
	r.rasterize(tris, lights, view)

	r.state = stateIdle
	return nil
}

// Pixels converts the framebuffer to 8-bit RGBA, row major from the top
// left. Channels clamp to [0,1] before quantization.
func (r *Renderer) Pixels() ([]uint8, error) {
	if r.state != stateIdle && r.state != stateTargetSet {
		return nil, fmt.Errorf("%w: no framebuffer in state %s", errs.ErrInvalidState, r.state)
	}

	out := make([]uint8, len(r.color))
	for i, v := range r.color {
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		if r.opts.SRGB && i%4 != 3 {
			v = linearToSRGB(v)
		}
		out[i] = uint8(v*255 + 0.5)
	}
	return out, nil
}

// Image wraps the framebuffer as an image for encoding.
func (r *Renderer) Image() (*image.RGBA, error) {
	pix, err := r.Pixels()
	if err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, r.width, r.height))
	copy(img.Pix, pix)
	return img, nil
}

// Size returns the current target dimensions.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Cleanup releases the framebuffer. Every operation except Cleanup
// itself fails afterwards.
func (r *Renderer) Cleanup() {
	r.color = nil
	r.depth = nil
	r.state = stateCleanedUp
}

func linearToSRGB(v float32) float32 {
	if v <= 0.0031308 {
		return v * 12.92
	}
	return 1.055*float32(gomath.Pow(float64(v), 1/2.4)) - 0.055
}
