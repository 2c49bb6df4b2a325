package render

import (
	"bytes"
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/heightforge/pkg/errs"
	"github.com/Faultbox/heightforge/pkg/mesh"
)

func tri(t *testing.T, positions []float32) *mesh.Mesh {
	t.Helper()
	m, err := mesh.New(positions, nil, nil, []uint32{0, 1, 2})
	if err != nil {
		t.Fatalf("mesh.New: %v", err)
	}
	return m
}

// fullTri covers the lower-left half of NDC, counter-clockwise.
func fullTri(t *testing.T, z float32) *mesh.Mesh {
	return tri(t, []float32{-1, -1, z, 1, -1, z, -1, 1, z})
}

func topLight() DirectionalLight {
	return DirectionalLight{Direction: mgl32.Vec3{0, -1, 0}, Color: mgl32.Vec3{1, 1, 1}, Intensity: 1}
}

func TestRenderRequiresTarget(t *testing.T) {
	r := New(DefaultOptions(), nil)
	err := r.Render(nil, nil, nil, mgl32.Ident4(), mgl32.Ident4())
	if !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("render without target: expected ErrInvalidState, got %v", err)
	}
	if _, err := r.Pixels(); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("pixels without target: expected ErrInvalidState, got %v", err)
	}
}

func TestRenderAfterCleanup(t *testing.T) {
	r := New(DefaultOptions(), nil)
	if err := r.SetRenderTarget(4, 4); err != nil {
		t.Fatalf("SetRenderTarget: %v", err)
	}
	r.Cleanup()

	if err := r.Render(nil, nil, nil, mgl32.Ident4(), mgl32.Ident4()); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("render after cleanup: expected ErrInvalidState, got %v", err)
	}
	if err := r.SetRenderTarget(4, 4); !errors.Is(err, errs.ErrInvalidState) {
		t.Errorf("retarget after cleanup: expected ErrInvalidState, got %v", err)
	}
}

func TestSetRenderTargetValidation(t *testing.T) {
	r := New(DefaultOptions(), nil)
	for _, dims := range [][2]int{{0, 4}, {4, 0}, {-1, -1}} {
		if err := r.SetRenderTarget(dims[0], dims[1]); !errors.Is(err, errs.ErrInvalidArgument) {
			t.Errorf("target %v: expected ErrInvalidArgument, got %v", dims, err)
		}
	}
}

func TestTriangleCoverage(t *testing.T) {
	r := New(DefaultOptions(), nil)
	if err := r.SetRenderTarget(4, 4); err != nil {
		t.Fatalf("SetRenderTarget: %v", err)
	}

	red := Material{BaseColor: mgl32.Vec4{1, 0, 0, 1}}
	err := r.Render([]*mesh.Mesh{fullTri(t, 0)}, []Material{red},
		[]DirectionalLight{topLight()}, mgl32.Ident4(), mgl32.Ident4())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	pix, err := r.Pixels()
	if err != nil {
		t.Fatalf("Pixels: %v", err)
	}

	// The hypotenuse runs corner to corner; pixel centers on or below it
	// are covered, so row y holds the pixels with x <= y.
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			i := (y*4 + x) * 4
			covered := pix[i] > 0
			want := x <= y
			if covered != want {
				t.Errorf("pixel (%d,%d): covered=%v, want %v", x, y, covered, want)
			}
			if covered && (pix[i+1] != 0 || pix[i+2] != 0) {
				t.Errorf("pixel (%d,%d): got green/blue in a red triangle", x, y)
			}
			if covered && pix[i+3] != 255 {
				t.Errorf("pixel (%d,%d): alpha %d, want 255", x, y, pix[i+3])
			}
		}
	}
}

func TestUnitTriangleEndToEnd(t *testing.T) {
	r := New(DefaultOptions(), nil)
	if err := r.SetRenderTarget(4, 4); err != nil {
		t.Fatalf("SetRenderTarget: %v", err)
	}

	unit := tri(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0})
	err := r.Render([]*mesh.Mesh{unit}, nil, []DirectionalLight{topLight()},
		mgl32.Ident4(), mgl32.Ident4())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	pix, err := r.Pixels()
	if err != nil {
		t.Fatalf("Pixels: %v", err)
	}
	if len(pix) != 4*4*4 {
		t.Fatalf("pixel buffer length = %d, want 64 (4x4 RGBA)", len(pix))
	}

	covered := 0
	for p := 0; p < 16; p++ {
		if pix[p*4+3] != 0 {
			covered++
		}
	}
	if covered == 0 {
		t.Error("unit triangle covered no pixels")
	}
	// It spans a quarter of NDC, so it cannot fill the target either.
	if covered == 16 {
		t.Error("unit triangle covered the whole target")
	}
}

func TestDepthTestFirstWinsTies(t *testing.T) {
	r := New(DefaultOptions(), nil)
	if err := r.SetRenderTarget(4, 4); err != nil {
		t.Fatalf("SetRenderTarget: %v", err)
	}

	red := Material{BaseColor: mgl32.Vec4{1, 0, 0, 1}}
	blue := Material{BaseColor: mgl32.Vec4{0, 0, 1, 1}}

	// Same depth: the first mesh submitted keeps every pixel.
	err := r.Render(
		[]*mesh.Mesh{fullTri(t, 0.5), fullTri(t, 0.5)},
		[]Material{red, blue},
		[]DirectionalLight{topLight()}, mgl32.Ident4(), mgl32.Ident4())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	pix, _ := r.Pixels()
	if pix[0] == 0 || pix[2] != 0 {
		t.Errorf("tie at pixel 0: r=%d b=%d, want red to win", pix[0], pix[2])
	}

	// A nearer triangle drawn second takes over.
	err = r.Render(
		[]*mesh.Mesh{fullTri(t, 0.5), fullTri(t, -0.5)},
		[]Material{red, blue},
		[]DirectionalLight{topLight()}, mgl32.Ident4(), mgl32.Ident4())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	pix, _ = r.Pixels()
	if pix[2] == 0 || pix[0] != 0 {
		t.Errorf("nearer triangle: r=%d b=%d, want blue to win", pix[0], pix[2])
	}
}

func TestBackfaceCulling(t *testing.T) {
	// Clockwise winding: reversed vertex order.
	cw := func() *mesh.Mesh {
		return tri(t, []float32{-1, 1, 0, 1, -1, 0, -1, -1, 0})
	}

	r := New(DefaultOptions(), nil)
	if err := r.SetRenderTarget(4, 4); err != nil {
		t.Fatalf("SetRenderTarget: %v", err)
	}
	if err := r.Render([]*mesh.Mesh{cw()}, nil, []DirectionalLight{topLight()},
		mgl32.Ident4(), mgl32.Ident4()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	pix, _ := r.Pixels()
	for i, v := range pix {
		if v != 0 {
			t.Fatalf("culled triangle wrote byte %d = %d", i, v)
		}
	}

	opts := DefaultOptions()
	opts.CullBackfaces = false
	r2 := New(opts, nil)
	if err := r2.SetRenderTarget(4, 4); err != nil {
		t.Fatalf("SetRenderTarget: %v", err)
	}
	if err := r2.Render([]*mesh.Mesh{cw()}, nil, []DirectionalLight{topLight()},
		mgl32.Ident4(), mgl32.Ident4()); err != nil {
		t.Fatalf("Render: %v", err)
	}
	pix, _ = r2.Pixels()
	any := false
	for _, v := range pix {
		if v != 0 {
			any = true
			break
		}
	}
	if !any {
		t.Error("culling disabled: expected the backface to rasterize")
	}
}

func TestBehindCameraRejected(t *testing.T) {
	r := New(DefaultOptions(), nil)
	if err := r.SetRenderTarget(8, 8); err != nil {
		t.Fatalf("SetRenderTarget: %v", err)
	}

	proj := mgl32.Perspective(mgl32.DegToRad(60), 1, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 0, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})

	// Entirely behind the camera at z = +10.
	behind := tri(t, []float32{-1, -1, 10, 1, -1, 10, 0, 1, 10})
	if err := r.Render([]*mesh.Mesh{behind}, nil, []DirectionalLight{topLight()}, view, proj); err != nil {
		t.Fatalf("Render: %v", err)
	}
	pix, _ := r.Pixels()
	for i, v := range pix {
		if v != 0 {
			t.Fatalf("behind-camera triangle wrote byte %d = %d", i, v)
		}
	}
}

func TestParallelMatchesSerial(t *testing.T) {
	scene := func(workers int) []uint8 {
		opts := DefaultOptions()
		opts.Workers = workers
		r := New(opts, nil)
		if err := r.SetRenderTarget(64, 48); err != nil {
			t.Fatalf("SetRenderTarget: %v", err)
		}

		proj := mgl32.Perspective(mgl32.DegToRad(60), 64.0/48, 0.1, 100)
		view := mgl32.LookAtV(mgl32.Vec3{3, 4, 5}, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
		meshes := []*mesh.Mesh{
			tri(t, []float32{-2, 0, -2, 2, 0, -2, 0, 2, 0}),
			tri(t, []float32{-1, -1, 0, 1, -1, 0, 0, 1, 1}),
		}
		mats := []Material{
			{BaseColor: mgl32.Vec4{0.9, 0.2, 0.1, 1}},
			{BaseColor: mgl32.Vec4{0.1, 0.3, 0.9, 1}},
		}
		if err := r.Render(meshes, mats, []DirectionalLight{DefaultLight()}, view, proj); err != nil {
			t.Fatalf("Render: %v", err)
		}
		pix, err := r.Pixels()
		if err != nil {
			t.Fatalf("Pixels: %v", err)
		}
		return pix
	}

	serial := scene(1)
	for _, workers := range []int{2, 4, 7} {
		if !bytes.Equal(serial, scene(workers)) {
			t.Errorf("workers=%d output differs from serial render", workers)
		}
	}
}

func TestMaterialCountMismatch(t *testing.T) {
	r := New(DefaultOptions(), nil)
	if err := r.SetRenderTarget(4, 4); err != nil {
		t.Fatalf("SetRenderTarget: %v", err)
	}
	err := r.Render(
		[]*mesh.Mesh{fullTri(t, 0), fullTri(t, 0), fullTri(t, 0)},
		[]Material{{}, {}},
		nil, mgl32.Ident4(), mgl32.Ident4())
	if !errors.Is(err, errs.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument, got %v", err)
	}
}
