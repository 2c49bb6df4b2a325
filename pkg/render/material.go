// Package render implements a deterministic CPU rasterizer used when no
// GPU device is available: same scene, camera and options in, same
// pixels out.
package render

import "github.com/go-gl/mathgl/mgl32"

// Material describes a surface. BaseColor is linear RGBA in [0,1];
// Roughness and Metallic shape the specular response when PBR shading
// is enabled.
type Material struct {
	BaseColor mgl32.Vec4
	Roughness float32
	Metallic  float32
}

// DefaultMaterial is a matte mid-gray.
func DefaultMaterial() Material {
	return Material{
		BaseColor: mgl32.Vec4{0.7, 0.7, 0.7, 1},
		Roughness: 0.8,
	}
}

// DirectionalLight illuminates the whole scene from one direction.
// Direction points from the light toward the scene and need not be
// normalized.
type DirectionalLight struct {
	Direction mgl32.Vec3
	Color     mgl32.Vec3
	Intensity float32
}

// DefaultLight is a white sun from high noon, slightly tilted.
func DefaultLight() DirectionalLight {
	return DirectionalLight{
		Direction: mgl32.Vec3{-0.4, -1, -0.3},
		Color:     mgl32.Vec3{1, 1, 1},
		Intensity: 1,
	}
}
