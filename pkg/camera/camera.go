// Package camera provides view and projection construction for the
// renderer.
package camera

import (
	gomath "math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	minPitch    = -gomath.Pi/2 + 0.01
	maxPitch    = gomath.Pi/2 - 0.01
	minDistance = 0.1
)

// Orbit is a camera circling a target point, controlled by yaw, pitch
// and distance. Angles are radians; pitch 0 looks at the horizon and
// positive pitch looks down.
type Orbit struct {
	Target   mgl32.Vec3
	Distance float32
	Yaw      float32
	Pitch    float32
}

// NewOrbit places the camera at the given distance looking at target,
// pitched down slightly.
func NewOrbit(target mgl32.Vec3, distance float32) *Orbit {
	if distance < minDistance {
		distance = minDistance
	}
	return &Orbit{Target: target, Distance: distance, Pitch: 0.5}
}

// Rotate adjusts yaw and pitch, clamping pitch short of the poles so
// the view vector never degenerates.
func (c *Orbit) Rotate(dyaw, dpitch float32) {
	c.Yaw += dyaw
	c.Pitch += dpitch
	if c.Pitch < minPitch {
		c.Pitch = minPitch
	}
	if c.Pitch > maxPitch {
		c.Pitch = maxPitch
	}
}

// Zoom moves toward or away from the target.
func (c *Orbit) Zoom(delta float32) {
	c.Distance += delta
	if c.Distance < minDistance {
		c.Distance = minDistance
	}
}

// Position returns the camera's world position on the orbit sphere.
func (c *Orbit) Position() mgl32.Vec3 {
	cy := float32(gomath.Cos(float64(c.Yaw)))
	sy := float32(gomath.Sin(float64(c.Yaw)))
	cp := float32(gomath.Cos(float64(c.Pitch)))
	sp := float32(gomath.Sin(float64(c.Pitch)))

	offset := mgl32.Vec3{
		c.Distance * cp * sy,
		c.Distance * sp,
		c.Distance * cp * cy,
	}
	return c.Target.Add(offset)
}

// ViewMatrix returns the world-to-camera transform.
func (c *Orbit) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position(), c.Target, mgl32.Vec3{0, 1, 0})
}

// Perspective builds a projection from a vertical field of view in
// degrees.
func Perspective(fovyDeg, aspect, near, far float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(fovyDeg), aspect, near, far)
}
