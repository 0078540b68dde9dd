package sprite

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// MinZoom is the lower bound applied to Camera.Zoom before dividing by it.
const MinZoom = 1e-8

// Camera depth range. The view sits one unit behind the z=0 sprite plane.
const (
	cameraNear = 0.001
	cameraFar  = 1000.0
)

// Camera is a 2D view: where it looks, how it is rotated and how far it is
// zoomed. The camera is centered on Position; world +Y points up.
type Camera struct {
	// Position is the world point at the center of the view.
	Position Point

	// Size is the visible world extent at zoom 1. Nil means "use the
	// viewport size", so one world unit maps to one pixel.
	Size *Point

	// Rotation in radians.
	Rotation float64

	// Zoom divides the visible extent. Values below MinZoom are clamped.
	Zoom float64
}

// NewCamera returns a camera at the origin with zoom 1 that follows the
// viewport size.
func NewCamera() Camera {
	return Camera{Zoom: 1}
}

// clone returns a copy that does not share Size with c.
func (c Camera) clone() Camera {
	if c.Size != nil {
		size := *c.Size
		c.Size = &size
	}
	return c
}

// extent returns the explicit size or the viewport.
func (c Camera) extent(viewport Point) Point {
	if c.Size != nil {
		return *c.Size
	}
	return viewport
}

// VisibleSize returns the world extent covered by the view after zoom.
func (c Camera) VisibleSize(viewport Point) Point {
	return c.extent(viewport).Div(math.Max(c.Zoom, MinZoom))
}

// Matrix returns the world-to-clip transform for the given viewport size:
// a left-handed orthographic projection with depth in [0, 1] applied after
// the rotation and the view translation.
func (c Camera) Matrix(viewport Point) mgl32.Mat4 {
	size := c.VisibleSize(viewport)
	hw := float32(size.X / 2)
	hh := float32(size.Y / 2)

	view := mgl32.Translate3D(float32(-c.Position.X), float32(-c.Position.Y), 1)
	rot := mgl32.HomogRotate3DZ(float32(c.Rotation))

	return orthoLH(-hw, hw, -hh, hh, cameraNear, cameraFar).Mul4(rot.Mul4(view))
}

// WorldToScreen returns the transform from world units to window pixels
// (origin top-left, +Y down).
func (c Camera) WorldToScreen(viewport Point) Matrix {
	size := c.VisibleSize(viewport)
	return Translate(viewport.X/2, viewport.Y/2).
		Multiply(Scale(viewport.X/size.X, -viewport.Y/size.Y)).
		Multiply(Rotate(c.Rotation)).
		Multiply(Translate(-c.Position.X, -c.Position.Y))
}

// ScreenToWorld returns the inverse of WorldToScreen. A degenerate camera
// (zero viewport) yields the identity.
func (c Camera) ScreenToWorld(viewport Point) Matrix {
	inv, _ := c.WorldToScreen(viewport).Invert()
	return inv
}

// Project maps a window position (pixels) to world coordinates.
func (c Camera) Project(screen, window Point) Point {
	return c.ScreenToWorld(window).TransformPoint(screen)
}

// Unproject maps a world position to window pixels.
func (c Camera) Unproject(world, window Point) Point {
	return c.WorldToScreen(window).TransformPoint(world)
}

// ModelMatrix places a unit quad: scale to size, rotate, then translate to
// position.
func ModelMatrix(position Point, rotation float64, size Point) mgl32.Mat4 {
	t := mgl32.Translate3D(float32(position.X), float32(position.Y), 0)
	r := mgl32.HomogRotate3DZ(float32(rotation))
	s := mgl32.Scale3D(float32(size.X), float32(size.Y), 1)
	return t.Mul4(r).Mul4(s)
}

// orthoLH builds a left-handed orthographic projection mapping z in
// [near, far] to [0, 1]. mgl32.Ortho targets GL clip space (-1..1, RH),
// which WebGPU does not use.
func orthoLH(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	rw := 1 / (right - left)
	rh := 1 / (top - bottom)
	rd := 1 / (far - near)
	return mgl32.Mat4{
		2 * rw, 0, 0, 0,
		0, 2 * rh, 0, 0,
		0, 0, rd, 0,
		-(left + right) * rw, -(top + bottom) * rh, -near * rd, 1,
	}
}
