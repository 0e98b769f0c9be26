package viz

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const maxPitch = math32.Pi/2 - 0.01

// Camera orbits a target point and projects world positions with a
// perspective matrix. The default placement matches the browser scene:
// 75 degree field of view, eye at (-0.8, 4.2, 9.6).
type Camera struct {
	Target     mgl32.Vec3
	Radius     float32
	Yaw, Pitch float32
	FOV        float32
	Near, Far  float32
	Zoom       float32
}

func NewCamera() *Camera {
	c := &Camera{FOV: 75, Near: 0.001, Far: 100, Zoom: 1}
	c.LookFrom(mgl32.Vec3{-0.8, 4.2, 9.6})
	return c
}

// LookFrom places the eye at p, keeping the target.
func (c *Camera) LookFrom(p mgl32.Vec3) {
	d := p.Sub(c.Target)
	c.Radius = d.Len()
	if c.Radius == 0 {
		c.Radius = 1
		d = mgl32.Vec3{0, 0, 1}
	}
	c.Pitch = math32.Asin(d.Y() / c.Radius)
	c.Yaw = math32.Atan2(d.X(), d.Z())
}

func (c *Camera) Eye() mgl32.Vec3 {
	r := c.Radius / c.Zoom
	cp := math32.Cos(c.Pitch)
	return c.Target.Add(mgl32.Vec3{
		r * cp * math32.Sin(c.Yaw),
		r * math32.Sin(c.Pitch),
		r * cp * math32.Cos(c.Yaw),
	})
}

func (c *Camera) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye(), c.Target, mgl32.Vec3{0, 1, 0})
}

func (c *Camera) Projection(aspect float32) mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), aspect, c.Near, c.Far)
}

func (c *Camera) Orbit(dYaw, dPitch float32) {
	c.Yaw += dYaw
	c.Pitch = mgl32.Clamp(c.Pitch+dPitch, -maxPitch, maxPitch)
}

func (c *Camera) ZoomIn()  { c.Zoom = math32.Min(10, c.Zoom*1.2) }
func (c *Camera) ZoomOut() { c.Zoom = math32.Max(0.1, c.Zoom/1.2) }

// Projector caches the view-projection for one frame of a w x h viewport.
type Projector struct {
	view, proj mgl32.Mat4
	w, h       float32
	near       float32
}

func (c *Camera) Projector(w, h int) Projector {
	aspect := float32(1)
	if h > 0 {
		aspect = float32(w) / float32(h)
	}
	return Projector{
		view: c.View(),
		proj: c.Projection(aspect),
		w:    float32(w),
		h:    float32(h),
		near: c.Near,
	}
}

// Project maps a world position to viewport coordinates. depth is the
// distance in front of the eye along the view axis (-viewZ). ok is false
// for points behind the near plane or outside the viewport.
func (p Projector) Project(pos mgl32.Vec3) (x, y, depth float32, ok bool) {
	eye := p.view.Mul4x1(pos.Vec4(1))
	depth = -eye.Z()
	if depth <= p.near {
		return 0, 0, depth, false
	}
	clip := p.proj.Mul4x1(eye)
	ndc := clip.Vec3().Mul(1 / clip.W())
	x = (ndc.X() + 1) / 2 * p.w
	y = (1 - ndc.Y()) / 2 * p.h
	ok = ndc.X() >= -1 && ndc.X() <= 1 && ndc.Y() >= -1 && ndc.Y() <= 1
	return x, y, depth, ok
}
