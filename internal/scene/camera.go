package scene

import (
	"math"

	"pc-showcase/internal/mathutil"
)

// Camera is a perspective camera that always looks at Target.
// The view is derived from Position/Target/Up on every use, so interpolating
// the target keeps the orientation correct at any timeline position.
type Camera struct {
	Position mathutil.Vec3
	Target   mathutil.Vec3
	Up       mathutil.Vec3
	FOV      float64 // vertical, degrees
	Aspect   float64 // width / height
	Near     float64
	Far      float64
}

// DefaultCamera matches the hero widget: 45° FOV, near 0.1, far 100.
func DefaultCamera(aspect float64) Camera {
	return Camera{
		Position: mathutil.Vec3{2.6, 1.6, 3.2},
		Up:       mathutil.AxisY,
		FOV:      45,
		Aspect:   aspect,
		Near:     0.1,
		Far:      100,
	}
}

// Basis returns the camera's right, up and forward unit vectors.
func (c Camera) Basis() (right, up, forward mathutil.Vec3) {
	forward = c.Target.Sub(c.Position).Normalize()
	if forward == (mathutil.Vec3{}) {
		forward = mathutil.Vec3{0, 0, -1}
	}
	worldUp := c.Up
	if worldUp == (mathutil.Vec3{}) {
		worldUp = mathutil.AxisY
	}
	right = forward.Cross(worldUp).Normalize()
	if right == (mathutil.Vec3{}) {
		right = mathutil.AxisX
	}
	up = right.Cross(forward)
	return right, up, forward
}

// ToView converts a world point to view space (camera looks down -Z).
func (c Camera) ToView(p mathutil.Vec3) mathutil.Vec3 {
	r, u, f := c.Basis()
	d := p.Sub(c.Position)
	return mathutil.Vec3{d.Dot(r), d.Dot(u), -d.Dot(f)}
}

func (c Camera) tanHalf() float64 {
	return math.Tan(mathutil.Deg2Rad(c.FOV) / 2)
}

// ProjectView maps a view-space point to pixel coordinates on a w×h surface.
// depth is the distance along the view axis; ok is false in front of Near.
func (c Camera) ProjectView(v mathutil.Vec3, w, h int) (sx, sy, depth float64, ok bool) {
	depth = -v[2]
	if depth < c.Near {
		return 0, 0, depth, false
	}
	th := c.tanHalf()
	ndcX := v[0] / (depth * th * c.Aspect)
	ndcY := v[1] / (depth * th)
	sx = (ndcX + 1) * 0.5 * float64(w)
	sy = (1 - ndcY) * 0.5 * float64(h)
	return sx, sy, depth, true
}

// Project maps a world point to pixel coordinates.
func (c Camera) Project(p mathutil.Vec3, w, h int) (sx, sy, depth float64, ok bool) {
	return c.ProjectView(c.ToView(p), w, h)
}

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin mathutil.Vec3
	Dir    mathutil.Vec3
}

// At returns the point at distance t along the ray.
func (r Ray) At(t float64) mathutil.Vec3 {
	return r.Origin.Add(r.Dir.Scale(t))
}

// Ray returns the world ray through normalized device coordinates
// (x right, y up, both in [-1, 1]).
func (c Camera) Ray(ndcX, ndcY float64) Ray {
	r, u, f := c.Basis()
	th := c.tanHalf()
	dir := f.Add(r.Scale(ndcX * th * c.Aspect)).Add(u.Scale(ndcY * th))
	return Ray{Origin: c.Position, Dir: dir.Normalize()}
}

// PixelToNDC converts a pixel position on a w×h surface to NDC.
func PixelToNDC(px, py float64, w, h int) (float64, float64) {
	return px/float64(w)*2 - 1, -(py/float64(h))*2 + 1
}
