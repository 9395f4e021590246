package pick

import (
	"math"

	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/scene"
)

// IntersectBox returns the entry distance of r into b using the slab test.
// A ray starting inside the box hits at distance 0.
func IntersectBox(r scene.Ray, b scene.Box) (float64, bool) {
	if b.Empty() {
		return 0, false
	}
	tmin, tmax := 0.0, math.Inf(1)
	for i := 0; i < 3; i++ {
		if math.Abs(r.Dir[i]) < mathutil.Epsilon {
			if r.Origin[i] < b.Min[i] || r.Origin[i] > b.Max[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / r.Dir[i]
		t1 := (b.Min[i] - r.Origin[i]) * inv
		t2 := (b.Max[i] - r.Origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = math.Max(tmin, t1)
		tmax = math.Min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}

// IntersectTriangle is Möller-Trumbore without back-face culling.
func IntersectTriangle(r scene.Ray, a, b, c mathutil.Vec3) (float64, bool) {
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	p := r.Dir.Cross(e2)
	det := e1.Dot(p)
	if math.Abs(det) < 1e-12 {
		return 0, false
	}
	inv := 1 / det
	s := r.Origin.Sub(a)
	u := s.Dot(p) * inv
	if u < 0 || u > 1 {
		return 0, false
	}
	q := s.Cross(e1)
	v := r.Dir.Dot(q) * inv
	if v < 0 || u+v > 1 {
		return 0, false
	}
	t := e2.Dot(q) * inv
	if t <= mathutil.Epsilon {
		return 0, false
	}
	return t, true
}
