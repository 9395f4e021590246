// Package pick maps pointer positions to the sub-assembly under the cursor
// and builds the hover highlight overlay.
package pick

import (
	"sort"

	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/parts"
	"pc-showcase/internal/scene"
)

// Hit is one ray intersection with a registered mesh.
type Hit struct {
	Part     string
	Node     scene.Handle
	Distance float64
	Point    mathutil.Vec3
}

// Intersections returns every registered mesh hit by r, nearest first.
// Meshes are rejected by their world AABB before triangles are tested.
// Only reads the graph.
func Intersections(g *scene.Graph, reg *parts.Registry, r scene.Ray) []Hit {
	var hits []Hit
	for _, sa := range reg.All() {
		for _, h := range sa.Meshes {
			n := g.Node(h)
			if n.Mesh == nil {
				continue
			}
			world := g.World(h)
			if _, ok := IntersectBox(r, n.Mesh.Bounds().Transform(world)); !ok {
				continue
			}
			if d, ok := nearestTriangle(r, n.Mesh, world); ok {
				hits = append(hits, Hit{Part: sa.Name, Node: h, Distance: d, Point: r.At(d)})
			}
		}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits
}

// Intersect returns the nearest hit, if any.
func Intersect(g *scene.Graph, reg *parts.Registry, r scene.Ray) (Hit, bool) {
	hits := Intersections(g, reg, r)
	if len(hits) == 0 {
		return Hit{}, false
	}
	return hits[0], true
}

func nearestTriangle(r scene.Ray, m *scene.Mesh, world mathutil.Mat4) (float64, bool) {
	best, found := 0.0, false
	for i := 0; i < m.Triangles(); i++ {
		a, b, c, ok := m.Triangle(i)
		if !ok {
			continue
		}
		d, ok := IntersectTriangle(r, world.MulPoint(a), world.MulPoint(b), world.MulPoint(c))
		if ok && (!found || d < best) {
			best, found = d, true
		}
	}
	return best, found
}
