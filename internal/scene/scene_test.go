package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pc-showcase/internal/mathutil"
)

func TestInsertChildKeepsOrder(t *testing.T) {
	g := NewGraph()
	root := g.Add("root")
	a, b, c := g.Add("a"), g.Add("b"), g.Add("c")
	g.AddChild(root, a)
	g.AddChild(root, c)
	g.InsertChild(root, 1, b)

	assert.Equal(t, []Handle{a, b, c}, g.Node(root).Children)
	assert.Equal(t, root, g.Node(b).Parent)

	idx := g.Detach(b)
	assert.Equal(t, 1, idx)
	assert.Equal(t, []Handle{a, c}, g.Node(root).Children)
	assert.Equal(t, None, g.Node(b).Parent)
}

func TestAddChildReparents(t *testing.T) {
	g := NewGraph()
	p1, p2, n := g.Add("p1"), g.Add("p2"), g.Add("n")
	g.AddChild(p1, n)
	g.AddChild(p2, n)

	assert.Empty(t, g.Node(p1).Children)
	assert.Equal(t, []Handle{n}, g.Node(p2).Children)
	assert.True(t, g.IsAncestor(p2, n))
	assert.False(t, g.IsAncestor(p1, n))
}

func TestWorldChainsParents(t *testing.T) {
	g := NewGraph()
	p, c := g.Add("p"), g.Add("c")
	g.AddChild(p, c)
	g.Node(p).Transform.Position = mathutil.Vec3{1, 0, 0}
	g.Node(p).Transform.Scale = mathutil.Vec3{2, 2, 2}
	g.Node(c).Transform.Position = mathutil.Vec3{0, 1, 0}

	got := g.World(c).MulPoint(mathutil.Vec3{})
	assert.True(t, got.ApproxEqual(mathutil.Vec3{1, 2, 0}, 1e-12), "got %v", got)
}

func TestWalkSkipsChildren(t *testing.T) {
	g := NewGraph()
	root, a, b := g.Add("root"), g.Add("a"), g.Add("b")
	g.AddChild(root, a)
	g.AddChild(a, b)

	var seen []string
	g.Walk(root, func(h Handle, n *Node) bool {
		seen = append(seen, n.Name)
		return n.Name != "a"
	})
	assert.Equal(t, []string{"root", "a"}, seen)
}

func TestReleaseInvalidatesHandles(t *testing.T) {
	g := NewGraph()
	h := g.Add("x")
	g.Release()
	assert.False(t, g.Valid(h))
	assert.Panics(t, func() { g.Node(h) })
}

func TestCameraRayHitsProjectedPoint(t *testing.T) {
	cam := DefaultCamera(16.0 / 9)
	cam.Target = mathutil.Vec3{0.2, 0.8, 0}
	p := mathutil.Vec3{0.3, 0.5, -0.2}

	w, h := 320, 180
	sx, sy, depth, ok := cam.Project(p, w, h)
	require.True(t, ok)
	require.Greater(t, depth, 0.0)

	ray := cam.Ray(PixelToNDC(sx, sy, w, h))
	// The point must lie on the ray.
	along := p.Sub(ray.Origin).Dot(ray.Dir)
	assert.InDelta(t, 0, ray.At(along).DistTo(p), 1e-9)
}

func TestCameraCenterProjectsToMiddle(t *testing.T) {
	cam := DefaultCamera(1)
	sx, sy, _, ok := cam.Project(cam.Target, 100, 100)
	require.True(t, ok)
	assert.InDelta(t, 50, sx, 1e-9)
	assert.InDelta(t, 50, sy, 1e-9)
}

func TestBoxTransform(t *testing.T) {
	b := EmptyBox().Extend(mathutil.Vec3{-1, -1, -1}).Extend(mathutil.Vec3{1, 1, 1})
	m := Transform{Position: mathutil.Vec3{5, 0, 0}, Scale: mathutil.Vec3{2, 1, 1}}.Matrix()
	got := b.Transform(m)
	assert.Equal(t, mathutil.Vec3{3, -1, -1}, got.Min)
	assert.Equal(t, mathutil.Vec3{7, 1, 1}, got.Max)
	assert.True(t, EmptyBox().Empty())
}

func TestOverlayResolve(t *testing.T) {
	g := NewGraph()
	base := DefaultMaterial()
	g.Materials = append(g.Materials, base)
	m := &Mesh{Material: 0}
	h := g.AddMesh("m", m)

	var none Overlay
	assert.Same(t, base, none.Resolve(g, h, m))

	glow := &Material{Name: "glow"}
	assert.Same(t, glow, Overlay{h: glow}.Resolve(g, h, m))
	assert.Same(t, base, g.Materials[0])
}
