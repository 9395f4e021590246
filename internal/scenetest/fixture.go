// Package scenetest builds small in-memory scenes for tests.
package scenetest

import (
	"context"
	"errors"
	"image"
	"image/color"

	"pc-showcase/internal/asset"
	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/scene"
)

// Cube returns a mesh for an axis-aligned cube of edge 2·half centred on the
// origin. Faces wind counter-clockwise seen from outside.
func Cube(half float32) *scene.Mesh {
	h := half
	pos := [][3]float32{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}
	idx := []uint32{
		4, 5, 6, 4, 6, 7, // +z
		1, 0, 3, 1, 3, 2, // -z
		5, 1, 2, 5, 2, 6, // +x
		0, 4, 7, 0, 7, 3, // -x
		7, 6, 2, 7, 2, 3, // +y
		0, 1, 5, 0, 5, 4, // -y
	}
	return &scene.Mesh{Positions: pos, Indices: idx}
}

// Spec describes one node of a fixture.
type Spec struct {
	Name     string
	Position mathutil.Vec3
	Rotation mathutil.Vec3
	Mesh     bool
	Children []Spec
}

// Build adds the tree under a fresh "Scene" root and returns the root.
func Build(g *scene.Graph, nodes ...Spec) scene.Handle {
	root := g.Add("Scene")
	for _, s := range nodes {
		g.AddChild(root, build(g, s))
	}
	return root
}

func build(g *scene.Graph, s Spec) scene.Handle {
	var h scene.Handle
	if s.Mesh {
		h = g.AddMesh(s.Name, Cube(0.05))
	} else {
		h = g.Add(s.Name)
	}
	n := g.Node(h)
	n.Transform.Position = s.Position
	n.Transform.Rotation = s.Rotation
	for _, c := range s.Children {
		g.AddChild(h, build(g, c))
	}
	return h
}

// PC returns a graph shaped like a typical exported PC asset: a chassis
// group holding the internals, plus one bracket that matches no part.
func PC() (*scene.Graph, scene.Handle) {
	g := scene.NewGraph()
	root := Build(g, Spec{
		Name: "Chassis_P400A", Mesh: true,
		Children: []Spec{
			{Name: "MOBO_B660", Position: mathutil.Vec3{0, 0.3, -0.1}, Mesh: true, Children: []Spec{
				{Name: "CPU_Socket", Position: mathutil.Vec3{0.1, 0.2, 0.3}, Rotation: mathutil.Vec3{0, 0.25, 0}, Mesh: true},
			}},
			{Name: "GPU_4060", Position: mathutil.Vec3{0, -0.1, 0.2}, Mesh: true},
			{Name: "unmatched_bracket", Position: mathutil.Vec3{0.4, 0, 0}, Mesh: true},
		},
	})
	return g, root
}

// Find returns the first node named name under root, or scene.None.
func Find(g *scene.Graph, root scene.Handle, name string) scene.Handle {
	found := scene.None
	g.Walk(root, func(h scene.Handle, n *scene.Node) bool {
		if found == scene.None && n.Name == name {
			found = h
		}
		return found == scene.None
	})
	return found
}

// LoadPC is an asset.LoadFunc that returns a fresh PC fixture.
func LoadPC(ctx context.Context, ref string) (*asset.Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, root := PC()
	return &asset.Model{Ref: ref, Graph: g, Root: root}, nil
}

// FailLoad is an asset.LoadFunc that always fails like a network error.
func FailLoad(_ context.Context, ref string) (*asset.Model, error) {
	return nil, &asset.LoadError{Ref: ref, Err: errors.New("dial tcp: connection refused")}
}

// Checker returns a black and white checkerboard with 2px cells.
func Checker(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			c := color.NRGBA{A: 255}
			if (x/2+y/2)%2 == 0 {
				c.R, c.G, c.B = 255, 255, 255
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}
