// Package scene holds the node arena, camera, lights and render overlays
// shared by the loader, part resolver, choreographers and rasterizer.
//
// Nodes are addressed by Handle rather than pointer so the hierarchy can be
// rebuilt (wrapped, re-parented) without aliasing bugs and tested without a
// renderer.
package scene

import (
	"fmt"

	"pc-showcase/internal/mathutil"
)

// Handle addresses a node inside a Graph.
type Handle int32

// None is the null handle.
const None Handle = -1

// Transform is a node's local placement in parent space.
// Rotation is XYZ Euler in radians.
type Transform struct {
	Position mathutil.Vec3
	Rotation mathutil.Vec3
	Scale    mathutil.Vec3
}

// Identity returns the transform that leaves its children unchanged.
func Identity() Transform {
	return Transform{Scale: mathutil.One}
}

// Matrix returns T·R·S.
func (t Transform) Matrix() mathutil.Mat4 {
	return mathutil.ComposeTRS(t.Position, t.Rotation, t.Scale)
}

// Node is one element of the hierarchy. Groups have a nil Mesh.
type Node struct {
	Name string
	// Part is set on sub-assembly wrappers to their canonical part name.
	Part          string
	Parent        Handle
	Children      []Handle
	Transform     Transform
	Mesh          *Mesh
	CastShadow    bool
	ReceiveShadow bool
}

// Graph is an arena of nodes plus the materials their meshes reference.
type Graph struct {
	nodes     []*Node
	Materials []*Material
	released  bool
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{}
}

// Add creates a detached node and returns its handle.
func (g *Graph) Add(name string) Handle {
	g.nodes = append(g.nodes, &Node{Name: name, Parent: None, Transform: Identity()})
	return Handle(len(g.nodes) - 1)
}

// AddMesh creates a detached mesh node.
func (g *Graph) AddMesh(name string, m *Mesh) Handle {
	h := g.Add(name)
	g.nodes[h].Mesh = m
	return h
}

// Len returns the number of nodes ever allocated.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Valid reports whether h addresses a live node.
func (g *Graph) Valid(h Handle) bool {
	return !g.released && h >= 0 && int(h) < len(g.nodes)
}

// Node returns the node for h. It panics on an invalid handle, like a slice
// index would.
func (g *Graph) Node(h Handle) *Node {
	if !g.Valid(h) {
		panic(fmt.Sprintf("scene: invalid handle %d", h))
	}
	return g.nodes[h]
}

// AddChild detaches child from its current parent and appends it to parent.
func (g *Graph) AddChild(parent, child Handle) {
	g.InsertChild(parent, len(g.Node(parent).Children), child)
}

// InsertChild detaches child and inserts it at position idx under parent.
func (g *Graph) InsertChild(parent Handle, idx int, child Handle) {
	if parent == child {
		panic("scene: node cannot parent itself")
	}
	g.Detach(child)
	p := g.Node(parent)
	if idx < 0 || idx > len(p.Children) {
		idx = len(p.Children)
	}
	p.Children = append(p.Children, None)
	copy(p.Children[idx+1:], p.Children[idx:])
	p.Children[idx] = child
	g.nodes[child].Parent = parent
}

// Detach removes h from its parent. It returns the index h occupied, or -1.
func (g *Graph) Detach(h Handle) int {
	n := g.Node(h)
	if n.Parent == None {
		return -1
	}
	p := g.nodes[n.Parent]
	idx := g.childIndex(n.Parent, h)
	if idx >= 0 {
		p.Children = append(p.Children[:idx], p.Children[idx+1:]...)
	}
	n.Parent = None
	return idx
}

func (g *Graph) childIndex(parent, child Handle) int {
	for i, c := range g.nodes[parent].Children {
		if c == child {
			return i
		}
	}
	return -1
}

// Walk visits root and its descendants in preorder. Returning false from fn
// skips the node's children.
func (g *Graph) Walk(root Handle, fn func(h Handle, n *Node) bool) {
	if !g.Valid(root) {
		return
	}
	n := g.nodes[root]
	if !fn(root, n) {
		return
	}
	// Copy so fn may not disturb iteration by re-parenting.
	children := append([]Handle(nil), n.Children...)
	for _, c := range children {
		g.Walk(c, fn)
	}
}

// IsAncestor reports whether a is h or one of h's ancestors.
func (g *Graph) IsAncestor(a, h Handle) bool {
	for h != None {
		if h == a {
			return true
		}
		h = g.Node(h).Parent
	}
	return false
}

// World returns the node's world matrix (parent chain × local).
func (g *Graph) World(h Handle) mathutil.Mat4 {
	m := mathutil.Mat4Identity()
	for h != None {
		n := g.Node(h)
		m = mathutil.Mat4Mul(n.Transform.Matrix(), m)
		h = n.Parent
	}
	return m
}

// Material returns the material at idx, or nil.
func (g *Graph) Material(idx int) *Material {
	if idx < 0 || idx >= len(g.Materials) {
		return nil
	}
	return g.Materials[idx]
}

// Release drops every node and material. Further access panics.
func (g *Graph) Release() {
	g.nodes = nil
	g.Materials = nil
	g.released = true
}

// Released reports whether Release was called.
func (g *Graph) Released() bool {
	return g.released
}
