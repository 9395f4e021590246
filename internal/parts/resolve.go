package parts

import (
	"errors"
	"fmt"

	"pc-showcase/internal/scene"
)

// ErrAlreadyResolved is returned when a hierarchy is resolved a second time.
var ErrAlreadyResolved = errors.New("parts: hierarchy already resolved")

// Match pairs a canonical part with the node that will become it.
type Match struct {
	Part string
	Node scene.Handle
}

// Locate is the read-only first phase: for each catalog part in order it
// finds the first node in preorder under root whose name matches, skipping
// nodes already claimed by an earlier part. The graph is not modified.
func Locate(g *scene.Graph, root scene.Handle, cat Catalog) []Match {
	claimed := make(map[scene.Handle]bool)
	var out []Match
	for _, p := range cat {
		found := scene.None
		g.Walk(root, func(h scene.Handle, n *scene.Node) bool {
			if found != scene.None {
				return false
			}
			if h != root && !claimed[h] && p.Matches(n.Name) {
				found = h
				return false
			}
			return true
		})
		if found != scene.None {
			claimed[found] = true
			out = append(out, Match{Part: p.Name, Node: found})
		}
	}
	return out
}

// Resolve partitions the model under root into sub-assemblies.
//
// Every matched node is wrapped in a fresh group named after its part that
// takes the node's place in the hierarchy and its local transform; the node
// itself is reset to identity, so nothing moves on screen. When no node
// matches the chassis the whole root is wrapped as the chassis instead, so
// the registry is never empty. Meshes are flagged to cast and receive shadows.
func Resolve(g *scene.Graph, root scene.Handle, cat Catalog) (*Registry, error) {
	if !g.Valid(root) {
		return nil, fmt.Errorf("parts: invalid root %d", root)
	}
	if resolved(g, root) {
		return nil, ErrAlreadyResolved
	}

	g.Walk(root, func(h scene.Handle, n *scene.Node) bool {
		if n.Mesh != nil {
			n.CastShadow = true
			n.ReceiveShadow = true
		}
		return true
	})

	wrapped := make(map[string]scene.Handle)
	for _, m := range Locate(g, root, cat) {
		wrapped[m.Part] = Build(g, m)
	}

	top := root
	if _, ok := wrapped[Chassis]; !ok {
		top = wrapRoot(g, root)
		wrapped[Chassis] = top
	}
	return newRegistry(g, top, cat, wrapped), nil
}

// Build is the second phase for one match: it inserts a wrapper group at the
// node's position under its parent, moves the node's local transform onto the
// wrapper and parents the node beneath it with an identity transform.
func Build(g *scene.Graph, m Match) scene.Handle {
	w := g.Add(m.Part)
	g.Node(w).Part = m.Part
	node := g.Node(m.Node)
	if parent := node.Parent; parent != scene.None {
		idx := g.Detach(m.Node)
		g.InsertChild(parent, idx, w)
	}
	g.Node(w).Transform = node.Transform
	node.Transform = scene.Identity()
	g.AddChild(w, m.Node)
	return w
}

// wrapRoot makes a chassis group the parent of the whole model. The root's
// own transform stays on the root, so the wrapper starts at identity.
func wrapRoot(g *scene.Graph, root scene.Handle) scene.Handle {
	w := g.Add(Chassis)
	g.Node(w).Part = Chassis
	if parent := g.Node(root).Parent; parent != scene.None {
		idx := g.Detach(root)
		g.InsertChild(parent, idx, w)
	}
	g.AddChild(w, root)
	return w
}

// resolved reports whether root or anything above or below it is already a
// sub-assembly wrapper.
func resolved(g *scene.Graph, root scene.Handle) bool {
	for h := g.Node(root).Parent; h != scene.None; h = g.Node(h).Parent {
		if g.Node(h).Part != "" {
			return true
		}
	}
	found := false
	g.Walk(root, func(h scene.Handle, n *scene.Node) bool {
		if n.Part != "" {
			found = true
		}
		return !found
	})
	return found
}
