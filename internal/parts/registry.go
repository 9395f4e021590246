package parts

import "pc-showcase/internal/scene"

// SubAssembly is a named wrapper node that can be posed on its own.
type SubAssembly struct {
	Name   string
	Handle scene.Handle
	// Meshes are the mesh nodes beneath the wrapper that no nested
	// sub-assembly owns.
	Meshes []scene.Handle
}

// Registry holds the sub-assemblies of one resolved model in catalog order.
type Registry struct {
	graph  *scene.Graph
	root   scene.Handle
	order  []*SubAssembly
	byName map[string]*SubAssembly
}

func newRegistry(g *scene.Graph, root scene.Handle, cat Catalog, wrapped map[string]scene.Handle) *Registry {
	r := &Registry{graph: g, root: root, byName: make(map[string]*SubAssembly)}
	for _, p := range cat {
		h, ok := wrapped[p.Name]
		if !ok {
			continue
		}
		sa := &SubAssembly{Name: p.Name, Handle: h}
		r.order = append(r.order, sa)
		r.byName[p.Name] = sa
	}
	for _, sa := range r.order {
		g.Walk(sa.Handle, func(h scene.Handle, n *scene.Node) bool {
			if h != sa.Handle && n.Part != "" {
				return false // nested sub-assembly owns its own meshes
			}
			if n.Mesh != nil {
				sa.Meshes = append(sa.Meshes, h)
			}
			return true
		})
	}
	return r
}

// Graph returns the arena the registry's handles point into.
func (r *Registry) Graph() *scene.Graph { return r.graph }

// Root returns the top of the resolved model. It is the chassis wrapper when
// the chassis fallback applied.
func (r *Registry) Root() scene.Handle { return r.root }

// Len returns the number of sub-assemblies.
func (r *Registry) Len() int { return len(r.order) }

// All returns the sub-assemblies in catalog order.
func (r *Registry) All() []*SubAssembly { return r.order }

// Names returns the resolved part names in catalog order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	for i, sa := range r.order {
		out[i] = sa.Name
	}
	return out
}

// Get returns the sub-assembly with the given canonical name.
func (r *Registry) Get(name string) (*SubAssembly, bool) {
	sa, ok := r.byName[name]
	return sa, ok
}

// Owner returns the innermost sub-assembly containing node h.
func (r *Registry) Owner(h scene.Handle) (*SubAssembly, bool) {
	for h != scene.None && r.graph.Valid(h) {
		n := r.graph.Node(h)
		if n.Part != "" {
			if sa, ok := r.byName[n.Part]; ok && sa.Handle == h {
				return sa, true
			}
		}
		h = n.Parent
	}
	return nil, false
}

// Release drops the registry's references. The graph is released by its owner.
func (r *Registry) Release() {
	r.order = nil
	r.byName = map[string]*SubAssembly{}
	r.root = scene.None
}
