package scene

import (
	"image"
	"math"

	"pc-showcase/internal/mathutil"
)

// Mesh is an indexed triangle list in node-local space.
type Mesh struct {
	Positions [][3]float32
	Normals   [][3]float32
	UVs       [][2]float32
	Indices   []uint32
	Material  int
}

// Triangles returns the number of complete triangles.
func (m *Mesh) Triangles() int {
	return len(m.Indices) / 3
}

// Triangle returns the local-space corners of triangle i.
func (m *Mesh) Triangle(i int) (a, b, c mathutil.Vec3, ok bool) {
	i0, i1, i2 := m.Indices[i*3], m.Indices[i*3+1], m.Indices[i*3+2]
	n := uint32(len(m.Positions))
	if i0 >= n || i1 >= n || i2 >= n {
		return a, b, c, false
	}
	return vec(m.Positions[i0]), vec(m.Positions[i1]), vec(m.Positions[i2]), true
}

// Bounds returns the local-space AABB.
func (m *Mesh) Bounds() Box {
	b := EmptyBox()
	for _, p := range m.Positions {
		b = b.Extend(vec(p))
	}
	return b
}

func vec(p [3]float32) mathutil.Vec3 {
	return mathutil.Vec3{float64(p[0]), float64(p[1]), float64(p[2])}
}

// Box is an axis-aligned bounding box.
type Box struct {
	Min, Max mathutil.Vec3
}

// EmptyBox returns a box that contains nothing.
func EmptyBox() Box {
	inf := math.Inf(1)
	return Box{
		Min: mathutil.Vec3{inf, inf, inf},
		Max: mathutil.Vec3{-inf, -inf, -inf},
	}
}

// Empty reports whether the box contains no point.
func (b Box) Empty() bool {
	return b.Min[0] > b.Max[0]
}

// Extend grows the box to include p.
func (b Box) Extend(p mathutil.Vec3) Box {
	return Box{Min: b.Min.Min(p), Max: b.Max.Max(p)}
}

// Transform returns the AABB of the box's corners under m.
func (b Box) Transform(m mathutil.Mat4) Box {
	if b.Empty() {
		return b
	}
	out := EmptyBox()
	for i := 0; i < 8; i++ {
		c := mathutil.Vec3{b.Min[0], b.Min[1], b.Min[2]}
		if i&1 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&4 != 0 {
			c[2] = b.Max[2]
		}
		out = out.Extend(m.MulPoint(c))
	}
	return out
}

// Material describes surface appearance. Colors are sRGB in [0,1].
type Material struct {
	Name      string
	BaseColor [3]float64
	Opacity   float64
	Metalness float64
	Roughness float64
	Emissive  [3]float64
	Texture   *image.NRGBA
	// Transparent materials blend over the framebuffer and skip depth writes.
	Transparent bool
}

// DefaultMaterial is used by meshes without a material.
func DefaultMaterial() *Material {
	return &Material{
		Name:      "default",
		BaseColor: [3]float64{160.0 / 255, 160.0 / 255, 170.0 / 255},
		Opacity:   1,
		Metalness: 0.5,
		Roughness: 0.5,
	}
}

// Overlay maps mesh nodes to a material drawn instead of their own.
// The graph's materials are never modified.
type Overlay map[Handle]*Material

// Resolve returns the material to draw for mesh node h.
func (o Overlay) Resolve(g *Graph, h Handle, m *Mesh) *Material {
	if mat, ok := o[h]; ok {
		return mat
	}
	if mat := g.Material(m.Material); mat != nil {
		return mat
	}
	return nil
}
