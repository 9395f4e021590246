// Package raster is a CPU rasterizer for scene graphs: flat shading from a
// light rig, z-buffering, alpha-blended transparent materials and planar
// contact shadows on a ground disc.
package raster

import (
	"image"
	"math"
	"sort"

	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/postprocess"
	"pc-showcase/internal/scene"
)

// Scene is the input of one frame.
type Scene struct {
	Graph      *scene.Graph
	Root       scene.Handle
	Camera     scene.Camera
	Rig        scene.Rig
	Ground     *scene.Ground
	Overlay    scene.Overlay
	Background scene.Color // sRGB
}

// Renderer draws into a persistent supersampled framebuffer.
type Renderer struct {
	width, height int
	supersample   int
	fb            *FrameBuffer

	world []mathutil.Vec3
	proj  []Vertex
	valid []bool
	blend []blended
}

type blended struct {
	v     [3]Vertex
	s     Surface
	depth float64
}

// NewRenderer returns a renderer producing w×h images, drawn internally at
// supersample times that size.
func NewRenderer(w, h, supersample int) *Renderer {
	if supersample < 1 {
		supersample = 1
	}
	r := &Renderer{supersample: supersample}
	r.Resize(w, h)
	return r
}

// Resize changes the output size.
func (r *Renderer) Resize(w, h int) {
	r.width, r.height = w, h
	if r.fb == nil {
		r.fb = NewFrameBuffer(w*r.supersample, h*r.supersample)
		return
	}
	r.fb.Resize(w*r.supersample, h*r.supersample)
}

// Size returns the output size.
func (r *Renderer) Size() (int, int) { return r.width, r.height }

// Release frees the framebuffer. The renderer must not be used afterwards.
func (r *Renderer) Release() {
	if r.fb != nil {
		r.fb.Release()
	}
	r.world, r.proj, r.valid, r.blend = nil, nil, nil, nil
}

// Render draws s and returns the downsampled frame.
func (r *Renderer) Render(s *Scene) *image.NRGBA {
	fb := r.fb
	bg := s.Background
	fb.Clear(clamp255(bg[0]*255), clamp255(bg[1]*255), clamp255(bg[2]*255))

	cam := s.Camera
	if fb.Height > 0 {
		cam.Aspect = float64(fb.Width) / float64(fb.Height)
	}
	if s.Graph != nil && !s.Graph.Released() && s.Graph.Valid(s.Root) {
		lc := NewLightConfig(s.Rig, cam.Position)
		r.blend = r.blend[:0]
		r.drawMeshes(s, cam, &lc)
		if s.Ground != nil {
			r.drawShadows(s, cam)
		}
		r.drawBlended(&lc)
	}

	img := fb.Image()
	if r.supersample > 1 {
		return postprocess.Downsample(img, r.width, r.height)
	}
	return img
}

func (r *Renderer) project(cam scene.Camera, world mathutil.Mat4, m *scene.Mesh) {
	n := len(m.Positions)
	if cap(r.world) < n {
		r.world = make([]mathutil.Vec3, n)
		r.proj = make([]Vertex, n)
		r.valid = make([]bool, n)
	}
	r.world, r.proj, r.valid = r.world[:n], r.proj[:n], r.valid[:n]
	for i, p := range m.Positions {
		wp := world.MulPoint(mathutil.Vec3{float64(p[0]), float64(p[1]), float64(p[2])})
		r.world[i] = wp
		sx, sy, depth, ok := cam.Project(wp, r.fb.Width, r.fb.Height)
		r.valid[i] = ok
		v := Vertex{X: sx, Y: sy}
		if ok {
			v.W = 1 / depth
		}
		if i < len(m.UVs) {
			v.U, v.V = float64(m.UVs[i][0]), float64(m.UVs[i][1])
		}
		r.proj[i] = v
	}
}

func (r *Renderer) drawMeshes(s *Scene, cam scene.Camera, lc *LightConfig) {
	g := s.Graph
	fallback := scene.DefaultMaterial()
	g.Walk(s.Root, func(h scene.Handle, n *scene.Node) bool {
		m := n.Mesh
		if m == nil || m.Triangles() == 0 {
			return true
		}
		mat := s.Overlay.Resolve(g, h, m)
		if mat == nil {
			mat = fallback
		}
		r.project(cam, g.World(h), m)

		surf := Surface{
			Tex:      mat.Texture,
			Albedo:   linear(mat.BaseColor),
			Emissive: linear(mat.Emissive),
			Alpha:    mathutil.Clamp(mat.Opacity, 0, 1),
			Blend:    mat.Transparent || mat.Opacity < 1,
		}
		if len(m.UVs) < len(m.Positions) {
			surf.Tex = nil
		}
		for i := 0; i < m.Triangles(); i++ {
			i0, i1, i2 := int(m.Indices[i*3]), int(m.Indices[i*3+1]), int(m.Indices[i*3+2])
			if i0 >= len(r.proj) || i1 >= len(r.proj) || i2 >= len(r.proj) {
				continue
			}
			if !r.valid[i0] || !r.valid[i1] || !r.valid[i2] {
				continue
			}
			a, b, c := r.world[i0], r.world[i1], r.world[i2]
			normal := b.Sub(a).Cross(c.Sub(a)).Normalize()
			if normal == (mathutil.Vec3{}) {
				continue
			}
			centroid := a.Add(b).Add(c).Scale(1.0 / 3)
			surf.Light = lc.Shade(normal, centroid, mat)
			v := [3]Vertex{r.proj[i0], r.proj[i1], r.proj[i2]}
			if surf.Blend {
				depth := cam.ToView(centroid)[2]
				r.blend = append(r.blend, blended{v: v, s: surf, depth: depth})
				continue
			}
			RasterizeTriangle(r.fb, v, &surf, lc)
		}
		return true
	})
}

// drawBlended draws transparent faces far to near.
func (r *Renderer) drawBlended(lc *LightConfig) {
	sort.SliceStable(r.blend, func(i, j int) bool { return r.blend[i].depth < r.blend[j].depth })
	for i := range r.blend {
		RasterizeTriangle(r.fb, r.blend[i].v, &r.blend[i].s, lc)
	}
}

// drawShadows projects shadow casters onto the ground plane along the key
// light and darkens the covered pixels once.
func (r *Renderer) drawShadows(s *Scene, cam scene.Camera) {
	light, ok := s.Rig.ShadowCaster()
	if !ok {
		return
	}
	l := light.Dir()
	if l[1] <= mathutil.Epsilon {
		return
	}
	ground := s.Ground
	g := s.Graph
	drop := func(p mathutil.Vec3) (Vertex, bool) {
		if p[1] < ground.Y {
			return Vertex{}, false
		}
		q := p.Sub(l.Scale((p[1] - ground.Y) / l[1]))
		if ground.Radius > 0 && math.Hypot(q[0], q[2]) > ground.Radius {
			return Vertex{}, false
		}
		sx, sy, depth, ok := cam.Project(q, r.fb.Width, r.fb.Height)
		if !ok {
			return Vertex{}, false
		}
		return Vertex{X: sx, Y: sy, W: 1 / depth}, true
	}
	drawn := false
	g.Walk(s.Root, func(h scene.Handle, n *scene.Node) bool {
		m := n.Mesh
		if m == nil || !n.CastShadow {
			return true
		}
		world := g.World(h)
		for i := 0; i < m.Triangles(); i++ {
			a, b, c, ok := m.Triangle(i)
			if !ok {
				continue
			}
			va, okA := drop(world.MulPoint(a))
			vb, okB := drop(world.MulPoint(b))
			vc, okC := drop(world.MulPoint(c))
			if okA && okB && okC {
				RasterizeShadow(r.fb, [3]Vertex{va, vb, vc})
				drawn = true
			}
		}
		return true
	})
	if drawn {
		r.fb.resolveShadow(ground.Opacity)
	}
}

func linear(c [3]float64) [3]float64 {
	return [3]float64{
		math.Pow(mathutil.Clamp(c[0], 0, 1), 2.2),
		math.Pow(mathutil.Clamp(c[1], 0, 1), 2.2),
		math.Pow(mathutil.Clamp(c[2], 0, 1), 2.2),
	}
}
