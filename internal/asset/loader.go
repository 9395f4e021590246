// Package asset loads glTF / GLB scenes into a scene.Graph arena.
package asset

import (
	"context"
	"fmt"
	"image"
	"io"
	"math"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"

	"pc-showcase/internal/logging"
	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/scene"
	"pc-showcase/internal/texture"
)

// Model is a loaded asset: its node arena and the handle of the scene root.
type Model struct {
	Ref   string
	Graph *scene.Graph
	Root  scene.Handle
}

// LoadFunc loads an asset reference. Viewports take one so tests can inject
// failures and synthetic models.
type LoadFunc func(ctx context.Context, ref string) (*Model, error)

// Loader fetches assets from disk or over HTTP.
type Loader struct {
	Client *http.Client
	Logger *zap.Logger
}

// Load fetches and parses ref with a default Loader.
func Load(ctx context.Context, ref string) (*Model, error) {
	return (&Loader{}).Load(ctx, ref)
}

// Load fetches and parses ref. ref is a filesystem path or an http(s) URL.
// Every failure matches ErrModelLoad.
func (l *Loader) Load(ctx context.Context, ref string) (*Model, error) {
	if err := ctx.Err(); err != nil {
		return nil, loadErr(ref, err)
	}
	doc, dir, err := l.fetch(ctx, ref)
	if err != nil {
		return nil, loadErr(ref, err)
	}
	if err := ctx.Err(); err != nil {
		return nil, loadErr(ref, err)
	}

	b := &builder{doc: doc, dir: dir, g: scene.NewGraph(), log: l.logger().With(zap.String("asset", ref))}
	root, err := b.build()
	if err != nil {
		return nil, loadErr(ref, err)
	}
	return &Model{Ref: ref, Graph: b.g, Root: root}, nil
}

func (l *Loader) logger() *zap.Logger {
	return logging.OrNop(l.Logger)
}

func (l *Loader) fetch(ctx context.Context, ref string) (*gltf.Document, string, error) {
	if !isURL(ref) {
		doc, err := gltf.Open(ref)
		if err != nil {
			return nil, "", fmt.Errorf("open: %w", err)
		}
		return doc, filepath.Dir(ref), nil
	}

	client := l.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("fetch: unexpected status %s", resp.Status)
	}
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(io.LimitReader(resp.Body, maxRemoteSize)).Decode(doc); err != nil {
		return nil, "", fmt.Errorf("decode: %w", err)
	}
	return doc, "", nil
}

const maxRemoteSize = 256 << 20

func isURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

type builder struct {
	doc      *gltf.Document
	dir      string
	g        *scene.Graph
	log      *zap.Logger
	textures *texture.Cache
	visiting map[int]bool
}

func (b *builder) build() (scene.Handle, error) {
	b.textures = texture.NewCache(b.loadImage)
	b.visiting = make(map[int]bool)
	if err := b.buildMaterials(); err != nil {
		return scene.None, err
	}

	root := b.g.Add("Scene")
	for _, ni := range b.rootNodes() {
		h, err := b.buildNode(ni)
		if err != nil {
			return scene.None, err
		}
		b.g.AddChild(root, h)
	}
	return root, nil
}

// rootNodes returns the nodes of the default scene, or every unparented node
// when the document declares no scene.
func (b *builder) rootNodes() []int {
	if len(b.doc.Scenes) > 0 {
		si := 0
		if b.doc.Scene != nil && *b.doc.Scene < len(b.doc.Scenes) {
			si = *b.doc.Scene
		}
		return b.doc.Scenes[si].Nodes
	}
	child := make(map[int]bool)
	for _, n := range b.doc.Nodes {
		for _, c := range n.Children {
			child[c] = true
		}
	}
	var roots []int
	for i := range b.doc.Nodes {
		if !child[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

func (b *builder) buildNode(ni int) (scene.Handle, error) {
	if ni < 0 || ni >= len(b.doc.Nodes) {
		return scene.None, fmt.Errorf("node index %d out of range", ni)
	}
	if b.visiting[ni] {
		return scene.None, fmt.Errorf("node %d: cyclic hierarchy", ni)
	}
	b.visiting[ni] = true
	defer delete(b.visiting, ni)

	n := b.doc.Nodes[ni]
	h := b.g.Add(n.Name)
	b.g.Node(h).Transform = nodeTransform(n)

	if n.Mesh != nil {
		if err := b.attachMesh(h, n.Name, *n.Mesh); err != nil {
			return scene.None, fmt.Errorf("node %q: %w", n.Name, err)
		}
	}
	for _, ci := range n.Children {
		ch, err := b.buildNode(ci)
		if err != nil {
			return scene.None, err
		}
		b.g.AddChild(h, ch)
	}
	return h, nil
}

func nodeTransform(n *gltf.Node) scene.Transform {
	m := mathutil.FromColumnMajor(n.MatrixOrDefault())
	if !m.IsIdentity() {
		t, r, s := m.DecomposeTRS()
		return scene.Transform{Position: t, Rotation: r, Scale: s}
	}
	t := n.TranslationOrDefault()
	q := n.RotationOrDefault()
	s := n.ScaleOrDefault()
	rot := mathutil.QuatToMat3(mathutil.Quat{q[0], q[1], q[2], q[3]}.Normalize())
	return scene.Transform{
		Position: mathutil.Vec3{t[0], t[1], t[2]},
		Rotation: mathutil.EulerFromMat3(rot),
		Scale:    mathutil.Vec3{s[0], s[1], s[2]},
	}
}

// attachMesh puts a single-primitive mesh on the node itself and gives each
// primitive of a multi-primitive mesh its own child node.
func (b *builder) attachMesh(h scene.Handle, name string, mi int) error {
	if mi < 0 || mi >= len(b.doc.Meshes) {
		return fmt.Errorf("mesh index %d out of range", mi)
	}
	var meshes []*scene.Mesh
	for pi, p := range b.doc.Meshes[mi].Primitives {
		if p.Mode != gltf.PrimitiveTriangles {
			b.log.Debug("skipping non-triangle primitive", zap.String("node", name), zap.Int("primitive", pi))
			continue
		}
		m, err := b.readPrimitive(p)
		if err != nil {
			return fmt.Errorf("primitive %d: %w", pi, err)
		}
		if m != nil {
			meshes = append(meshes, m)
		}
	}
	switch len(meshes) {
	case 0:
	case 1:
		b.g.Node(h).Mesh = meshes[0]
	default:
		for i, m := range meshes {
			b.g.AddChild(h, b.g.AddMesh(fmt.Sprintf("%s_%d", name, i), m))
		}
	}
	return nil
}

func (b *builder) readPrimitive(p *gltf.Primitive) (*scene.Mesh, error) {
	posIdx, ok := p.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil
	}
	acc, err := b.accessor(posIdx)
	if err != nil {
		return nil, err
	}
	positions, err := modeler.ReadPosition(b.doc, acc, nil)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	m := &scene.Mesh{Positions: positions, Material: -1}

	if ni, ok := p.Attributes[gltf.NORMAL]; ok {
		if acc, err := b.accessor(ni); err == nil {
			m.Normals, _ = modeler.ReadNormal(b.doc, acc, nil)
		}
	}
	if ti, ok := p.Attributes[gltf.TEXCOORD_0]; ok {
		if acc, err := b.accessor(ti); err == nil {
			m.UVs, _ = modeler.ReadTextureCoord(b.doc, acc, nil)
		}
	}

	if p.Indices != nil {
		acc, err := b.accessor(*p.Indices)
		if err != nil {
			return nil, err
		}
		m.Indices, err = modeler.ReadIndices(b.doc, acc, nil)
		if err != nil {
			return nil, fmt.Errorf("indices: %w", err)
		}
	} else {
		// Non-indexed: linear indices (0, 1, 2, ...)
		m.Indices = make([]uint32, len(positions))
		for k := range m.Indices {
			m.Indices[k] = uint32(k)
		}
	}
	m.Indices = m.Indices[:len(m.Indices)/3*3]

	if p.Material != nil && *p.Material < len(b.g.Materials) {
		m.Material = *p.Material
	}
	return m, nil
}

func (b *builder) accessor(i int) (*gltf.Accessor, error) {
	if i < 0 || i >= len(b.doc.Accessors) {
		return nil, fmt.Errorf("accessor index %d out of range", i)
	}
	return b.doc.Accessors[i], nil
}

func (b *builder) buildMaterials() error {
	for i, gm := range b.doc.Materials {
		mat := scene.DefaultMaterial()
		mat.Name = gm.Name
		if mat.Name == "" {
			mat.Name = fmt.Sprintf("material_%d", i)
		}
		if pbr := gm.PBRMetallicRoughness; pbr != nil {
			c := pbr.BaseColorFactorOrDefault()
			// glTF factors are linear; materials store sRGB.
			mat.BaseColor = [3]float64{linearToSRGB(c[0]), linearToSRGB(c[1]), linearToSRGB(c[2])}
			mat.Opacity = c[3]
			mat.Metalness = pbr.MetallicFactorOrDefault()
			mat.Roughness = pbr.RoughnessFactorOrDefault()
			if ti := pbr.BaseColorTexture; ti != nil {
				mat.Texture = b.textures.Resolve(fmt.Sprint(ti.Index))
			}
		}
		mat.Transparent = gm.AlphaMode == gltf.AlphaBlend && mat.Opacity < 1
		b.g.Materials = append(b.g.Materials, mat)
	}
	return nil
}

// loadImage decodes the image behind texture index key. A texture that cannot
// be decoded leaves the material untextured.
func (b *builder) loadImage(key string) (*image.NRGBA, error) {
	ti, err := strconv.Atoi(key)
	if err != nil || ti < 0 || ti >= len(b.doc.Textures) {
		return nil, fmt.Errorf("texture %s out of range", key)
	}
	src := b.doc.Textures[ti].Source
	if src == nil || *src >= len(b.doc.Images) {
		return nil, fmt.Errorf("texture %s has no image", key)
	}
	data, err := b.imageData(b.doc.Images[*src])
	if err == nil {
		var img *image.NRGBA
		if img, err = texture.Decode(data); err == nil {
			return img, nil
		}
	}
	b.log.Warn("texture unavailable", zap.String("texture", key), zap.Error(err))
	return nil, err
}

func (b *builder) imageData(im *gltf.Image) ([]byte, error) {
	switch {
	case im.BufferView != nil:
		if *im.BufferView >= len(b.doc.BufferViews) {
			return nil, fmt.Errorf("buffer view %d out of range", *im.BufferView)
		}
		bv := b.doc.BufferViews[*im.BufferView]
		if bv.Buffer >= len(b.doc.Buffers) {
			return nil, fmt.Errorf("buffer %d out of range", bv.Buffer)
		}
		buf := b.doc.Buffers[bv.Buffer].Data
		end := bv.ByteOffset + bv.ByteLength
		if end > len(buf) {
			return nil, fmt.Errorf("buffer view %d exceeds buffer", *im.BufferView)
		}
		return buf[bv.ByteOffset:end], nil
	case im.IsEmbeddedResource():
		return im.MarshalData()
	case im.URI != "" && b.dir != "":
		return os.ReadFile(filepath.Join(b.dir, filepath.FromSlash(im.URI)))
	}
	return nil, fmt.Errorf("image %q is not resolvable", im.Name)
}

func linearToSRGB(c float64) float64 {
	return math.Pow(mathutil.Clamp(c, 0, 1), 1/2.2)
}
