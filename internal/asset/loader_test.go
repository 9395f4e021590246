package asset

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/scene"
)

// writePCAsset saves a GLB with a chassis group holding a CPU mesh and a
// bracket that matches no part.
func writePCAsset(t *testing.T) string {
	t.Helper()
	doc := gltf.NewDocument()
	pos := modeler.WritePosition(doc, [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}})
	idx := modeler.WriteIndices(doc, []uint16{0, 1, 2})
	doc.Meshes = append(doc.Meshes, &gltf.Mesh{
		Name: "cpu_mesh",
		Primitives: []*gltf.Primitive{{
			Attributes: map[string]int{gltf.POSITION: pos},
			Indices:    gltf.Index(idx),
		}},
	})
	doc.Nodes = append(doc.Nodes,
		&gltf.Node{Name: "Chassis_P400A", Children: []int{1, 2}},
		&gltf.Node{Name: "CPU_Socket", Mesh: gltf.Index(0), Translation: [3]float64{0.1, 0.2, 0.3}},
		&gltf.Node{Name: "unmatched_bracket", Scale: [3]float64{2, 2, 2}},
	)
	doc.Scenes[0].Nodes = []int{0}

	path := filepath.Join(t.TempDir(), "pc.glb")
	require.NoError(t, gltf.SaveBinary(doc, path))
	return path
}

func find(g *scene.Graph, root scene.Handle, name string) scene.Handle {
	found := scene.None
	g.Walk(root, func(h scene.Handle, n *scene.Node) bool {
		if found == scene.None && n.Name == name {
			found = h
		}
		return true
	})
	return found
}

func TestLoadBuildsHierarchy(t *testing.T) {
	m, err := Load(context.Background(), writePCAsset(t))
	require.NoError(t, err)

	g := m.Graph
	chassis := find(g, m.Root, "Chassis_P400A")
	cpu := find(g, m.Root, "CPU_Socket")
	bracket := find(g, m.Root, "unmatched_bracket")
	require.NotEqual(t, scene.None, chassis)
	require.NotEqual(t, scene.None, cpu)
	require.NotEqual(t, scene.None, bracket)

	assert.Equal(t, m.Root, g.Node(chassis).Parent)
	assert.Equal(t, chassis, g.Node(cpu).Parent)

	cpuNode := g.Node(cpu)
	require.NotNil(t, cpuNode.Mesh)
	assert.Equal(t, 1, cpuNode.Mesh.Triangles())
	assert.True(t, cpuNode.Transform.Position.ApproxEqual(mathutil.Vec3{0.1, 0.2, 0.3}, 1e-9))
	assert.Equal(t, mathutil.One, cpuNode.Transform.Scale)
	assert.Equal(t, mathutil.Vec3{2, 2, 2}, g.Node(bracket).Transform.Scale)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.glb"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrModelLoad))

	var le *LoadError
	require.True(t, errors.As(err, &le))
	assert.Contains(t, le.Ref, "nope.glb")
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.glb")
	require.NoError(t, os.WriteFile(path, []byte("definitely not glb"), 0o644))
	_, err := Load(context.Background(), path)
	assert.ErrorIs(t, err, ErrModelLoad)
}

func TestLoadCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Load(ctx, writePCAsset(t))
	assert.ErrorIs(t, err, ErrModelLoad)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadOverHTTP(t *testing.T) {
	path := writePCAsset(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/models/pc.glb" {
			http.NotFound(w, r)
			return
		}
		http.ServeFile(w, r, path)
	}))
	defer srv.Close()

	m, err := Load(context.Background(), srv.URL+"/models/pc.glb")
	require.NoError(t, err)
	assert.NotEqual(t, scene.None, find(m.Graph, m.Root, "CPU_Socket"))

	_, err = Load(context.Background(), srv.URL+"/models/missing.glb")
	assert.ErrorIs(t, err, ErrModelLoad)
}
