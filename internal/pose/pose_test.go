package pose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/parts"
	"pc-showcase/internal/scene"
	"pc-showcase/internal/scenetest"
)

func resolved(t *testing.T) (*scene.Graph, *parts.Registry) {
	t.Helper()
	g, root := scenetest.PC()
	reg, err := parts.Resolve(g, root, parts.DefaultCatalog)
	require.NoError(t, err)
	return g, reg
}

func TestCaptureMatchesPreWrapTransform(t *testing.T) {
	g, root := scenetest.PC()
	cpu := scenetest.Find(g, root, "CPU_Socket")
	want := FromTransform(g.Node(cpu).Transform)

	reg, err := parts.Resolve(g, root, parts.DefaultCatalog)
	require.NoError(t, err)
	s := NewStore(InteractiveOffsets, 1)
	require.NoError(t, s.CaptureAssembled(g, reg))

	got, ok := s.Assembled(parts.CPU)
	require.True(t, ok)
	assert.True(t, want.ApproxEqual(got, 1e-12), "want %v got %v", want, got)
}

func TestCaptureOnce(t *testing.T) {
	g, reg := resolved(t)
	s := NewStore(InteractiveOffsets, 1)
	require.NoError(t, s.CaptureAssembled(g, reg))

	sa, _ := reg.Get(parts.GPU)
	g.Node(sa.Handle).Transform.Position = mathutil.Vec3{9, 9, 9}
	assert.ErrorIs(t, s.CaptureAssembled(g, reg), ErrAlreadyCaptured)

	p, _ := s.Assembled(parts.GPU)
	assert.Equal(t, mathutil.Vec3{0, -0.1, 0.2}, p.Position)
}

func TestExplodedPoseIsPure(t *testing.T) {
	g, reg := resolved(t)
	s := NewStore(InteractiveOffsets, 1)
	require.NoError(t, s.CaptureAssembled(g, reg))

	a, ok := s.ExplodedPose(parts.GPU, 1.5)
	require.True(t, ok)
	b, _ := s.ExplodedPose(parts.GPU, 1.5)
	assert.Equal(t, a, b)

	want := mathutil.Vec3{0 - 0.3*1.5, -0.1 + 0.15*1.5, 0.2 - 0.6*1.5}
	assert.True(t, a.Position.ApproxEqual(want, 1e-12), "got %v", a.Position)
	assert.True(t, a.Rotation.ApproxEqual(mathutil.Vec3{0.075, -0.3, 0}, 1e-12))
	assert.Equal(t, mathutil.One, a.Scale)

	_, ok = s.ExplodedPose("no_such_part", 1)
	assert.False(t, ok)
}

func TestApplyRoundTrip(t *testing.T) {
	g, reg := resolved(t)
	s := NewStore(InteractiveOffsets, 1)
	require.NoError(t, s.CaptureAssembled(g, reg))

	for _, sa := range reg.All() {
		orig := FromTransform(g.Node(sa.Handle).Transform)
		ex, _ := s.Exploded(sa.Name)
		ApplyPose(g, sa, ex)
		asm, _ := s.Assembled(sa.Name)
		ApplyPose(g, sa, asm)
		assert.Equal(t, orig, FromTransform(g.Node(sa.Handle).Transform), sa.Name)
	}
}

func TestMergeOverridesPerPart(t *testing.T) {
	custom := Offset{Position: mathutil.Vec3{1, 2, 3}}
	merged := InteractiveOffsets.Merge(Table{parts.GPU: custom})

	assert.Equal(t, custom, merged.Offset(parts.GPU))
	assert.Equal(t, InteractiveOffsets[parts.CPU], merged.Offset(parts.CPU))
	assert.NotEqual(t, custom, InteractiveOffsets[parts.GPU], "built-in table is not modified")
	assert.Equal(t, Offset{}, merged.Offset("unknown"))
}

func TestResetExplodedBeforeCapture(t *testing.T) {
	g, reg := resolved(t)
	s := NewStore(nil, 1)
	assert.ErrorIs(t, s.ResetExploded(g, reg), ErrNotCaptured)
	assert.Equal(t, 1.0, s.Intensity())
}

func TestIntensityIsTakenAsGiven(t *testing.T) {
	g, reg := resolved(t)

	still := NewStore(InteractiveOffsets, 0)
	require.NoError(t, still.CaptureAssembled(g, reg))
	assert.Zero(t, still.Intensity())
	for _, name := range still.Names() {
		home, _ := still.Assembled(name)
		out, ok := still.Exploded(name)
		require.True(t, ok)
		assert.True(t, out.ApproxEqual(home, 1e-12), name)
	}

	mirrored := NewStore(InteractiveOffsets, -1)
	require.NoError(t, mirrored.CaptureAssembled(g, reg))
	home, _ := mirrored.Assembled(parts.GPU)
	out, _ := mirrored.Exploded(parts.GPU)
	want := home.Position.Sub(InteractiveOffsets[parts.GPU].Position)
	assert.True(t, out.Position.ApproxEqual(want, 1e-12))
}
