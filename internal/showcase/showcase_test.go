package showcase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pc-showcase/internal/asset"
	"pc-showcase/internal/choreo"
	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/pose"
	"pc-showcase/internal/scene"
	"pc-showcase/internal/scenetest"
	"pc-showcase/internal/viewport"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const frame = 1.0 / 30

func newHost(t *testing.T, opts viewport.Options) *viewport.Host {
	t.Helper()
	h, err := viewport.New(opts)
	require.NoError(t, err)
	t.Cleanup(h.Teardown)
	return h
}

func settle(t *testing.T, h *viewport.Host) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Loading() {
		require.True(t, time.Now().Before(deadline), "load did not finish")
		h.Frame(0)
		time.Sleep(time.Millisecond)
	}
}

type calls struct {
	hovers []string
	clicks []string
}

func (c *calls) exploded(ref string, load asset.LoadFunc) ExplodedOptions {
	return ExplodedOptions{
		AssetRef:    ref,
		Load:        load,
		OnPartHover: func(name string) { c.hovers = append(c.hovers, name) },
		OnPartClick: func(name string) { c.clicks = append(c.clicks, name) },
	}
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "failed", Failed.String())
}

func TestNewRequiresAsset(t *testing.T) {
	h := newHost(t, ExplodedHost(32, 18, 1))
	_, err := NewExploded(h, ExplodedOptions{})
	assert.ErrorIs(t, err, ErrNoAsset)
	_, err = NewCinematic(h, CinematicOptions{})
	assert.ErrorIs(t, err, ErrNoAsset)
}

func TestExplodedNetworkFailure(t *testing.T) {
	h := newHost(t, ExplodedHost(32, 18, 1))
	var c calls
	e, err := NewExploded(h, c.exploded("https://cdn.example/pc.glb", scenetest.FailLoad))
	require.NoError(t, err)
	assert.Equal(t, Loading, e.State())
	settle(t, h)

	assert.Equal(t, Failed, e.State())
	assert.ErrorIs(t, e.Err(), asset.ErrModelLoad)
	assert.True(t, h.ShowingFallback())

	h.Post(viewport.PointerEnter{})
	h.Post(viewport.PointerMove{X: 16, Y: 9})
	h.Post(viewport.PointerClick{})
	require.NotNil(t, h.Frame(frame))
	assert.Empty(t, c.hovers)
	assert.Empty(t, c.clicks)
	assert.False(t, e.Toggle())
	assert.False(t, e.IsExploded())
}

func TestExplodedFallbackImage(t *testing.T) {
	h := newHost(t, ExplodedHost(32, 18, 1))
	opts := ExplodedOptions{AssetRef: "pc.glb", Load: scenetest.FailLoad, Fallback: scenetest.Checker(4, 4)}
	_, err := NewExploded(h, opts)
	require.NoError(t, err)
	settle(t, h)

	img := h.Frame(frame)
	require.NotNil(t, img)
	// the checker is letterboxed into the middle of the frame
	assert.Equal(t, uint8(255), img.NRGBAAt(16, 9).A)
}

func TestExplodedHoverAndClick(t *testing.T) {
	h := newHost(t, ExplodedHost(32, 18, 1))
	var c calls
	e, err := NewExploded(h, c.exploded("pc.glb", scenetest.LoadPC))
	require.NoError(t, err)
	settle(t, h)
	require.Equal(t, Ready, e.State())
	assert.ElementsMatch(t, []string{"case_outer", "motherboard", "cpu", "gpu"}, e.Parts().Names())

	h.Post(viewport.PointerMove{X: 16, Y: 9})
	h.Frame(frame)
	assert.Equal(t, "case_outer", e.Hovered())
	assert.Equal(t, []string{"case_outer"}, c.hovers)
	assert.NotEmpty(t, e.Overlay())

	h.Post(viewport.PointerClick{})
	h.Frame(frame)
	assert.Equal(t, []string{"case_outer"}, c.clicks)
	assert.True(t, e.IsExploded())

	h.Post(viewport.PointerMove{X: 0, Y: 0})
	h.Frame(frame)
	assert.Equal(t, "", e.Hovered())
	assert.Equal(t, []string{"case_outer", ""}, c.hovers)
	assert.Empty(t, e.Overlay())
}

func TestExplodedEnterLeave(t *testing.T) {
	h := newHost(t, ExplodedHost(32, 18, 1))
	var c calls
	e, err := NewExploded(h, c.exploded("pc.glb", scenetest.LoadPC))
	require.NoError(t, err)
	settle(t, h)

	h.Post(viewport.PointerEnter{})
	for i := 0; i < 60; i++ {
		h.Frame(frame)
	}
	assert.True(t, e.IsExploded())
	assert.InDelta(t, 1, e.Progress(), 1e-9)
	assert.Equal(t, choreo.AtEnd, e.toggle.State())

	gpu, ok := e.Parts().Get("gpu")
	require.True(t, ok)
	want, _ := e.store.Exploded("gpu")
	got := pose.FromTransform(h.Model().Graph.Node(gpu.Handle).Transform)
	assert.True(t, got.ApproxEqual(want, 1e-6))

	h.Post(viewport.PointerLeave{})
	for i := 0; i < 60; i++ {
		h.Frame(frame)
	}
	assert.False(t, e.IsExploded())
	assert.Zero(t, e.Progress())
	home, _ := e.store.Assembled("gpu")
	got = pose.FromTransform(h.Model().Graph.Node(gpu.Handle).Transform)
	assert.True(t, got.ApproxEqual(home, 1e-6))
}

func TestExplodedResizeKeepsProgress(t *testing.T) {
	h := newHost(t, ExplodedHost(32, 18, 1))
	var c calls
	e, err := NewExploded(h, c.exploded("pc.glb", scenetest.LoadPC))
	require.NoError(t, err)
	settle(t, h)

	require.True(t, e.Toggle())
	for i := 0; i < 3; i++ {
		h.Frame(0.1)
	}
	before := e.Progress()
	require.InDelta(t, 0.3/choreo.DefaultToggleDuration, before, 1e-9)

	require.NoError(t, h.Resize(48, 48))
	assert.Equal(t, before, e.Progress())
	assert.True(t, e.IsExploded())
	assert.Equal(t, Ready, e.State())

	h.Frame(0.1)
	assert.InDelta(t, 0.4/choreo.DefaultToggleDuration, e.Progress(), 1e-9)
}

func TestExplodedOffsetOverride(t *testing.T) {
	h := newHost(t, ExplodedHost(32, 18, 1))
	two := 2.0
	opts := ExplodedOptions{
		AssetRef:  "pc.glb",
		Load:      scenetest.LoadPC,
		Intensity: &two,
		Offsets:   pose.Table{"gpu": {Position: [3]float64{1, 0, 0}}},
	}
	e, err := NewExploded(h, opts)
	require.NoError(t, err)
	settle(t, h)

	home, _ := e.store.Assembled("gpu")
	out, _ := e.store.Exploded("gpu")
	assert.InDelta(t, home.Position[0]+2, out.Position[0], 1e-9)
	assert.Equal(t, pose.InteractiveOffsets["cpu"], e.store.Table()["cpu"])
}

func TestExplodedZeroIntensity(t *testing.T) {
	h := newHost(t, ExplodedHost(32, 18, 1))
	zero := 0.0
	e, err := NewExploded(h, ExplodedOptions{AssetRef: "pc.glb", Load: scenetest.LoadPC, Intensity: &zero})
	require.NoError(t, err)
	settle(t, h)
	require.Equal(t, Ready, e.State())

	for _, name := range e.Parts().Names() {
		home, _ := e.store.Assembled(name)
		out, _ := e.store.Exploded(name)
		assert.True(t, out.ApproxEqual(home, 1e-12), name)
	}

	h.Post(viewport.PointerEnter{})
	for i := 0; i < 60; i++ {
		h.Frame(frame)
	}
	assert.True(t, e.IsExploded())
	gpu, _ := e.Parts().Get("gpu")
	home, _ := e.store.Assembled("gpu")
	got := pose.FromTransform(h.Model().Graph.Node(gpu.Handle).Transform)
	assert.True(t, got.ApproxEqual(home, 1e-12))
}

func TestReloadClearsError(t *testing.T) {
	h := newHost(t, ExplodedHost(32, 18, 1))
	e, err := NewExploded(h, ExplodedOptions{AssetRef: "pc.glb", Load: scenetest.FailLoad})
	require.NoError(t, err)
	settle(t, h)
	require.Equal(t, Failed, e.State())
	require.Error(t, e.Err())

	require.NoError(t, h.Load(context.Background(), "pc.glb", scenetest.LoadPC))
	settle(t, h)
	assert.Equal(t, Ready, e.State())
	assert.NoError(t, e.Err())
	assert.False(t, h.ShowingFallback())
}

func TestReloadWhilePointerInsideExplodes(t *testing.T) {
	h := newHost(t, ExplodedHost(32, 18, 1))
	e, err := NewExploded(h, ExplodedOptions{AssetRef: "pc.glb", Load: scenetest.LoadPC})
	require.NoError(t, err)
	settle(t, h)

	h.Post(viewport.PointerEnter{})
	h.Frame(frame)
	require.True(t, e.IsExploded())

	require.NoError(t, h.Load(context.Background(), "pc.glb", scenetest.LoadPC))
	settle(t, h)
	assert.True(t, e.IsExploded(), "new model explodes under the pointer")
	for i := 0; i < 60; i++ {
		h.Frame(frame)
	}
	assert.InDelta(t, 1, e.Progress(), 1e-9)

	h.Post(viewport.PointerLeave{})
	require.NoError(t, h.Load(context.Background(), "pc.glb", scenetest.LoadPC))
	settle(t, h)
	assert.False(t, e.IsExploded())
}

func TestExplodedTeardownMidTransition(t *testing.T) {
	h, err := viewport.New(ExplodedHost(32, 18, 1))
	require.NoError(t, err)
	var c calls
	e, err := NewExploded(h, c.exploded("pc.glb", scenetest.LoadPC))
	require.NoError(t, err)
	settle(t, h)

	e.Toggle()
	h.Frame(0.1)
	g := h.Model().Graph
	h.Teardown()

	assert.True(t, g.Released())
	assert.Nil(t, e.Parts())
	assert.False(t, e.Toggle())
	assert.Nil(t, h.Frame(frame))
}

func TestCinematicPlaysAndStops(t *testing.T) {
	h := newHost(t, CinematicHost(32, 18, 1))
	loop := false
	c, err := NewCinematic(h, CinematicOptions{
		AssetRef:        "pc.glb",
		DurationSeconds: 2,
		Loop:            &loop,
		Load:            scenetest.LoadPC,
	})
	require.NoError(t, err)
	settle(t, h)
	require.Equal(t, Ready, c.State())
	require.NotNil(t, c.Timeline())

	start, _ := c.Timeline().CameraAt(0)
	assert.InDelta(t, 0, h.Camera().Position.Sub(start).Len(), 1e-6)

	for i := 0; i < 30 && !c.Done(); i++ {
		h.Frame(0.1)
	}
	assert.True(t, c.Done())

	end, _ := c.Timeline().CameraAt(2)
	assert.InDelta(t, 0, h.Camera().Position.Sub(end).Len(), 1e-6)

	gpu, ok := c.reg.Get("gpu")
	require.True(t, ok)
	got := pose.FromTransform(h.Model().Graph.Node(gpu.Handle).Transform)
	assert.InDelta(t, 0, got.Position.Sub(mathutil.Vec3{0, -0.1, 0.2}).Len(), 1e-6)
	assert.InDelta(t, 1, got.Scale[0], 1e-9)
}

func TestCinematicLoopsByDefault(t *testing.T) {
	h := newHost(t, CinematicHost(32, 18, 1))
	c, err := NewCinematic(h, CinematicOptions{AssetRef: "pc.glb", DurationSeconds: 1, Load: scenetest.LoadPC})
	require.NoError(t, err)
	settle(t, h)

	for i := 0; i < 30; i++ {
		h.Frame(0.1)
	}
	assert.False(t, c.Done())
	assert.GreaterOrEqual(t, c.Timeline().Cycle(), 1)
}

func TestCinematicNetworkFailure(t *testing.T) {
	h := newHost(t, CinematicHost(32, 18, 1))
	c, err := NewCinematic(h, CinematicOptions{AssetRef: "pc.glb", Load: scenetest.FailLoad})
	require.NoError(t, err)
	settle(t, h)

	assert.Equal(t, Failed, c.State())
	assert.ErrorIs(t, c.Err(), asset.ErrModelLoad)
	assert.Nil(t, c.Timeline())
	assert.NotNil(t, h.Frame(frame))
}

func TestPolish(t *testing.T) {
	g := scene.NewGraph()
	g.Materials = []*scene.Material{
		{Metalness: 0.5, Roughness: 0.5},
		{Metalness: 0.95, Roughness: 0.05},
		nil,
	}
	Polish(g)
	assert.InDelta(t, 0.6, g.Materials[0].Metalness, 1e-9)
	assert.InDelta(t, 0.4, g.Materials[0].Roughness, 1e-9)
	assert.Equal(t, 1.0, g.Materials[1].Metalness)
	assert.Equal(t, 0.0, g.Materials[1].Roughness)
}
