package choreo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/parts"
	"pc-showcase/internal/pose"
	"pc-showcase/internal/scene"
	"pc-showcase/internal/scenetest"
)

const frame = 1.0 / 60

type rig struct {
	g     *scene.Graph
	reg   *parts.Registry
	store *pose.Store
}

func newRig(t *testing.T, table pose.Table) rig {
	t.Helper()
	g, root := scenetest.PC()
	reg, err := parts.Resolve(g, root, parts.DefaultCatalog)
	require.NoError(t, err)
	store := pose.NewStore(table, 1)
	require.NoError(t, store.CaptureAssembled(g, reg))
	return rig{g, reg, store}
}

func (r rig) current(name string) pose.Pose {
	sa, _ := r.reg.Get(name)
	return pose.FromTransform(r.g.Node(sa.Handle).Transform)
}

func TestEaseBounds(t *testing.T) {
	for name, e := range Eases {
		assert.InDelta(t, 0, e(0), 1e-12, name)
		assert.InDelta(t, 1, e(1), 1e-12, name)
	}
	assert.InDelta(t, 0.5, Power2InOut(0.5), 1e-12)
	assert.InDelta(t, 0.875, Power2Out(0.5), 1e-12)
	assert.InDelta(t, 0.75, Power1Out(0.5), 1e-12)
}

func TestPlayheadStates(t *testing.T) {
	p := NewPlayhead(1)
	assert.Equal(t, AtStart, p.State())

	p.Play(Reverse)
	assert.Equal(t, AtStart, p.State(), "reverse at start stays put")

	p.Play(Forward)
	assert.Equal(t, PlayingForward, p.State())
	p.Advance(0.4)
	p.Pause()
	assert.Equal(t, Paused, p.State())
	p.Advance(0.4)
	assert.InDelta(t, 0.4, p.Time(), 1e-12)

	p.Play(Reverse)
	p.Advance(0.1)
	assert.InDelta(t, 0.3, p.Time(), 1e-12)
	p.Advance(5)
	assert.Equal(t, AtStart, p.State())
	assert.Zero(t, p.Time())

	p.Play(Forward)
	p.Advance(10)
	assert.Equal(t, AtEnd, p.State())
	assert.Equal(t, 1.0, p.Time())
	assert.Equal(t, "at-end", p.State().String())
}

func TestToggleExplodesAllParts(t *testing.T) {
	r := newRig(t, pose.InteractiveOffsets)
	tg, err := NewToggle(r.g, r.reg, r.store, ToggleOptions{})
	require.NoError(t, err)

	tg.Explode()
	assert.True(t, tg.Exploded(), "intent flips before motion")
	for i := 0; i < 200; i++ {
		tg.Update(frame)
	}
	assert.Equal(t, AtEnd, tg.State())
	for _, sa := range r.reg.All() {
		want, _ := r.store.Exploded(sa.Name)
		assert.True(t, want.ApproxEqual(r.current(sa.Name), 1e-12), sa.Name)
	}
}

func TestToggleReverseIsContinuous(t *testing.T) {
	r := newRig(t, pose.InteractiveOffsets)
	tg, err := NewToggle(r.g, r.reg, r.store, ToggleOptions{})
	require.NoError(t, err)

	tg.Explode()
	for tg.Progress() < 0.3 {
		tg.Update(frame)
	}
	before := r.current(parts.GPU)
	// Largest per-frame move anywhere on the curve.
	a, _ := r.store.Assembled(parts.GPU)
	e, _ := r.store.Exploded(parts.GPU)
	maxStep := a.Position.DistTo(e.Position) * 3 * frame / DefaultToggleDuration

	tg.Assemble()
	assert.False(t, tg.Exploded())
	assert.Equal(t, PlayingReverse, tg.State())
	tg.Update(frame)
	after := r.current(parts.GPU)
	assert.LessOrEqual(t, before.Position.DistTo(after.Position), maxStep+1e-12)
	assert.Less(t, tg.Progress(), 0.3)

	for i := 0; i < 200; i++ {
		tg.Update(frame)
	}
	assert.True(t, a.ApproxEqual(r.current(parts.GPU), 1e-12))
	assert.Equal(t, AtStart, tg.State())
}

func TestToggleFlip(t *testing.T) {
	r := newRig(t, pose.InteractiveOffsets)
	tg, err := NewToggle(r.g, r.reg, r.store, ToggleOptions{Duration: 0.5})
	require.NoError(t, err)
	assert.True(t, tg.Flip())
	assert.False(t, tg.Flip())
}

func TestToggleZeroIntensityStaysAssembled(t *testing.T) {
	r := newRig(t, pose.InteractiveOffsets)
	zero := 0.0
	tg, err := NewToggle(r.g, r.reg, r.store, ToggleOptions{Intensity: &zero})
	require.NoError(t, err)

	tg.Explode()
	for i := 0; i < 200; i++ {
		tg.Update(frame)
	}
	assert.Equal(t, AtEnd, tg.State())
	for _, sa := range r.reg.All() {
		home, _ := r.store.Assembled(sa.Name)
		assert.True(t, home.ApproxEqual(r.current(sa.Name), 1e-12), sa.Name)
	}
}

func TestToggleNeedsCapture(t *testing.T) {
	g, root := scenetest.PC()
	reg, err := parts.Resolve(g, root, parts.DefaultCatalog)
	require.NoError(t, err)
	_, err = NewToggle(g, reg, pose.NewStore(nil, 1), ToggleOptions{})
	assert.ErrorIs(t, err, pose.ErrNotCaptured)
}

func TestDefaultScheduleIsValid(t *testing.T) {
	for _, d := range []float64{11.5, 6, 20} {
		s := DefaultSchedule(d)
		require.NoError(t, s.Validate(), "duration %v", d)
		require.Len(t, s.Snaps, len(AssemblyOrder))
		for i := 1; i < len(s.Snaps); i++ {
			assert.GreaterOrEqual(t, s.Snaps[i].Start, s.Snaps[i-1].Start)
		}
	}
	s := DefaultSchedule(11.5)
	assert.Equal(t, parts.CPU, s.Snaps[0].Part)
	assert.InDelta(t, 0.6, s.Snaps[0].Start, 1e-12)
	assert.Equal(t, parts.SidePanel, s.Snaps[len(s.Snaps)-1].Part)
}

func TestValidateRejectsOverlap(t *testing.T) {
	s := DefaultSchedule(11.5)
	s.Snaps = append(s.Snaps, Snap{Part: parts.CPU, Start: s.Snaps[0].Start + 0.1, Duration: 0.5, Ease: Linear})
	assert.Error(t, s.Validate())

	s = DefaultSchedule(11.5)
	s.Duration = 5
	assert.Error(t, s.Validate())
}

func TestPulsePeaksAndSettles(t *testing.T) {
	p := Pulse{Start: 1, Half: 0.5, Peak: 1.02}
	assert.Equal(t, 1.0, p.Factor(0.9))
	assert.InDelta(t, 1.02, p.Factor(1.5), 1e-12)
	assert.Equal(t, 1.0, p.Factor(2))
	assert.InDelta(t, p.Factor(1.25), p.Factor(1.75), 1e-12)
}

func TestCameraTrackContinuous(t *testing.T) {
	track := DefaultSchedule(11.5).Camera
	pos, target := track.At(0)
	assert.Equal(t, mathutil.Vec3{2.8, 1.8, 3.6}, pos)
	assert.Equal(t, mathutil.Vec3{0.2, 0.8, 0}, target)

	for _, k := range track.Keys {
		before, _ := track.At(k.Time - 1e-9)
		after, _ := track.At(k.Time + 1e-9)
		assert.True(t, before.ApproxEqual(after, 1e-6), "jump at %v", k.Time)
	}
	end, _ := track.At(11.5)
	assert.Equal(t, mathutil.Vec3{2.6, 1.6, 3.1}, end)
}

func newTimeline(t *testing.T, loop bool) (rig, *scene.Camera, *Timeline) {
	t.Helper()
	r := newRig(t, pose.CinematicOffsets)
	cam := scene.DefaultCamera(16.0 / 9)
	tl, err := NewTimeline(r.g, r.reg, r.store, &cam, TimelineOptions{Duration: DefaultDuration, Loop: loop, LoopPause: DefaultLoopPause})
	require.NoError(t, err)
	require.NoError(t, tl.Start())
	return r, &cam, tl
}

func TestTimelineStartsExplodedAndEndsAssembled(t *testing.T) {
	r, cam, tl := newTimeline(t, false)
	for _, sa := range r.reg.All() {
		want, _ := r.store.Exploded(sa.Name)
		assert.True(t, want.ApproxEqual(r.current(sa.Name), 1e-12), sa.Name)
	}
	assert.Equal(t, mathutil.Vec3{2.8, 1.8, 3.6}, cam.Position)

	for i := 0; i < 12*60; i++ {
		tl.Update(frame)
	}
	assert.True(t, tl.Done())
	for _, sa := range r.reg.All() {
		want, _ := r.store.Assembled(sa.Name)
		assert.True(t, want.ApproxEqual(r.current(sa.Name), 1e-9), sa.Name)
	}
	held := r.current(parts.CPU)
	tl.Update(5)
	assert.Equal(t, held, r.current(parts.CPU))
}

func TestTimelineLoopsWithoutDrift(t *testing.T) {
	r, cam, tl := newTimeline(t, true)
	snapshot := func() map[string]pose.Pose {
		out := map[string]pose.Pose{}
		for _, sa := range r.reg.All() {
			out[sa.Name] = r.current(sa.Name)
		}
		return out
	}
	first := snapshot()
	firstCam := cam.Position

	for cycle := 1; cycle <= 3; cycle++ {
		for tl.Cycle() < cycle {
			tl.Update(frame)
		}
		assert.Zero(t, tl.Time())
		assert.Equal(t, first, snapshot(), "cycle %d", cycle)
		assert.Equal(t, firstCam, cam.Position)
	}
}

func TestTimelinePausesBeforeLooping(t *testing.T) {
	_, _, tl := newTimeline(t, true)
	tl.Update(DefaultDuration)
	assert.Equal(t, DefaultDuration, tl.Time())
	tl.Update(DefaultLoopPause / 2)
	assert.Equal(t, 0, tl.Cycle())
	assert.Equal(t, DefaultDuration, tl.Time())
	tl.Update(DefaultLoopPause / 2)
	assert.Equal(t, 1, tl.Cycle())
	assert.Zero(t, tl.Time())
}

func TestTimelineSkipsMissingParts(t *testing.T) {
	r, _, tl := newTimeline(t, false)
	_, ok := r.reg.Get(parts.Cooler)
	require.False(t, ok)
	_, ok = tl.PoseAt(parts.Cooler, 1)
	assert.False(t, ok)
}

func TestTimelineScalePulse(t *testing.T) {
	_, _, tl := newTimeline(t, false)
	var cpu Snap
	for _, s := range tl.Schedule().Snaps {
		if s.Part == parts.CPU {
			cpu = s
		}
	}
	peak := cpu.Start + cpu.Duration*0.65 + cpu.Duration*0.35
	p, ok := tl.PoseAt(parts.CPU, peak)
	require.True(t, ok)
	assert.InDelta(t, 1.02, p.Scale[0], 1e-9)
	p, _ = tl.PoseAt(parts.CPU, cpu.End()+cpu.Duration*0.35+0.01)
	assert.InDelta(t, 1.0, p.Scale[0], 1e-12)
}
