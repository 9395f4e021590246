package choreo

import (
	"errors"

	"go.uber.org/zap"

	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/parts"
	"pc-showcase/internal/pose"
	"pc-showcase/internal/scene"
)

// Cinematic defaults.
const (
	DefaultDuration  = 11.5
	DefaultLoopPause = 1.0
)

// TimelineOptions configures a Timeline.
type TimelineOptions struct {
	Duration  float64
	Loop      bool
	LoopPause float64
	// Schedule replaces DefaultSchedule(Duration) when set.
	Schedule *Schedule
	Logger   *zap.Logger
}

// Timeline plays the cinematic assembly: parts start exploded and snap home
// one after another while the camera follows its keyframes.
type Timeline struct {
	graph  *scene.Graph
	reg    *parts.Registry
	store  *pose.Store
	camera *scene.Camera
	log    *zap.Logger

	sched     Schedule
	snaps     map[string]Snap
	pulses    map[string][]Pulse
	head      *Playhead
	loop      bool
	pause     float64
	pauseLeft float64
	holding   bool
	cycle     int
}

// NewTimeline validates the schedule and returns a timeline parked at 0.
// Call Start to place the parts and begin playing.
func NewTimeline(g *scene.Graph, reg *parts.Registry, store *pose.Store, cam *scene.Camera, opts TimelineOptions) (*Timeline, error) {
	if !store.Captured() {
		return nil, pose.ErrNotCaptured
	}
	if cam == nil {
		return nil, errors.New("choreo: timeline needs a camera")
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultDuration
	}
	if opts.LoopPause < 0 {
		opts.LoopPause = 0
	}
	sched := DefaultSchedule(opts.Duration)
	if opts.Schedule != nil {
		sched = *opts.Schedule
	}
	if err := sched.Validate(); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	tl := &Timeline{
		graph:  g,
		reg:    reg,
		store:  store,
		camera: cam,
		log:    log,
		sched:  sched,
		snaps:  make(map[string]Snap, len(sched.Snaps)),
		pulses: make(map[string][]Pulse),
		head:   NewPlayhead(sched.Duration),
		loop:   opts.Loop,
		pause:  opts.LoopPause,
	}
	for _, s := range sched.Snaps {
		tl.snaps[s.Part] = s
	}
	for _, p := range sched.Pulses {
		tl.pulses[p.Part] = append(tl.pulses[p.Part], p)
	}
	return tl, nil
}

// Start resets every part to its exploded pose and plays from 0.
func (tl *Timeline) Start() error {
	if err := tl.restart(); err != nil {
		return err
	}
	tl.cycle = 0
	return nil
}

func (tl *Timeline) restart() error {
	if err := tl.store.ResetAssembled(tl.graph, tl.reg); err != nil {
		return err
	}
	if err := tl.store.ResetExploded(tl.graph, tl.reg); err != nil {
		return err
	}
	tl.head.Seek(0)
	tl.head.Play(Forward)
	tl.holding = false
	tl.apply(0)
	return nil
}

// Update advances the program by dt seconds. At the end it holds the final
// pose; when looping it waits LoopPause and then restarts from 0.
func (tl *Timeline) Update(dt float64) {
	if tl.holding {
		if !tl.loop {
			return
		}
		tl.pauseLeft -= dt
		if tl.pauseLeft > 0 {
			return
		}
		if err := tl.restart(); err != nil {
			tl.log.Warn("timeline restart failed", zap.Error(err))
			return
		}
		tl.cycle++
		tl.log.Debug("timeline loop", zap.Int("cycle", tl.cycle))
		return
	}
	t := tl.head.Advance(dt)
	tl.apply(t)
	if tl.head.State() == AtEnd {
		tl.holding = true
		tl.pauseLeft = tl.pause
	}
}

// Time returns the current program time.
func (tl *Timeline) Time() float64 { return tl.head.Time() }

// Cycle returns how many times the program has restarted.
func (tl *Timeline) Cycle() int { return tl.cycle }

// Done reports whether a non-looping timeline has finished.
func (tl *Timeline) Done() bool { return tl.holding && !tl.loop }

// Schedule returns the program being played.
func (tl *Timeline) Schedule() Schedule { return tl.sched }

// PoseAt returns name's pose at program time t without touching the graph.
// Parts without a snap hold their exploded pose.
func (tl *Timeline) PoseAt(name string, t float64) (pose.Pose, bool) {
	asm, ok := tl.store.Assembled(name)
	if !ok {
		return pose.Pose{}, false
	}
	ex, _ := tl.store.Exploded(name)
	p := ex
	if s, ok := tl.snaps[name]; ok {
		p = ex.Lerp(asm, s.Progress(t))
	}
	k := 1.0
	for _, pl := range tl.pulses[name] {
		k *= pl.Factor(t)
	}
	p.Scale = asm.Scale.Scale(k)
	return p, true
}

// CameraAt returns the camera placement at program time t.
func (tl *Timeline) CameraAt(t float64) (pos, target mathutil.Vec3) {
	return tl.sched.Camera.At(t)
}

func (tl *Timeline) apply(t float64) {
	for _, sa := range tl.reg.All() {
		if p, ok := tl.PoseAt(sa.Name, t); ok {
			pose.ApplyPose(tl.graph, sa, p)
		}
	}
	if len(tl.sched.Camera.Keys) > 0 {
		tl.camera.Position, tl.camera.Target = tl.sched.Camera.At(t)
	}
}
