package choreo

import (
	"pc-showcase/internal/parts"
	"pc-showcase/internal/pose"
	"pc-showcase/internal/scene"
)

// DefaultToggleDuration is the explode/assemble transition length in seconds.
const DefaultToggleDuration = 1.2

// ToggleOptions configures a Toggle. Zero values take defaults.
type ToggleOptions struct {
	Duration float64
	Ease     Ease
	// Intensity overrides the store's multiplier when set.
	Intensity *float64
}

// Toggle interpolates every sub-assembly between its assembled and exploded
// pose with one shared, reversible parameter.
type Toggle struct {
	graph     *scene.Graph
	reg       *parts.Registry
	store     *pose.Store
	head      *Playhead
	ease      Ease
	intensity float64
	exploded  bool
}

// NewToggle returns a toggle in the assembled state. The store must already
// hold the assembled poses.
func NewToggle(g *scene.Graph, reg *parts.Registry, store *pose.Store, opts ToggleOptions) (*Toggle, error) {
	if !store.Captured() {
		return nil, pose.ErrNotCaptured
	}
	if opts.Duration <= 0 {
		opts.Duration = DefaultToggleDuration
	}
	if opts.Ease == nil {
		opts.Ease = Power2Out
	}
	intensity := store.Intensity()
	if opts.Intensity != nil {
		intensity = *opts.Intensity
	}
	return &Toggle{
		graph:     g,
		reg:       reg,
		store:     store,
		head:      NewPlayhead(opts.Duration),
		ease:      opts.Ease,
		intensity: intensity,
	}, nil
}

// Exploded reports the intended end state. It changes as soon as a trigger
// fires, not when the motion completes.
func (t *Toggle) Exploded() bool { return t.exploded }

// Progress returns the shared interpolation parameter before easing.
func (t *Toggle) Progress() float64 { return t.head.Progress() }

// State returns the playhead state.
func (t *Toggle) State() State { return t.head.State() }

// Explode plays toward the exploded pose from wherever the parts are now.
func (t *Toggle) Explode() {
	t.exploded = true
	t.head.Play(Forward)
}

// Assemble plays back toward the assembled pose from the current position.
func (t *Toggle) Assemble() {
	t.exploded = false
	t.head.Play(Reverse)
}

// Flip switches the intended state and returns it.
func (t *Toggle) Flip() bool {
	if t.exploded {
		t.Assemble()
	} else {
		t.Explode()
	}
	return t.exploded
}

// Update advances the playhead and writes the sampled poses.
func (t *Toggle) Update(dt float64) {
	t.head.Advance(dt)
	t.apply()
}

// PoseAt returns name's pose at linear progress u without touching the graph.
func (t *Toggle) PoseAt(name string, u float64) (pose.Pose, bool) {
	from, ok := t.store.Assembled(name)
	if !ok {
		return pose.Pose{}, false
	}
	to, _ := t.store.ExplodedPose(name, t.intensity)
	return from.Lerp(to, t.ease(clamp01(u))), true
}

func (t *Toggle) apply() {
	u := t.head.Progress()
	for _, sa := range t.reg.All() {
		if p, ok := t.PoseAt(sa.Name, u); ok {
			pose.ApplyPose(t.graph, sa, p)
		}
	}
}
