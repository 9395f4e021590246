package showcase

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"pc-showcase/internal/asset"
	"pc-showcase/internal/choreo"
	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/parts"
	"pc-showcase/internal/pose"
	"pc-showcase/internal/scene"
	"pc-showcase/internal/viewport"
)

// CinematicOptions configures the assembly sequence.
type CinematicOptions struct {
	AssetRef string
	// DurationSeconds defaults to choreo.DefaultDuration.
	DurationSeconds float64
	// Loop defaults to true.
	Loop     *bool
	Fallback image.Image
	Load     asset.LoadFunc
}

// Cinematic plays the exploded-to-assembled sequence with a scripted camera.
type Cinematic struct {
	lifecycle
	opts     CinematicOptions
	reg      *parts.Registry
	timeline *choreo.Timeline
}

// NewCinematic installs the sequence on host and starts loading its asset.
func NewCinematic(host *viewport.Host, opts CinematicOptions) (*Cinematic, error) {
	if opts.DurationSeconds <= 0 {
		opts.DurationSeconds = choreo.DefaultDuration
	}
	c := &Cinematic{lifecycle: lifecycle{host: host}, opts: opts}
	if err := c.start(c, opts.AssetRef, opts.Fallback, opts.Load); err != nil {
		return nil, fmt.Errorf("showcase: start cinematic: %w", err)
	}
	return c, nil
}

func (c *Cinematic) loop() bool {
	return c.opts.Loop == nil || *c.opts.Loop
}

// Loaded tweaks the materials for the studio look and starts the timeline.
func (c *Cinematic) Loaded(h *viewport.Host, m *asset.Model) error {
	Polish(m.Graph)
	reg, err := parts.Resolve(m.Graph, m.Root, parts.DefaultCatalog)
	if err != nil {
		c.fail(err)
		return err
	}
	store := pose.NewStore(pose.CinematicOffsets, 1)
	if err := store.CaptureAssembled(m.Graph, reg); err != nil {
		c.fail(err)
		return err
	}
	tl, err := choreo.NewTimeline(m.Graph, reg, store, h.Camera(), choreo.TimelineOptions{
		Duration: c.opts.DurationSeconds,
		Loop:     c.loop(),
		Logger:   h.Logger(),
	})
	if err != nil {
		c.fail(err)
		return err
	}
	if err := tl.Start(); err != nil {
		c.fail(err)
		return err
	}
	c.reg, c.timeline = reg, tl
	c.ready()
	h.Logger().Info("cinematic ready",
		zap.Float64("duration", c.opts.DurationSeconds), zap.Bool("loop", c.loop()))
	return nil
}

// LoadFailed records the error.
func (c *Cinematic) LoadFailed(h *viewport.Host, err error) {
	c.fail(err)
}

// Update advances the timeline.
func (c *Cinematic) Update(h *viewport.Host, dt float64) {
	if c.timeline != nil {
		c.timeline.Update(dt)
	}
}

// Unload drops every reference into the model's graph.
func (c *Cinematic) Unload(h *viewport.Host) {
	if c.reg != nil {
		c.reg.Release()
	}
	c.reg, c.timeline = nil, nil
}

// Timeline returns the running timeline, or nil before the model is ready.
func (c *Cinematic) Timeline() *choreo.Timeline { return c.timeline }

// Done reports whether a non-looping sequence has finished.
func (c *Cinematic) Done() bool {
	return c.timeline != nil && c.timeline.Done()
}

// Polish raises metalness and lowers roughness of every material by 0.1.
func Polish(g *scene.Graph) {
	for _, m := range g.Materials {
		if m == nil {
			continue
		}
		m.Metalness = mathutil.Clamp(m.Metalness+0.1, 0, 1)
		m.Roughness = mathutil.Clamp(m.Roughness-0.1, 0, 1)
	}
}
