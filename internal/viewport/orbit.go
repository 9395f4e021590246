package viewport

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/scene"
)

// OrbitOptions configures damped orbit controls. Panning is not supported.
type OrbitOptions struct {
	MinDistance float64
	MaxDistance float64
	// RadiansPerPixel converts drag distance to rotation.
	RadiansPerPixel float64
	// Frequency and Damping shape the harmonica springs.
	Frequency float64
	Damping   float64
}

// DefaultOrbit keeps the camera between 2 and 6 units from the target.
func DefaultOrbit() OrbitOptions {
	return OrbitOptions{MinDistance: 2, MaxDistance: 6, RadiansPerPixel: 0.005, Frequency: 6, Damping: 1}
}

// springAxis eases one spherical coordinate toward its goal.
type springAxis struct {
	pos, vel, goal float64
}

func (a *springAxis) step(s harmonica.Spring) {
	a.pos, a.vel = s.Update(a.pos, a.vel, a.goal)
}

// Orbit rotates the camera around its target on a sphere.
type Orbit struct {
	opts                     OrbitOptions
	target                   mathutil.Vec3
	azimuth, polar, distance springAxis

	spring   harmonica.Spring
	springDT float64
}

const polarMargin = 0.05

// NewOrbit starts from the camera's current placement.
func NewOrbit(cam scene.Camera, opts OrbitOptions) *Orbit {
	if opts.MaxDistance <= 0 {
		opts = DefaultOrbit()
	}
	o := &Orbit{opts: opts, target: cam.Target}
	off := cam.Position.Sub(cam.Target)
	r := off.Len()
	if r < mathutil.Epsilon {
		off, r = mathutil.Vec3{0, 0, 1}, 1
	}
	az := math.Atan2(off[0], off[2])
	pol := math.Acos(mathutil.Clamp(off[1]/r, -1, 1))
	o.azimuth = springAxis{pos: az, goal: az}
	o.polar = springAxis{pos: pol, goal: pol}
	o.distance = springAxis{pos: r, goal: mathutil.Clamp(r, opts.MinDistance, opts.MaxDistance)}
	return o
}

// Drag rotates the goal by a pointer delta in pixels.
func (o *Orbit) Drag(dx, dy float64) {
	k := o.opts.RadiansPerPixel
	o.azimuth.goal -= dx * k
	o.polar.goal = mathutil.Clamp(o.polar.goal-dy*k, polarMargin, math.Pi-polarMargin)
}

// Zoom scales the goal distance; positive delta moves away.
func (o *Orbit) Zoom(delta float64) {
	o.distance.goal = mathutil.Clamp(o.distance.goal*math.Exp(delta*0.001), o.opts.MinDistance, o.opts.MaxDistance)
}

// Distance returns the current distance to the target.
func (o *Orbit) Distance() float64 { return o.distance.pos }

// GoalDistance returns the distance the orbit is easing toward.
func (o *Orbit) GoalDistance() float64 { return o.distance.goal }

// Update advances the springs by dt and writes the camera position.
func (o *Orbit) Update(dt float64, cam *scene.Camera) {
	if dt > 0 {
		if dt != o.springDT {
			o.spring = harmonica.NewSpring(dt, o.opts.Frequency, o.opts.Damping)
			o.springDT = dt
		}
		o.azimuth.step(o.spring)
		o.polar.step(o.spring)
		o.distance.step(o.spring)
	}
	r := o.distance.pos
	sp, cp := math.Sincos(o.polar.pos)
	sa, ca := math.Sincos(o.azimuth.pos)
	cam.Target = o.target
	cam.Position = o.target.Add(mathutil.Vec3{r * sp * sa, r * cp, r * sp * ca})
}
