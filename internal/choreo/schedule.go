package choreo

import (
	"fmt"
	"math"
	"sort"

	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/parts"
)

// Snap moves one part from its exploded pose to its assembled pose.
type Snap struct {
	Part     string
	Start    float64
	Duration float64
	Ease     Ease
}

// End returns Start+Duration.
func (s Snap) End() float64 { return s.Start + s.Duration }

// Progress returns eased progress of the snap at time t.
func (s Snap) Progress(t float64) float64 {
	if s.Duration <= 0 {
		if t >= s.Start {
			return 1
		}
		return 0
	}
	return s.Ease(clamp01((t - s.Start) / s.Duration))
}

// Pulse scales a part up to Peak over Half seconds and back again.
type Pulse struct {
	Part  string
	Start float64
	Half  float64
	Peak  float64
}

// End returns the time the pulse settles back to 1.
func (p Pulse) End() float64 { return p.Start + 2*p.Half }

// Factor returns the scale multiplier at time t. The return leg replays the
// rising curve backwards.
func (p Pulse) Factor(t float64) float64 {
	if p.Half <= 0 || t <= p.Start || t >= p.End() {
		return 1
	}
	u := (t - p.Start) / p.Half
	if u > 1 {
		u = 2 - u
	}
	return 1 + (p.Peak-1)*Power1Out(u)
}

// CameraKey is where the camera is and what it looks at by Time.
type CameraKey struct {
	Time     float64
	Position mathutil.Vec3
	Target   mathutil.Vec3
}

// CameraTrack interpolates between keyframes with an eased segment each.
type CameraTrack struct {
	Keys []CameraKey
	Ease Ease
}

// At returns the camera position and look-at target at time t.
func (c CameraTrack) At(t float64) (pos, target mathutil.Vec3) {
	k := c.Keys
	if len(k) == 0 {
		return pos, target
	}
	if t <= k[0].Time {
		return k[0].Position, k[0].Target
	}
	last := k[len(k)-1]
	if t >= last.Time {
		return last.Position, last.Target
	}
	i := sort.Search(len(k), func(i int) bool { return k[i].Time > t }) - 1
	a, b := k[i], k[i+1]
	ease := c.Ease
	if ease == nil {
		ease = Power2InOut
	}
	u := ease(clamp01((t - a.Time) / (b.Time - a.Time)))
	return a.Position.Lerp(b.Position, u), a.Target.Lerp(b.Target, u)
}

// Schedule is the full cinematic program: one assembly snap and one scale
// pulse per part, plus the camera track.
type Schedule struct {
	Duration float64
	Snaps    []Snap
	Pulses   []Pulse
	Camera   CameraTrack
}

// AssemblyOrder is the narrative order in which parts snap into place.
var AssemblyOrder = []string{
	parts.CPU, parts.Motherboard, parts.Cooler, parts.RAM1, parts.RAM2,
	parts.SSD, parts.GPU, parts.PSU, parts.Cables, parts.FrontFans,
	parts.RearFan, parts.SidePanel,
}

// per-part snap length and the gap to the next part's start, in units of D/8.
var cadence = map[string]struct{ length, gap float64 }{
	parts.CPU:         {0.6, 0.5},
	parts.Motherboard: {0.6, 0.5},
	parts.Cooler:      {0.6, 0.5},
	parts.RAM1:        {0.6, 0.25},
	parts.RAM2:        {0.6, 0.35},
	parts.SSD:         {0.6, 0.45},
	parts.GPU:         {0.6, 0.6},
	parts.PSU:         {0.6, 0.45},
	parts.Cables:      {0.4, 0.2},
	parts.FrontFans:   {0.35, 0.2},
	parts.RearFan:     {0.35, 0.2},
	parts.SidePanel:   {0.6, 0},
}

// SampleCamera is the authored camera path for an 11.5 second program.
// Each key time is when the camera arrives there; the move into it spans
// from the previous key.
var SampleCamera = []CameraKey{
	{0.0, mathutil.Vec3{2.8, 1.8, 3.6}, mathutil.Vec3{0.2, 0.8, 0}},
	{0.9, mathutil.Vec3{0.9, 1.1, 1.2}, mathutil.Vec3{0.1, 0.7, -0.2}},
	{2.2, mathutil.Vec3{1.4, 1.2, 1.1}, mathutil.Vec3{0.15, 0.7, -0.15}},
	{3.6, mathutil.Vec3{1.2, 1.0, 1.4}, mathutil.Vec3{0.2, 0.6, -0.2}},
	{4.9, mathutil.Vec3{-1.3, 1.0, 1.2}, mathutil.Vec3{-0.1, 0.7, -0.2}},
	{6.2, mathutil.Vec3{0.8, 0.9, 1.8}, mathutil.Vec3{0.1, 0.4, 0.2}},
	{7.5, mathutil.Vec3{1.6, 1.2, 2.6}, mathutil.Vec3{0, 0.4, 0.2}},
	{8.8, mathutil.Vec3{2.0, 1.6, 3.0}, mathutil.Vec3{0, 0.7, 0}},
	{10.3, mathutil.Vec3{2.6, 1.7, 3.2}, mathutil.Vec3{0, 0.7, 0}},
	{11.5, mathutil.Vec3{2.6, 1.6, 3.1}, mathutil.Vec3{0, 0.7, 0}},
}

const (
	sampleDuration = 11.5
	leadIn         = 0.6
	pulsePeak      = 1.02
)

// DefaultSchedule lays the program out over duration seconds. Stagger and
// snap lengths scale with duration; the camera path is stretched to fit.
func DefaultSchedule(duration float64) Schedule {
	step := duration / 8
	s := Schedule{Duration: duration, Camera: CameraTrack{Ease: Power2InOut}}
	t := leadIn * math.Min(1, duration/sampleDuration)
	for _, name := range AssemblyOrder {
		c := cadence[name]
		length := step * c.length
		s.Snaps = append(s.Snaps, Snap{Part: name, Start: t, Duration: length, Ease: Power2InOut})
		s.Pulses = append(s.Pulses, Pulse{Part: name, Start: t + length*0.65, Half: length * 0.35, Peak: pulsePeak})
		t += step * c.gap
	}
	scale := duration / sampleDuration
	for _, k := range SampleCamera {
		k.Time *= scale
		s.Camera.Keys = append(s.Camera.Keys, k)
	}
	return s
}

// Validate checks that no part has overlapping entries on one channel and
// that everything ends within the duration.
func (s Schedule) Validate() error {
	type span struct{ start, end float64 }
	check := func(channel string, spans map[string][]span) error {
		for part, list := range spans {
			sort.Slice(list, func(i, j int) bool { return list[i].start < list[j].start })
			for i := 1; i < len(list); i++ {
				if list[i].start < list[i-1].end-mathutil.Epsilon {
					return fmt.Errorf("choreo: %s entries for %s overlap at %.3f", channel, part, list[i].start)
				}
			}
		}
		return nil
	}
	within := func(what string, end float64) error {
		if end > s.Duration+mathutil.Epsilon {
			return fmt.Errorf("choreo: %s ends at %.3f after duration %.3f", what, end, s.Duration)
		}
		return nil
	}

	snaps := map[string][]span{}
	for _, e := range s.Snaps {
		if e.Start < 0 || e.Duration < 0 {
			return fmt.Errorf("choreo: snap for %s has negative time", e.Part)
		}
		if err := within("snap "+e.Part, e.End()); err != nil {
			return err
		}
		snaps[e.Part] = append(snaps[e.Part], span{e.Start, e.End()})
	}
	pulses := map[string][]span{}
	for _, e := range s.Pulses {
		if err := within("pulse "+e.Part, e.End()); err != nil {
			return err
		}
		pulses[e.Part] = append(pulses[e.Part], span{e.Start, e.End()})
	}
	if err := check("snap", snaps); err != nil {
		return err
	}
	if err := check("pulse", pulses); err != nil {
		return err
	}
	for i, k := range s.Camera.Keys {
		if err := within("camera key", k.Time); err != nil {
			return err
		}
		if i > 0 && k.Time < s.Camera.Keys[i-1].Time {
			return fmt.Errorf("choreo: camera key %d goes back in time", i)
		}
	}
	return nil
}
