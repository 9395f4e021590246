package choreo

import (
	"fmt"

	"pc-showcase/internal/mathutil"
)

// State is the playhead's motion state.
type State int

const (
	AtStart State = iota
	PlayingForward
	PlayingReverse
	Paused
	AtEnd
)

func (s State) String() string {
	switch s {
	case AtStart:
		return "at-start"
	case PlayingForward:
		return "playing-forward"
	case PlayingReverse:
		return "playing-reverse"
	case Paused:
		return "paused"
	case AtEnd:
		return "at-end"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Direction selects which way Play moves the playhead.
type Direction int

const (
	Forward Direction = 1
	Reverse Direction = -1
)

// Playhead owns the authoritative current time of one choreography.
type Playhead struct {
	duration float64
	time     float64
	state    State
}

// NewPlayhead returns a playhead parked at 0. duration must be positive.
func NewPlayhead(duration float64) *Playhead {
	if duration <= 0 {
		duration = 1
	}
	return &Playhead{duration: duration, state: AtStart}
}

// Duration returns the playhead's span.
func (p *Playhead) Duration() float64 { return p.duration }

// Time returns the current time in [0, Duration].
func (p *Playhead) Time() float64 { return p.time }

// Progress returns Time/Duration.
func (p *Playhead) Progress() float64 { return p.time / p.duration }

// State returns the current motion state.
func (p *Playhead) State() State { return p.state }

// Playing reports whether Advance moves the time.
func (p *Playhead) Playing() bool {
	return p.state == PlayingForward || p.state == PlayingReverse
}

// Play starts moving in dir from the current time. Playing toward a bound
// the playhead already sits on settles it at that bound.
func (p *Playhead) Play(dir Direction) {
	switch {
	case dir == Forward && p.time >= p.duration:
		p.state = AtEnd
	case dir == Forward:
		p.state = PlayingForward
	case p.time <= 0:
		p.state = AtStart
	default:
		p.state = PlayingReverse
	}
}

// Pause freezes the playhead at its current time.
func (p *Playhead) Pause() {
	if p.Playing() {
		p.state = Paused
	}
}

// Seek moves to t, clamped to the span, and pauses unless t is a bound.
func (p *Playhead) Seek(t float64) {
	p.time = mathutil.Clamp(t, 0, p.duration)
	p.settle(Paused)
}

// Advance moves the time by dt in the current direction and returns the new
// time. It stops at either bound.
func (p *Playhead) Advance(dt float64) float64 {
	if dt <= 0 {
		return p.time
	}
	switch p.state {
	case PlayingForward:
		p.time += dt
		if p.time >= p.duration {
			p.time = p.duration
			p.state = AtEnd
		}
	case PlayingReverse:
		p.time -= dt
		if p.time <= 0 {
			p.time = 0
			p.state = AtStart
		}
	}
	return p.time
}

func (p *Playhead) settle(otherwise State) {
	switch {
	case p.time <= 0:
		p.state = AtStart
	case p.time >= p.duration:
		p.state = AtEnd
	default:
		p.state = otherwise
	}
}
