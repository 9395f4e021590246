// Package showcase implements the two product widgets on top of a viewport
// host: the hover-to-explode hero view and the looping cinematic assembly.
package showcase

import (
	"context"
	"errors"
	"image"

	"pc-showcase/internal/asset"
	"pc-showcase/internal/scene"
	"pc-showcase/internal/viewport"
)

// Default asset references, relative to the site root.
const (
	DefaultHeroAsset      = "models/pc.glb"
	DefaultCinematicAsset = "models/pc_assembly.glb"
)

// ErrNoAsset is returned when a widget is created without an asset reference.
var ErrNoAsset = errors.New("showcase: no asset reference")

// State is the lifecycle of a widget's model.
type State int

const (
	Loading State = iota
	Ready
	Failed
)

func (s State) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// lifecycle is the load bookkeeping shared by both widgets.
type lifecycle struct {
	host  *viewport.Host
	state State
	err   error
}

// State returns the widget's load state.
func (l *lifecycle) State() State { return l.state }

// Err returns the load or resolve error once the widget has failed.
func (l *lifecycle) Err() error { return l.err }

func (l *lifecycle) ready() {
	l.state = Ready
	l.err = nil
}

func (l *lifecycle) fail(err error) {
	l.state = Failed
	l.err = err
}

// start installs hd on the host and begins loading ref.
func (l *lifecycle) start(hd viewport.Handler, ref string, fallback image.Image, load asset.LoadFunc) error {
	if ref == "" {
		return ErrNoAsset
	}
	if fallback != nil {
		l.host.SetFallbackImage(fallback)
	}
	l.host.SetHandler(hd)
	return l.host.Load(context.Background(), ref, load)
}

// Background colors of the two widgets.
var (
	HeroBackground   = scene.Hex(0x0d1117)
	StudioBackground = scene.Hex(0x07090c)
)

// ExplodedHost returns viewport options for the hero view: hero lights,
// contact shadow and orbit controls.
func ExplodedHost(w, h, supersample int) viewport.Options {
	cam := scene.DefaultCamera(float64(w) / float64(h))
	orbit := viewport.DefaultOrbit()
	ground := scene.HeroGround
	return viewport.Options{
		Width:       w,
		Height:      h,
		Supersample: supersample,
		Background:  HeroBackground,
		Camera:      &cam,
		Rig:         scene.HeroRig(),
		Ground:      &ground,
		Orbit:       &orbit,
	}
}

// CinematicHost returns viewport options for the cinematic sequence. The
// camera is owned by the timeline so there are no orbit controls.
func CinematicHost(w, h, supersample int) viewport.Options {
	cam := scene.DefaultCamera(float64(w) / float64(h))
	cam.FOV = 40
	ground := scene.StudioGround
	return viewport.Options{
		Width:       w,
		Height:      h,
		Supersample: supersample,
		Background:  StudioBackground,
		Camera:      &cam,
		Rig:         scene.StudioRig(),
		Ground:      &ground,
	}
}
