package viewport

import "pc-showcase/internal/asset"

// Event is any input delivered to a host through Post.
type Event interface {
	event()
}

type (
	// PointerEnter fires when the pointer enters the surface.
	PointerEnter struct{}
	// PointerLeave fires when the pointer leaves the surface.
	PointerLeave struct{}
	// PointerMove carries a surface pixel position.
	PointerMove struct{ X, Y float64 }
	// PointerClick is a primary click at the last pointer position.
	PointerClick struct{}
	// PointerDrag is a drag by a pixel delta.
	PointerDrag struct{ DX, DY float64 }
	// Wheel is a scroll; positive moves the camera away.
	Wheel struct{ Delta float64 }
	// Resize changes the surface size.
	Resize struct{ W, H int }
	// Visibility reports the hosting document's state.
	Visibility struct{ Hidden bool }
	// Call runs fn on the loop goroutine.
	Call struct{ Fn func(*Host) }
)

// loaded is posted by a load goroutine when it finishes.
type loaded struct {
	gen   uint64
	ref   string
	model *asset.Model
	err   error
}

func (PointerEnter) event() {}
func (PointerLeave) event() {}
func (PointerMove) event()  {}
func (PointerClick) event() {}
func (PointerDrag) event()  {}
func (Wheel) event()        {}
func (Resize) event()       {}
func (Visibility) event()   {}
func (Call) event()         {}
func (loaded) event()       {}
