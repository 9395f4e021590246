package showcase

import (
	"fmt"
	"image"

	"go.uber.org/zap"

	"pc-showcase/internal/asset"
	"pc-showcase/internal/choreo"
	"pc-showcase/internal/parts"
	"pc-showcase/internal/pick"
	"pc-showcase/internal/pose"
	"pc-showcase/internal/scene"
	"pc-showcase/internal/viewport"
)

// ExplodedOptions configures the hero view.
type ExplodedOptions struct {
	AssetRef string
	// Offsets override entries of pose.InteractiveOffsets by part name.
	Offsets pose.Table
	// Intensity scales the offsets, 1 when nil. 0 keeps the model assembled.
	Intensity *float64
	// OnPartHover receives the hovered part name, "" when the pointer leaves
	// every part.
	OnPartHover func(name string)
	OnPartClick func(name string)
	Fallback    image.Image
	// Load replaces asset.Load.
	Load asset.LoadFunc
}

// Exploded is the hover-to-explode hero view. Its methods run on the host's
// loop goroutine; use viewport.Call to reach it from elsewhere.
type Exploded struct {
	lifecycle
	opts   ExplodedOptions
	reg    *parts.Registry
	store  *pose.Store
	toggle *choreo.Toggle
	picker *pick.Picker
}

// NewExploded installs the hero view on host and starts loading its asset.
func NewExploded(host *viewport.Host, opts ExplodedOptions) (*Exploded, error) {
	e := &Exploded{lifecycle: lifecycle{host: host}, opts: opts}
	if err := e.start(e, opts.AssetRef, opts.Fallback, opts.Load); err != nil {
		return nil, fmt.Errorf("showcase: start exploded view: %w", err)
	}
	return e, nil
}

// Loaded resolves the parts, captures the assembled pose and arms the toggle.
func (e *Exploded) Loaded(h *viewport.Host, m *asset.Model) error {
	reg, err := parts.Resolve(m.Graph, m.Root, parts.DefaultCatalog)
	if err != nil {
		e.fail(err)
		return err
	}
	store := pose.NewStore(pose.InteractiveOffsets.Merge(e.opts.Offsets), e.intensity())
	if err := store.CaptureAssembled(m.Graph, reg); err != nil {
		e.fail(err)
		return err
	}
	toggle, err := choreo.NewToggle(m.Graph, reg, store, choreo.ToggleOptions{})
	if err != nil {
		e.fail(err)
		return err
	}
	e.reg, e.store, e.toggle = reg, store, toggle
	e.picker = pick.NewPicker(m.Graph, reg, pick.Options{
		OnHover: e.opts.OnPartHover,
		OnClick: e.opts.OnPartClick,
	})
	e.ready()
	// A reload while the pointer is over the view keeps the parts apart.
	if _, _, inside := h.Pointer(); inside {
		toggle.Explode()
	}
	h.Logger().Info("exploded view ready", zap.Strings("parts", reg.Names()))
	return nil
}

func (e *Exploded) intensity() float64 {
	if e.opts.Intensity == nil {
		return 1
	}
	return *e.opts.Intensity
}

// LoadFailed records the error. No part callback fires afterwards.
func (e *Exploded) LoadFailed(h *viewport.Host, err error) {
	e.fail(err)
}

// Update advances the toggle.
func (e *Exploded) Update(h *viewport.Host, dt float64) {
	if e.toggle != nil {
		e.toggle.Update(dt)
	}
}

// Unload drops every reference into the model's graph.
func (e *Exploded) Unload(h *viewport.Host) {
	if e.reg != nil {
		e.reg.Release()
	}
	e.reg, e.store, e.toggle, e.picker = nil, nil, nil, nil
}

// PointerEnter explodes the model.
func (e *Exploded) PointerEnter(h *viewport.Host) {
	if e.toggle != nil {
		e.toggle.Explode()
	}
}

// PointerLeave clears the hover and reassembles.
func (e *Exploded) PointerLeave(h *viewport.Host) {
	if e.toggle == nil {
		return
	}
	e.picker.Leave()
	e.toggle.Assemble()
}

// PointerMove updates the hovered part.
func (e *Exploded) PointerMove(h *viewport.Host, x, y float64) {
	if e.picker == nil {
		return
	}
	w, ht := h.Size()
	e.picker.Move(x, y, w, ht, *h.Camera())
}

// PointerClick flips the toggle and reports the hovered part.
func (e *Exploded) PointerClick(h *viewport.Host) {
	if e.toggle == nil {
		return
	}
	e.toggle.Flip()
	e.picker.Click()
}

// Overlay highlights the hovered part.
func (e *Exploded) Overlay() scene.Overlay {
	if e.picker == nil {
		return nil
	}
	return e.picker.Overlay()
}

// Toggle flips between exploded and assembled and returns the new intent.
// It returns false while the model is not ready.
func (e *Exploded) Toggle() bool {
	if e.toggle == nil {
		return false
	}
	return e.toggle.Flip()
}

// IsExploded reports the intended state.
func (e *Exploded) IsExploded() bool {
	return e.toggle != nil && e.toggle.Exploded()
}

// Progress returns the toggle's interpolation parameter.
func (e *Exploded) Progress() float64 {
	if e.toggle == nil {
		return 0
	}
	return e.toggle.Progress()
}

// Hovered returns the hovered part, or "".
func (e *Exploded) Hovered() string {
	if e.picker == nil {
		return ""
	}
	return e.picker.Hovered()
}

// Parts returns the resolved registry, or nil before the model is ready.
func (e *Exploded) Parts() *parts.Registry { return e.reg }
