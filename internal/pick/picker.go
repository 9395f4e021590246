package pick

import (
	"pc-showcase/internal/parts"
	"pc-showcase/internal/scene"
)

// Options are the caller's hover and click hooks. Either may be nil.
type Options struct {
	// OnHover receives the newly hovered part, or "" when nothing is hit.
	OnHover func(name string)
	// OnClick receives the hovered part when the surface is clicked.
	OnClick func(name string)
}

// Picker tracks which sub-assembly is under the pointer.
type Picker struct {
	graph   *scene.Graph
	reg     *parts.Registry
	opts    Options
	hovered string
	overlay scene.Overlay
}

// NewPicker returns a picker with nothing hovered.
func NewPicker(g *scene.Graph, reg *parts.Registry, opts Options) *Picker {
	return &Picker{graph: g, reg: reg, opts: opts}
}

// Hovered returns the hovered part name, or "".
func (p *Picker) Hovered() string { return p.hovered }

// Overlay returns the highlight overlay for the current hover.
func (p *Picker) Overlay() scene.Overlay { return p.overlay }

// Move casts a ray through pixel (px, py) of a w×h surface and updates the
// hover. It returns the hovered name.
func (p *Picker) Move(px, py float64, w, h int, cam scene.Camera) string {
	if w <= 0 || h <= 0 {
		return p.hovered
	}
	x, y := scene.PixelToNDC(px, py, w, h)
	name := ""
	if hit, ok := Intersect(p.graph, p.reg, cam.Ray(x, y)); ok {
		name = hit.Part
	}
	p.set(name)
	return name
}

// Leave clears the hover as if the pointer hit nothing.
func (p *Picker) Leave() {
	p.set("")
}

// Click reports the hovered part. It does nothing when nothing is hovered.
func (p *Picker) Click() {
	if p.hovered != "" && p.opts.OnClick != nil {
		p.opts.OnClick(p.hovered)
	}
}

func (p *Picker) set(name string) {
	if name == p.hovered {
		return
	}
	p.hovered = name
	p.overlay = Highlight(p.reg, name)
	if p.opts.OnHover != nil {
		p.opts.OnHover(name)
	}
}
