package pick

import (
	"pc-showcase/internal/parts"
	"pc-showcase/internal/scene"
)

// Glow is the translucent material drawn over a hovered part.
var Glow = &scene.Material{
	Name:        "hover-glow",
	BaseColor:   scene.Hex(0x66ccff),
	Emissive:    scene.Hex(0x0d2333),
	Opacity:     0.3,
	Metalness:   0.2,
	Roughness:   0.4,
	Transparent: true,
}

// Highlight maps every mesh of the hovered part to Glow. An empty or unknown
// name yields an empty overlay, which draws every mesh with its own material.
func Highlight(reg *parts.Registry, hovered string) scene.Overlay {
	sa, ok := reg.Get(hovered)
	if !ok {
		return nil
	}
	o := make(scene.Overlay, len(sa.Meshes))
	for _, h := range sa.Meshes {
		o[h] = Glow
	}
	return o
}
