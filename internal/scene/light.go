package scene

import "pc-showcase/internal/mathutil"

// Color is a linear RGB triple in [0,1].
type Color [3]float64

// Hex converts 0xRRGGBB to a Color.
func Hex(v uint32) Color {
	return Color{
		float64(v>>16&0xff) / 255,
		float64(v>>8&0xff) / 255,
		float64(v&0xff) / 255,
	}
}

// Luma returns the perceptual brightness of c.
func (c Color) Luma() float64 {
	return c[0]*0.299 + c[1]*0.587 + c[2]*0.114
}

// AmbientLight lights every face uniformly.
type AmbientLight struct {
	Color     Color
	Intensity float64
}

// HemisphereLight blends Sky and Ground by how much a face points up.
type HemisphereLight struct {
	Sky       Color
	Ground    Color
	Intensity float64
}

// DirectionalLight shines from Position toward the origin without falloff.
type DirectionalLight struct {
	Name       string
	Position   mathutil.Vec3
	Color      Color
	Intensity  float64
	CastShadow bool
}

// Dir returns the unit vector from the origin toward the light.
func (d DirectionalLight) Dir() mathutil.Vec3 {
	return d.Position.Normalize()
}

// PointLight falls off linearly to zero at Range (0 = no falloff).
type PointLight struct {
	Name      string
	Position  mathutil.Vec3
	Color     Color
	Intensity float64
	Range     float64
}

// Attenuation returns the falloff factor at distance d.
func (p PointLight) Attenuation(d float64) float64 {
	if p.Range <= 0 {
		return 1
	}
	if d >= p.Range {
		return 0
	}
	a := 1 - d/p.Range
	return a * a
}

// Rig is the fixed lighting of a viewport.
type Rig struct {
	Ambient     *AmbientLight
	Hemisphere  *HemisphereLight
	Directional []DirectionalLight
	Points      []PointLight
}

// ShadowCaster returns the first directional light that casts shadows.
func (r *Rig) ShadowCaster() (DirectionalLight, bool) {
	for _, d := range r.Directional {
		if d.CastShadow {
			return d, true
		}
	}
	return DirectionalLight{}, false
}

// HeroRig is the light setup of the interactive exploded view.
func HeroRig() Rig {
	return Rig{
		Ambient: &AmbientLight{Color: Hex(0xaad8ff), Intensity: 0.6},
		Directional: []DirectionalLight{
			{Name: "key", Position: mathutil.Vec3{5, 6, 4}, Color: Hex(0x88ccff), Intensity: 0.9, CastShadow: true},
		},
	}
}

// StudioRig is the dark studio setup of the cinematic sequence: hemisphere
// fill, key, rim, soft fill and three internal RGB accents.
func StudioRig() Rig {
	return Rig{
		Hemisphere: &HemisphereLight{Sky: Hex(0x88c9ff), Ground: Hex(0x0a0f15), Intensity: 0.35},
		Directional: []DirectionalLight{
			{Name: "key", Position: mathutil.Vec3{4, 6, 3}, Color: Hex(0xbddfff), Intensity: 0.9, CastShadow: true},
			{Name: "rim", Position: mathutil.Vec3{-5, 3, -4}, Color: Hex(0x2ad2ff), Intensity: 0.6},
		},
		Points: []PointLight{
			{Name: "fill", Position: mathutil.Vec3{0.5, 0.6, 1}, Color: Hex(0x1a2a3a), Intensity: 0.4, Range: 10},
			{Name: "rgb1", Position: mathutil.Vec3{0.1, 0.6, 0.2}, Color: Hex(0x33ccff), Intensity: 0.6, Range: 2.2},
			{Name: "rgb2", Position: mathutil.Vec3{-0.3, 0.4, -0.1}, Color: Hex(0x7a5cff), Intensity: 0.45, Range: 2.0},
			{Name: "rgb3", Position: mathutil.Vec3{0.2, 0.2, 0.5}, Color: Hex(0x00ffbf), Intensity: 0.35, Range: 2.0},
		},
	}
}

// Ground is a shadow-only disc: it is invisible except where it darkens
// under shadow-casting meshes.
type Ground struct {
	Y       float64
	Radius  float64
	Opacity float64
}

// HeroGround and StudioGround are the contact-shadow discs of each widget.
var (
	HeroGround   = Ground{Y: -0.9, Radius: 3, Opacity: 0.25}
	StudioGround = Ground{Y: -0.9, Radius: 4.5, Opacity: 0.25}
)
