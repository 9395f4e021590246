package raster

import (
	"math"

	"pc-showcase/internal/mathutil"
	"pc-showcase/internal/scene"
)

// LightConfig is a rig flattened for the shading inner loop.
type LightConfig struct {
	Ambient    scene.Color
	Sky        scene.Color
	GroundTint scene.Color
	Dirs       []dirLight
	Points     []scene.PointLight
	Eye        mathutil.Vec3
	SpecPow    float64
	Exposure   float64
	InvGamma   float64
}

type dirLight struct {
	dir   mathutil.Vec3
	color scene.Color
}

// lightScale maps rig intensities onto this shading model.
const lightScale = 1.6

// NewLightConfig flattens rig for a camera at eye.
func NewLightConfig(rig scene.Rig, eye mathutil.Vec3) LightConfig {
	lc := LightConfig{
		Eye:      eye,
		SpecPow:  24,
		Exposure: 1.05,
		InvGamma: 1.0 / 2.2,
	}
	if a := rig.Ambient; a != nil {
		lc.Ambient = scaled(a.Color, a.Intensity)
	}
	if h := rig.Hemisphere; h != nil {
		lc.Sky = scaled(h.Sky, h.Intensity)
		lc.GroundTint = scaled(h.Ground, h.Intensity)
	}
	for _, d := range rig.Directional {
		lc.Dirs = append(lc.Dirs, dirLight{dir: d.Dir(), color: scaled(d.Color, d.Intensity)})
	}
	lc.Points = rig.Points
	return lc
}

func scaled(c scene.Color, k float64) scene.Color {
	k *= lightScale
	return scene.Color{c[0] * k, c[1] * k, c[2] * k}
}

// Shade returns the linear light reaching a face with unit normal n at p.
// Faces are lit from both sides.
func (lc *LightConfig) Shade(n, p mathutil.Vec3, mat *scene.Material) scene.Color {
	var c scene.Color
	add := func(col scene.Color, k float64) {
		c[0] += col[0] * k
		c[1] += col[1] * k
		c[2] += col[2] * k
	}
	add(lc.Ambient, 1)
	up := n[1]*0.5 + 0.5
	add(lc.Sky, up)
	add(lc.GroundTint, 1-up)

	view := lc.Eye.Sub(p).Normalize()
	if n.Dot(view) < 0 {
		n = n.Scale(-1)
	}
	gloss := 1 - mathutil.Clamp(mat.Roughness, 0, 1)
	specK := gloss * (0.15 + 0.5*mathutil.Clamp(mat.Metalness, 0, 1))
	diffK := 1 - 0.5*mathutil.Clamp(mat.Metalness, 0, 1)
	shine := func(col scene.Color, l mathutil.Vec3, atten float64) {
		ndl := math.Max(0, n.Dot(l))
		if ndl == 0 || atten == 0 {
			return
		}
		add(col, ndl*diffK*atten)
		h := l.Add(view).Normalize()
		add(col, math.Pow(math.Max(0, n.Dot(h)), lc.SpecPow)*specK*atten)
	}
	for _, d := range lc.Dirs {
		shine(d.color, d.dir, 1)
	}
	for _, pl := range lc.Points {
		to := pl.Position.Sub(p)
		dist := to.Len()
		shine(scaled(pl.Color, pl.Intensity), to.Normalize(), pl.Attenuation(dist))
	}
	return c
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}

// encode turns a shaded linear value into an sRGB byte.
func (lc *LightConfig) encode(v float64) uint8 {
	return clamp255(math.Pow(ACESTonemap(v*lc.Exposure), lc.InvGamma) * 255)
}
