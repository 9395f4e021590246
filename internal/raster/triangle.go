package raster

import (
	"image"
	"math"
)

// Vertex is a projected corner: pixel position, inverse view depth and the
// texture coordinate.
type Vertex struct {
	X, Y float64
	W    float64
	U, V float64
}

// Surface is everything the pixel loop needs for one face.
type Surface struct {
	Tex      *image.NRGBA
	Albedo   [3]float64 // linear
	Emissive [3]float64 // linear
	Light    [3]float64 // linear light reaching the face
	Alpha    float64
	// Blend draws over the framebuffer without writing depth.
	Blend bool
}

type bounds struct{ minX, maxX, minY, maxY int }

func triBounds(fb *FrameBuffer, v *[3]Vertex) (bounds, bool) {
	b := bounds{
		minX: int(math.Floor(math.Min(math.Min(v[0].X, v[1].X), v[2].X))),
		maxX: int(math.Ceil(math.Max(math.Max(v[0].X, v[1].X), v[2].X))),
		minY: int(math.Floor(math.Min(math.Min(v[0].Y, v[1].Y), v[2].Y))),
		maxY: int(math.Ceil(math.Max(math.Max(v[0].Y, v[1].Y), v[2].Y))),
	}
	if b.minX < 0 {
		b.minX = 0
	}
	if b.maxX >= fb.Width {
		b.maxX = fb.Width - 1
	}
	if b.minY < 0 {
		b.minY = 0
	}
	if b.maxY >= fb.Height {
		b.maxY = fb.Height - 1
	}
	return b, b.minX <= b.maxX && b.minY <= b.maxY
}

// edges holds the barycentric setup of a screen triangle.
type edges struct {
	x2, y2                     float64
	dy12, dx21, dy20, dx02, id float64
}

func setup(v *[3]Vertex) (edges, bool) {
	x0, y0 := v[0].X, v[0].Y
	x1, y1 := v[1].X, v[1].Y
	x2, y2 := v[2].X, v[2].Y
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return edges{}, false
	}
	return edges{x2: x2, y2: y2, dy12: y1 - y2, dx21: x2 - x1, dy20: y2 - y0, dx02: x0 - x2, id: 1 / det}, true
}

func (e *edges) weights(px, py float64) (w0, w1, w2 float64, inside bool) {
	dsx, dsy := px-e.x2, py-e.y2
	w0 = (e.dy12*dsx + e.dx21*dsy) * e.id
	w1 = (e.dy20*dsx + e.dx02*dsy) * e.id
	w2 = 1 - w0 - w1
	return w0, w1, w2, w0 >= -0.001 && w1 >= -0.001 && w2 >= -0.001
}

// RasterizeTriangle fills a projected triangle with z-buffering, perspective
// correct texturing, sRGB decode and ACES tone mapping. Pixel centres are
// sampled at +0.5.
//
// This is the hot path: no allocation in the pixel loop.
func RasterizeTriangle(fb *FrameBuffer, v [3]Vertex, s *Surface, lc *LightConfig) {
	b, ok := triBounds(fb, &v)
	if !ok {
		return
	}
	e, ok := setup(&v)
	if !ok {
		return
	}

	hasUV := s.Tex != nil && s.Tex.Rect.Dx() > 0
	for sy := b.minY; sy <= b.maxY; sy++ {
		rowOff := sy * fb.Width
		for sx := b.minX; sx <= b.maxX; sx++ {
			w0, w1, w2, inside := e.weights(float64(sx)+0.5, float64(sy)+0.5)
			if !inside {
				continue
			}
			z := w0*v[0].W + w1*v[1].W + w2*v[2].W
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			ar, ag, ab := s.Albedo[0], s.Albedo[1], s.Albedo[2]
			alpha := s.Alpha
			if hasUV {
				u := (w0*v[0].U*v[0].W + w1*v[1].U*v[1].W + w2*v[2].U*v[2].W) / z
				t := (w0*v[0].V*v[0].W + w1*v[1].V*v[1].W + w2*v[2].V*v[2].W) / z
				cr, cg, cb, ca := SampleTexture(s.Tex, u, t)
				if ca < 8 {
					continue
				}
				ar *= srgbToLinear[cr]
				ag *= srgbToLinear[cg]
				ab *= srgbToLinear[cb]
				alpha *= float64(ca) / 255
			}

			fr := lc.encode(ar*s.Light[0] + s.Emissive[0])
			fg := lc.encode(ag*s.Light[1] + s.Emissive[1])
			fbl := lc.encode(ab*s.Light[2] + s.Emissive[2])

			px := zIdx * 4
			if !s.Blend {
				fb.ZBuf[zIdx] = z
				fb.Color[px] = fr
				fb.Color[px+1] = fg
				fb.Color[px+2] = fbl
				fb.Color[px+3] = 255
				continue
			}
			// Alpha blend over what is already drawn; depth is left alone.
			fb.Color[px] = blend(fb.Color[px], fr, alpha)
			fb.Color[px+1] = blend(fb.Color[px+1], fg, alpha)
			fb.Color[px+2] = blend(fb.Color[px+2], fbl, alpha)
		}
	}
}

// RasterizeShadow marks pixels of a projected ground-shadow triangle that
// are nearer than whatever is already drawn.
func RasterizeShadow(fb *FrameBuffer, v [3]Vertex) {
	b, ok := triBounds(fb, &v)
	if !ok {
		return
	}
	e, ok := setup(&v)
	if !ok {
		return
	}
	for sy := b.minY; sy <= b.maxY; sy++ {
		rowOff := sy * fb.Width
		for sx := b.minX; sx <= b.maxX; sx++ {
			w0, w1, w2, inside := e.weights(float64(sx)+0.5, float64(sy)+0.5)
			if !inside {
				continue
			}
			z := w0*v[0].W + w1*v[1].W + w2*v[2].W
			if z > fb.ZBuf[rowOff+sx] {
				fb.mask[rowOff+sx] = true
			}
		}
	}
}

// resolveShadow darkens every marked pixel once by opacity and clears the mask.
func (fb *FrameBuffer) resolveShadow(opacity float64) {
	k := 1 - opacity
	for i, m := range fb.mask {
		if !m {
			continue
		}
		px := i * 4
		fb.Color[px] = clamp255(float64(fb.Color[px]) * k)
		fb.Color[px+1] = clamp255(float64(fb.Color[px+1]) * k)
		fb.Color[px+2] = clamp255(float64(fb.Color[px+2]) * k)
		fb.mask[i] = false
	}
}

func blend(dst, src uint8, a float64) uint8 {
	return clamp255(float64(dst)*(1-a) + float64(src)*a)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
