package raster

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pc-showcase/internal/scene"
)

// Placeholder draws a flat w×h card with the message centred on it, one line
// per '\n'. It stands in for the 3D view while loading or after a failure.
func Placeholder(w, h int, bg scene.Color, msg string) *image.NRGBA {
	if w <= 0 || h <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, 0, 0))
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	fill := color.NRGBA{clamp255(bg[0] * 255), clamp255(bg[1] * 255), clamp255(bg[2] * 255), 255}
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = fill.R, fill.G, fill.B, fill.A
	}
	// 1px border.
	edge := color.NRGBA{0x1f, 0x3a, 0x5c, 0xff}
	for x := 0; x < w; x++ {
		img.SetNRGBA(x, 0, edge)
		img.SetNRGBA(x, h-1, edge)
	}
	for y := 0; y < h; y++ {
		img.SetNRGBA(0, y, edge)
		img.SetNRGBA(w-1, y, edge)
	}

	face := basicfont.Face7x13
	d := &font.Drawer{Dst: img, Src: image.NewUniform(color.NRGBA{0xcf, 0xe8, 0xff, 0xff}), Face: face}
	lines := strings.Split(msg, "\n")
	lineH := face.Metrics().Height.Ceil()
	y := (h-lineH*len(lines))/2 + face.Metrics().Ascent.Ceil()
	for _, line := range lines {
		adv := d.MeasureString(line).Ceil()
		d.Dot = fixed.P((w-adv)/2, y)
		d.DrawString(line)
		y += lineH
	}
	return img
}
