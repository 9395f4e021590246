package postprocess

import (
	"image"
	"image/color"
	"math"

	"golang.org/x/image/draw"
)

// Fit scales img to fit inside a w×h canvas filled with bg, keeping its
// aspect ratio and centring it.
func Fit(img image.Image, w, h int, bg color.NRGBA) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)

	b := img.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 || w <= 0 || h <= 0 {
		return canvas
	}

	scale := math.Min(float64(w)/float64(srcW), float64(h)/float64(srcH))
	newW := max(1, int(float64(srcW)*scale+0.5))
	newH := max(1, int(float64(srcH)*scale+0.5))
	offX := (w - newW) / 2
	offY := (h - newH) / 2
	dst := image.Rect(offX, offY, offX+newW, offY+newH)
	draw.CatmullRom.Scale(canvas, dst, img, b, draw.Over, nil)
	return canvas
}
