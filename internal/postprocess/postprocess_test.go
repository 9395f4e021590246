package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func solid(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func TestDownsampleKeepsSolidColor(t *testing.T) {
	red := color.NRGBA{200, 10, 10, 255}
	out := Downsample(solid(8, 6, red), 4, 3)
	assert.Equal(t, image.Rect(0, 0, 4, 3), out.Bounds())
	c := out.NRGBAAt(2, 1)
	assert.InDelta(t, 200, int(c.R), 1)
	assert.InDelta(t, 10, int(c.G), 1)
	assert.Equal(t, uint8(255), c.A)
}

func TestDownsampleSameSizeIsNoop(t *testing.T) {
	img := solid(4, 4, color.NRGBA{1, 2, 3, 255})
	assert.Same(t, img, Downsample(img, 4, 4))
}

func TestDownsampleNoDarkHalo(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 2; x++ {
		for y := 0; y < 4; y++ {
			img.SetNRGBA(x, y, color.NRGBA{255, 255, 255, 255})
		}
	}
	out := Downsample(img, 2, 2)
	c := out.NRGBAAt(1, 0)
	if c.A > 0 {
		assert.GreaterOrEqual(t, c.R, uint8(250), "transparent neighbours must not darken the color")
	}
}

func TestFitLetterboxes(t *testing.T) {
	bg := color.NRGBA{0, 0, 50, 255}
	out := Fit(solid(10, 10, color.NRGBA{255, 255, 255, 255}), 40, 20, bg)
	assert.Equal(t, image.Rect(0, 0, 40, 20), out.Bounds())
	assert.Equal(t, bg, out.NRGBAAt(1, 10))
	c := out.NRGBAAt(20, 10)
	assert.InDelta(t, 255, int(c.R), 1)
	assert.InDelta(t, 255, int(c.B), 1)
}
