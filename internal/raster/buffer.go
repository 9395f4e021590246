package raster

import (
	"image"
	"math"
)

// FrameBuffer holds the rendering target as flat slices for cache locality.
// Depth is stored as 1/viewDepth so larger values are nearer.
type FrameBuffer struct {
	Width  int
	Height int
	Color  []uint8   // RGBA interleaved, len = W*H*4
	ZBuf   []float64 // inverse depth per pixel, -inf when empty
	mask   []bool    // scratch for the ground shadow pass
}

// NewFrameBuffer allocates a zeroed color buffer and -inf z-buffer.
func NewFrameBuffer(w, h int) *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Resize(w, h)
	return fb
}

// Resize reallocates the buffers when the size changes.
func (fb *FrameBuffer) Resize(w, h int) {
	if w == fb.Width && h == fb.Height && fb.Color != nil {
		return
	}
	n := w * h
	fb.Width, fb.Height = w, h
	fb.Color = make([]uint8, n*4)
	fb.ZBuf = make([]float64, n)
	fb.mask = make([]bool, n)
	fb.clearDepth()
}

// Clear fills the color buffer with an opaque sRGB color and resets depth.
func (fb *FrameBuffer) Clear(r, g, b uint8) {
	for i := 0; i < len(fb.Color); i += 4 {
		fb.Color[i] = r
		fb.Color[i+1] = g
		fb.Color[i+2] = b
		fb.Color[i+3] = 255
	}
	fb.clearDepth()
}

func (fb *FrameBuffer) clearDepth() {
	inf := math.Inf(-1)
	for i := range fb.ZBuf {
		fb.ZBuf[i] = inf
	}
	for i := range fb.mask {
		fb.mask[i] = false
	}
}

// Image copies the color buffer into a new image.
func (fb *FrameBuffer) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	return img
}

// Release drops the buffers.
func (fb *FrameBuffer) Release() {
	fb.Color, fb.ZBuf, fb.mask = nil, nil, nil
	fb.Width, fb.Height = 0, 0
}
