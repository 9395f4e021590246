package batch

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"golang.org/x/image/webp"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func solid(c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 4))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = c.R, c.G, c.B, c.A
	}
	return img
}

func TestEncoderWritesEveryFrame(t *testing.T) {
	dir := t.TempDir()
	enc, err := NewEncoder(context.Background(), Config{OutputDir: dir, Workers: 2, Progress: time.Millisecond})
	require.NoError(t, err)

	for i := 0; i < 5; i++ {
		enc.Submit(i, solid(color.NRGBA{R: uint8(40 * i), G: 10, B: 200, A: 255}))
	}
	results, err := enc.Wait()
	require.NoError(t, err)
	require.Len(t, results, 5)

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.True(t, r.Success, r.Error)
		f, err := os.Open(filepath.Join(dir, r.Image))
		require.NoError(t, err)
		img, err := webp.Decode(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 8, 4), img.Bounds())
	}
}

func TestEncoderPattern(t *testing.T) {
	dir := t.TempDir()
	enc, err := NewEncoder(context.Background(), Config{OutputDir: dir, Pattern: "still_%d.webp"})
	require.NoError(t, err)
	enc.Submit(7, solid(color.NRGBA{A: 255}))
	results, err := enc.Wait()
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "still_7.webp", results[0].Image)
	assert.FileExists(t, filepath.Join(dir, "still_7.webp"))
}

func TestEncoderStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	enc, err := NewEncoder(ctx, Config{OutputDir: t.TempDir(), Workers: 1})
	require.NoError(t, err)
	cancel()
	enc.Submit(0, solid(color.NRGBA{A: 255}))
	results, err := enc.Wait()
	assert.NoError(t, err)
	assert.Empty(t, results)
}

func TestEncoderBadDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err := NewEncoder(context.Background(), Config{OutputDir: filepath.Join(file, "sub")})
	assert.Error(t, err)
}

func TestManifest(t *testing.T) {
	results := []Result{
		{Index: 0, Image: "frame_0000.webp", Success: true},
		{Index: 1, Image: "frame_0001.webp", Error: "disk full"},
		{Index: 3, Image: "frame_0003.webp", Success: true},
	}
	entries := Entries(results, 30)
	require.Len(t, entries, 2)
	assert.InDelta(t, 0.1, entries[1].Time, 1e-9)

	path := filepath.Join(t.TempDir(), "manifest.json")
	m := Manifest{Asset: "models/pc_assembly.glb", Mode: "cinematic", Width: 640, Height: 360, FPS: 30, Frames: entries}
	require.NoError(t, WriteManifest(path, m))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var got Manifest
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, m, got)
}
