package mathutil

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEulerRoundTrip(t *testing.T) {
	cases := []Vec3{
		{0, 0, 0},
		{0.2, 0.1, 0},
		{0.3, 0.2, 0.1},
		{-1.1, 0.7, 2.5},
		{0.05, -0.2, 0},
	}
	for _, e := range cases {
		got := EulerFromMat3(EulerXYZ(e))
		assert.True(t, got.ApproxEqual(e, 1e-9), "euler %v -> %v", e, got)
	}
}

func TestComposeDecomposeTRS(t *testing.T) {
	tr := Vec3{1, -2, 3}
	rot := Vec3{0.3, -0.4, 0.5}
	sc := Vec3{2, 0.5, 1.5}

	gt, gr, gs := ComposeTRS(tr, rot, sc).DecomposeTRS()
	assert.True(t, gt.ApproxEqual(tr, 1e-9))
	assert.True(t, gr.ApproxEqual(rot, 1e-9))
	assert.True(t, gs.ApproxEqual(sc, 1e-9))
}

func TestFromColumnMajor(t *testing.T) {
	// glTF stores translation in elements 12..14.
	cm := [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 4, 5, 6, 1}
	m := FromColumnMajor(cm)
	assert.Equal(t, Vec3{4, 5, 6}, m.MulPoint(Vec3{}))
}

func TestQuatToMat3MatchesRotY(t *testing.T) {
	a := 0.7
	q := Quat{0, math.Sin(a / 2), 0, math.Cos(a / 2)}
	got := QuatToMat3(q.Normalize())
	want := RotY(a)
	for i := range got {
		require.InDelta(t, want[i], got[i], 1e-12)
	}
}

func TestVecLerp(t *testing.T) {
	a, b := Vec3{0, 0, 0}, Vec3{2, 4, -6}
	assert.Equal(t, Vec3{1, 2, -3}, a.Lerp(b, 0.5))
	assert.Equal(t, a, a.Lerp(b, 0))
	assert.Equal(t, b, a.Lerp(b, 1))
}
