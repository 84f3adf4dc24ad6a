package kernels

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/stretchr/testify/assert"
)

func TestLerpWeight(t *testing.T) {
	tests := []struct {
		x, xs float32
		want  float32
	}{
		{0.5, 0.5, 1},
		{0.5, 1.0, 0.5},
		{0.5, 0.0, 0.5},
		{0.5, 1.5, 0},
		{0.5, -0.5, 0},
		{0.5, 2.5, 0},
		{3.5, 3.25, 0.75},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, LerpWeight(tt.x, tt.xs), 1e-6, "LerpWeight(%v, %v)", tt.x, tt.xs)
	}
}

// The two neighbors selected by floor(u-0.5) always carry the full weight.
func TestLerpWeight_PartitionOfUnity(t *testing.T) {
	for u := float32(-2); u < 6; u += 0.03125 {
		g0 := math32.Floor(u - 0.5)
		sum := LerpWeight(g0+0.5, u) + LerpWeight(g0+1.5, u)
		assert.InDelta(t, 1.0, sum, 1e-6, "u=%v", u)
	}
}

func TestSmoothedLerpWeight_PartitionOfUnity(t *testing.T) {
	for u := float32(-2); u < 6; u += 0.03125 {
		g0 := math32.Floor(u - 0.5)
		sum := SmoothedLerpWeight(g0+0.5, u) + SmoothedLerpWeight(g0+1.5, u)
		// The rounded peak loses at most sqrt(ε) of mass at cell centers.
		assert.InDelta(t, 1.0, sum, 2e-4, "u=%v", u)
	}
}

func TestSmoothedLerpWeight_Support(t *testing.T) {
	assert.Zero(t, SmoothedLerpWeight(0.5, 1.6))
	assert.Zero(t, SmoothedLerpWeight(0.5, -0.6))
	assert.Zero(t, SmoothedLerpWeight(0.5, 1.5))
	assert.InDelta(t, 1.0, SmoothedLerpWeight(0.5, 0.5), 2e-4)
	assert.InDelta(t, 0.5, SmoothedLerpWeight(0.5, 1.0), 1e-6)
}

func TestSmoothedLerpWeightGrad_MatchesFiniteDifference(t *testing.T) {
	const h = float32(1e-2)
	x := float32(2.5)

	for _, dx := range []float32{-0.9, -0.6, -0.3, -0.15, 0.15, 0.3, 0.6, 0.9} {
		xs := x - dx
		numeric := (SmoothedLerpWeight(x, xs+h) - SmoothedLerpWeight(x, xs-h)) / (2 * h)
		analytic := SmoothedLerpWeightGrad(x, xs)
		assert.InDelta(t, numeric, analytic, 1e-3, "dx=%v", dx)
	}
}

func TestSmoothedLerpWeightGrad_Values(t *testing.T) {
	// Smooth at the peak.
	assert.InDelta(t, 0.0, SmoothedLerpWeightGrad(0.5, 0.5), 1e-6)
	// Sample center above xs: weight grows as xs moves up.
	assert.InDelta(t, 1.0, SmoothedLerpWeightGrad(1.5, 1.0), 1e-6)
	assert.InDelta(t, -1.0, SmoothedLerpWeightGrad(1.5, 2.0), 1e-6)
	// Outside the support.
	assert.Zero(t, SmoothedLerpWeightGrad(1.5, 3.0))
	assert.Zero(t, SmoothedLerpWeightGrad(1.5, -0.01))
}

func TestClampBoundary(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{-5, 4, 0},
		{-1, 4, 0},
		{0, 4, 0},
		{3, 4, 3},
		{4, 4, 3},
		{100, 4, 3},
		{7, 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ClampBoundary(tt.i, tt.n), "ClampBoundary(%d, %d)", tt.i, tt.n)
	}
}

func TestMirrorBoundary(t *testing.T) {
	tests := []struct{ i, n, want int }{
		{0, 4, 0},
		{3, 4, 3},
		{-1, 4, 0},
		{-2, 4, 1},
		{-4, 4, 3},
		{-5, 4, 3},
		{4, 4, 3},
		{5, 4, 2},
		{7, 4, 0},
		{8, 4, 0},
		{-1, 1, 0},
		{5, 1, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MirrorBoundary(tt.i, tt.n), "MirrorBoundary(%d, %d)", tt.i, tt.n)
	}
}

func TestBoundaryMappers_AlwaysInRange(t *testing.T) {
	for n := 1; n <= 7; n++ {
		for i := -50; i <= 50; i++ {
			c := ClampBoundary(i, n)
			m := MirrorBoundary(i, n)
			if c < 0 || c >= n || m < 0 || m >= n {
				t.Fatalf("i=%d n=%d: clamp=%d mirror=%d out of range", i, n, c, m)
			}
		}
	}
}
