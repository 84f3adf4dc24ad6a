package kernels

import "github.com/chewxy/math32"

// smoothEpsilon controls how far SmoothedAbs rounds off the kink of |x| at 0.
const smoothEpsilon float32 = 1e-8

// LerpWeight is the linear tent weight of a sample centered at x for the
// continuous coordinate xs: 1 at coincidence, 0 at distance 1 and beyond.
func LerpWeight(x, xs float32) float32 {
	return math32.Max(1-math32.Abs(x-xs), 0)
}

// SmoothedAbs is sqrt(x² + ε), a differentiable stand-in for |x|.
func SmoothedAbs(x float32) float32 {
	return math32.Sqrt(x*x + smoothEpsilon)
}

// SmoothedAbsGrad is the derivative of SmoothedAbs.
func SmoothedAbsGrad(x float32) float32 {
	return x / SmoothedAbs(x)
}

// SmoothedLerpWeight is the depth-axis tent weight with a rounded peak, so its
// derivative with respect to xs exists everywhere inside the support.
func SmoothedLerpWeight(x, xs float32) float32 {
	dx := x - xs
	if math32.Abs(dx) > 1 {
		return 0
	}
	return math32.Max(1-SmoothedAbs(dx), 0)
}

// SmoothedLerpWeightGrad is the derivative of SmoothedLerpWeight(x, xs) with
// respect to xs.
func SmoothedLerpWeightGrad(x, xs float32) float32 {
	dx := x - xs
	if math32.Abs(dx) > 1 {
		return 0
	}
	return SmoothedAbsGrad(dx)
}

// ClampBoundary maps i into [0, n-1] by clamping to the nearest edge.
func ClampBoundary(i, n int) int {
	return min(max(i, 0), n-1)
}

// MirrorBoundary reflects i into [0, n-1] about the array edges
// (-1 maps to 0, n maps to n-1). It is periodic with period 2n, so every
// integer maps to a valid index.
func MirrorBoundary(i, n int) int {
	period := 2 * n
	i %= period
	if i < 0 {
		i += period
	}
	if i >= n {
		i = period - 1 - i
	}
	return i
}
