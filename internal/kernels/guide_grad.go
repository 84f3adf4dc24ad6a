package kernels

import "github.com/born-ml/bislice/internal/tensor"

// GuideGradKernel returns the guide-gradient unit: for guide index idx it
// writes guideGrad(x, y, b) = Σ_c ∂out(c,x,y,b)/∂guide(x,y,b) · tangent(c,x,y,b).
//
// The derivative re-runs the forward gather with the depth weight replaced by
// D·SmoothedLerpWeightGrad, since gzf = guide·D. The unit count is
// guideGrad.Size().
func GuideGradKernel(grid tensor.View5, guide tensor.View3, codomainTangent tensor.View4, guideGrad tensor.View3) func(idx int) {
	s := newSampler(grid, guide.Dim(0), guide.Dim(1))

	depth := float32(s.depth)
	depthWeightGrad := func(x, xs float32) float32 {
		return depth * SmoothedLerpWeightGrad(x, xs)
	}

	yStride := s.guideWidth
	bStride := yStride * s.guideHeight

	return func(idx int) {
		x := idx % s.guideWidth
		y := (idx / yStride) % s.guideHeight
		b := idx / bStride

		gxf, gyf, gzf := s.coords(x, y, guide.At(x, y, b))

		var vjp float32
		for c := 0; c < s.channels; c++ {
			gridSample := s.interpolate(c, b, gxf, gyf, gzf, depthWeightGrad)
			vjp += gridSample * codomainTangent.At(c, x, y, b)
		}
		guideGrad.Set(x, y, b, vjp)
	}
}
