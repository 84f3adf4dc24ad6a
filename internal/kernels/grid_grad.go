package kernels

import (
	"github.com/born-ml/bislice/internal/tensor"
	"github.com/chewxy/math32"
)

// GridGradKernel returns the grid-gradient unit: for grid index idx it
// writes gridGrad(c, z, gx, gy, b), the sum of tangent(c, x, y, b) weighted by
// how much cell (z, gx, gy) contributed to out(c, x, y, b).
//
// The adjoint of the forward gather is computed as a gather: each unit scans
// the window of guide pixels whose samples can reach its cell. Pixels outside
// the image are mirrored back in, which accounts for the forward pass folding
// out-of-range neighbors onto edge cells. At the first and last depth cells a
// sample lying beyond the outer cell center contributes with full weight, for
// the same reason along z. The unit count is gridGrad.Size().
func GridGradKernel(guide tensor.View3, codomainTangent tensor.View4, gridGrad tensor.View5) func(idx int) {
	channels := gridGrad.Dim(0)
	depth := gridGrad.Dim(1)
	gridWidth := gridGrad.Dim(2)
	gridHeight := gridGrad.Dim(3)
	guideWidth := guide.Dim(0)
	guideHeight := guide.Dim(1)

	scaleX := float32(guideWidth) / float32(gridWidth)
	scaleY := float32(guideHeight) / float32(gridHeight)
	depthF := float32(depth)

	zStride := channels
	xStride := zStride * depth
	yStride := xStride * gridWidth
	bStride := yStride * gridHeight

	return func(idx int) {
		gc := idx % channels
		gz := (idx / zStride) % depth
		gx := (idx / xStride) % gridWidth
		gy := (idx / yStride) % gridHeight
		b := idx / bStride

		x0 := int(math32.Floor(scaleX * (float32(gx) + 0.5 - 1)))
		x1 := int(math32.Ceil(scaleX * (float32(gx) + 0.5 + 1)))
		y0 := int(math32.Floor(scaleY * (float32(gy) + 0.5 - 1)))
		y1 := int(math32.Ceil(scaleY * (float32(gy) + 0.5 + 1)))

		var vjp float32
		for y := y0; y < y1; y++ {
			ym := MirrorBoundary(y, guideHeight)
			gyf := (float32(y) + 0.5) / scaleY
			wy := LerpWeight(float32(gy)+0.5, gyf)

			for x := x0; x < x1; x++ {
				xm := MirrorBoundary(x, guideWidth)
				gxf := (float32(x) + 0.5) / scaleX
				wx := LerpWeight(float32(gx)+0.5, gxf)

				gzf := guide.At(xm, ym, b) * depthF
				wz := SmoothedLerpWeight(float32(gz)+0.5, gzf)
				if (gz == 0 && gzf < 0.5) || (gz == depth-1 && gzf > depthF-0.5) {
					wz = 1
				}

				vjp += wz * wx * wy * codomainTangent.At(gc, xm, ym, b)
			}
		}

		gridGrad.Set(gc, gz, gx, gy, b, vjp)
	}
}
