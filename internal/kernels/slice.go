package kernels

import (
	"github.com/born-ml/bislice/internal/tensor"
	"github.com/chewxy/math32"
)

// sampler holds the grid geometry shared by the forward and guide-gradient
// kernels: both map a guide pixel to continuous grid coordinates and gather
// the 2×2×2 neighborhood with clamped indices.
type sampler struct {
	grid tensor.View5

	channels, depth, gridWidth, gridHeight int
	guideWidth, guideHeight                int

	scaleX, scaleY float32
}

func newSampler(grid tensor.View5, guideWidth, guideHeight int) sampler {
	s := sampler{
		grid:        grid,
		channels:    grid.Dim(0),
		depth:       grid.Dim(1),
		gridWidth:   grid.Dim(2),
		gridHeight:  grid.Dim(3),
		guideWidth:  guideWidth,
		guideHeight: guideHeight,
	}
	if guideWidth > 0 {
		s.scaleX = float32(s.gridWidth) / float32(guideWidth)
	}
	if guideHeight > 0 {
		s.scaleY = float32(s.gridHeight) / float32(guideHeight)
	}
	return s
}

// coords maps guide pixel (x, y) with intensity g to continuous grid
// coordinates.
func (s *sampler) coords(x, y int, g float32) (gxf, gyf, gzf float32) {
	gxf = (float32(x) + 0.5) * s.scaleX
	gyf = (float32(y) + 0.5) * s.scaleY
	gzf = g * float32(s.depth)
	return gxf, gyf, gzf
}

// interpolate gathers the 2×2×2 neighborhood around (gxf, gyf, gzf) in
// channel c of batch b. The depth weight is supplied by the caller so the same
// gather serves both the sample and its depth derivative.
func (s *sampler) interpolate(c, b int, gxf, gyf, gzf float32, depthWeight func(x, xs float32) float32) float32 {
	gx0 := int(math32.Floor(gxf - 0.5))
	gy0 := int(math32.Floor(gyf - 0.5))
	gz0 := int(math32.Floor(gzf - 0.5))

	var value float32
	for gy := gy0; gy < gy0+2; gy++ {
		gyc := ClampBoundary(gy, s.gridHeight)
		wy := LerpWeight(float32(gy)+0.5, gyf)
		for gx := gx0; gx < gx0+2; gx++ {
			gxc := ClampBoundary(gx, s.gridWidth)
			wx := LerpWeight(float32(gx)+0.5, gxf)
			for gz := gz0; gz < gz0+2; gz++ {
				gzc := ClampBoundary(gz, s.depth)
				wz := depthWeight(float32(gz)+0.5, gzf)
				value += wx * wy * wz * s.grid.At(c, gzc, gxc, gyc, b)
			}
		}
	}
	return value
}

// SliceKernel returns the forward unit: for output index idx it computes
// out(c, x, y, b), the grid sampled at pixel (x, y) and depth guide(x, y, b)·D.
//
// grid is [C, D, Gw, Gh, B], guide is [W, H, B] and out is [C, W, H, B].
// The unit count is out.Size().
func SliceKernel(grid tensor.View5, guide tensor.View3, out tensor.View4) func(idx int) {
	s := newSampler(grid, guide.Dim(0), guide.Dim(1))

	xStride := s.channels
	yStride := xStride * s.guideWidth
	bStride := yStride * s.guideHeight

	return func(idx int) {
		c := idx % s.channels
		x := (idx / xStride) % s.guideWidth
		y := (idx / yStride) % s.guideHeight
		b := idx / bStride

		gxf, gyf, gzf := s.coords(x, y, guide.At(x, y, b))
		out.Set(c, x, y, b, s.interpolate(c, b, gxf, gyf, gzf, SmoothedLerpWeight))
	}
}
