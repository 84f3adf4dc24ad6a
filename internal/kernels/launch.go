package kernels

import (
	"github.com/born-ml/bislice/internal/tensor"
	"golang.org/x/sync/errgroup"
)

// Device runs kernels over a 1D index space and reports whether every
// launch succeeded. parallel.Launcher is the CPU implementation.
type Device interface {
	Launch(name string, count int, kernel func(idx int))
	OK() bool
}

// Kernel names used for launches and logs.
const (
	SliceName     = "bilateral_slice"
	GridGradName  = "bilateral_slice_grid_grad"
	GuideGradName = "bilateral_slice_guide_grad"
)

// Slice fills out with the bilateral slice of grid by guide.
// An empty output launches nothing. Returns the device status.
func Slice(dev Device, grid tensor.View5, guide tensor.View3, out tensor.View4) bool {
	if n := out.Size(); n > 0 {
		dev.Launch(SliceName, n, SliceKernel(grid, guide, out))
	}
	return dev.OK()
}

// SliceGrad fills gridGrad and guideGrad with the vector-Jacobian products
// of the bilateral slice for the given codomain tangent. The two kernels are
// independent and run concurrently; empty outputs are skipped. Returns the
// device status aggregated over both launches.
func SliceGrad(
	dev Device,
	grid tensor.View5, guide tensor.View3, codomainTangent tensor.View4,
	gridGrad tensor.View5, guideGrad tensor.View3,
) bool {
	var g errgroup.Group

	if n := gridGrad.Size(); n > 0 {
		g.Go(func() error {
			dev.Launch(GridGradName, n, GridGradKernel(guide, codomainTangent, gridGrad))
			return nil
		})
	}

	if n := guideGrad.Size(); n > 0 {
		g.Go(func() error {
			dev.Launch(GuideGradName, n, GuideGradKernel(grid, guide, codomainTangent, guideGrad))
			return nil
		})
	}

	_ = g.Wait() // Launch failures are reported through the device status.
	return dev.OK()
}
