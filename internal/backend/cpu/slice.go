package cpu

import (
	"context"
	"fmt"

	"github.com/born-ml/bislice/internal/kernels"
	"github.com/born-ml/bislice/internal/tensor"
)

// BilateralSliceContext is BilateralSlice with cancellation. When ctx is
// cancelled mid-launch the result is discarded and an ErrLaunch error
// wrapping the context error is returned.
func (cpu *CPUBackend) BilateralSliceContext(ctx context.Context, grid, guide *tensor.RawTensor) (*tensor.RawTensor, error) {
	gridView, err := grid.View5()
	if err != nil {
		return nil, fmt.Errorf("bilateral slice: grid: %w", err)
	}
	guideView, err := guide.View3()
	if err != nil {
		return nil, fmt.Errorf("bilateral slice: guide: %w", err)
	}

	out, err := tensor.NewRaw(outputShape(gridView, guideView), tensor.Float32, cpu.device)
	if err != nil {
		return nil, fmt.Errorf("bilateral slice: failed to create result tensor: %w", err)
	}
	outView, err := out.View4()
	if err != nil {
		return nil, fmt.Errorf("bilateral slice: %w", err)
	}

	dev := cpu.newDevice(ctx)
	if !kernels.Slice(dev, gridView, guideView, outView) {
		return nil, dev.status("bilateral slice")
	}
	return out, nil
}

// BilateralSliceGradContext is BilateralSliceGrad with cancellation.
func (cpu *CPUBackend) BilateralSliceGradContext(
	ctx context.Context,
	grid, guide, codomainTangent *tensor.RawTensor,
) (gridGrad, guideGrad *tensor.RawTensor, err error) {
	gridView, err := grid.View5()
	if err != nil {
		return nil, nil, fmt.Errorf("bilateral slice grad: grid: %w", err)
	}
	guideView, err := guide.View3()
	if err != nil {
		return nil, nil, fmt.Errorf("bilateral slice grad: guide: %w", err)
	}
	tangentView, err := codomainTangent.View4()
	if err != nil {
		return nil, nil, fmt.Errorf("bilateral slice grad: codomain tangent: %w", err)
	}

	gridGrad, err = tensor.NewRaw(grid.Shape(), tensor.Float32, cpu.device)
	if err != nil {
		return nil, nil, fmt.Errorf("bilateral slice grad: failed to create grid gradient: %w", err)
	}
	guideGrad, err = tensor.NewRaw(guide.Shape(), tensor.Float32, cpu.device)
	if err != nil {
		return nil, nil, fmt.Errorf("bilateral slice grad: failed to create guide gradient: %w", err)
	}

	// Both are fresh float32 tensors of the input ranks.
	gridGradView, _ := gridGrad.View5()
	guideGradView, _ := guideGrad.View3()

	dev := cpu.newDevice(ctx)
	if !kernels.SliceGrad(dev, gridView, guideView, tangentView, gridGradView, guideGradView) {
		return nil, nil, dev.status("bilateral slice grad")
	}
	return gridGrad, guideGrad, nil
}

func outputShape(grid tensor.View5, guide tensor.View3) tensor.Shape {
	return tensor.Shape{grid.Dim(0), guide.Dim(0), guide.Dim(1), guide.Dim(2)}
}
