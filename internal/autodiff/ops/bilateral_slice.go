package ops

import (
	"fmt"

	"github.com/born-ml/bislice/internal/tensor"
)

// BilateralSliceOp represents out = slice(grid, guide).
//
// Backward pass:
//   - d(out)/d(grid): scatter of the codomain tangent onto the grid cells
//     each pixel sampled
//   - d(out)/d(guide): derivative of the depth interpolation, D·w'(gz)
//
// Both come from a single backend BilateralSliceGrad call.
type BilateralSliceOp struct {
	grid   *tensor.RawTensor // [C, D, Gw, Gh, B]
	guide  *tensor.RawTensor // [W, H, B]
	output *tensor.RawTensor // [C, W, H, B]
}

// NewBilateralSliceOp creates a new BilateralSliceOp.
func NewBilateralSliceOp(grid, guide, output *tensor.RawTensor) *BilateralSliceOp {
	return &BilateralSliceOp{
		grid:   grid,
		guide:  guide,
		output: output,
	}
}

// Backward computes the grid and guide gradients.
// Panics if the backend fails, since the gradient has nowhere else to go.
func (op *BilateralSliceOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	gridGrad, guideGrad, err := backend.BilateralSliceGrad(op.grid, op.guide, outputGrad)
	if err != nil {
		panic(fmt.Sprintf("bilateral slice backward: %v", err))
	}
	return []*tensor.RawTensor{gridGrad, guideGrad}
}

// Inputs returns [grid, guide].
func (op *BilateralSliceOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.grid, op.guide}
}

// Output returns the sliced output.
func (op *BilateralSliceOp) Output() *tensor.RawTensor {
	return op.output
}
