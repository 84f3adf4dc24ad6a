// Package autodiff records bilateral slices on a gradient tape and runs
// them backwards.
//
// AutodiffBackend decorates any tensor.Backend: each BilateralSlice it
// computes is appended to its tape as an ops.BilateralSliceOp. Backward
// then walks the tape in reverse and asks the wrapped backend for the grid
// and guide vector-Jacobian products, summing gradients of tensors that
// feed more than one slice.
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	out, _ := backend.BilateralSlice(grid, guide)
//	grads := backend.Tape().Backward(tangent, backend)
//	gridGrad, guideGrad := grads[grid], grads[guide]
package autodiff

import (
	"github.com/born-ml/bislice/internal/autodiff/ops"
	"github.com/born-ml/bislice/internal/tensor"
)

// AutodiffBackend wraps a backend of type B and tapes its forward slices.
type AutodiffBackend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New wraps backend with a fresh, non-recording tape.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{inner: backend, tape: NewGradientTape()}
}

// Tape returns the tape so callers can start, stop or clear recording.
func (b *AutodiffBackend[B]) Tape() *GradientTape { return b.tape }

// Inner returns the wrapped backend.
func (b *AutodiffBackend[B]) Inner() B { return b.inner }

// Name reports the wrapped backend's name as Autodiff(name).
func (b *AutodiffBackend[B]) Name() string {
	return "Autodiff(" + b.inner.Name() + ")"
}

// Device returns the wrapped backend's device.
func (b *AutodiffBackend[B]) Device() tensor.Device { return b.inner.Device() }

// BilateralSlice slices on the wrapped backend and records the result.
// Failed slices are not recorded.
func (b *AutodiffBackend[B]) BilateralSlice(grid, guide *tensor.RawTensor) (*tensor.RawTensor, error) {
	out, err := b.inner.BilateralSlice(grid, guide)
	if err != nil {
		return nil, err
	}
	b.tape.Record(ops.NewBilateralSliceOp(grid, guide, out))
	return out, nil
}

// BilateralSliceGrad forwards to the wrapped backend and records nothing;
// gradients of gradients are not tracked.
func (b *AutodiffBackend[B]) BilateralSliceGrad(grid, guide, codomainTangent *tensor.RawTensor) (gridGrad, guideGrad *tensor.RawTensor, err error) {
	return b.inner.BilateralSliceGrad(grid, guide, codomainTangent)
}
