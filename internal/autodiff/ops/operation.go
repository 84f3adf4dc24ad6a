// Package ops holds the differentiable operations a gradient tape records.
// The only one is BilateralSliceOp.
package ops

import "github.com/born-ml/bislice/internal/tensor"

// Operation is one recorded forward computation.
type Operation interface {
	// Backward maps dL/d(Output) to dL/d(input) for each of Inputs, in
	// the same order. A nil entry means that input gets no gradient.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the tensors the forward pass read.
	Inputs() []*tensor.RawTensor

	// Output returns the tensor the forward pass produced.
	Output() *tensor.RawTensor
}
