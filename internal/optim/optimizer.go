// Package optim implements gradient-descent optimizers for fitting bilateral
// grids (and, optionally, guides) to a target.
//
// This package provides:
//   - Optimizer interface: Base interface for all optimizers
//   - SGD: Stochastic Gradient Descent with momentum
//   - Adam: Adaptive Moment Estimation
//
// Parameters are float32 RawTensors updated in place. Gradients come from
// autodiff as a map keyed by the parameter tensors.
//
// Example usage:
//
//	optimizer := optim.NewAdam([]*tensor.RawTensor{grid}, optim.AdamConfig{LR: 0.01})
//
//	for step := range steps {
//	    tape.Clear()
//	    out, _ := bilateral.Record(tape, backend, grid, guide)
//	    grads, _ := bilateral.Gradients(tape, out, lossGrad(out), backend)
//	    optimizer.Step(grads)
//	}
package optim

import (
	"fmt"

	"github.com/born-ml/bislice/internal/tensor"
)

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies gradient updates to all parameters in place.
	// Parameters absent from grads are left unchanged.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// GetLR returns the current learning rate.
	GetLR() float32
}

// Config is the base configuration for all optimizers.
type Config struct {
	LR float32 // Learning rate
}

// checkParams rejects parameters the in-place updates cannot handle.
func checkParams(params []*tensor.RawTensor) error {
	for i, p := range params {
		if p == nil {
			return fmt.Errorf("param %d: nil tensor", i)
		}
		if p.DType() != tensor.Float32 {
			return fmt.Errorf("param %d: want float32, got %s", i, p.DType())
		}
	}
	return nil
}

// getGradient returns the gradient of param as a float32 slice, or nil if the
// parameter took no part in the recorded computation.
func getGradient(param *tensor.RawTensor, grads map[*tensor.RawTensor]*tensor.RawTensor) []float32 {
	grad := grads[param]
	if grad == nil || grad.NumElements() != param.NumElements() {
		return nil
	}
	return grad.AsFloat32()
}
