// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bilateral

import (
	"fmt"

	"github.com/born-ml/bislice/internal/autodiff"
	"github.com/born-ml/bislice/internal/autodiff/ops"
)

// Tape records bilateral slices for reverse-mode differentiation.
type Tape = autodiff.GradientTape

// NewTape creates a tape that is already recording.
func NewTape() *Tape {
	tape := autodiff.NewGradientTape()
	tape.StartRecording()
	return tape
}

// AutodiffBackend wraps a backend and records every forward pass on its tape.
type AutodiffBackend[B Backend] = autodiff.AutodiffBackend[B]

// NewAutodiff wraps backend with automatic differentiation.
func NewAutodiff[B Backend](backend B) *AutodiffBackend[B] {
	return autodiff.New(backend)
}

// Record runs the forward pass on b and records it on tape.
//
// Example:
//
//	tape := bilateral.NewTape()
//	out, _ := bilateral.Record(tape, backend, grid, guide)
//	grads := bilateral.Gradients(tape, out, nil, backend)
//	gridGrad, guideGrad := grads[grid], grads[guide]
func Record(tape *Tape, b Backend, grid, guide *RawTensor) (*RawTensor, error) {
	out, err := Slice(b, grid, guide)
	if err != nil {
		return nil, err
	}
	tape.Record(ops.NewBilateralSliceOp(grid, guide, out))
	return out, nil
}

// Gradients back-propagates codomainTangent from output through every op on
// tape. A nil codomainTangent stands for all ones. The result maps each input
// tensor to its accumulated gradient.
func Gradients(tape *Tape, output, codomainTangent *RawTensor, b Backend) (grads map[*RawTensor]*RawTensor, err error) {
	if tape.NumOps() == 0 {
		return nil, fmt.Errorf("bilateral gradients: no operations recorded")
	}
	if codomainTangent == nil {
		if codomainTangent, err = Full(output.Shape(), 1); err != nil {
			return nil, fmt.Errorf("bilateral gradients: %w", err)
		}
	}

	// Backward panics on backend failure; surface it as an error.
	defer func() {
		if r := recover(); r != nil {
			grads = nil
			err = fmt.Errorf("bilateral gradients: %v", r)
		}
	}()
	return tape.BackwardFrom(map[*RawTensor]*RawTensor{output: codomainTangent}, b), nil
}
