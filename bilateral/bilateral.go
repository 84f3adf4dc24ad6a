// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bilateral

import (
	"context"
	"fmt"

	"github.com/born-ml/bislice/internal/backend/cpu"
	"github.com/born-ml/bislice/internal/backend/webgpu"
	"github.com/born-ml/bislice/internal/tensor"
	"github.com/born-ml/bislice/internal/validate"
)

// Backend computes the bilateral slice and its gradients on one device.
//
// Implementations:
//   - CPU: NewCPU
//   - WebGPU: NewWebGPU (windows)
type Backend = tensor.Backend

// ContextBackend is a Backend whose launches can be cancelled.
type ContextBackend interface {
	Backend
	BilateralSliceContext(ctx context.Context, grid, guide *RawTensor) (*RawTensor, error)
	BilateralSliceGradContext(ctx context.Context, grid, guide, codomainTangent *RawTensor) (gridGrad, guideGrad *RawTensor, err error)
}

// Errors returned by Slice and SliceGrad. Use errors.Is to test for them.
var (
	ErrShape       = validate.ErrShape
	ErrDType       = validate.ErrDType
	ErrLaunch      = cpu.ErrLaunch
	ErrUnavailable = webgpu.ErrUnavailable
)

// Compile-time checks.
var (
	_ ContextBackend = (*cpu.CPUBackend)(nil)
	_ Backend        = (*webgpu.Backend)(nil)
)

// Slice validates grid [C, D, Gw, Gh, B] and guide [W, H, B] and returns the
// output [C, W, H, B].
func Slice(b Backend, grid, guide *RawTensor) (*RawTensor, error) {
	return SliceContext(context.Background(), b, grid, guide)
}

// SliceContext is Slice with cancellation for backends that support it.
func SliceContext(ctx context.Context, b Backend, grid, guide *RawTensor) (*RawTensor, error) {
	if err := validate.Slice(grid, guide); err != nil {
		return nil, fmt.Errorf("bilateral slice: %w", err)
	}
	if cb, ok := b.(ContextBackend); ok {
		return cb.BilateralSliceContext(ctx, grid, guide)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return b.BilateralSlice(grid, guide)
}

// SliceGrad validates its arguments and returns the gradients of
// Σ output·codomainTangent with respect to the grid and the guide.
func SliceGrad(b Backend, grid, guide, codomainTangent *RawTensor) (gridGrad, guideGrad *RawTensor, err error) {
	return SliceGradContext(context.Background(), b, grid, guide, codomainTangent)
}

// SliceGradContext is SliceGrad with cancellation for backends that support it.
func SliceGradContext(ctx context.Context, b Backend, grid, guide, codomainTangent *RawTensor) (gridGrad, guideGrad *RawTensor, err error) {
	if err := validate.SliceGrad(grid, guide, codomainTangent); err != nil {
		return nil, nil, fmt.Errorf("bilateral slice grad: %w", err)
	}
	if cb, ok := b.(ContextBackend); ok {
		return cb.BilateralSliceGradContext(ctx, grid, guide, codomainTangent)
	}
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return b.BilateralSliceGrad(grid, guide, codomainTangent)
}

// OutputShape returns the output shape [C, W, H, B] for a grid and guide shape.
func OutputShape(grid, guide Shape) Shape {
	return validate.OutputShape(grid, guide)
}
