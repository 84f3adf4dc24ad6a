//go:build !windows

package webgpu

import (
	"github.com/born-ml/bislice/internal/logger"
	"github.com/born-ml/bislice/internal/tensor"
)

// Backend is a placeholder on platforms without the WebGPU bindings.
type Backend struct{}

// New always returns ErrUnavailable on this platform.
func New(_ logger.Logger) (*Backend, error) {
	return nil, ErrUnavailable
}

// Release is a no-op.
func (b *Backend) Release() {}

// Name returns the backend name.
func (b *Backend) Name() string {
	return "WebGPU"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

// AdapterName returns an empty string on this platform.
func (b *Backend) AdapterName() string {
	return ""
}

// BilateralSlice returns ErrUnavailable.
func (b *Backend) BilateralSlice(_, _ *tensor.RawTensor) (*tensor.RawTensor, error) {
	return nil, ErrUnavailable
}

// BilateralSliceGrad returns ErrUnavailable.
func (b *Backend) BilateralSliceGrad(_, _, _ *tensor.RawTensor) (gridGrad, guideGrad *tensor.RawTensor, err error) {
	return nil, nil, ErrUnavailable
}
