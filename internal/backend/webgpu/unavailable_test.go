//go:build !windows

package webgpu

import (
	"testing"

	"github.com/born-ml/bislice/internal/tensor"
	"github.com/stretchr/testify/assert"
)

func TestNew_Unavailable(t *testing.T) {
	backend, err := New(nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Nil(t, backend)

	var stub Backend
	assert.Equal(t, "WebGPU", stub.Name())
	assert.Equal(t, tensor.WebGPU, stub.Device())
	_, err = stub.BilateralSlice(nil, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
	_, _, err = stub.BilateralSliceGrad(nil, nil, nil)
	assert.ErrorIs(t, err, ErrUnavailable)
}
