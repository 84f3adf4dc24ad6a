//go:build windows

package webgpu

import (
	"math/rand/v2"
	"testing"

	"github.com/born-ml/bislice/internal/backend/cpu"
	"github.com/born-ml/bislice/internal/tensor"
	"github.com/born-ml/bislice/internal/validate"
	"github.com/go-webgpu/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestBackend(t *testing.T) *Backend {
	t.Helper()
	backend, err := New(nil)
	if err != nil {
		t.Skipf("WebGPU not available: %v", err)
	}
	t.Cleanup(backend.Release)
	return backend
}

func randomTensor(t *testing.T, r *rand.Rand, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.Zeros(tensor.Shape(shape), tensor.CPU)
	require.NoError(t, err)
	for i := range raw.AsFloat32() {
		raw.AsFloat32()[i] = r.Float32()
	}
	return raw
}

func TestNew(t *testing.T) {
	backend := newTestBackend(t)
	assert.Equal(t, "WebGPU", backend.Name())
	assert.Equal(t, tensor.WebGPU, backend.Device())
	t.Logf("adapter: %s", backend.AdapterName())
}

func TestAdapterName(t *testing.T) {
	tests := []struct {
		info wgpu.AdapterInfoGo
		want string
	}{
		{wgpu.AdapterInfoGo{}, ""},
		{wgpu.AdapterInfoGo{Vendor: "nvidia", Device: "RTX 4070"}, "nvidia RTX 4070"},
		{wgpu.AdapterInfoGo{Device: "Intel(R) UHD", Description: "Intel(R) UHD"}, "Intel(R) UHD"},
		{wgpu.AdapterInfoGo{Vendor: "amd", Description: "D3D12"}, "amd D3D12"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, adapterName(&tt.info))
	}
}

func TestDispatchSize(t *testing.T) {
	tests := []struct {
		units int
		x, y  uint32
	}{
		{1, 1, 1},
		{256, 1, 1},
		{257, 2, 1},
		{maxWorkgroupsPerDim * workgroupSize, maxWorkgroupsPerDim, 1},
		{maxWorkgroupsPerDim*workgroupSize + 1, maxWorkgroupsPerDim, 2},
	}
	for _, tt := range tests {
		x, y := dispatchSize(tt.units)
		assert.Equal(t, tt.x, x, "units=%d", tt.units)
		assert.Equal(t, tt.y, y, "units=%d", tt.units)
		assert.GreaterOrEqual(t, int(x)*int(y)*workgroupSize, tt.units)
	}
}

func TestBilateralSlice_MatchesCPU(t *testing.T) {
	backend := newTestBackend(t)
	r := rand.New(rand.NewPCG(11, 13))
	grid := randomTensor(t, r, 3, 8, 5, 4, 2)
	guide := randomTensor(t, r, 33, 21, 2)

	want, err := cpu.New().BilateralSlice(grid, guide)
	require.NoError(t, err)
	got, err := backend.BilateralSlice(grid, guide)
	require.NoError(t, err)

	assert.Equal(t, want.Shape(), got.Shape())
	assert.InDeltaSlice(t, want.AsFloat32(), got.AsFloat32(), 1e-4)
}

func TestBilateralSliceGrad_MatchesCPU(t *testing.T) {
	backend := newTestBackend(t)
	r := rand.New(rand.NewPCG(17, 19))
	grid := randomTensor(t, r, 2, 6, 4, 3, 1)
	guide := randomTensor(t, r, 19, 14, 1)
	tangent := randomTensor(t, r, 2, 19, 14, 1)

	wantGrid, wantGuide, err := cpu.New().BilateralSliceGrad(grid, guide, tangent)
	require.NoError(t, err)
	gotGrid, gotGuide, err := backend.BilateralSliceGrad(grid, guide, tangent)
	require.NoError(t, err)

	assert.InDeltaSlice(t, wantGrid.AsFloat32(), gotGrid.AsFloat32(), 1e-3)
	assert.InDeltaSlice(t, wantGuide.AsFloat32(), gotGuide.AsFloat32(), 1e-3)
}

func TestBilateralSlice_EmptyImage(t *testing.T) {
	backend := newTestBackend(t)
	grid, err := tensor.Zeros(tensor.Shape{2, 4, 3, 3, 1}, tensor.CPU)
	require.NoError(t, err)
	guide, err := tensor.Zeros(tensor.Shape{0, 5, 1}, tensor.CPU)
	require.NoError(t, err)
	tangent, err := tensor.Zeros(tensor.Shape{2, 0, 5, 1}, tensor.CPU)
	require.NoError(t, err)

	out, err := backend.BilateralSlice(grid, guide)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 0, 5, 1}, out.Shape())

	gridGrad, guideGrad, err := backend.BilateralSliceGrad(grid, guide, tangent)
	require.NoError(t, err)
	assert.Equal(t, make([]float32, gridGrad.NumElements()), gridGrad.AsFloat32())
	assert.Zero(t, guideGrad.NumElements())
}

func TestBilateralSlice_RejectsBatchMismatch(t *testing.T) {
	backend := newTestBackend(t)
	grid, err := tensor.Zeros(tensor.Shape{1, 2, 2, 2, 2}, tensor.CPU)
	require.NoError(t, err)
	guide, err := tensor.Zeros(tensor.Shape{4, 4, 1}, tensor.CPU)
	require.NoError(t, err)

	_, err = backend.BilateralSlice(grid, guide)
	assert.ErrorIs(t, err, validate.ErrShape)
}
