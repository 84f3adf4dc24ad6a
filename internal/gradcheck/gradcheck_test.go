package gradcheck

import (
	"context"
	"testing"

	"github.com/born-ml/bislice/internal/backend/cpu"
	"github.com/born-ml/bislice/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scaledBackend reports gradients that are off by a constant factor.
type scaledBackend struct {
	*cpu.CPUBackend
	scale float32
}

func (s scaledBackend) BilateralSliceGrad(grid, guide, tangent *tensor.RawTensor) (*tensor.RawTensor, *tensor.RawTensor, error) {
	gridGrad, guideGrad, err := s.CPUBackend.BilateralSliceGrad(grid, guide, tangent)
	if err != nil {
		return nil, nil, err
	}
	for i := range gridGrad.AsFloat32() {
		gridGrad.AsFloat32()[i] *= s.scale
	}
	return gridGrad, guideGrad, nil
}

func TestParseDims(t *testing.T) {
	d, err := ParseDims("2,4,3,2,7,5,1")
	require.NoError(t, err)
	assert.Equal(t, Dims{C: 2, D: 4, Gw: 3, Gh: 2, W: 7, H: 5, B: 1}, d)
	assert.Equal(t, "2,4,3,2,7,5,1", d.String())

	for _, bad := range []string{"", "1,2,3", "1,2,3,4,5,6,x", "1,0,1,1,1,1,1"} {
		_, err := ParseDims(bad)
		assert.Error(t, err, bad)
	}
}

func TestRandomInputs(t *testing.T) {
	d := Dims{C: 2, D: 4, Gw: 3, Gh: 2, W: 7, H: 5, B: 2}
	in, err := RandomInputs(d, 3)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{2, 4, 3, 2, 2}, in.Grid.Shape())
	assert.Equal(t, tensor.Shape{7, 5, 2}, in.Guide.Shape())
	assert.Equal(t, tensor.Shape{2, 7, 5, 2}, in.Tangent.Shape())

	again, err := RandomInputs(d, 3)
	require.NoError(t, err)
	assert.Equal(t, in.Guide.AsFloat32(), again.Guide.AsFloat32())
}

func TestRun_CPUBackendPasses(t *testing.T) {
	var calls, last int
	opts := DefaultOptions()
	opts.Progress = func(done, total int) {
		calls++
		last = total
		assert.LessOrEqual(t, done, total)
	}

	d := Dims{C: 2, D: 4, Gw: 3, Gh: 2, W: 7, H: 5, B: 1}
	report, err := Run(context.Background(), cpu.New(), d, opts)
	require.NoError(t, err)

	assert.True(t, report.OK(), "mismatches: %v", report.Mismatches)
	assert.Equal(t, 2*4*3*2+7*5, report.Checked)
	assert.Equal(t, report.Checked, calls)
	assert.Equal(t, report.Checked, last)
	assert.Less(t, report.MaxGridErr, 1e-3)
	assert.Equal(t, d, report.Dims)
}

func TestRun_DetectsWrongGradient(t *testing.T) {
	opts := DefaultOptions()
	opts.MaxChecks = 10

	backend := scaledBackend{CPUBackend: cpu.New(), scale: 2}
	report, err := Run(context.Background(), backend, Dims{C: 1, D: 3, Gw: 2, Gh: 2, W: 6, H: 6, B: 1}, opts)
	require.NoError(t, err)

	assert.False(t, report.OK())
	assert.Equal(t, 20, report.Checked)
	for _, m := range report.Mismatches {
		assert.Equal(t, "grid", m.Tensor)
	}
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cpu.New(), Dims{C: 1, D: 2, Gw: 2, Gh: 2, W: 4, H: 4, B: 1}, DefaultOptions())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCheck_RestoresInputs(t *testing.T) {
	in, err := RandomInputs(Dims{C: 1, D: 2, Gw: 2, Gh: 2, W: 3, H: 3, B: 1}, 9)
	require.NoError(t, err)
	grid := append([]float32(nil), in.Grid.AsFloat32()...)
	guide := append([]float32(nil), in.Guide.AsFloat32()...)

	_, err = Check(context.Background(), cpu.New(), in, DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, grid, in.Grid.AsFloat32())
	assert.Equal(t, guide, in.Guide.AsFloat32())
}

func TestSample(t *testing.T) {
	assert.Len(t, sample(10, 0, 1), 10)
	assert.Len(t, sample(10, 20, 1), 10)

	idx := sample(100, 5, 1)
	assert.Len(t, idx, 5)
	seen := map[int]bool{}
	for _, i := range idx {
		assert.False(t, seen[i])
		seen[i] = true
	}
}
