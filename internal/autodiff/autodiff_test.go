package autodiff_test

import (
	"math/rand/v2"
	"testing"

	"github.com/born-ml/bislice/internal/autodiff"
	"github.com/born-ml/bislice/internal/backend/cpu"
	"github.com/born-ml/bislice/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func random(t *testing.T, r *rand.Rand, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.Zeros(tensor.Shape(shape), tensor.CPU)
	require.NoError(t, err)
	for i := range raw.AsFloat32() {
		raw.AsFloat32()[i] = r.Float32()
	}
	return raw
}

func TestAutodiffBackend_Metadata(t *testing.T) {
	backend := autodiff.New(cpu.New())
	assert.Equal(t, "Autodiff(CPU)", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
	assert.Equal(t, "CPU", backend.Inner().Name())
}

func TestAutodiffBackend_RecordsOnlyWhenRecording(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 1))
	backend := autodiff.New(cpu.New())
	grid, guide := random(t, r, 1, 2, 2, 2, 1), random(t, r, 4, 4, 1)

	_, err := backend.BilateralSlice(grid, guide)
	require.NoError(t, err)
	assert.Equal(t, 0, backend.Tape().NumOps())

	backend.Tape().StartRecording()
	_, err = backend.BilateralSlice(grid, guide)
	require.NoError(t, err)
	assert.Equal(t, 1, backend.Tape().NumOps())

	backend.Tape().Clear()
	assert.Equal(t, 0, backend.Tape().NumOps())
	assert.True(t, backend.Tape().IsRecording())
}

func TestBackward_MatchesBackendGrad(t *testing.T) {
	r := rand.New(rand.NewPCG(2, 3))
	inner := cpu.New()
	backend := autodiff.New(inner)
	backend.Tape().StartRecording()

	grid, guide := random(t, r, 2, 3, 3, 2, 1), random(t, r, 6, 5, 1)
	tangent := random(t, r, 2, 6, 5, 1)

	out, err := backend.BilateralSlice(grid, guide)
	require.NoError(t, err)

	grads := autodiff.Backward(out, tangent, backend)
	wantGrid, wantGuide, err := inner.BilateralSliceGrad(grid, guide, tangent)
	require.NoError(t, err)

	assert.Equal(t, wantGrid.AsFloat32(), grads[grid].AsFloat32())
	assert.Equal(t, wantGuide.AsFloat32(), grads[guide].AsFloat32())
	assert.True(t, backend.Tape().IsRecording(), "recording state is restored")
}

func TestBackward_NilTangentIsOnes(t *testing.T) {
	r := rand.New(rand.NewPCG(4, 5))
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	grid, guide := random(t, r, 1, 2, 2, 2, 1), random(t, r, 4, 4, 1)
	out, err := backend.BilateralSlice(grid, guide)
	require.NoError(t, err)

	ones, err := tensor.Full(out.Shape(), 1, tensor.CPU)
	require.NoError(t, err)
	want, _, err := backend.BilateralSliceGrad(grid, guide, ones)
	require.NoError(t, err)

	grads := autodiff.Backward(out, nil, backend)
	assert.Equal(t, want.AsFloat32(), grads[grid].AsFloat32())
}

func TestBackward_NoOpsPanics(t *testing.T) {
	backend := autodiff.New(cpu.New())
	out, err := tensor.Zeros(tensor.Shape{1, 1, 1, 1}, tensor.CPU)
	require.NoError(t, err)

	assert.Panics(t, func() { autodiff.Backward(out, nil, backend) })
}

// One grid sliced by two guides receives the sum of both gradients.
func TestGradientTape_AccumulatesSharedGrid(t *testing.T) {
	r := rand.New(rand.NewPCG(6, 7))
	inner := cpu.New()
	backend := autodiff.New(inner)
	backend.Tape().StartRecording()

	grid := random(t, r, 2, 3, 2, 2, 1)
	guideA, guideB := random(t, r, 5, 4, 1), random(t, r, 3, 3, 1)
	tangentA, tangentB := random(t, r, 2, 5, 4, 1), random(t, r, 2, 3, 3, 1)

	outA, err := backend.BilateralSlice(grid, guideA)
	require.NoError(t, err)
	outB, err := backend.BilateralSlice(grid, guideB)
	require.NoError(t, err)

	grads := backend.Tape().BackwardFrom(map[*tensor.RawTensor]*tensor.RawTensor{
		outA: tangentA,
		outB: tangentB,
	}, backend)

	gridA, _, err := inner.BilateralSliceGrad(grid, guideA, tangentA)
	require.NoError(t, err)
	gridB, _, err := inner.BilateralSliceGrad(grid, guideB, tangentB)
	require.NoError(t, err)

	got := grads[grid].AsFloat32()
	for i := range got {
		assert.InDelta(t, gridA.AsFloat32()[i]+gridB.AsFloat32()[i], got[i], 1e-6)
	}
	assert.Contains(t, grads, guideA)
	assert.Contains(t, grads, guideB)
}

// Backward seeds only the last output; earlier operations get no gradient.
func TestGradientTape_BackwardSeedsLastOp(t *testing.T) {
	r := rand.New(rand.NewPCG(8, 9))
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	grid := random(t, r, 1, 2, 2, 2, 1)
	guideA, guideB := random(t, r, 4, 4, 1), random(t, r, 4, 4, 1)

	_, err := backend.BilateralSlice(grid, guideA)
	require.NoError(t, err)
	outB, err := backend.BilateralSlice(grid, guideB)
	require.NoError(t, err)

	ones, err := tensor.Full(outB.Shape(), 1, tensor.CPU)
	require.NoError(t, err)
	grads := backend.Tape().Backward(ones, backend)

	assert.Contains(t, grads, guideB)
	assert.NotContains(t, grads, guideA)
}
