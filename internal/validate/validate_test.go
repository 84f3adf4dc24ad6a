package validate

import (
	"testing"

	"github.com/born-ml/bislice/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func zeros(t *testing.T, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.Zeros(tensor.Shape(shape), tensor.CPU)
	require.NoError(t, err)
	return raw
}

func TestSlice(t *testing.T) {
	tests := []struct {
		name  string
		grid  tensor.Shape
		guide tensor.Shape
		ok    bool
	}{
		{"valid", tensor.Shape{12, 8, 16, 16, 2}, tensor.Shape{64, 48, 2}, true},
		{"empty image", tensor.Shape{3, 4, 2, 2, 1}, tensor.Shape{0, 5, 1}, true},
		{"grid rank", tensor.Shape{12, 8, 16, 16}, tensor.Shape{64, 48, 1}, false},
		{"zero depth", tensor.Shape{1, 0, 2, 2, 1}, tensor.Shape{4, 4, 1}, false},
		{"zero batch", tensor.Shape{1, 2, 2, 2, 0}, tensor.Shape{4, 4, 0}, false},
		{"guide rank", tensor.Shape{1, 2, 2, 2, 1}, tensor.Shape{4, 4}, false},
		{"batch mismatch", tensor.Shape{1, 2, 2, 2, 2}, tensor.Shape{4, 4, 1}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Slice(zeros(t, tt.grid...), zeros(t, tt.guide...))
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrShape)
			var se *ShapeError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestSlice_RejectsNonFloat32(t *testing.T) {
	grid, err := tensor.NewRaw(tensor.Shape{1, 2, 2, 2, 1}, tensor.Float64, tensor.CPU)
	require.NoError(t, err)

	err = Slice(grid, zeros(t, 4, 4, 1))
	assert.ErrorIs(t, err, ErrDType)
	assert.Contains(t, err.Error(), "grid")

	assert.ErrorIs(t, Slice(zeros(t, 1, 2, 2, 2, 1), nil), ErrShape)
}

func TestSliceGrad(t *testing.T) {
	grid := zeros(t, 3, 4, 2, 2, 1)
	guide := zeros(t, 5, 6, 1)

	assert.NoError(t, SliceGrad(grid, guide, zeros(t, 3, 5, 6, 1)))

	err := SliceGrad(grid, guide, zeros(t, 3, 6, 5, 1))
	require.ErrorIs(t, err, ErrShape)
	assert.Contains(t, err.Error(), "codomain_tangent")

	assert.ErrorIs(t, SliceGrad(grid, zeros(t, 5, 6, 2), zeros(t, 3, 5, 6, 2)), ErrShape)
}

func TestOutputShape(t *testing.T) {
	got := OutputShape(tensor.Shape{12, 8, 16, 16, 2}, tensor.Shape{64, 48, 2})
	assert.Equal(t, tensor.Shape{12, 64, 48, 2}, got)
}
