// Package validate checks bilateral slice arguments before any kernel runs.
//
// The kernels index their views without bounds checks beyond the slice
// accesses Go performs, so every call that reaches a backend goes through
// Slice or SliceGrad first.
package validate

import (
	"errors"
	"fmt"

	"github.com/born-ml/bislice/internal/tensor"
)

// Sentinel errors. Use errors.Is to test for them.
var (
	ErrShape = errors.New("invalid shape")
	ErrDType = errors.New("unsupported data type")
)

// ShapeError describes which argument failed validation and how.
type ShapeError struct {
	Arg     string       // Argument name ("grid", "guide", "codomain_tangent")
	Shape   tensor.Shape // Shape that was received
	Details string
}

// Error implements the error interface.
func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s %v: %s", e.Arg, e.Shape, e.Details)
}

// Unwrap makes errors.Is(err, ErrShape) hold.
func (e *ShapeError) Unwrap() error {
	return ErrShape
}

// Grid checks that grid is a float32 [C, D, Gw, Gh, B] tensor with every
// extent at least 1.
func Grid(grid *tensor.RawTensor) error {
	if err := float32Tensor("grid", grid); err != nil {
		return err
	}
	shape := grid.Shape()
	if len(shape) != 5 {
		return &ShapeError{Arg: "grid", Shape: shape, Details: "want rank 5 [C, D, Gw, Gh, B]"}
	}
	for i, name := range [...]string{"C", "D", "Gw", "Gh", "B"} {
		if shape[i] < 1 {
			return &ShapeError{Arg: "grid", Shape: shape, Details: fmt.Sprintf("%s must be at least 1", name)}
		}
	}
	return nil
}

// Slice validates the forward pass arguments: grid [C, D, Gw, Gh, B] and
// guide [W, H, B] with matching batch. W and H may be zero.
func Slice(grid, guide *tensor.RawTensor) error {
	if err := Grid(grid); err != nil {
		return err
	}
	if err := float32Tensor("guide", guide); err != nil {
		return err
	}

	shape := guide.Shape()
	if len(shape) != 3 {
		return &ShapeError{Arg: "guide", Shape: shape, Details: "want rank 3 [W, H, B]"}
	}
	if batch := grid.Shape()[4]; shape[2] != batch {
		return &ShapeError{Arg: "guide", Shape: shape, Details: fmt.Sprintf("batch %d does not match grid batch %d", shape[2], batch)}
	}
	return nil
}

// SliceGrad validates the backward pass arguments. On top of Slice it
// requires codomainTangent to have the output shape [C, W, H, B].
func SliceGrad(grid, guide, codomainTangent *tensor.RawTensor) error {
	if err := Slice(grid, guide); err != nil {
		return err
	}
	if err := float32Tensor("codomain_tangent", codomainTangent); err != nil {
		return err
	}

	want := OutputShape(grid.Shape(), guide.Shape())
	if got := codomainTangent.Shape(); !got.Equal(want) {
		return &ShapeError{Arg: "codomain_tangent", Shape: got, Details: fmt.Sprintf("want output shape %v", want)}
	}
	return nil
}

// OutputShape returns [C, W, H, B] for a grid [C, D, Gw, Gh, B] and a guide
// [W, H, B]. The shapes must already be valid.
func OutputShape(grid, guide tensor.Shape) tensor.Shape {
	return tensor.Shape{grid[0], guide[0], guide[1], guide[2]}
}

func float32Tensor(arg string, t *tensor.RawTensor) error {
	if t == nil {
		return &ShapeError{Arg: arg, Details: "tensor is nil"}
	}
	if t.DType() != tensor.Float32 {
		return fmt.Errorf("%s: %w: %s (want float32)", arg, ErrDType, t.DType())
	}
	return nil
}
