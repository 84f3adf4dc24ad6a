package tensor

import (
	"fmt"
	"math"
	"slices"
)

// Shape lists tensor extents with dimension 0 innermost (stride 1). A grid
// shaped [C, D, Gw, Gh, B] keeps the channels of one cell contiguous and
// the batch outermost.
type Shape []int

// NumElements returns the product of the extents; a rank-0 shape holds
// one element.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate rejects negative extents and shapes whose element count does
// not fit in an int. Zero extents describe empty tensors, which the
// launchers skip.
func (s Shape) Validate() error {
	if i := slices.IndexFunc(s, func(d int) bool { return d < 0 }); i >= 0 {
		return fmt.Errorf("negative extent %d in dimension %d", s[i], i)
	}
	if slices.Contains(s, 0) {
		return nil
	}
	n := 1
	for _, dim := range s {
		if n > math.MaxInt/dim {
			return fmt.Errorf("element count of %v overflows", []int(s))
		}
		n *= dim
	}
	return nil
}

// Equal reports whether both shapes have the same rank and extents.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns a copy that does not alias s.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

// Reversed returns the extents outermost-first, the order row-major file
// formats such as SafeTensors use.
func (s Shape) Reversed() Shape {
	r := s.Clone()
	slices.Reverse(r)
	return r
}

// ComputeStrides returns element strides for the innermost-first layout:
// stride[0] is 1 and stride[k] is the product of the extents below k.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	step := 1
	for k, dim := range s {
		strides[k] = step
		step *= dim
	}
	return strides
}
