package tensor

import "fmt"

// View3 is a dense rank-3 float32 view with dimension 0 innermost.
// A guide image [W, H, B] is the typical rank-3 view.
type View3 struct {
	data   []float32
	dims   [3]int
	stride [3]int
}

// NewView3 wraps data as a [d0, d1, d2] view.
// Panics if data holds fewer than d0*d1*d2 elements.
func NewView3(data []float32, d0, d1, d2 int) View3 {
	v := View3{data: data, dims: [3]int{d0, d1, d2}}
	v.stride = [3]int{1, d0, d0 * d1}
	checkLen(len(data), v.Size())
	return v
}

// Dim returns the extent of dimension k.
func (v View3) Dim(k int) int { return v.dims[k] }

// Size returns the total number of elements.
func (v View3) Size() int { return v.dims[0] * v.dims[1] * v.dims[2] }

// Offset returns the flat offset of element (i, j, k).
func (v View3) Offset(i, j, k int) int {
	return i + v.stride[1]*j + v.stride[2]*k
}

// At reads element (i, j, k).
func (v View3) At(i, j, k int) float32 { return v.data[v.Offset(i, j, k)] }

// Set writes element (i, j, k).
func (v View3) Set(i, j, k int, x float32) { v.data[v.Offset(i, j, k)] = x }

// Base returns the underlying flat slice.
func (v View3) Base() []float32 { return v.data }

// View4 is a dense rank-4 float32 view with dimension 0 innermost.
// Outputs and codomain tangents [C, W, H, B] are rank-4 views.
type View4 struct {
	data   []float32
	dims   [4]int
	stride [4]int
}

// NewView4 wraps data as a [d0, d1, d2, d3] view.
func NewView4(data []float32, d0, d1, d2, d3 int) View4 {
	v := View4{data: data, dims: [4]int{d0, d1, d2, d3}}
	v.stride = [4]int{1, d0, d0 * d1, d0 * d1 * d2}
	checkLen(len(data), v.Size())
	return v
}

// Dim returns the extent of dimension k.
func (v View4) Dim(k int) int { return v.dims[k] }

// Size returns the total number of elements.
func (v View4) Size() int { return v.dims[0] * v.dims[1] * v.dims[2] * v.dims[3] }

// Offset returns the flat offset of element (i, j, k, l).
func (v View4) Offset(i, j, k, l int) int {
	return i + v.stride[1]*j + v.stride[2]*k + v.stride[3]*l
}

// At reads element (i, j, k, l).
func (v View4) At(i, j, k, l int) float32 { return v.data[v.Offset(i, j, k, l)] }

// Set writes element (i, j, k, l).
func (v View4) Set(i, j, k, l int, x float32) { v.data[v.Offset(i, j, k, l)] = x }

// Base returns the underlying flat slice.
func (v View4) Base() []float32 { return v.data }

// View5 is a dense rank-5 float32 view with dimension 0 innermost.
// Bilateral grids [C, D, Gw, Gh, B] are rank-5 views.
type View5 struct {
	data   []float32
	dims   [5]int
	stride [5]int
}

// NewView5 wraps data as a [d0, d1, d2, d3, d4] view.
func NewView5(data []float32, d0, d1, d2, d3, d4 int) View5 {
	v := View5{data: data, dims: [5]int{d0, d1, d2, d3, d4}}
	v.stride = [5]int{1, d0, d0 * d1, d0 * d1 * d2, d0 * d1 * d2 * d3}
	checkLen(len(data), v.Size())
	return v
}

// Dim returns the extent of dimension k.
func (v View5) Dim(k int) int { return v.dims[k] }

// Size returns the total number of elements.
func (v View5) Size() int {
	return v.dims[0] * v.dims[1] * v.dims[2] * v.dims[3] * v.dims[4]
}

// Offset returns the flat offset of element (i, j, k, l, m).
func (v View5) Offset(i, j, k, l, m int) int {
	return i + v.stride[1]*j + v.stride[2]*k + v.stride[3]*l + v.stride[4]*m
}

// At reads element (i, j, k, l, m).
func (v View5) At(i, j, k, l, m int) float32 { return v.data[v.Offset(i, j, k, l, m)] }

// Set writes element (i, j, k, l, m).
func (v View5) Set(i, j, k, l, m int, x float32) { v.data[v.Offset(i, j, k, l, m)] = x }

// Base returns the underlying flat slice.
func (v View5) Base() []float32 { return v.data }

func checkLen(have, want int) {
	if have < want {
		panic(fmt.Sprintf("tensor: view needs %d elements, backing slice has %d", want, have))
	}
}
