package serialization

import (
	"github.com/born-ml/bislice/internal/tensor"
)

// Format constants.
const (
	headerSizeLen   = 8 // uint64 LE header length prefix
	HeaderAlignment = 8 // JSON header is padded to this many bytes
	metadataKey     = "__metadata__"
)

// SafeTensors dtype strings.
const (
	DTypeF32 = "F32"
	DTypeF64 = "F64"
	DTypeF16 = "F16"
)

// Tensor names used by the bislice tools.
const (
	NameGrid      = "grid"       // [C, D, Gw, Gh, B]
	NameGuide     = "guide"      // [W, H, B]
	NameTangent   = "tangent"    // [C, W, H, B]
	NameOutput    = "output"     // [C, W, H, B]
	NameGridGrad  = "grid_grad"  // [C, D, Gw, Gh, B]
	NameGuideGrad = "guide_grad" // [W, H, B]
)

// headerEntry is one tensor in the JSON header.
type headerEntry struct {
	DType       string   `json:"dtype"`
	Shape       []int64  `json:"shape"`
	DataOffsets [2]int64 `json:"data_offsets"`
}

// TensorMeta describes a tensor in a SafeTensors file.
type TensorMeta struct {
	Name   string       // Tensor name (e.g., "grid")
	DType  string       // SafeTensors dtype (e.g., "F32")
	Shape  tensor.Shape // In-memory shape, dimension 0 innermost
	Offset int64        // Offset in the data section
	Size   int64        // Size in bytes
}

// NumElements returns the number of elements in the tensor.
func (m TensorMeta) NumElements() int {
	return m.Shape.NumElements()
}

// dtypeSize returns the element size of a SafeTensors dtype.
func dtypeSize(dtype string) (int, bool) {
	switch dtype {
	case DTypeF32:
		return 4, true
	case DTypeF64:
		return 8, true
	case DTypeF16:
		return 2, true
	default:
		return 0, false
	}
}

// diskShape converts an in-memory shape to the on-disk outermost-first order.
func diskShape(s tensor.Shape) []int64 {
	r := s.Reversed()
	out := make([]int64, len(r))
	for i, dim := range r {
		out[i] = int64(dim)
	}
	return out
}

// memoryShape converts an on-disk shape to the in-memory innermost-first order.
func memoryShape(s []int64) tensor.Shape {
	out := make(tensor.Shape, len(s))
	for i, dim := range s {
		out[len(s)-1-i] = int(dim)
	}
	return out
}
