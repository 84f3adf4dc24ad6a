package tensor

import "fmt"

// FromFloat32 creates a float32 tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromFloat32(data []float32, shape Shape, device Device) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, fmt.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape, Float32, device)
	if err != nil {
		return nil, err
	}
	copy(raw.AsFloat32(), data)
	return raw, nil
}

// Zeros creates a zero-filled float32 tensor.
func Zeros(shape Shape, device Device) (*RawTensor, error) {
	return NewRaw(shape, Float32, device)
}

// Full creates a float32 tensor with every element set to value.
func Full(shape Shape, value float32, device Device) (*RawTensor, error) {
	raw, err := NewRaw(shape, Float32, device)
	if err != nil {
		return nil, err
	}
	data := raw.AsFloat32()
	for i := range data {
		data[i] = value
	}
	return raw, nil
}

// ToFloat32 returns a float32 copy of a float32 or float64 tensor.
func ToFloat32(r *RawTensor) (*RawTensor, error) {
	switch r.DType() {
	case Float32:
		return r.Clone(), nil
	case Float64:
		out, err := NewRaw(r.Shape(), Float32, r.Device())
		if err != nil {
			return nil, err
		}
		dst := out.AsFloat32()
		for i, v := range r.AsFloat64() {
			dst[i] = float32(v)
		}
		return out, nil
	default:
		return nil, fmt.Errorf("cannot convert %s to float32", r.DType())
	}
}
