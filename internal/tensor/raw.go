package tensor

import (
	"fmt"
	"math"
	"unsafe"
)

// Device represents the compute device for tensor operations.
type Device int

// Supported compute devices.
const (
	CPU Device = iota
	WebGPU
)

// String returns a human-readable device name.
func (d Device) String() string {
	switch d {
	case CPU:
		return "CPU"
	case WebGPU:
		return "WebGPU"
	default:
		return "Unknown"
	}
}

// RawTensor is the low-level tensor representation: a dense byte buffer
// plus shape, strides and runtime type.
type RawTensor struct {
	data   []byte
	shape  Shape
	stride []int
	dtype  DataType
	device Device
}

// NewRaw creates a new RawTensor with the given shape and type.
// Memory is zero-initialized.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	if shape.NumElements() > math.MaxInt/dtype.Size() {
		return nil, fmt.Errorf("invalid shape: %v %s elements overflow the byte size", []int(shape), dtype)
	}

	return &RawTensor{
		data:   make([]byte, shape.NumElements()*dtype.Size()),
		shape:  shape.Clone(),
		stride: shape.ComputeStrides(),
		dtype:  dtype,
		device: device,
	}, nil
}

// Shape returns the tensor's shape.
func (r *RawTensor) Shape() Shape {
	return r.shape
}

// Strides returns the tensor's memory strides.
func (r *RawTensor) Strides() []int {
	return r.stride
}

// DType returns the tensor's data type.
func (r *RawTensor) DType() DataType {
	return r.dtype
}

// Device returns the tensor's compute device.
func (r *RawTensor) Device() Device {
	return r.device
}

// NumElements returns the total number of elements.
func (r *RawTensor) NumElements() int {
	return r.shape.NumElements()
}

// ByteSize returns the total memory size in bytes.
func (r *RawTensor) ByteSize() int {
	return r.NumElements() * r.dtype.Size()
}

// Data returns the raw byte slice.
// WARNING: Direct access to underlying memory. Use with caution.
func (r *RawTensor) Data() []byte {
	return r.data
}

// AsFloat32 interprets the data as []float32.
// Panics if the tensor's dtype is not Float32.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("tensor dtype is %s, not float32", r.dtype))
	}
	if len(r.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// AsFloat64 interprets the data as []float64.
// Panics if the tensor's dtype is not Float64.
func (r *RawTensor) AsFloat64() []float64 {
	if r.dtype != Float64 {
		panic(fmt.Sprintf("tensor dtype is %s, not float64", r.dtype))
	}
	if len(r.data) == 0 {
		return nil
	}
	//nolint:gosec // unsafe.Slice for zero-copy performance, bounds checked by NumElements()
	return unsafe.Slice((*float64)(unsafe.Pointer(&r.data[0])), r.NumElements())
}

// Clone returns a deep copy of the tensor.
func (r *RawTensor) Clone() *RawTensor {
	data := make([]byte, len(r.data))
	copy(data, r.data)
	return &RawTensor{
		data:   data,
		shape:  r.shape.Clone(),
		stride: append([]int(nil), r.stride...),
		dtype:  r.dtype,
		device: r.device,
	}
}

// View3 returns a rank-3 view over a float32 tensor.
func (r *RawTensor) View3() (View3, error) {
	if err := r.checkView(3); err != nil {
		return View3{}, err
	}
	return NewView3(r.AsFloat32(), r.shape[0], r.shape[1], r.shape[2]), nil
}

// View4 returns a rank-4 view over a float32 tensor.
func (r *RawTensor) View4() (View4, error) {
	if err := r.checkView(4); err != nil {
		return View4{}, err
	}
	return NewView4(r.AsFloat32(), r.shape[0], r.shape[1], r.shape[2], r.shape[3]), nil
}

// View5 returns a rank-5 view over a float32 tensor.
func (r *RawTensor) View5() (View5, error) {
	if err := r.checkView(5); err != nil {
		return View5{}, err
	}
	return NewView5(r.AsFloat32(), r.shape[0], r.shape[1], r.shape[2], r.shape[3], r.shape[4]), nil
}

func (r *RawTensor) checkView(rank int) error {
	if r.dtype != Float32 {
		return fmt.Errorf("view requires float32 data, got %s", r.dtype)
	}
	if len(r.shape) != rank {
		return fmt.Errorf("view requires rank %d, got shape %v", rank, r.shape)
	}
	return nil
}
