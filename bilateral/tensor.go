// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package bilateral

import "github.com/born-ml/bislice/internal/tensor"

// Shape represents the dimensions of a tensor, innermost first.
// Example: Shape{3, 64, 48, 1} is a 3-channel 64×48 image in a batch of 1.
type Shape = tensor.Shape

// RawTensor is a dense float32 (or float64) tensor.
type RawTensor = tensor.RawTensor

// DataType represents the element type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Device represents the device a backend computes on.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// FromFloat32 creates a float32 tensor holding a copy of data.
func FromFloat32(data []float32, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat32(data, shape, tensor.CPU)
}

// Zeros creates a zero-filled float32 tensor.
func Zeros(shape Shape) (*RawTensor, error) {
	return tensor.Zeros(shape, tensor.CPU)
}

// Full creates a float32 tensor filled with value.
func Full(shape Shape, value float32) (*RawTensor, error) {
	return tensor.Full(shape, value, tensor.CPU)
}
