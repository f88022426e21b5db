// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"github.com/born-ml/tracegrad/internal/tensor"
)

// Shape lists the size of each dimension. The empty shape is a 0-d scalar.
type Shape = tensor.Shape

// DataType is the element type of a tensor.
type DataType = tensor.DataType

// Device identifies where tensor data lives.
type Device = tensor.Device

// Float constrains the supported Go element types.
type Float = tensor.Float

// Supported element types.
const (
	Float32 = tensor.Float32
	Float64 = tensor.Float64
)

// CPU is the host device.
const CPU = tensor.CPU

// FromSlice creates a tensor that owns a copy of data.
func FromSlice[T Float](data []T, shape Shape) (*RawTensor, error) {
	return tensor.FromSlice(data, shape)
}

// MustFromSlice is FromSlice that panics on error.
func MustFromSlice[T Float](data []T, shape Shape) *RawTensor {
	return tensor.MustFromSlice(data, shape)
}

// Vector creates a rank-1 tensor.
func Vector[T Float](data ...T) *RawTensor {
	return tensor.Vector(data...)
}

// Data returns the elements of r as []T without copying.
func Data[T Float](r *RawTensor) []T {
	return tensor.Data[T](r)
}

// Scalar creates a 0-d tensor.
func Scalar(value float64, dtype DataType, device Device) *RawTensor {
	return tensor.Scalar(value, dtype, device)
}

// Full creates a tensor with every element set to value.
func Full(shape Shape, value float64, dtype DataType, device Device) *RawTensor {
	return tensor.Full(shape, value, dtype, device)
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	return tensor.Zeros(shape, dtype, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) *RawTensor {
	return tensor.Ones(shape, dtype, device)
}

// BroadcastShapes computes the NumPy-style broadcast of a and b.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
