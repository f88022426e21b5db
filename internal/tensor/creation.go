package tensor

import (
	"github.com/pkg/errors"
)

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
//
// Example:
//
//	x, err := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
func FromSlice[T Float](data []T, shape Shape) (*RawTensor, error) {
	if shape.NumElements() != len(data) {
		return nil, errors.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}

	raw, err := NewRaw(shape, inferDataType[T](), CPU)
	if err != nil {
		return nil, err
	}

	copy(Data[T](raw), data)
	return raw, nil
}

// MustFromSlice is FromSlice that panics on error. Intended for tests and literals.
func MustFromSlice[T Float](data []T, shape Shape) *RawTensor {
	raw, err := FromSlice(data, shape)
	if err != nil {
		panic(err)
	}
	return raw
}

// Vector creates a 1-D tensor holding data.
func Vector[T Float](data ...T) *RawTensor {
	return MustFromSlice(data, Shape{len(data)})
}

// Data returns the elements of r as []T without copying.
// Panics if T does not match the tensor's dtype.
func Data[T Float](r *RawTensor) []T {
	var dummy T
	switch any(dummy).(type) {
	case float32:
		return any(r.AsFloat32()).([]T)
	default:
		return any(r.AsFloat64()).([]T)
	}
}

// Full creates a tensor of the given shape and dtype filled with value.
//
// Example:
//
//	t := tensor.Full(tensor.Shape{3, 3}, 0.5, tensor.Float64, tensor.CPU)
func Full(shape Shape, value float64, dtype DataType, device Device) *RawTensor {
	raw := MustNewRaw(shape, dtype, device)
	switch dtype {
	case Float32:
		data := raw.AsFloat32()
		for i := range data {
			data[i] = float32(value)
		}
	default:
		data := raw.AsFloat64()
		for i := range data {
			data[i] = value
		}
	}
	return raw
}

// Zeros creates a zero-filled tensor.
func Zeros(shape Shape, dtype DataType, device Device) *RawTensor {
	// Data is already zero-initialized by make()
	return MustNewRaw(shape, dtype, device)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType, device Device) *RawTensor {
	return Full(shape, 1, dtype, device)
}

// Scalar creates a 0-d tensor holding value.
func Scalar(value float64, dtype DataType, device Device) *RawTensor {
	return Full(Shape{}, value, dtype, device)
}
