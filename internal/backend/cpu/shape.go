package cpu

import (
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/gomlx/exceptions"
)

// Reshape returns a copy of t with a different shape and the same elements.
func (cpu *CPUBackend) Reshape(t *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if err := newShape.Validate(); err != nil {
		exceptions.Panicf("reshape: invalid shape: %v", err)
	}

	if t.NumElements() != newShape.NumElements() {
		exceptions.Panicf("reshape: incompatible shapes: %v -> %v (different number of elements)",
			t.Shape(), newShape)
	}

	return t.Clone().WithShape(newShape)
}

// Transpose permutes the dimensions of t. With no axes it reverses them.
func (cpu *CPUBackend) Transpose(t *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	shape := t.Shape()
	ndim := len(shape)

	// Default: reverse all dimensions
	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}

	if len(axes) != ndim {
		exceptions.Panicf("transpose: axes length %d != ndim %d", len(axes), ndim)
	}

	seen := make([]bool, ndim)
	for _, ax := range axes {
		if ax < 0 || ax >= ndim {
			exceptions.Panicf("transpose: invalid axis %d for %dD tensor", ax, ndim)
		}
		if seen[ax] {
			exceptions.Panicf("transpose: duplicate axis %d", ax)
		}
		seen[ax] = true
	}

	newShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		newShape[i] = shape[ax]
	}

	result := tensor.MustNewRaw(newShape, t.DType(), cpu.device)

	switch t.DType() {
	case tensor.Float32:
		transposeKernel(result.AsFloat32(), t.AsFloat32(), shape, newShape, axes)
	case tensor.Float64:
		transposeKernel(result.AsFloat64(), t.AsFloat64(), shape, newShape, axes)
	default:
		exceptions.Panicf("transpose: unsupported dtype %s", t.DType())
	}

	return result
}

// SwapAxes exchanges two dimensions of t.
func (cpu *CPUBackend) SwapAxes(t *tensor.RawTensor, a1, a2 int) *tensor.RawTensor {
	ndim := t.Rank()
	if a1 < 0 || a1 >= ndim || a2 < 0 || a2 >= ndim {
		exceptions.Panicf("swapaxes: axes (%d, %d) out of range for %dD tensor", a1, a2, ndim)
	}
	if a1 == a2 {
		return t.Clone()
	}

	axes := make([]int, ndim)
	for i := range axes {
		axes[i] = i
	}
	axes[a1], axes[a2] = axes[a2], axes[a1]
	return cpu.Transpose(t, axes...)
}

// Expand broadcasts the tensor to a new shape.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	if !tensor.CanExpand(x.Shape(), newShape) {
		exceptions.Panicf("expand: cannot broadcast %v to %v", x.Shape(), newShape)
	}

	result := tensor.MustNewRaw(newShape, x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		gatherBroadcast(result.AsFloat32(), x.AsFloat32(), x.Shape(), newShape)
	case tensor.Float64:
		gatherBroadcast(result.AsFloat64(), x.AsFloat64(), x.Shape(), newShape)
	default:
		exceptions.Panicf("expand: unsupported dtype %s", x.DType())
	}

	return result
}

// transposeKernel writes src (srcShape) permuted by axes into dst (dstShape).
func transposeKernel[T tensor.Float](dst, src []T, srcShape, dstShape tensor.Shape, axes []int) {
	srcStrides := srcShape.ComputeStrides()
	dstStrides := dstShape.ComputeStrides()

	// Stride of each destination dimension in the source buffer.
	permStrides := make([]int, len(axes))
	for i, ax := range axes {
		permStrides[i] = srcStrides[ax]
	}

	for i := range dst {
		dst[i] = src[computeFlatIndex(i, dstStrides, permStrides)]
	}
}
