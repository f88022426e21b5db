package cpu

import (
	"math"

	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/gomlx/exceptions"
)

// SumAll sums every element of x into a 0-d tensor.
func (cpu *CPUBackend) SumAll(x *tensor.RawTensor) *tensor.RawTensor {
	result := tensor.MustNewRaw(tensor.Shape{}, x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] = sumKernel(x.AsFloat32())
	case tensor.Float64:
		result.AsFloat64()[0] = sumKernel(x.AsFloat64())
	default:
		exceptions.Panicf("sumall: unsupported dtype %s", x.DType())
	}

	return result
}

// SumDim sums tensor elements along the specified dimension.
//
// Parameters:
//   - dim: dimension to reduce (supports negative indexing: -1 = last dim)
//   - keepDim: if true, keep the reduced dimension with size 1; if false, remove it
//
// Example:
//
//	x := tensor.Ones(tensor.Shape{2, 3, 4}, tensor.Float32, tensor.CPU)
//	y := backend.SumDim(x, -1, true)   // shape: (2, 3, 1)
//	z := backend.SumDim(x, -1, false)  // shape: (2, 3)
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("sumdim", x, dim, keepDim, false)
}

// MaxDim takes the maximum along the specified dimension.
// Same parameters as SumDim.
func (cpu *CPUBackend) MaxDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("maxdim", x, dim, keepDim, true)
}

func (cpu *CPUBackend) reduceDim(name string, x *tensor.RawTensor, dim int, keepDim, takeMax bool) *tensor.RawTensor {
	shape := x.Shape()
	ndim := len(shape)

	// Normalize negative dimension
	if dim < 0 {
		dim = ndim + dim
	}

	if dim < 0 || dim >= ndim {
		exceptions.Panicf("%s: dimension %d out of range for %dD tensor", name, dim, ndim)
	}

	var outShape tensor.Shape
	if keepDim {
		outShape = shape.Clone()
		outShape[dim] = 1
	} else {
		outShape = make(tensor.Shape, 0, ndim-1)
		for i := 0; i < ndim; i++ {
			if i != dim {
				outShape = append(outShape, shape[i])
			}
		}
	}

	result := tensor.MustNewRaw(outShape, x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		reduceDimKernel(result.AsFloat32(), x.AsFloat32(), shape, dim, takeMax)
	case tensor.Float64:
		reduceDimKernel(result.AsFloat64(), x.AsFloat64(), shape, dim, takeMax)
	default:
		exceptions.Panicf("%s: unsupported dtype %s", name, x.DType())
	}

	return result
}

func sumKernel[T tensor.Float](src []T) T {
	var acc T
	for _, v := range src {
		acc += v
	}
	return acc
}

// reduceDimKernel folds src along dim. The tensor is viewed as
// (outer, size, inner) so the reduction touches contiguous inner runs.
func reduceDimKernel[T tensor.Float](dst, src []T, shape tensor.Shape, dim int, takeMax bool) {
	outer := 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	size := shape[dim]
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}

	seed := T(0)
	if takeMax {
		seed = T(math.Inf(-1))
	}
	for i := range dst {
		dst[i] = seed
	}

	for o := 0; o < outer; o++ {
		for s := 0; s < size; s++ {
			base := (o*size + s) * inner
			out := dst[o*inner : (o+1)*inner]
			for in, v := range src[base : base+inner] {
				if takeMax {
					out[in] = max(out[in], v)
				} else {
					out[in] += v
				}
			}
		}
	}
}
