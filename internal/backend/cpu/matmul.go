package cpu

import (
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/mat"
)

// MatMul performs a matrix product, dispatching on operand ranks.
//
//   - 0-d operand: element-wise product
//   - (K) @ (K) -> ()
//   - (K) @ (K, N) -> (N)
//   - (M, K) @ (K) -> (M)
//   - (M, K) @ (K, N) -> (M, N)
//   - (..., M, K) @ (..., K, N) -> (..., M, N), batch dims broadcast
//
// Matrix products run through gonum's Dense.Mul (BLAS GEMM).
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		exceptions.Panicf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType())
	}

	ra, rb := a.Rank(), b.Rank()
	switch {
	case ra == 0 || rb == 0:
		return cpu.Mul(a, b)
	case ra == 1 && rb == 1:
		k := a.Shape()[0]
		out := cpu.matmul2D(a.WithShape(tensor.Shape{1, k}), b.WithShape(tensor.Shape{b.Shape()[0], 1}))
		return out.WithShape(tensor.Shape{})
	case ra == 1 && rb == 2:
		out := cpu.matmul2D(a.WithShape(tensor.Shape{1, a.Shape()[0]}), b)
		return out.WithShape(tensor.Shape{out.Shape()[1]})
	case ra == 2 && rb == 1:
		out := cpu.matmul2D(a, b.WithShape(tensor.Shape{b.Shape()[0], 1}))
		return out.WithShape(tensor.Shape{out.Shape()[0]})
	case ra == 2 && rb == 2:
		return cpu.matmul2D(a, b)
	default:
		return cpu.BatchMatMul(a, b)
	}
}

// matmul2D computes (M, K) @ (K, N) -> (M, N).
func (cpu *CPUBackend) matmul2D(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	m, k := aShape[0], aShape[1]
	kAlt, n := bShape[0], bShape[1]

	if k != kAlt {
		exceptions.Panicf("matmul: shape mismatch %v @ %v", aShape, bShape)
	}

	result := tensor.MustNewRaw(tensor.Shape{m, n}, a.DType(), cpu.device)

	switch a.DType() {
	case tensor.Float32:
		gemm(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), m, k, n)
	case tensor.Float64:
		gemm(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), m, k, n)
	default:
		exceptions.Panicf("matmul: unsupported dtype %s", a.DType())
	}

	return result
}

// gemm computes C = A @ B for row-major slices.
// C[i,j] = sum_k A[i,k] * B[k,j]
func gemm[T tensor.Float](c, a, b []T, m, k, n int) {
	lhs := mat.NewDense(m, k, asFloat64s(a))
	rhs := mat.NewDense(k, n, asFloat64s(b))

	// float64 output is written in place; float32 goes through a scratch matrix
	if c64, ok := any(c).([]float64); ok {
		mat.NewDense(m, n, c64).Mul(lhs, rhs)
		return
	}

	var out mat.Dense
	out.Mul(lhs, rhs)
	for i, v := range out.RawMatrix().Data {
		c[i] = T(v)
	}
}

// asFloat64s returns s as []float64, sharing storage when T is already float64.
func asFloat64s[T tensor.Float](s []T) []float64 {
	if s64, ok := any(s).([]float64); ok {
		return s64
	}
	out := make([]float64, len(s))
	for i, v := range s {
		out[i] = float64(v)
	}
	return out
}
