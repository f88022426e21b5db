package cpu

import (
	"math"

	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/gomlx/exceptions"
)

// Neg computes element-wise negation: -x.
func (cpu *CPUBackend) Neg(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("neg", x,
		func(v float32) float32 { return -v },
		func(v float64) float64 { return -v })
}

// Exp computes element-wise exponential: exp(x).
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("exp", x,
		func(v float32) float32 { return float32(math.Exp(float64(v))) },
		math.Exp)
}

// Log computes element-wise natural logarithm: ln(x).
// Non-positive inputs follow IEEE semantics (-Inf or NaN).
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("log", x,
		func(v float32) float32 { return float32(math.Log(float64(v))) },
		math.Log)
}

// ReLU computes max(x, 0) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("relu", x,
		func(v float32) float32 { return max(v, 0) },
		func(v float64) float64 { return max(v, 0) })
}

// PositiveMask returns 1 where x > 0 and 0 elsewhere.
func (cpu *CPUBackend) PositiveMask(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("positive_mask", x,
		func(v float32) float32 { return indicator[float32](v > 0) },
		func(v float64) float64 { return indicator[float64](v > 0) })
}

// EqualMask returns 1 where a == b and 0 elsewhere. Shapes must match exactly.
func (cpu *CPUBackend) EqualMask(a, b *tensor.RawTensor) *tensor.RawTensor {
	if a.DType() != b.DType() {
		exceptions.Panicf("equal_mask: dtype mismatch %s vs %s", a.DType(), b.DType())
	}
	if !a.Shape().Equal(b.Shape()) {
		exceptions.Panicf("equal_mask: shape mismatch %v vs %v", a.Shape(), b.Shape())
	}

	result := tensor.MustNewRaw(a.Shape(), a.DType(), cpu.device)

	switch a.DType() {
	case tensor.Float32:
		equalKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		equalKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64())
	default:
		exceptions.Panicf("equal_mask: unsupported dtype %s", a.DType())
	}

	return result
}

func (cpu *CPUBackend) unary(name string, x *tensor.RawTensor,
	f32 func(float32) float32, f64 func(float64) float64) *tensor.RawTensor {
	result := tensor.MustNewRaw(x.Shape(), x.DType(), cpu.device)

	switch x.DType() {
	case tensor.Float32:
		unaryKernel(cpu.parallel, result.AsFloat32(), x.AsFloat32(), f32)
	case tensor.Float64:
		unaryKernel(cpu.parallel, result.AsFloat64(), x.AsFloat64(), f64)
	default:
		exceptions.Panicf("%s: unsupported dtype %s", name, x.DType())
	}

	return result
}

func equalKernel[T tensor.Float](dst, a, b []T) {
	for i := range dst {
		dst[i] = indicator[T](a[i] == b[i])
	}
}

func indicator[T tensor.Float](cond bool) T {
	if cond {
		return 1
	}
	return 0
}
