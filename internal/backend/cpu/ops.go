package cpu

import (
	"github.com/born-ml/tracegrad/internal/parallel"
	"github.com/born-ml/tracegrad/internal/tensor"
)

type binaryOp int

const (
	opAdd binaryOp = iota
	opSub
	opMul
	opDiv
)

func apply[T tensor.Float](op binaryOp, x, y T) T {
	switch op {
	case opAdd:
		return x + y
	case opSub:
		return x - y
	case opMul:
		return x * y
	default:
		return x / y
	}
}

// binaryKernel computes dst = a <op> b, broadcasting a and b to outShape.
func binaryKernel[T tensor.Float](cfg parallel.Config, op binaryOp, dst, a, b []T, aShape, bShape, outShape tensor.Shape) {
	// Fast path: same shape, no index arithmetic
	if aShape.Equal(bShape) {
		parallel.Chunks(len(dst), cfg, func(start, end int) {
			for i := start; i < end; i++ {
				dst[i] = apply(op, a[i], b[i])
			}
		})
		return
	}

	outStrides := outShape.ComputeStrides()
	aStrides := computeBroadcastStridesForShape(aShape, outShape)
	bStrides := computeBroadcastStridesForShape(bShape, outShape)

	parallel.Chunks(len(dst), cfg, func(start, end int) {
		for i := start; i < end; i++ {
			aIdx := computeFlatIndex(i, outStrides, aStrides)
			bIdx := computeFlatIndex(i, outStrides, bStrides)
			dst[i] = apply(op, a[aIdx], b[bIdx])
		}
	})
}

// unaryKernel computes dst[i] = f(src[i]).
func unaryKernel[T tensor.Float](cfg parallel.Config, dst, src []T, f func(T) T) {
	parallel.Chunks(len(src), cfg, func(start, end int) {
		for i := start; i < end; i++ {
			dst[i] = f(src[i])
		}
	})
}
