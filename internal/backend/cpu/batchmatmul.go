package cpu

import (
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/gomlx/exceptions"
)

// BatchMatMul performs batched matrix multiplication.
//
// For 3D: [B, M, K] @ [B, K, N] -> [B, M, N]
// For 4D: [B, H, M, K] @ [B, H, K, N] -> [B, H, M, N]
//
// The last two dimensions are treated as matrix dimensions. Leading
// (batch) dimensions broadcast against each other, so [M, K] @ [B, K, N]
// is valid. Both operands must be at least 2D.
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()
	ra, rb := len(aShape), len(bShape)

	if ra < 2 || rb < 2 {
		exceptions.Panicf("batchmatmul: inputs must be at least 2D, got %dD and %dD", ra, rb)
	}

	m, k1 := aShape[ra-2], aShape[ra-1]
	k2, n := bShape[rb-2], bShape[rb-1]
	if k1 != k2 {
		exceptions.Panicf("batchmatmul: inner dimension mismatch: %v @ %v", aShape, bShape)
	}

	aBatch, bBatch := aShape[:ra-2], bShape[:rb-2]
	batchShape, _, err := tensor.BroadcastShapes(aBatch, bBatch)
	if err != nil {
		exceptions.Panicf("batchmatmul: batch dims: %v", err)
	}

	outShape := make(tensor.Shape, 0, len(batchShape)+2)
	outShape = append(outShape, batchShape...)
	outShape = append(outShape, m, n)

	result := tensor.MustNewRaw(outShape, a.DType(), cpu.device)

	plan := batchPlan{
		batchSize:  batchShape.NumElements(),
		outStrides: batchShape.ComputeStrides(),
		aStrides:   computeBroadcastStridesForShape(aBatch, batchShape),
		bStrides:   computeBroadcastStridesForShape(bBatch, batchShape),
		m:          m,
		k:          k1,
		n:          n,
	}

	switch a.DType() {
	case tensor.Float32:
		batchMatmulKernel(plan, result.AsFloat32(), a.AsFloat32(), b.AsFloat32())
	case tensor.Float64:
		batchMatmulKernel(plan, result.AsFloat64(), a.AsFloat64(), b.AsFloat64())
	default:
		exceptions.Panicf("batchmatmul: unsupported dtype %s", a.DType())
	}

	return result
}

type batchPlan struct {
	batchSize  int
	outStrides []int
	aStrides   []int
	bStrides   []int
	m, k, n    int
}

func batchMatmulKernel[T tensor.Float](p batchPlan, c, a, b []T) {
	sizeA := p.m * p.k
	sizeB := p.k * p.n
	sizeC := p.m * p.n

	for batch := 0; batch < p.batchSize; batch++ {
		ai := computeFlatIndex(batch, p.outStrides, p.aStrides)
		bi := computeFlatIndex(batch, p.outStrides, p.bStrides)
		gemm(
			c[batch*sizeC:(batch+1)*sizeC],
			a[ai*sizeA:(ai+1)*sizeA],
			b[bi*sizeB:(bi+1)*sizeB],
			p.m, p.k, p.n,
		)
	}
}
