package cpu

import (
	"github.com/born-ml/tracegrad/internal/tensor"
)

// computeBroadcastStridesForShape computes strides for broadcasting a shape to outShape.
// Returns strides where dimensions of size 1 (or missing on the left) have stride 0.
func computeBroadcastStridesForShape(inShape, outShape tensor.Shape) []int {
	outDim := len(outShape)
	strides := make([]int, outDim)

	inDim := len(inShape)
	offset := outDim - inDim
	origStrides := inShape.ComputeStrides()

	for i := 0; i < outDim; i++ {
		inIdx := i - offset
		if inIdx < 0 || inShape[inIdx] == 1 {
			continue
		}
		strides[i] = origStrides[inIdx]
	}

	return strides
}

// computeFlatIndex maps a flat output index to the flat index of a source
// whose broadcast-adjusted strides are inStrides.
func computeFlatIndex(outIdx int, outStrides, inStrides []int) int {
	flatIdx := 0
	for i, s := range outStrides {
		coord := outIdx / s
		outIdx %= s
		flatIdx += coord * inStrides[i]
	}
	return flatIdx
}

// gatherBroadcast copies src (of srcShape) into dst laid out as outShape.
func gatherBroadcast[T tensor.Float](dst, src []T, srcShape, outShape tensor.Shape) {
	outStrides := outShape.ComputeStrides()
	inStrides := computeBroadcastStridesForShape(srcShape, outShape)
	for i := range dst {
		dst[i] = src[computeFlatIndex(i, outStrides, inStrides)]
	}
}
