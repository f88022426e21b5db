package ops

import (
	"testing"

	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// matmulGrads traces lhs @ rhs, seeds the output gradient with ones and
// returns the evaluated gradients for both operands.
func matmulGrads(t *testing.T, lhs, rhs *tensor.RawTensor) (gl, gr *tensor.RawTensor) {
	t.Helper()

	tp, ctx := newTape(), newCtx()
	a := tp.input(ctx, lhs)
	b := tp.input(ctx, rhs)
	op := NewMatMulOp(a, b, tp.Fresh())
	tp.Push(op)

	seed := broadcastLike(tp, constant(tp, 1), op.Outputs()[0])
	grads := op.VJP(tp, []identity.ID{seed})
	require.Len(t, grads, 2)

	tp.run(ctx)
	return ctx.Get(grads[0]), ctx.Get(grads[1])
}

func TestMatMul_VJP2D(t *testing.T) {
	ga, gb := matmulGrads(t, mat(2, 2, 1, 2, 3, 4), mat(2, 2, 5, 6, 7, 8))

	assert.Equal(t, []float64{11, 15, 11, 15}, ga.Float64s())
	assert.Equal(t, []float64{4, 4, 6, 6}, gb.Float64s())
}

func TestMatMul_VJPShapes(t *testing.T) {
	tests := []struct {
		name     string
		lhs, rhs tensor.Shape
		wantL    []float64
		wantR    []float64
	}{
		// Gradients of sum(lhs @ rhs) with all-ones operands
		{"dot", tensor.Shape{3}, tensor.Shape{3}, []float64{1, 1, 1}, []float64{1, 1, 1}},
		{"vec-mat", tensor.Shape{2}, tensor.Shape{2, 3}, []float64{3, 3}, []float64{1, 1, 1, 1, 1, 1}},
		{"mat-vec", tensor.Shape{3, 2}, tensor.Shape{2}, []float64{1, 1, 1, 1, 1, 1}, []float64{3, 3}},
		{"scalar", tensor.Shape{}, tensor.Shape{2, 2}, []float64{4}, []float64{1, 1, 1, 1}},
		{"broadcast batch", tensor.Shape{2, 2}, tensor.Shape{3, 2, 2},
			[]float64{6, 6, 6, 6}, []float64{2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lhs := tensor.Ones(tt.lhs, tensor.Float64, tensor.CPU)
			rhs := tensor.Ones(tt.rhs, tensor.Float64, tensor.CPU)
			gl, gr := matmulGrads(t, lhs, rhs)

			require.True(t, gl.Shape().Equal(tt.lhs), "lhs grad shape %v", gl.Shape())
			require.True(t, gr.Shape().Equal(tt.rhs), "rhs grad shape %v", gr.Shape())
			assert.Equal(t, tt.wantL, gl.Float64s())
			assert.Equal(t, tt.wantR, gr.Float64s())
		})
	}
}

func TestMatMulGrad_VJPIsBilinear(t *testing.T) {
	// F = MatMulGrad_lhs(og, a, b) = og @ b^T. With upstream gradient g:
	//   d og = g @ b, d b = g^T @ og, a gets nothing.
	tp, ctx := newTape(), newCtx()
	og := tp.input(ctx, mat(2, 2, 1, 0, 0, 1))
	a := tp.input(ctx, tensor.Zeros(tensor.Shape{2, 3}, tensor.Float64, tensor.CPU))
	b := tp.input(ctx, mat(3, 2, 1, 2, 3, 4, 5, 6))
	op := NewMatMulGradOp(og, a, b, LHS, tp.Fresh())
	tp.Push(op)
	g := tp.input(ctx, tensor.Ones(tensor.Shape{2, 3}, tensor.Float64, tensor.CPU))

	grads := op.VJP(tp, []identity.ID{g})
	require.Len(t, grads, 3)
	assert.Equal(t, identity.Invalid, grads[1])

	tp.run(ctx)
	assert.Equal(t, []float64{1, 3, 5, 2, 4, 6}, ctx.Get(op.Outputs()[0]).Float64s())
	assert.Equal(t, []float64{9, 12, 9, 12}, ctx.Get(grads[0]).Float64s())
	assert.Equal(t, []float64{1, 1, 1, 1, 1, 1}, ctx.Get(grads[2]).Float64s())
}
