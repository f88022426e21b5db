package ops

import (
	"testing"

	"github.com/born-ml/tracegrad/internal/backend/cpu"
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReduceTo(t *testing.T) {
	be := cpu.New()

	tests := []struct {
		name   string
		src    tensor.Shape
		target tensor.Shape
		want   []float64
	}{
		{"identity", tensor.Shape{2, 3}, tensor.Shape{2, 3}, []float64{1, 1, 1, 1, 1, 1}},
		{"leading", tensor.Shape{2, 3}, tensor.Shape{3}, []float64{2, 2, 2}},
		{"interior", tensor.Shape{2, 3}, tensor.Shape{2, 1}, []float64{3, 3}},
		{"both", tensor.Shape{4, 2, 3}, tensor.Shape{1, 3}, []float64{8, 8, 8}},
		{"scalar", tensor.Shape{2, 3}, tensor.Shape{}, []float64{6}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x := tensor.Ones(tt.src, tensor.Float64, tensor.CPU)
			got := reduceTo(be, x, tt.target)
			require.True(t, got.Shape().Equal(tt.target), "got %v", got.Shape())
			assert.Equal(t, tt.want, got.Float64s())
		})
	}
}

func TestReduceTo_Fatal(t *testing.T) {
	be := cpu.New()
	x := tensor.Ones(tensor.Shape{2, 3}, tensor.Float64, tensor.CPU)

	assert.Panics(t, func() { reduceTo(be, x, tensor.Shape{2, 2}) }, "mismatched axis")
	assert.Panics(t, func() { reduceTo(be, x, tensor.Shape{1, 2, 3}) }, "higher target rank")
	assert.Panics(t, func() { reduceTo(be, x, tensor.Shape{3, 1}) }, "right alignment")
}

func TestBroadcastRoundTrip(t *testing.T) {
	tp, ctx := newTape(), newCtx()
	x := tp.input(ctx, mat(2, 1, 1, 2))
	op := NewBroadcastOp(x, tensor.Shape{3, 2, 4}, tp.Fresh())
	tp.Push(op)

	grads := op.VJP(tp, op.Outputs())
	tp.run(ctx)

	out := ctx.Get(op.Outputs()[0])
	assert.True(t, out.Shape().Equal(tensor.Shape{3, 2, 4}))

	back := ctx.Get(grads[0])
	require.True(t, back.Shape().Equal(tensor.Shape{2, 1}))
	assert.Equal(t, []float64{12, 24}, back.Float64s())
}

func TestReshapeRoundTrip(t *testing.T) {
	tp, ctx := newTape(), newCtx()
	x := tp.input(ctx, mat(2, 3, 1, 2, 3, 4, 5, 6))
	op := NewReshapeOp(x, tensor.Shape{3, 2}, tp.Fresh())
	tp.Push(op)

	grads := op.VJP(tp, op.Outputs())
	tp.run(ctx)

	assert.True(t, ctx.Get(op.Outputs()[0]).Shape().Equal(tensor.Shape{3, 2}))
	back := ctx.Get(grads[0])
	assert.True(t, back.Shape().Equal(tensor.Shape{2, 3}))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, back.Float64s())
}

func TestLikeOps_NoGradientToReference(t *testing.T) {
	tp := newTape()
	for _, op := range []Operation{
		NewReshapeLikeOp(1, 2, 3),
		NewBroadcastLikeOp(1, 2, 3),
		NewReduceToLikeOp(1, 2, 3),
		NewReshapeForBroadcastOp(1, 2, []int{0}, false, 3),
	} {
		grads := op.VJP(tp, []identity.ID{9})
		require.Len(t, grads, 2, op.Name())
		assert.True(t, grads[0].Valid(), op.Name())
		assert.Equal(t, identity.Invalid, grads[1], op.Name())
	}
}

func TestTranspose(t *testing.T) {
	tp, ctx := newTape(), newCtx()
	x := tp.input(ctx, mat(2, 3, 1, 2, 3, 4, 5, 6))
	v := tp.input(ctx, vec(1, 2))

	swapped := emit(tp, func(out identity.ID) Operation { return NewTransposeOp(x, 0, -1, out) })
	dflt := emit(tp, func(out identity.ID) Operation { return NewTransposeDefaultOp(x, out) })
	vt := emit(tp, func(out identity.ID) Operation { return NewTransposeDefaultOp(v, out) })
	tp.run(ctx)

	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, ctx.Get(swapped).Float64s())
	assert.Equal(t, ctx.Get(swapped).Float64s(), ctx.Get(dflt).Float64s())
	assert.True(t, ctx.Get(vt).Shape().Equal(tensor.Shape{2}), "rank-1 untouched")
}
