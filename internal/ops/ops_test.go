package ops

import (
	"testing"

	"github.com/born-ml/tracegrad/internal/backend/cpu"
	"github.com/born-ml/tracegrad/internal/evalctx"
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tape is a minimal Builder that records operations and replays them.
type tape struct {
	alloc identity.Allocator
	nodes []Operation
}

func newTape() *tape {
	return &tape{alloc: identity.NewCounter()}
}

func (tp *tape) Fresh() identity.ID { return tp.alloc.Fresh() }
func (tp *tape) Push(op Operation)  { tp.nodes = append(tp.nodes, op) }

// input allocates an identifier, records an InputOp and binds value.
func (tp *tape) input(ctx *evalctx.Context, value *tensor.RawTensor) identity.ID {
	id := tp.Fresh()
	tp.Push(NewInputOp(id))
	ctx.Insert(id, value)
	return id
}

func (tp *tape) run(ctx *evalctx.Context) {
	for _, op := range tp.nodes {
		op.Eval(ctx)
	}
}

func newCtx() *evalctx.Context {
	return evalctx.New(cpu.New(), tensor.Float64)
}

func vec(values ...float64) *tensor.RawTensor {
	return tensor.Vector(values...)
}

func mat(rows, cols int, values ...float64) *tensor.RawTensor {
	return tensor.MustFromSlice(values, tensor.Shape{rows, cols})
}

func TestArith_Forward(t *testing.T) {
	tests := []struct {
		name  string
		build func(x, y, out identity.ID) Operation
		want  []float64
	}{
		{"add", func(x, y, out identity.ID) Operation { return NewAddOp(x, y, out) }, []float64{12, 23}},
		{"sub", func(x, y, out identity.ID) Operation { return NewSubOp(x, y, out) }, []float64{8, 17}},
		{"mul", func(x, y, out identity.ID) Operation { return NewMulOp(x, y, out) }, []float64{20, 60}},
		{"div", func(x, y, out identity.ID) Operation { return NewDivOp(x, y, out) }, []float64{5, 20.0 / 3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tp, ctx := newTape(), newCtx()
			x := tp.input(ctx, vec(10, 20))
			y := tp.input(ctx, vec(2, 3))
			out := emit(tp, func(out identity.ID) Operation { return tt.build(x, y, out) })

			tp.run(ctx)
			assert.InDeltaSlice(t, tt.want, ctx.Get(out).Float64s(), 1e-12)
		})
	}
}

func TestAdd_VJPReducesBroadcast(t *testing.T) {
	tp, ctx := newTape(), newCtx()
	x := tp.input(ctx, mat(2, 3, 1, 2, 3, 4, 5, 6))
	y := tp.input(ctx, vec(10, 20, 30))
	out := emit(tp, func(out identity.ID) Operation { return NewAddOp(x, y, out) })
	g := tp.input(ctx, tensor.Ones(tensor.Shape{2, 3}, tensor.Float64, tensor.CPU))

	op := tp.nodes[len(tp.nodes)-2]
	require.Equal(t, []identity.ID{out}, op.Outputs())
	grads := op.VJP(tp, []identity.ID{g})
	require.Len(t, grads, 2)

	tp.run(ctx)
	gx, gy := ctx.Get(grads[0]), ctx.Get(grads[1])
	assert.True(t, gx.Shape().Equal(tensor.Shape{2, 3}))
	assert.True(t, gy.Shape().Equal(tensor.Shape{3}))
	assert.Equal(t, []float64{2, 2, 2}, gy.Float64s())
}

func TestDiv_VJP(t *testing.T) {
	tp, ctx := newTape(), newCtx()
	x := tp.input(ctx, vec(10, 20))
	y := tp.input(ctx, vec(2, 5))
	op := NewDivOp(x, y, tp.Fresh())
	tp.Push(op)
	g := tp.input(ctx, vec(1, 1))

	grads := op.VJP(tp, []identity.ID{g})
	tp.run(ctx)

	assert.InDeltaSlice(t, []float64{0.5, 0.2}, ctx.Get(grads[0]).Float64s(), 1e-12)
	assert.InDeltaSlice(t, []float64{-2.5, -0.8}, ctx.Get(grads[1]).Float64s(), 1e-12)
}

func TestUnary_Forward(t *testing.T) {
	tp, ctx := newTape(), newCtx()
	x := tp.input(ctx, vec(-1, 0, 2))

	neg := emit(tp, func(out identity.ID) Operation { return NewNegOp(x, out) })
	relu := emit(tp, func(out identity.ID) Operation { return NewReLUOp(x, out) })
	mask := emit(tp, func(out identity.ID) Operation { return NewReLUGradMaskOp(x, out) })
	tp.run(ctx)

	assert.Equal(t, []float64{1, 0, -2}, ctx.Get(neg).Float64s())
	assert.Equal(t, []float64{0, 0, 2}, ctx.Get(relu).Float64s())
	assert.Equal(t, []float64{0, 0, 1}, ctx.Get(mask).Float64s())
}

func TestLeaves(t *testing.T) {
	tp, ctx := newTape(), evalctx.New(cpu.New(), tensor.Float32)
	c := emit(tp, func(out identity.ID) Operation { return NewConstOp(2.5, out) })
	tp.run(ctx)

	got := ctx.Get(c)
	assert.Equal(t, 0, got.Rank())
	assert.Equal(t, tensor.Float32, got.DType())
	assert.Equal(t, 2.5, got.Item())

	// An InputOp without a binding is a malformed graph
	missing := NewInputOp(tp.Fresh())
	assert.Panics(t, func() { missing.Eval(ctx) })
}

func TestNoGradientOps(t *testing.T) {
	tp := newTape()
	for _, op := range []Operation{
		NewInputOp(1),
		NewConstOp(1, 2),
		NewReLUGradMaskOp(1, 3),
		NewMaxGradMaskOp(1, 2, 4),
	} {
		assert.Nil(t, op.VJP(tp, []identity.ID{5}), op.Name())
	}
	assert.Empty(t, tp.nodes, "no helper nodes emitted")
}

func TestOperation_Metadata(t *testing.T) {
	op := NewMatMulGradOp(1, 2, 3, RHS, 4)
	assert.Equal(t, "MatMulGrad", op.Name())
	assert.Equal(t, []identity.ID{1, 2, 3}, op.Inputs())
	assert.Equal(t, []identity.ID{4}, op.Outputs())
	assert.Equal(t, map[string]any{"side": "rhs"}, op.Attrs())

	sum := NewSumOp(1, []int{0, 2}, true, 2)
	assert.Equal(t, map[string]any{"axes": []any{0.0, 2.0}, "keep_dims": true}, sum.Attrs())

	var _ Attributed = NewReshapeOp(1, tensor.Shape{2}, 2)
}
