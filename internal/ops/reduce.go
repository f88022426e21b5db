package ops

import (
	"slices"

	"github.com/born-ml/tracegrad/internal/evalctx"
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/gomlx/exceptions"
)

// reduction holds the parameters shared by SumOp, MeanOp and MaxOp.
// An empty axis list reduces over every axis.
type reduction struct {
	unary
	axes     []int
	keepDims bool
}

func newReduction(x identity.ID, axes []int, keepDims bool, out identity.ID) reduction {
	return reduction{unary: unary{x, out}, axes: slices.Clone(axes), keepDims: keepDims}
}

func (r reduction) Attrs() map[string]any {
	return map[string]any{"axes": intsToAny(r.axes), "keep_dims": r.keepDims}
}

// expand re-inserts the reduced axes into g and broadcasts it to the shape
// of the reduction input.
func (r reduction) expand(b Builder, g identity.ID) identity.ID {
	return broadcastLike(b, reshapeForBroadcast(b, g, r.x, r.axes, r.keepDims), r.x)
}

// SumOp sums over the given axes.
//
// Backward pass: the gradient is reshaped so the reduced axes reappear as
// size 1 and then broadcast to the input shape.
type SumOp struct{ reduction }

// NewSumOp creates a new SumOp.
func NewSumOp(x identity.ID, axes []int, keepDims bool, out identity.ID) SumOp {
	return SumOp{newReduction(x, axes, keepDims, out)}
}

func (op SumOp) Name() string { return "Sum" }

func (op SumOp) Eval(ctx *evalctx.Context) {
	be := ctx.Backend()
	x := ctx.Get(op.x)
	ctx.Insert(op.out, reduceAxes("sum", x, op.axes, op.keepDims, be.SumDim))
}

func (op SumOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	return []identity.ID{op.expand(b, outGrads[0])}
}

// MeanOp averages over the given axes.
//
// Backward pass: the gradient is divided by the number of elements folded
// into each output. That count is computed in the graph by summing a ones
// tensor shaped like the input the same way the forward pass reduced.
type MeanOp struct{ reduction }

// NewMeanOp creates a new MeanOp.
func NewMeanOp(x identity.ID, axes []int, keepDims bool, out identity.ID) MeanOp {
	return MeanOp{newReduction(x, axes, keepDims, out)}
}

func (op MeanOp) Name() string { return "Mean" }

func (op MeanOp) Eval(ctx *evalctx.Context) {
	be := ctx.Backend()
	x := ctx.Get(op.x)

	total := reduceAxes("mean", x, op.axes, op.keepDims, be.SumDim)
	count := x.NumElements() / max(total.NumElements(), 1)
	ctx.Insert(op.out, be.Div(total, tensor.Scalar(float64(count), x.DType(), be.Device())))
}

func (op MeanOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	ones := broadcastLike(b, constant(b, 1), op.x)
	count := sum(b, ones, op.axes, op.keepDims)
	return []identity.ID{op.expand(b, div(b, outGrads[0], count))}
}

// MaxOp takes the maximum over the given axes.
//
// Backward pass: the gradient flows to every position equal to the maximum,
// split evenly between ties:
//
//	mask  = MaxGradMask(x, broadcast(y))
//	grad  = broadcast(outputGrad / sum(mask)) * mask
type MaxOp struct{ reduction }

// NewMaxOp creates a new MaxOp.
func NewMaxOp(x identity.ID, axes []int, keepDims bool, out identity.ID) MaxOp {
	return MaxOp{newReduction(x, axes, keepDims, out)}
}

func (op MaxOp) Name() string { return "Max" }

func (op MaxOp) Eval(ctx *evalctx.Context) {
	be := ctx.Backend()
	ctx.Insert(op.out, reduceAxes("max", ctx.Get(op.x), op.axes, op.keepDims, be.MaxDim))
}

func (op MaxOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	peak := op.expand(b, op.out)
	mask := emit(b, func(out identity.ID) Operation { return NewMaxGradMaskOp(op.x, peak, out) })
	count := sum(b, mask, op.axes, op.keepDims)
	share := op.expand(b, div(b, outGrads[0], count))
	return []identity.ID{mul(b, share, mask)}
}

// ReshapeForBroadcastOp re-inserts size-1 axes at the positions a reduction
// removed, so the result broadcasts against the reduction input ref. It is
// the identity when keepDims was set or when every axis was reduced (the
// 0-d result already broadcasts). Only x receives a gradient.
type ReshapeForBroadcastOp struct {
	x, ref   identity.ID
	axes     []int
	keepDims bool
	out      identity.ID
}

// NewReshapeForBroadcastOp creates a new ReshapeForBroadcastOp. ref is the
// tensor the reduction was applied to; its rank resolves negative axes.
func NewReshapeForBroadcastOp(x, ref identity.ID, axes []int, keepDims bool, out identity.ID) ReshapeForBroadcastOp {
	return ReshapeForBroadcastOp{x: x, ref: ref, axes: slices.Clone(axes), keepDims: keepDims, out: out}
}

func (op ReshapeForBroadcastOp) Name() string { return "ReshapeForBroadcast" }

func (op ReshapeForBroadcastOp) Inputs() []identity.ID  { return []identity.ID{op.x, op.ref} }
func (op ReshapeForBroadcastOp) Outputs() []identity.ID { return []identity.ID{op.out} }

func (op ReshapeForBroadcastOp) Attrs() map[string]any {
	return map[string]any{"axes": intsToAny(op.axes), "keep_dims": op.keepDims}
}

func (op ReshapeForBroadcastOp) Eval(ctx *evalctx.Context) {
	x := ctx.Get(op.x)
	if op.keepDims || len(op.axes) == 0 {
		ctx.Insert(op.out, x)
		return
	}

	rank := ctx.Get(op.ref).Rank()
	reduced := normalizeAxes("reshapeforbroadcast", op.axes, rank)
	if x.Rank()+len(reduced) != rank {
		exceptions.Panicf("reshapeforbroadcast: %v cannot regain %d axes to reach rank %d",
			x.Shape(), len(reduced), rank)
	}

	shape := make(tensor.Shape, 0, rank)
	src := x.Shape()
	for i := 0; i < rank; i++ {
		if slices.Contains(reduced, i) {
			shape = append(shape, 1)
			continue
		}
		shape = append(shape, src[0])
		src = src[1:]
	}

	ctx.Insert(op.out, ctx.Backend().Reshape(x, shape))
}

func (op ReshapeForBroadcastOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	return []identity.ID{reshapeLike(b, outGrads[0], op.x), identity.Invalid}
}

// reduceAxes folds x over axes with a per-dimension reducer, highest axis
// first so earlier removals never shift a pending index. With no axes every
// dimension is folded.
func reduceAxes(name string, x *tensor.RawTensor, axes []int, keepDims bool,
	fold func(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor) *tensor.RawTensor {
	rank := x.Rank()

	var dims []int
	if len(axes) == 0 {
		dims = make([]int, rank)
		for i := range dims {
			dims[i] = i
		}
	} else {
		dims = normalizeAxes(name, axes, rank)
	}

	result := x
	for i := len(dims) - 1; i >= 0; i-- {
		result = fold(result, dims[i], keepDims)
	}
	return result
}

// normalizeAxes resolves negative axes against rank, checks bounds and
// returns the distinct axes in ascending order.
func normalizeAxes(name string, axes []int, rank int) []int {
	out := make([]int, 0, len(axes))
	for _, ax := range axes {
		out = append(out, normalizeAxis(name, ax, rank))
	}
	slices.Sort(out)
	return slices.Compact(out)
}

func normalizeAxis(name string, axis, rank int) int {
	if axis < 0 {
		axis += rank
	}
	if axis < 0 || axis >= rank {
		exceptions.Panicf("%s: axis %d out of range for %dD tensor", name, axis, rank)
	}
	return axis
}

func intsToAny(values []int) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = float64(v)
	}
	return out
}
