package ops

import (
	"github.com/born-ml/tracegrad/internal/evalctx"
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/gomlx/exceptions"
)

// TransposeOp swaps two axes. Negative axes count from the end.
// Swapping is self-inverse, so the gradient is swapped the same way.
type TransposeOp struct {
	unary
	axis1, axis2 int
}

// NewTransposeOp creates a new TransposeOp.
func NewTransposeOp(x identity.ID, axis1, axis2 int, out identity.ID) TransposeOp {
	return TransposeOp{unary: unary{x, out}, axis1: axis1, axis2: axis2}
}

func (op TransposeOp) Name() string { return "Transpose" }

func (op TransposeOp) Attrs() map[string]any {
	return map[string]any{"axes": intsToAny([]int{op.axis1, op.axis2})}
}

func (op TransposeOp) Eval(ctx *evalctx.Context) {
	x := ctx.Get(op.x)
	a1 := normalizeAxis("transpose", op.axis1, x.Rank())
	a2 := normalizeAxis("transpose", op.axis2, x.Rank())
	ctx.Insert(op.out, ctx.Backend().SwapAxes(x, a1, a2))
}

func (op TransposeOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	g := emit(b, func(out identity.ID) Operation {
		return NewTransposeOp(outGrads[0], op.axis1, op.axis2, out)
	})
	return []identity.ID{g}
}

// TransposeDefaultOp swaps the last two axes. Tensors of rank <= 1 pass
// through unchanged.
type TransposeDefaultOp struct{ unary }

// NewTransposeDefaultOp creates a new TransposeDefaultOp.
func NewTransposeDefaultOp(x, out identity.ID) TransposeDefaultOp {
	return TransposeDefaultOp{unary{x, out}}
}

func (op TransposeDefaultOp) Name() string { return "TransposeDefault" }

func (op TransposeDefaultOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, transposeLast(ctx.Backend(), ctx.Get(op.x)))
}

func (op TransposeDefaultOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	g := emit(b, func(out identity.ID) Operation { return NewTransposeDefaultOp(outGrads[0], out) })
	return []identity.ID{g}
}

// ReshapeOp reshapes to a fixed shape with the same element count.
type ReshapeOp struct {
	unary
	shape tensor.Shape
}

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(x identity.ID, shape tensor.Shape, out identity.ID) ReshapeOp {
	return ReshapeOp{unary: unary{x, out}, shape: shape.Clone()}
}

func (op ReshapeOp) Name() string { return "Reshape" }

func (op ReshapeOp) Attrs() map[string]any {
	return map[string]any{"shape": intsToAny(op.shape)}
}

func (op ReshapeOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, ctx.Backend().Reshape(ctx.Get(op.x), op.shape))
}

func (op ReshapeOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	return []identity.ID{reshapeLike(b, outGrads[0], op.x)}
}

// ReshapeLikeOp reshapes x to the run-time shape of like.
// Only x receives a gradient.
type ReshapeLikeOp struct{ binary }

// NewReshapeLikeOp creates a new ReshapeLikeOp.
func NewReshapeLikeOp(x, like, out identity.ID) ReshapeLikeOp {
	return ReshapeLikeOp{binary{x, like, out}}
}

func (op ReshapeLikeOp) Name() string { return "ReshapeLike" }

func (op ReshapeLikeOp) Eval(ctx *evalctx.Context) {
	x, like := ctx.Get(op.x), ctx.Get(op.y)
	if x.Shape().Equal(like.Shape()) {
		ctx.Insert(op.out, x)
		return
	}
	ctx.Insert(op.out, ctx.Backend().Reshape(x, like.Shape()))
}

func (op ReshapeLikeOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	return []identity.ID{reshapeLike(b, outGrads[0], op.x), identity.Invalid}
}

// BroadcastOp expands x to a fixed shape. The gradient is summed back with
// ReduceToLike.
type BroadcastOp struct {
	unary
	shape tensor.Shape
}

// NewBroadcastOp creates a new BroadcastOp.
func NewBroadcastOp(x identity.ID, shape tensor.Shape, out identity.ID) BroadcastOp {
	return BroadcastOp{unary: unary{x, out}, shape: shape.Clone()}
}

func (op BroadcastOp) Name() string { return "Broadcast" }

func (op BroadcastOp) Attrs() map[string]any {
	return map[string]any{"shape": intsToAny(op.shape)}
}

func (op BroadcastOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, ctx.Backend().Expand(ctx.Get(op.x), op.shape))
}

func (op BroadcastOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	return []identity.ID{reduceToLike(b, outGrads[0], op.x)}
}

// BroadcastLikeOp expands x to the run-time shape of like.
// Only x receives a gradient.
type BroadcastLikeOp struct{ binary }

// NewBroadcastLikeOp creates a new BroadcastLikeOp.
func NewBroadcastLikeOp(x, like, out identity.ID) BroadcastLikeOp {
	return BroadcastLikeOp{binary{x, like, out}}
}

func (op BroadcastLikeOp) Name() string { return "BroadcastLike" }

func (op BroadcastLikeOp) Eval(ctx *evalctx.Context) {
	x, like := ctx.Get(op.x), ctx.Get(op.y)
	if x.Shape().Equal(like.Shape()) {
		ctx.Insert(op.out, x)
		return
	}
	ctx.Insert(op.out, ctx.Backend().Expand(x, like.Shape()))
}

func (op BroadcastLikeOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	return []identity.ID{reduceToLike(b, outGrads[0], op.x), identity.Invalid}
}

// ReduceToLikeOp sums x down to the run-time shape of like; it is the shape
// inverse of broadcasting. Only x receives a gradient.
//
// Rule, with shapes aligned from the right:
//   - leading axes of x with no counterpart in like are summed away
//   - aligned axes where like has 1 and x has more are summed, kept as 1
//   - equal axes are untouched
//   - anything else, including rank(x) < rank(like), panics
type ReduceToLikeOp struct{ binary }

// NewReduceToLikeOp creates a new ReduceToLikeOp.
func NewReduceToLikeOp(x, like, out identity.ID) ReduceToLikeOp {
	return ReduceToLikeOp{binary{x, like, out}}
}

func (op ReduceToLikeOp) Name() string { return "ReduceToLike" }

func (op ReduceToLikeOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, reduceTo(ctx.Backend(), ctx.Get(op.x), ctx.Get(op.y).Shape()))
}

func (op ReduceToLikeOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	return []identity.ID{broadcastLike(b, outGrads[0], op.x), identity.Invalid}
}

// reduceTo applies the ReduceToLike rule to x. It returns x itself when the
// shapes already match.
func reduceTo(be tensor.Backend, x *tensor.RawTensor, target tensor.Shape) *tensor.RawTensor {
	src := x.Shape()
	if src.Equal(target) {
		return x
	}
	if len(src) < len(target) {
		exceptions.Panicf("reducetolike: cannot reduce %v to higher-rank %v", src, target)
	}

	lead := len(src) - len(target)
	result := x

	// Aligned axes first, highest to lowest, keeping them as size 1
	for j := len(target) - 1; j >= 0; j-- {
		s := src[lead+j]
		switch {
		case s == target[j]:
		case target[j] == 1:
			result = be.SumDim(result, lead+j, true)
		default:
			exceptions.Panicf("reducetolike: cannot reduce %v to %v (axis %d: %d vs %d)",
				src, target, j, s, target[j])
		}
	}

	for range lead {
		result = be.SumDim(result, 0, false)
	}

	if !result.Shape().Equal(target) {
		exceptions.Panicf("reducetolike: reduced %v to %v, want %v", src, result.Shape(), target)
	}
	return result
}
