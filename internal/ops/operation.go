// Package ops defines the primitive operations recorded in a traced graph.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: reads inputs from an evalctx.Context and writes its output
//   - Backward pass (VJP): appends new nodes to a graph that compute input
//     gradients from output gradients, so gradients are themselves graphs
//
// Supported operations:
//   - AddOp, SubOp, MulOp, DivOp, NegOp: element-wise arithmetic with broadcasting
//   - MatMulOp: matrix product (d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad)
//   - TransposeOp, TransposeDefaultOp: axis swaps
//   - ReshapeOp, ReshapeLikeOp, BroadcastOp, BroadcastLikeOp: shape changes
//   - SumOp, MeanOp, MaxOp: reductions over an axis list
//   - ExpOp, LogOp, ReLUOp: element-wise unary functions
//   - InputOp, ConstOp: graph leaves
//
// Backward-only helpers (emitted by VJPs, never by user code):
//   - ReduceToLikeOp, ReshapeForBroadcastOp, MatMulGradOp
//   - MaxGradMaskOp, ReLUGradMaskOp (zero derivative, VJP returns nil)
package ops

import (
	"github.com/born-ml/tracegrad/internal/evalctx"
	"github.com/born-ml/tracegrad/internal/identity"
)

// Operation is one recorded step of a traced computation. Operations are
// immutable once pushed to a graph.
type Operation interface {
	// Name returns the primitive name used in graph dumps.
	Name() string

	// Eval reads the inputs from ctx, computes the output with the context's
	// backend and binds it under the output identifier.
	Eval(ctx *evalctx.Context)

	// VJP appends nodes to b computing the gradient for each input, given
	// the gradients accumulated for each output.
	//
	// A nil result means no gradient flows through this operation. Otherwise
	// the result holds one identifier per input, in input order;
	// identity.Invalid marks an input that receives no contribution.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outGrads: [g]
	//   returns: [ReduceToLike(g, a), ReduceToLike(g, b)]
	VJP(b Builder, outGrads []identity.ID) []identity.ID

	// Inputs returns the identifiers this operation reads.
	Inputs() []identity.ID

	// Outputs returns the identifiers this operation produces.
	Outputs() []identity.ID
}

// Builder is the part of a graph a VJP needs: identifier allocation and
// appending nodes.
type Builder interface {
	Fresh() identity.ID
	Push(op Operation)
}

// Attributed is implemented by operations with static parameters
// (axes, shapes, constant values). Values are JSON-compatible.
type Attributed interface {
	Attrs() map[string]any
}

// unary is the common layout of single-input operations.
type unary struct {
	x, out identity.ID
}

func (u unary) Inputs() []identity.ID  { return []identity.ID{u.x} }
func (u unary) Outputs() []identity.ID { return []identity.ID{u.out} }

// binary is the common layout of two-input operations.
type binary struct {
	x, y, out identity.ID
}

func (bn binary) Inputs() []identity.ID  { return []identity.ID{bn.x, bn.y} }
func (bn binary) Outputs() []identity.ID { return []identity.ID{bn.out} }

// emit allocates an output identifier, builds the operation around it and
// appends it to b.
func emit(b Builder, build func(out identity.ID) Operation) identity.ID {
	out := b.Fresh()
	b.Push(build(out))
	return out
}

// Emitters used by VJPs to append helper nodes.

func mul(b Builder, x, y identity.ID) identity.ID {
	return emit(b, func(out identity.ID) Operation { return NewMulOp(x, y, out) })
}

func div(b Builder, x, y identity.ID) identity.ID {
	return emit(b, func(out identity.ID) Operation { return NewDivOp(x, y, out) })
}

func neg(b Builder, x identity.ID) identity.ID {
	return emit(b, func(out identity.ID) Operation { return NewNegOp(x, out) })
}

func constant(b Builder, value float64) identity.ID {
	return emit(b, func(out identity.ID) Operation { return NewConstOp(value, out) })
}

func matmul(b Builder, x, y identity.ID) identity.ID {
	return emit(b, func(out identity.ID) Operation { return NewMatMulOp(x, y, out) })
}

func matmulGrad(b Builder, og, lhs, rhs identity.ID, side Side) identity.ID {
	return emit(b, func(out identity.ID) Operation { return NewMatMulGradOp(og, lhs, rhs, side, out) })
}

func exp(b Builder, x identity.ID) identity.ID {
	return emit(b, func(out identity.ID) Operation { return NewExpOp(x, out) })
}

func reshapeLike(b Builder, x, like identity.ID) identity.ID {
	return emit(b, func(out identity.ID) Operation { return NewReshapeLikeOp(x, like, out) })
}

func broadcastLike(b Builder, x, like identity.ID) identity.ID {
	return emit(b, func(out identity.ID) Operation { return NewBroadcastLikeOp(x, like, out) })
}

func reduceToLike(b Builder, x, like identity.ID) identity.ID {
	return emit(b, func(out identity.ID) Operation { return NewReduceToLikeOp(x, like, out) })
}

func reshapeForBroadcast(b Builder, x, ref identity.ID, axes []int, keepDims bool) identity.ID {
	return emit(b, func(out identity.ID) Operation { return NewReshapeForBroadcastOp(x, ref, axes, keepDims, out) })
}

func sum(b Builder, x identity.ID, axes []int, keepDims bool) identity.ID {
	return emit(b, func(out identity.ID) Operation { return NewSumOp(x, axes, keepDims, out) })
}
