package ops

import (
	"github.com/born-ml/tracegrad/internal/evalctx"
	"github.com/born-ml/tracegrad/internal/identity"
)

// AddOp represents an element-wise addition operation: output = a + b.
//
// Backward pass:
//   - d(a+b)/da = 1, so grad_a = outputGrad
//   - d(a+b)/db = 1, so grad_b = outputGrad
//
// If broadcasting was used in the forward pass, each gradient is reduced
// back to its operand's shape with ReduceToLike.
type AddOp struct{ binary }

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, out identity.ID) AddOp {
	return AddOp{binary{a, b, out}}
}

func (op AddOp) Name() string { return "Add" }

func (op AddOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, ctx.Backend().Add(ctx.Get(op.x), ctx.Get(op.y)))
}

func (op AddOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	g := outGrads[0]
	return []identity.ID{
		reduceToLike(b, g, op.x),
		reduceToLike(b, g, op.y),
	}
}

// SubOp represents element-wise subtraction: output = a - b.
// The gradient of b is negated.
type SubOp struct{ binary }

// NewSubOp creates a new SubOp.
func NewSubOp(a, b, out identity.ID) SubOp {
	return SubOp{binary{a, b, out}}
}

func (op SubOp) Name() string { return "Sub" }

func (op SubOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, ctx.Backend().Sub(ctx.Get(op.x), ctx.Get(op.y)))
}

func (op SubOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	g := outGrads[0]
	return []identity.ID{
		reduceToLike(b, g, op.x),
		reduceToLike(b, neg(b, g), op.y),
	}
}

// MulOp represents element-wise multiplication: output = a * b.
//
// Backward pass:
//   - d(a*b)/da = b, so grad_a = outputGrad * b
//   - d(a*b)/db = a, so grad_b = outputGrad * a
type MulOp struct{ binary }

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, out identity.ID) MulOp {
	return MulOp{binary{a, b, out}}
}

func (op MulOp) Name() string { return "Mul" }

func (op MulOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, ctx.Backend().Mul(ctx.Get(op.x), ctx.Get(op.y)))
}

func (op MulOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	g := outGrads[0]
	return []identity.ID{
		reduceToLike(b, mul(b, g, op.y), op.x),
		reduceToLike(b, mul(b, g, op.x), op.y),
	}
}

// DivOp represents element-wise division: output = a / b.
//
// Backward pass:
//   - d(a/b)/da = 1/b
//   - d(a/b)/db = -a/b²
type DivOp struct{ binary }

// NewDivOp creates a new DivOp.
func NewDivOp(a, b, out identity.ID) DivOp {
	return DivOp{binary{a, b, out}}
}

func (op DivOp) Name() string { return "Div" }

func (op DivOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, ctx.Backend().Div(ctx.Get(op.x), ctx.Get(op.y)))
}

func (op DivOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	g := outGrads[0]

	recip := div(b, constant(b, 1), op.y)
	gradA := mul(b, g, recip)

	ySquared := mul(b, op.y, op.y)
	negQuot := neg(b, div(b, op.x, ySquared))
	gradB := mul(b, g, negQuot)

	return []identity.ID{
		reduceToLike(b, gradA, op.x),
		reduceToLike(b, gradB, op.y),
	}
}

// NegOp represents element-wise negation: output = -x.
type NegOp struct{ unary }

// NewNegOp creates a new NegOp.
func NewNegOp(x, out identity.ID) NegOp {
	return NegOp{unary{x, out}}
}

func (op NegOp) Name() string { return "Neg" }

func (op NegOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, ctx.Backend().Neg(ctx.Get(op.x)))
}

func (op NegOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	return []identity.ID{neg(b, outGrads[0])}
}
