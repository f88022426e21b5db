package ops

import (
	"github.com/born-ml/tracegrad/internal/evalctx"
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/gomlx/exceptions"
)

// MatMulOp represents matrix multiplication: output = a @ b.
//
// The backend dispatches on operand ranks (scalar, vector, matrix, batched).
//
// Backward pass:
//   - grad_a = outputGrad @ b^T
//   - grad_b = a^T @ outputGrad
//
// Both are emitted as MatMulGradOp nodes, which resolve vector, scalar and
// broadcast-batch operands at run time so each gradient has its operand's
// shape.
type MatMulOp struct{ binary }

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, out identity.ID) MatMulOp {
	return MatMulOp{binary{a, b, out}}
}

func (op MatMulOp) Name() string { return "MatMul" }

func (op MatMulOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, ctx.Backend().MatMul(ctx.Get(op.x), ctx.Get(op.y)))
}

func (op MatMulOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	g := outGrads[0]
	return []identity.ID{
		matmulGrad(b, g, op.x, op.y, LHS),
		matmulGrad(b, g, op.x, op.y, RHS),
	}
}

// Side selects which operand of a matrix product MatMulGradOp differentiates.
type Side int

const (
	// LHS selects the left operand.
	LHS Side = iota
	// RHS selects the right operand.
	RHS
)

func (s Side) String() string {
	if s == LHS {
		return "lhs"
	}
	return "rhs"
}

// MatMulGradOp computes the gradient of lhs @ rhs with respect to one
// operand, given the output gradient og. Inputs are [og, lhs, rhs].
//
// Forward, by operand ranks (side lhs / side rhs):
//   - both >= 2: ReduceToLike(og @ T(rhs), lhs) / ReduceToLike(T(lhs) @ og, rhs)
//   - (k) @ (k, n): rhs @ og / outer(lhs, og)
//   - (m, k) @ (k): outer(og, rhs) / T(lhs) @ og
//   - (k) @ (k): og * rhs / og * lhs
//   - 0-d operand: ReduceToLike(og * rhs, lhs) / ReduceToLike(og * lhs, rhs)
//
// The result is linear in og and in the opposite operand, so the VJP is
// another product and higher-order derivatives stay exact. The differentiated
// operand only contributes its shape and receives no gradient.
type MatMulGradOp struct {
	og, lhs, rhs identity.ID
	side         Side
	out          identity.ID
}

// NewMatMulGradOp creates a new MatMulGradOp.
func NewMatMulGradOp(og, lhs, rhs identity.ID, side Side, out identity.ID) MatMulGradOp {
	return MatMulGradOp{og: og, lhs: lhs, rhs: rhs, side: side, out: out}
}

func (op MatMulGradOp) Name() string { return "MatMulGrad" }

func (op MatMulGradOp) Inputs() []identity.ID  { return []identity.ID{op.og, op.lhs, op.rhs} }
func (op MatMulGradOp) Outputs() []identity.ID { return []identity.ID{op.out} }

func (op MatMulGradOp) Attrs() map[string]any {
	return map[string]any{"side": op.side.String()}
}

func (op MatMulGradOp) Eval(ctx *evalctx.Context) {
	be := ctx.Backend()
	og, lhs, rhs := ctx.Get(op.og), ctx.Get(op.lhs), ctx.Get(op.rhs)
	ctx.Insert(op.out, evalMatMulGrad(be, og, lhs, rhs, op.side))
}

func (op MatMulGradOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	g := outGrads[0]
	if op.side == LHS {
		return []identity.ID{
			matmul(b, g, op.rhs),
			identity.Invalid,
			matmulGrad(b, op.og, g, op.rhs, RHS),
		}
	}
	return []identity.ID{
		matmul(b, op.lhs, g),
		matmulGrad(b, op.og, op.lhs, g, LHS),
		identity.Invalid,
	}
}

// evalMatMulGrad evaluates the operand gradient of lhs @ rhs for the given side.
func evalMatMulGrad(be tensor.Backend, og, lhs, rhs *tensor.RawTensor, side Side) *tensor.RawTensor {
	rl, rr := lhs.Rank(), rhs.Rank()

	switch {
	case rl == 0 || rr == 0:
		if side == LHS {
			return reduceTo(be, be.Mul(og, rhs), lhs.Shape())
		}
		return reduceTo(be, be.Mul(og, lhs), rhs.Shape())

	case rl == 1 && rr == 1:
		if side == LHS {
			return be.Mul(og, rhs)
		}
		return be.Mul(og, lhs)

	case rl == 1 && rr == 2:
		if side == LHS {
			return be.MatMul(rhs, og)
		}
		return outer(be, lhs, og)

	case rl == 2 && rr == 1:
		if side == LHS {
			return outer(be, og, rhs)
		}
		return be.MatMul(transposeLast(be, lhs), og)

	case rl >= 2 && rr >= 2:
		if side == LHS {
			return reduceTo(be, be.MatMul(og, transposeLast(be, rhs)), lhs.Shape())
		}
		return reduceTo(be, be.MatMul(transposeLast(be, lhs), og), rhs.Shape())

	default:
		exceptions.Panicf("matmulgrad: unsupported operand ranks %d and %d", rl, rr)
		return nil
	}
}

// outer computes the outer product of two vectors: (m) x (n) -> (m, n).
func outer(be tensor.Backend, u, v *tensor.RawTensor) *tensor.RawTensor {
	column := be.Reshape(u, tensor.Shape{u.NumElements(), 1})
	return be.Mul(column, v)
}

// transposeLast swaps the last two axes. Tensors of rank <= 1 are returned as is.
func transposeLast(be tensor.Backend, t *tensor.RawTensor) *tensor.RawTensor {
	r := t.Rank()
	if r <= 1 {
		return t
	}
	return be.SwapAxes(t, r-2, r-1)
}
