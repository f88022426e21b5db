package ops

import (
	"github.com/born-ml/tracegrad/internal/evalctx"
	"github.com/born-ml/tracegrad/internal/identity"
)

// ExpOp computes exp(x). Its derivative is exp(x), recomputed in the
// gradient graph.
type ExpOp struct{ unary }

// NewExpOp creates a new ExpOp.
func NewExpOp(x, out identity.ID) ExpOp {
	return ExpOp{unary{x, out}}
}

func (op ExpOp) Name() string { return "Exp" }

func (op ExpOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, ctx.Backend().Exp(ctx.Get(op.x)))
}

func (op ExpOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	return []identity.ID{mul(b, outGrads[0], exp(b, op.x))}
}

// LogOp computes the natural logarithm. d(ln x)/dx = 1/x.
type LogOp struct{ unary }

// NewLogOp creates a new LogOp.
func NewLogOp(x, out identity.ID) LogOp {
	return LogOp{unary{x, out}}
}

func (op LogOp) Name() string { return "Log" }

func (op LogOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, ctx.Backend().Log(ctx.Get(op.x)))
}

func (op LogOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	recip := div(b, constant(b, 1), op.x)
	return []identity.ID{mul(b, outGrads[0], recip)}
}

// ReLUOp represents the rectified linear unit: output = max(0, x).
//
// Backward pass:
//   - d(ReLU(x))/dx = 1 if x > 0, else 0
//   - grad_input = outputGrad * ReLUGradMask(x)
type ReLUOp struct{ unary }

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(x, out identity.ID) ReLUOp {
	return ReLUOp{unary{x, out}}
}

func (op ReLUOp) Name() string { return "ReLU" }

func (op ReLUOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, ctx.Backend().ReLU(ctx.Get(op.x)))
}

func (op ReLUOp) VJP(b Builder, outGrads []identity.ID) []identity.ID {
	mask := emit(b, func(out identity.ID) Operation { return NewReLUGradMaskOp(op.x, out) })
	return []identity.ID{mul(b, outGrads[0], mask)}
}

// ReLUGradMaskOp yields 1 where x > 0 and 0 elsewhere. The mask is
// piecewise constant, so no gradient flows through it.
type ReLUGradMaskOp struct{ unary }

// NewReLUGradMaskOp creates a new ReLUGradMaskOp.
func NewReLUGradMaskOp(x, out identity.ID) ReLUGradMaskOp {
	return ReLUGradMaskOp{unary{x, out}}
}

func (op ReLUGradMaskOp) Name() string { return "ReLUGradMask" }

func (op ReLUGradMaskOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, ctx.Backend().PositiveMask(ctx.Get(op.x)))
}

func (op ReLUGradMaskOp) VJP(Builder, []identity.ID) []identity.ID { return nil }

// MaxGradMaskOp yields 1 where x equals the broadcast maximum y and 0
// elsewhere. Shapes of x and y must match. No gradient flows through it.
type MaxGradMaskOp struct{ binary }

// NewMaxGradMaskOp creates a new MaxGradMaskOp.
func NewMaxGradMaskOp(x, y, out identity.ID) MaxGradMaskOp {
	return MaxGradMaskOp{binary{x, y, out}}
}

func (op MaxGradMaskOp) Name() string { return "MaxGradMask" }

func (op MaxGradMaskOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, ctx.Backend().EqualMask(ctx.Get(op.x), ctx.Get(op.y)))
}

func (op MaxGradMaskOp) VJP(Builder, []identity.ID) []identity.ID { return nil }
