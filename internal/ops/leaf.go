package ops

import (
	"github.com/born-ml/tracegrad/internal/evalctx"
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// InputOp marks a declared function parameter. The evaluator binds its
// value before running the graph; Eval only checks that the binding exists.
type InputOp struct {
	out identity.ID
}

// NewInputOp creates a new InputOp.
func NewInputOp(out identity.ID) InputOp {
	return InputOp{out: out}
}

func (op InputOp) Name() string { return "Input" }

func (op InputOp) Eval(ctx *evalctx.Context) {
	ctx.Get(op.out)
}

// VJP returns nil. Inputs receive gradients only through accumulation.
func (op InputOp) VJP(Builder, []identity.ID) []identity.ID { return nil }

func (op InputOp) Inputs() []identity.ID  { return nil }
func (op InputOp) Outputs() []identity.ID { return []identity.ID{op.out} }

// ConstOp produces a 0-d tensor holding a fixed value in the context's
// element type.
type ConstOp struct {
	value float64
	out   identity.ID
}

// NewConstOp creates a new ConstOp.
func NewConstOp(value float64, out identity.ID) ConstOp {
	return ConstOp{value: value, out: out}
}

// Value returns the stored scalar.
func (op ConstOp) Value() float64 { return op.value }

func (op ConstOp) Name() string { return "Const" }

func (op ConstOp) Eval(ctx *evalctx.Context) {
	ctx.Insert(op.out, tensor.Scalar(op.value, ctx.DType(), ctx.Backend().Device()))
}

func (op ConstOp) VJP(Builder, []identity.ID) []identity.ID { return nil }

func (op ConstOp) Inputs() []identity.ID  { return nil }
func (op ConstOp) Outputs() []identity.ID { return []identity.ID{op.out} }

func (op ConstOp) Attrs() map[string]any {
	return map[string]any{"value": op.value}
}
