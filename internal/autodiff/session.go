package autodiff

import (
	"github.com/born-ml/tracegrad/internal/graph"
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/ops"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// Value is a symbolic placeholder for a tensor produced while tracing. It
// carries only an identifier; all arithmetic goes through Session methods.
type Value struct {
	id identity.ID
}

// ID returns the identifier naming this value in the graph.
func (v Value) ID() identity.ID {
	return v.id
}

// IDs collects the identifiers of values, in order.
func IDs(values ...Value) []identity.ID {
	ids := make([]identity.ID, len(values))
	for i, v := range values {
		ids[i] = v.id
	}
	return ids
}

// Session records operations into a graph while a builder runs. It does
// not own the graph.
type Session struct {
	g *graph.Graph
}

// Fresh allocates an output identifier for a custom operation.
func (s *Session) Fresh() identity.ID {
	return s.g.Fresh()
}

// Emit appends op and returns a placeholder for out.
func (s *Session) Emit(op ops.Operation, out identity.ID) Value {
	s.g.Push(op)
	return Value{id: out}
}

func (s *Session) emit(build func(out identity.ID) ops.Operation) Value {
	out := s.g.Fresh()
	return s.Emit(build(out), out)
}

// Input declares the next function parameter. Call it once per parameter,
// in order, before using the parameter.
func (s *Session) Input() Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewInputOp(out) })
}

// Constant records a 0-d constant that broadcasts against any shape.
func (s *Session) Constant(value float64) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewConstOp(value, out) })
}

// Add records a + b.
func (s *Session) Add(a, b Value) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewAddOp(a.id, b.id, out) })
}

// Sub records a - b.
func (s *Session) Sub(a, b Value) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewSubOp(a.id, b.id, out) })
}

// Mul records a * b.
func (s *Session) Mul(a, b Value) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewMulOp(a.id, b.id, out) })
}

// Div records a / b.
func (s *Session) Div(a, b Value) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewDivOp(a.id, b.id, out) })
}

// Neg records -a.
func (s *Session) Neg(a Value) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewNegOp(a.id, out) })
}

// MatMul records a @ b.
func (s *Session) MatMul(a, b Value) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewMatMulOp(a.id, b.id, out) })
}

// T records a swap of the last two axes.
func (s *Session) T(a Value) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewTransposeDefaultOp(a.id, out) })
}

// Transpose records a swap of axis1 and axis2.
func (s *Session) Transpose(a Value, axis1, axis2 int) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewTransposeOp(a.id, axis1, axis2, out) })
}

// Reshape records a reshape to shape.
func (s *Session) Reshape(a Value, shape tensor.Shape) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewReshapeOp(a.id, shape, out) })
}

// ReshapeLike records a reshape of a to the run-time shape of like.
func (s *Session) ReshapeLike(a, like Value) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewReshapeLikeOp(a.id, like.id, out) })
}

// Broadcast records an expansion of a to shape.
func (s *Session) Broadcast(a Value, shape tensor.Shape) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewBroadcastOp(a.id, shape, out) })
}

// BroadcastLike records an expansion of a to the run-time shape of like.
func (s *Session) BroadcastLike(a, like Value) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewBroadcastLikeOp(a.id, like.id, out) })
}

// Sum records a sum over axes. No axes sums every element.
func (s *Session) Sum(a Value, axes []int, keepDims bool) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewSumOp(a.id, axes, keepDims, out) })
}

// Mean records an average over axes. No axes averages every element.
func (s *Session) Mean(a Value, axes []int, keepDims bool) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewMeanOp(a.id, axes, keepDims, out) })
}

// Max records a maximum over axes. No axes takes the global maximum.
func (s *Session) Max(a Value, axes []int, keepDims bool) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewMaxOp(a.id, axes, keepDims, out) })
}

// ReLU records max(a, 0).
func (s *Session) ReLU(a Value) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewReLUOp(a.id, out) })
}

// Exp records exp(a).
func (s *Session) Exp(a Value) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewExpOp(a.id, out) })
}

// Log records ln(a).
func (s *Session) Log(a Value) Value {
	return s.emit(func(out identity.ID) ops.Operation { return ops.NewLogOp(a.id, out) })
}

// SumAll records a sum of every element into a 0-d value.
func (s *Session) SumAll(a Value) Value {
	return s.Sum(a, nil, false)
}

// Square records a * a.
func (s *Session) Square(a Value) Value {
	return s.Mul(a, a)
}

// AddScalar records a + c.
func (s *Session) AddScalar(a Value, c float64) Value {
	return s.Add(a, s.Constant(c))
}

// MulScalar records a * c.
func (s *Session) MulScalar(a Value, c float64) Value {
	return s.Mul(a, s.Constant(c))
}
