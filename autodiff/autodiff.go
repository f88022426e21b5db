// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff provides graph-to-graph automatic differentiation.
//
// A program is traced once into an append-only graph of primitive
// operations. Grad returns a new Function whose graph computes the
// gradient of the sum of the outputs with respect to every input. The
// gradient is an ordinary Function, so it can be evaluated, printed,
// exported or differentiated again.
//
// Example:
//
//	import (
//	    "github.com/born-ml/tracegrad/autodiff"
//	    "github.com/born-ml/tracegrad/tensor"
//	)
//
//	func main() {
//	    f := autodiff.Trace(func(s *autodiff.Session) ([]autodiff.ID, autodiff.Value) {
//	        x := s.Input()
//	        return autodiff.IDs(x), s.SumAll(s.Square(x))
//	    }, autodiff.WithDType(tensor.Float64))
//
//	    y := f.Eval(tensor.Vector[float64](3, 5))         // 34
//	    dx := f.Grad().Eval(tensor.Vector[float64](3, 5)) // [6 10]
//	    ddx := f.Grad().Grad()                           // constant 2 per element
//	}
package autodiff

import (
	"log/slog"

	"github.com/born-ml/tracegrad/internal/autodiff"
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/tensor"
)

// ID identifies a value flowing through a graph.
type ID = identity.ID

// Allocator hands out value identifiers for a graph.
type Allocator = identity.Allocator

// Function is a traced program with declared inputs and outputs.
type Function = autodiff.Function

// Session records primitive calls while a program is traced.
type Session = autodiff.Session

// Value is a handle to a traced intermediate.
type Value = autodiff.Value

// Builder describes a single-output program.
type Builder = autodiff.Builder

// MultiBuilder describes a program with several outputs.
type MultiBuilder = autodiff.MultiBuilder

// Option configures Trace.
type Option = autodiff.Option

// Trace records build into a new Function. It panics if the traced graph
// is malformed; use TryTrace to get an error instead.
func Trace(build Builder, opts ...Option) *Function {
	return autodiff.Trace(build, opts...)
}

// TraceAll is Trace for programs with several outputs.
func TraceAll(build MultiBuilder, opts ...Option) *Function {
	return autodiff.TraceAll(build, opts...)
}

// TryTrace is Trace returning errors instead of panicking.
func TryTrace(build Builder, opts ...Option) (*Function, error) {
	return autodiff.TryTrace(build, opts...)
}

// IDs collects the identifiers of values, typically the traced inputs.
func IDs(values ...Value) []ID {
	return autodiff.IDs(values...)
}

// WithDType sets the element type of every argument and result.
func WithDType(dtype tensor.DataType) Option {
	return autodiff.WithDType(dtype)
}

// WithBackend sets the numeric backend used by Eval.
func WithBackend(backend tensor.Backend) Option {
	return autodiff.WithBackend(backend)
}

// WithLogger sets the logger for evaluation and differentiation records.
func WithLogger(logger *slog.Logger) Option {
	return autodiff.WithLogger(logger)
}

// WithAllocator sets the identifier allocator factory.
func WithAllocator(newAllocator func() Allocator) Option {
	return autodiff.WithAllocator(newAllocator)
}

// NewFreeList returns an allocator that reuses released identifiers.
func NewFreeList() Allocator {
	return identity.NewFreeList()
}

// NewCounter returns an allocator that never reuses identifiers.
func NewCounter() Allocator {
	return identity.NewCounter()
}
