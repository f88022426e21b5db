// Package autodiff traces numeric programs into graphs and differentiates
// them graph-to-graph.
//
// Architecture:
//   - Session: records primitive calls into an append-only graph
//   - Function: a finished graph with declared inputs and outputs
//   - Grad: reverse-mode differentiation that appends gradient nodes to a
//     cloned graph, so the result is itself a Function and can be
//     differentiated again
//
// Usage:
//
//	f := autodiff.Trace(func(s *autodiff.Session) ([]identity.ID, autodiff.Value) {
//	    x := s.Input()
//	    return autodiff.IDs(x), s.SumAll(s.Square(x))
//	}, autodiff.WithDType(tensor.Float64))
//
//	y := f.Eval(tensor.Vector[float64](3, 5))        // 34
//	dx := f.Grad().Eval(tensor.Vector[float64](3, 5)) // [6, 10]
package autodiff

import (
	"slices"

	"github.com/born-ml/tracegrad/internal/graph"
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Builder describes a program. It must call s.Input once per parameter, in
// order, and return those identifiers along with the result.
type Builder func(s *Session) (inputs []identity.ID, output Value)

// MultiBuilder is a Builder with several results.
type MultiBuilder func(s *Session) (inputs []identity.ID, outputs []Value)

// Trace runs build against a fresh graph and packages the result as a
// Function. It panics if the traced graph is malformed.
func Trace(build Builder, opts ...Option) *Function {
	return TraceAll(func(s *Session) ([]identity.ID, []Value) {
		inputs, out := build(s)
		return inputs, []Value{out}
	}, opts...)
}

// TraceAll is Trace for programs with several results. Grad sums the
// results into a single objective.
func TraceAll(build MultiBuilder, opts ...Option) *Function {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	g := graph.New(graph.WithAllocator(cfg.allocator()))
	inputs, outputs := build(&Session{g: g})

	outIDs := IDs(outputs...)
	for i, id := range outIDs {
		if !id.Valid() {
			exceptions.Panicf("autodiff: output %d was not produced by the session", i)
		}
	}
	if err := g.Validate(nil); err != nil {
		panic(errors.Wrap(err, "autodiff: trace"))
	}
	if err := checkDeclared(g, inputs, outIDs); err != nil {
		panic(errors.Wrap(err, "autodiff: trace"))
	}

	return &Function{
		graph:   g,
		inputs:  slices.Clone(inputs),
		outputs: outIDs,
		dtype:   cfg.dtype,
		backend: cfg.backend,
		logger:  cfg.logger,
	}
}

// checkDeclared verifies that every declared identifier is produced by g.
func checkDeclared(g *graph.Graph, inputs, outputs []identity.ID) error {
	produced := make(map[identity.ID]bool, g.Len())
	for _, op := range g.Nodes() {
		for _, out := range op.Outputs() {
			produced[out] = true
		}
	}
	for i, id := range inputs {
		if !produced[id] {
			return errors.Errorf("input %d (%s) is not in the graph", i, id)
		}
	}
	for i, id := range outputs {
		if !produced[id] {
			return errors.Errorf("output %d (%s) is not in the graph", i, id)
		}
	}
	return nil
}
