package autodiff

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/born-ml/tracegrad/internal/evalctx"
	"github.com/born-ml/tracegrad/internal/graph"
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/gomlx/exceptions"
)

// Function is a traced graph with declared inputs and outputs. It is never
// mutated after construction, so it can be evaluated and differentiated
// repeatedly and from several goroutines.
type Function struct {
	graph   *graph.Graph
	inputs  []identity.ID
	outputs []identity.ID
	dtype   tensor.DataType
	backend tensor.Backend
	logger  *slog.Logger
}

// Eval runs the graph on args (one per declared input, in order) and
// returns the first output. It panics on an arity or dtype mismatch.
func (f *Function) Eval(args ...*tensor.RawTensor) *tensor.RawTensor {
	if len(f.outputs) == 0 {
		exceptions.Panicf("autodiff: eval of a function with no outputs")
	}
	ctx := f.run(args)
	return ctx.Get(f.outputs[0])
}

// EvalAll runs the graph on args and returns every declared output.
func (f *Function) EvalAll(args ...*tensor.RawTensor) []*tensor.RawTensor {
	ctx := f.run(args)
	results := make([]*tensor.RawTensor, len(f.outputs))
	for i, out := range f.outputs {
		results[i] = ctx.Get(out)
	}
	return results
}

// run binds args in a fresh context and evaluates every node in order.
func (f *Function) run(args []*tensor.RawTensor) *evalctx.Context {
	if len(args) != len(f.inputs) {
		exceptions.Panicf("autodiff: eval expects %d arguments, got %d", len(f.inputs), len(args))
	}

	ctx := evalctx.New(f.backend, f.dtype)
	for i, arg := range args {
		if arg == nil {
			exceptions.Panicf("autodiff: argument %d is nil", i)
		}
		if arg.DType() != f.dtype {
			exceptions.Panicf("autodiff: argument %d has dtype %s, function expects %s", i, arg.DType(), f.dtype)
		}
		ctx.Insert(f.inputs[i], arg)
	}

	f.logger.Debug("eval", slog.Int("nodes", f.graph.Len()), slog.Int("inputs", len(args)))

	for _, op := range f.graph.Nodes() {
		op.Eval(ctx)
	}
	return ctx
}

// Graph returns the underlying graph for inspection. It must not be extended.
func (f *Function) Graph() *graph.Graph {
	return f.graph
}

// Inputs returns the declared input identifiers.
func (f *Function) Inputs() []identity.ID {
	return append([]identity.ID(nil), f.inputs...)
}

// Outputs returns the declared output identifiers.
func (f *Function) Outputs() []identity.ID {
	return append([]identity.ID(nil), f.outputs...)
}

// DType returns the element type of arguments and results.
func (f *Function) DType() tensor.DataType {
	return f.dtype
}

// String renders the signature followed by the graph listing.
func (f *Function) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "fn(%s) -> (%s)\n", joinIDs(f.inputs), joinIDs(f.outputs))
	sb.WriteString(f.graph.String())
	return sb.String()
}

func joinIDs(ids []identity.ID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = id.String()
	}
	return strings.Join(parts, ", ")
}
