package autodiff

import (
	"log/slog"

	"github.com/born-ml/tracegrad/internal/graph"
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/ops"
	"github.com/gomlx/exceptions"
)

// Grad returns a Function computing the gradient of the summed outputs with
// respect to each input. It shares the receiver's inputs, has one output per
// input, and can itself be differentiated.
//
// Algorithm:
//  1. Clone the graph so the receiver stays untouched
//  2. Fold several outputs together with Add
//  3. Sum the result to a 0-d objective and seed its gradient with 1
//  4. Walk the forward nodes in reverse, asking each for its VJP
//  5. Accumulate gradients of identifiers used more than once with Add
//  6. Give inputs that never received a gradient an input-shaped zero
func (f *Function) Grad() *Function {
	if len(f.outputs) == 0 {
		exceptions.Panicf("autodiff: grad of a function with no outputs")
	}

	g := f.graph.Clone()

	objective := f.outputs[0]
	for _, out := range f.outputs[1:] {
		objective = push(g, func(id identity.ID) ops.Operation { return ops.NewAddOp(objective, out, id) })
	}
	scalar := push(g, func(id identity.ID) ops.Operation { return ops.NewSumOp(objective, nil, false, id) })
	seed := push(g, func(id identity.ID) ops.Operation { return ops.NewConstOp(1, id) })

	// Map to accumulate the gradient identifier of each value
	grads := map[identity.ID]identity.ID{scalar: seed}

	// Snapshot: nodes appended by VJPs are never visited
	forward := g.Nodes()
	for i := len(forward) - 1; i >= 0; i-- {
		op := forward[i]
		inputGrads := computeInputGrads(g, op, grads)
		if inputGrads == nil {
			continue
		}
		accumulateGrads(g, op, inputGrads, grads)
	}

	outputs := make([]identity.ID, len(f.inputs))
	for i, in := range f.inputs {
		if grad, ok := grads[in]; ok {
			outputs[i] = grad
			continue
		}
		zero := push(g, func(id identity.ID) ops.Operation { return ops.NewConstOp(0, id) })
		outputs[i] = push(g, func(id identity.ID) ops.Operation { return ops.NewBroadcastLikeOp(zero, in, id) })
	}

	f.logger.Debug("grad",
		slog.Int("forward_nodes", f.graph.Len()),
		slog.Int("grad_nodes", g.Len()))

	return &Function{
		graph:   g,
		inputs:  f.Inputs(),
		outputs: outputs,
		dtype:   f.dtype,
		backend: f.backend,
		logger:  f.logger,
	}
}

// computeInputGrads collects the output gradients of op and calls its VJP.
// Returns nil if no gradient reaches op or none flows through it.
func computeInputGrads(g *graph.Graph, op ops.Operation, grads map[identity.ID]identity.ID) []identity.ID {
	outputs := op.Outputs()
	outputGrads, hasAnyGrad := collectOutputGrads(outputs, grads)
	if !hasAnyGrad {
		return nil
	}
	fillMissingGradsWithZeros(g, outputs, outputGrads)
	return op.VJP(g, outputGrads)
}

// collectOutputGrads looks up the gradient of every output.
func collectOutputGrads(outputs []identity.ID, grads map[identity.ID]identity.ID) ([]identity.ID, bool) {
	outputGrads := make([]identity.ID, len(outputs))
	hasAnyGrad := false
	for j, out := range outputs {
		if grad, exists := grads[out]; exists {
			outputGrads[j] = grad
			hasAnyGrad = true
		}
	}
	return outputGrads, hasAnyGrad
}

// fillMissingGradsWithZeros gives outputs without a gradient a zero shaped
// like the output, for operations with several outputs.
func fillMissingGradsWithZeros(g *graph.Graph, outputs, outputGrads []identity.ID) {
	for j, out := range outputs {
		if outputGrads[j].Valid() {
			continue
		}
		zero := push(g, func(id identity.ID) ops.Operation { return ops.NewConstOp(0, id) })
		outputGrads[j] = push(g, func(id identity.ID) ops.Operation { return ops.NewBroadcastLikeOp(zero, out, id) })
	}
}

// accumulateGrads pairs contributions with op's inputs positionally and adds
// them into grads. Invalid contributions are skipped.
func accumulateGrads(g *graph.Graph, op ops.Operation, inputGrads []identity.ID, grads map[identity.ID]identity.ID) {
	inputs := op.Inputs()
	for j, input := range inputs {
		if j >= len(inputGrads) {
			break
		}
		inputGrad := inputGrads[j]
		if !inputGrad.Valid() {
			continue
		}
		if existing, ok := grads[input]; ok {
			grads[input] = push(g, func(id identity.ID) ops.Operation { return ops.NewAddOp(existing, inputGrad, id) })
		} else {
			grads[input] = inputGrad
		}
	}
}

func push(g *graph.Graph, build func(id identity.ID) ops.Operation) identity.ID {
	id := g.Fresh()
	g.Push(build(id))
	return id
}
