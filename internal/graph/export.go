package graph

import (
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/ops"
	"github.com/pkg/errors"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// Export describes the graph as a protobuf Struct:
//
//	{
//	  "inputs": ["%1", ...],
//	  "nodes": [{"index": 0, "op": "Input", "inputs": [], "outputs": ["%1"], "attrs": {...}}, ...]
//	}
//
// declared lists the function parameters.
func (g *Graph) Export(declared []identity.ID) (*structpb.Struct, error) {
	nodes := make([]any, 0, len(g.nodes))
	for i, op := range g.nodes {
		node := map[string]any{
			"index":   float64(i),
			"op":      op.Name(),
			"inputs":  idsToAny(op.Inputs()),
			"outputs": idsToAny(op.Outputs()),
		}
		if attributed, ok := op.(ops.Attributed); ok {
			node["attrs"] = attributed.Attrs()
		}
		nodes = append(nodes, node)
	}

	s, err := structpb.NewStruct(map[string]any{
		"inputs": idsToAny(declared),
		"nodes":  nodes,
	})
	if err != nil {
		return nil, errors.Wrap(err, "graph: export")
	}
	return s, nil
}

// ExportJSON renders Export as indented JSON.
func (g *Graph) ExportJSON(declared []identity.ID) ([]byte, error) {
	s, err := g.Export(declared)
	if err != nil {
		return nil, err
	}
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "graph: marshal json")
	}
	return data, nil
}

// ExportBinary renders Export in the protobuf wire format.
func (g *Graph) ExportBinary(declared []identity.ID) ([]byte, error) {
	s, err := g.Export(declared)
	if err != nil {
		return nil, err
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "graph: marshal binary")
	}
	return data, nil
}

func idsToAny(ids []identity.ID) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
