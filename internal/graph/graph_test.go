package graph

import (
	"encoding/json"
	"testing"

	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/ops"
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// addGraph builds: %1 = Input, %2 = Input, %3 = Add(%1, %2).
func addGraph() (*Graph, []identity.ID) {
	g := New()
	x, y := g.Fresh(), g.Fresh()
	g.Push(ops.NewInputOp(x))
	g.Push(ops.NewInputOp(y))
	g.Push(ops.NewAddOp(x, y, g.Fresh()))
	return g, []identity.ID{x, y}
}

func TestGraph_PushAndString(t *testing.T) {
	g, _ := addGraph()

	assert.Equal(t, 3, g.Len())
	assert.Equal(t, "0: Input [] -> [%1]\n1: Input [] -> [%2]\n2: Add [%1 %2] -> [%3]\n", g.String())
}

func TestGraph_CloneIsIndependent(t *testing.T) {
	g, _ := addGraph()
	c := g.Clone()

	c.Push(ops.NewNegOp(3, c.Fresh()))
	assert.Equal(t, 3, g.Len())
	assert.Equal(t, 4, c.Len())

	// Both continue numbering from the same point without clashing inside each graph
	assert.Equal(t, identity.ID(4), g.Fresh())
	assert.Equal(t, identity.ID(5), c.Fresh())
}

func TestGraph_NodesIsReadOnlyView(t *testing.T) {
	g, _ := addGraph()
	nodes := g.Nodes()
	_ = append(nodes, ops.NewConstOp(1, 9))

	g.Push(ops.NewConstOp(2, g.Fresh()))
	assert.Equal(t, "Const", g.Nodes()[3].Name())
	assert.Equal(t, 2.0, g.Nodes()[3].(ops.ConstOp).Value())
}

func TestGraph_WithAllocator(t *testing.T) {
	alloc := identity.NewCounter()
	alloc.Fresh()
	g := New(WithAllocator(alloc))
	assert.Equal(t, identity.ID(2), g.Fresh())
}

func TestGraph_Validate(t *testing.T) {
	g, inputs := addGraph()
	require.NoError(t, g.Validate(inputs))

	// Reading an identifier nobody produced
	bad := g.Clone()
	bad.Push(ops.NewMulOp(3, 42, bad.Fresh()))
	err := bad.Validate(inputs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "node 3 (Mul) reads %42")

	// Forward reference
	fwd := New()
	fwd.Push(ops.NewNegOp(2, 1))
	fwd.Push(ops.NewConstOp(1, 2))
	require.Error(t, fwd.Validate(nil))

	// Duplicate producer
	dup := New()
	dup.Push(ops.NewConstOp(1, 1))
	dup.Push(ops.NewConstOp(2, 1))
	require.Error(t, dup.Validate(nil))
}

func TestGraph_Export(t *testing.T) {
	g, inputs := addGraph()
	g.Push(ops.NewSumOp(3, []int{0}, false, g.Fresh()))

	s, err := g.Export(inputs)
	require.NoError(t, err)

	m := s.AsMap()
	assert.Equal(t, []any{"%1", "%2"}, m["inputs"])

	nodes := m["nodes"].([]any)
	require.Len(t, nodes, 4)
	add := nodes[2].(map[string]any)
	assert.Equal(t, "Add", add["op"])
	assert.Equal(t, []any{"%1", "%2"}, add["inputs"])
	assert.NotContains(t, add, "attrs")

	sum := nodes[3].(map[string]any)
	assert.Equal(t, map[string]any{"axes": []any{0.0}, "keep_dims": false}, sum["attrs"])
}

func TestGraph_ExportEncodings(t *testing.T) {
	g, inputs := addGraph()
	g.Push(ops.NewReshapeOp(3, tensor.Shape{2, 1}, g.Fresh()))

	data, err := g.ExportJSON(inputs)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Len(t, decoded["nodes"], 4)

	bin, err := g.ExportBinary(inputs)
	require.NoError(t, err)

	var back structpb.Struct
	require.NoError(t, proto.Unmarshal(bin, &back))
	assert.Len(t, back.GetFields()["nodes"].GetListValue().GetValues(), 4)
}
