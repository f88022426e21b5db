// Package graph stores traced computations as an append-only sequence of
// operations.
package graph

import (
	"fmt"
	"strings"

	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/ops"
)

// Graph is an ordered, append-only list of operations. Reading the nodes in
// order is a valid evaluation order. A Graph is not safe for concurrent
// mutation; Clone before extending a graph someone else may read.
type Graph struct {
	alloc identity.Allocator
	nodes []ops.Operation
}

// Option configures a Graph.
type Option func(*Graph)

// WithAllocator sets the identifier allocator. Defaults to identity.NewFreeList().
func WithAllocator(alloc identity.Allocator) Option {
	return func(g *Graph) {
		g.alloc = alloc
	}
}

// New creates an empty graph.
func New(opts ...Option) *Graph {
	g := &Graph{}
	for _, opt := range opts {
		opt(g)
	}
	if g.alloc == nil {
		g.alloc = identity.NewFreeList()
	}
	return g
}

// Fresh returns an unused identifier.
func (g *Graph) Fresh() identity.ID {
	return g.alloc.Fresh()
}

// Push appends op.
func (g *Graph) Push(op ops.Operation) {
	g.nodes = append(g.nodes, op)
}

// Nodes returns the operations in evaluation order. The slice must not be
// modified.
func (g *Graph) Nodes() []ops.Operation {
	return g.nodes[:len(g.nodes):len(g.nodes)]
}

// Len returns the number of operations.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Clone returns a graph that can be extended without affecting g.
// Operations are immutable and shared.
func (g *Graph) Clone() *Graph {
	nodes := make([]ops.Operation, len(g.nodes))
	copy(nodes, g.nodes)
	return &Graph{
		alloc: g.alloc.Clone(),
		nodes: nodes,
	}
}

// String renders one line per node: "<index>: <name> [inputs] -> [outputs]".
func (g *Graph) String() string {
	var sb strings.Builder
	for i, op := range g.nodes {
		fmt.Fprintf(&sb, "%d: %s %v -> %v\n", i, op.Name(), op.Inputs(), op.Outputs())
	}
	return sb.String()
}
