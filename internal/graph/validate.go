package graph

import (
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/pkg/errors"
)

// Validate checks the ordering invariant: every identifier a node reads was
// produced by an earlier node or is one of declared. It also rejects
// identifiers produced twice.
func (g *Graph) Validate(declared []identity.ID) error {
	known := make(map[identity.ID]bool, len(declared)+len(g.nodes))
	for _, id := range declared {
		known[id] = true
	}

	produced := make(map[identity.ID]int, len(g.nodes))
	for i, op := range g.nodes {
		for _, in := range op.Inputs() {
			if !known[in] {
				return errors.Errorf("graph: node %d (%s) reads %s before it is produced", i, op.Name(), in)
			}
		}
		for _, out := range op.Outputs() {
			if !out.Valid() {
				return errors.Errorf("graph: node %d (%s) produces the invalid identifier", i, op.Name())
			}
			if prev, dup := produced[out]; dup {
				return errors.Errorf("graph: node %d (%s) produces %s already produced by node %d",
					i, op.Name(), out, prev)
			}
			produced[out] = i
			known[out] = true
		}
	}
	return nil
}
