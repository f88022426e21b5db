// Package evalctx holds the per-evaluation mapping from identifiers to
// concrete tensors.
package evalctx

import (
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/gomlx/exceptions"
)

// Context binds identifiers to tensors for a single evaluation. It is bound
// to one backend and one element type. A Context is not safe for concurrent
// use; every evaluation creates its own.
type Context struct {
	backend tensor.Backend
	dtype   tensor.DataType
	values  map[identity.ID]*tensor.RawTensor
}

// New creates an empty context.
func New(backend tensor.Backend, dtype tensor.DataType) *Context {
	return &Context{
		backend: backend,
		dtype:   dtype,
		values:  make(map[identity.ID]*tensor.RawTensor),
	}
}

// Backend returns the numeric backend operations evaluate with.
func (c *Context) Backend() tensor.Backend {
	return c.backend
}

// DType returns the element type every bound tensor carries.
func (c *Context) DType() tensor.DataType {
	return c.dtype
}

// Insert binds id to value, replacing any earlier binding.
// It panics if value is nil or carries a different element type.
func (c *Context) Insert(id identity.ID, value *tensor.RawTensor) {
	if value == nil {
		exceptions.Panicf("evalctx: nil value for %s", id)
	}
	if value.DType() != c.dtype {
		exceptions.Panicf("evalctx: %s has dtype %s, context expects %s", id, value.DType(), c.dtype)
	}
	c.values[id] = value
}

// Get returns the tensor bound to id. A missing binding means the graph is
// malformed, so it panics.
func (c *Context) Get(id identity.ID) *tensor.RawTensor {
	v, ok := c.values[id]
	if !ok {
		exceptions.Panicf("evalctx: missing binding for %s", id)
	}
	return v
}

// Lookup returns the tensor bound to id, if any.
func (c *Context) Lookup(id identity.ID) (*tensor.RawTensor, bool) {
	v, ok := c.values[id]
	return v, ok
}

// Len returns the number of bindings.
func (c *Context) Len() int {
	return len(c.values)
}
