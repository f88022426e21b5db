package evalctx

import (
	"testing"

	"github.com/born-ml/tracegrad/internal/backend/cpu"
	"github.com/born-ml/tracegrad/internal/identity"
	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContext_InsertGet(t *testing.T) {
	ctx := New(cpu.New(), tensor.Float32)
	v := tensor.Vector[float32](1, 2)

	ctx.Insert(1, v)
	assert.Same(t, v, ctx.Get(1))
	assert.Equal(t, 1, ctx.Len())
	assert.Equal(t, tensor.Float32, ctx.DType())
	assert.Equal(t, "CPU", ctx.Backend().Name())
}

func TestContext_Overwrite(t *testing.T) {
	ctx := New(cpu.New(), tensor.Float64)
	ctx.Insert(3, tensor.Vector[float64](1))
	w := tensor.Vector[float64](2)
	ctx.Insert(3, w)

	assert.Same(t, w, ctx.Get(3))
	assert.Equal(t, 1, ctx.Len())
}

func TestContext_MissingBinding(t *testing.T) {
	ctx := New(cpu.New(), tensor.Float32)

	_, ok := ctx.Lookup(9)
	assert.False(t, ok)

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, isErr := r.(error)
		require.True(t, isErr, "panic value should be an error")
		assert.Contains(t, err.Error(), "missing binding for %9")
	}()
	ctx.Get(identity.ID(9))
}

func TestContext_DTypeMismatch(t *testing.T) {
	ctx := New(cpu.New(), tensor.Float32)
	assert.Panics(t, func() { ctx.Insert(1, tensor.Vector[float64](1)) })
	assert.Panics(t, func() { ctx.Insert(1, nil) })
}
