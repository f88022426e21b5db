package cpu

import (
	"math"
	"testing"

	"github.com/born-ml/tracegrad/internal/tensor"
	"github.com/stretchr/testify/assert"
)

func TestSumAll(t *testing.T) {
	backend := New()
	x := tensor.MustFromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	result := backend.SumAll(x)
	if result.Rank() != 0 {
		t.Errorf("Expected 0-d result, got %v", result.Shape())
	}
	if result.AsFloat32()[0] != 21 {
		t.Errorf("Expected 21, got %v", result.AsFloat32()[0])
	}
}

func TestSumDim_1D(t *testing.T) {
	backend := New()
	x := tensor.Vector[float32](1, 2, 3, 4)

	// Sum along dim 0 with keepDim=true -> [1]
	result := backend.SumDim(x, 0, true)
	if !result.Shape().Equal(tensor.Shape{1}) {
		t.Errorf("Expected shape [1], got %v", result.Shape())
	}
	if result.AsFloat32()[0] != 10 {
		t.Errorf("Expected 10, got %v", result.AsFloat32()[0])
	}

	// Sum along dim 0 with keepDim=false -> []
	result = backend.SumDim(x, 0, false)
	if len(result.Shape()) != 0 {
		t.Errorf("Expected shape [], got %v", result.Shape())
	}
}

func TestSumDim_2D(t *testing.T) {
	backend := New()
	x := tensor.MustFromSlice([]float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	rows := backend.SumDim(x, 0, false)
	assert.True(t, rows.Shape().Equal(tensor.Shape{3}))
	assert.Equal(t, []float64{5, 7, 9}, rows.AsFloat64())

	cols := backend.SumDim(x, -1, true)
	assert.True(t, cols.Shape().Equal(tensor.Shape{2, 1}))
	assert.Equal(t, []float64{6, 15}, cols.AsFloat64())
}

func TestSumDim_3D_Middle(t *testing.T) {
	backend := New()
	x := tensor.MustFromSlice([]float64{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 2, 2})

	y := backend.SumDim(x, 1, false)
	assert.True(t, y.Shape().Equal(tensor.Shape{2, 2}))
	assert.Equal(t, []float64{4, 6, 12, 14}, y.AsFloat64())
}

func TestMaxDim(t *testing.T) {
	backend := New()
	x := tensor.MustFromSlice([]float32{1, 9, 3, -4, -5, -6}, tensor.Shape{2, 3})

	assert.Equal(t, []float32{9, -4}, backend.MaxDim(x, 1, false).AsFloat32())
	assert.Equal(t, []float32{1, 9, 3}, backend.MaxDim(x, 0, false).AsFloat32())

	kept := backend.MaxDim(x, 1, true)
	assert.True(t, kept.Shape().Equal(tensor.Shape{2, 1}))

	// All-negative infinities stay -Inf
	inf := tensor.Vector[float64](math.Inf(-1), math.Inf(-1))
	assert.True(t, math.IsInf(backend.MaxDim(inf, 0, false).AsFloat64()[0], -1))
}

func TestReduceDim_OutOfRange(t *testing.T) {
	backend := New()
	x := tensor.Zeros(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)

	assert.Panics(t, func() { backend.SumDim(x, 2, false) })
	assert.Panics(t, func() { backend.MaxDim(x, -3, false) })
}
