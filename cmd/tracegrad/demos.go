package main

import (
	"github.com/born-ml/tracegrad/autodiff"
	"github.com/born-ml/tracegrad/tensor"
)

type demo struct {
	about string
	build autodiff.Builder
	args  func(dtype tensor.DataType) []*tensor.RawTensor
	order int
}

var demos = map[string]demo{
	"sum-add": {
		about: "sum(x + y)",
		build: binary(func(s *autodiff.Session, x, y autodiff.Value) autodiff.Value {
			return s.SumAll(s.Add(x, y))
		}),
		args:  pair([]int{3}, []float64{1, 2, 3}, []int{3}, []float64{4, 5, 6}),
		order: 1,
	},
	"sub": {
		about: "sum(x - y) with y broadcast over rows",
		build: binary(func(s *autodiff.Session, x, y autodiff.Value) autodiff.Value {
			return s.SumAll(s.Sub(x, y))
		}),
		args:  pair([]int{2, 2}, []float64{1, 2, 3, 4}, []int{2}, []float64{1, 1}),
		order: 1,
	},
	"mul": {
		about: "sum(x * y)",
		build: binary(func(s *autodiff.Session, x, y autodiff.Value) autodiff.Value {
			return s.SumAll(s.Mul(x, y))
		}),
		args:  pair([]int{2}, []float64{2, 3}, []int{2}, []float64{4, 5}),
		order: 1,
	},
	"div": {
		about: "sum(x / y)",
		build: binary(func(s *autodiff.Session, x, y autodiff.Value) autodiff.Value {
			return s.SumAll(s.Div(x, y))
		}),
		args:  pair([]int{2}, []float64{1, 4}, []int{2}, []float64{2, 8}),
		order: 1,
	},
	"matmul": {
		about: "sum(a @ b) with second derivatives",
		build: binary(func(s *autodiff.Session, a, b autodiff.Value) autodiff.Value {
			return s.SumAll(s.MatMul(a, b))
		}),
		args:  pair([]int{2, 2}, []float64{1, 2, 3, 4}, []int{2, 2}, []float64{5, 6, 7, 8}),
		order: 2,
	},
	"mean": {
		about: "mean over the last axis",
		build: unary(func(s *autodiff.Session, x autodiff.Value) autodiff.Value {
			return s.Mean(x, []int{-1}, false)
		}),
		args:  single([]int{2, 3}, []float64{1, 2, 3, 4, 5, 6}),
		order: 1,
	},
	"max": {
		about: "max over every axis, ties share the gradient",
		build: unary(func(s *autodiff.Session, x autodiff.Value) autodiff.Value {
			return s.Max(x, nil, false)
		}),
		args:  single([]int{4}, []float64{1, 5, 2, 5}),
		order: 1,
	},
	"relu": {
		about: "sum(relu(x))",
		build: unary(func(s *autodiff.Session, x autodiff.Value) autodiff.Value {
			return s.SumAll(s.ReLU(x))
		}),
		args:  single([]int{4}, []float64{-2, -0.5, 0.5, 2}),
		order: 1,
	},
	"square": {
		about: "sum(x * x) up to the second derivative",
		build: unary(func(s *autodiff.Session, x autodiff.Value) autodiff.Value {
			return s.SumAll(s.Square(x))
		}),
		args:  single([]int{2}, []float64{3, 5}),
		order: 2,
	},
	"least-squares": {
		about: "mean((x @ w - y)^2) for a 3x2 design matrix",
		build: func(s *autodiff.Session) ([]autodiff.ID, autodiff.Value) {
			x, w, y := s.Input(), s.Input(), s.Input()
			residual := s.Sub(s.MatMul(x, w), y)
			return autodiff.IDs(x, w, y), s.Mean(s.Square(residual), nil, false)
		},
		args: func(dtype tensor.DataType) []*tensor.RawTensor {
			return []*tensor.RawTensor{
				values(dtype, []int{3, 2}, 1, 0, 1, 1, 1, 2),
				values(dtype, []int{2}, 0.5, 0.5),
				values(dtype, []int{3}, 1, 2, 3),
			}
		},
		order: 1,
	},
}

func unary(body func(s *autodiff.Session, x autodiff.Value) autodiff.Value) autodiff.Builder {
	return func(s *autodiff.Session) ([]autodiff.ID, autodiff.Value) {
		x := s.Input()
		return autodiff.IDs(x), body(s, x)
	}
}

func binary(body func(s *autodiff.Session, x, y autodiff.Value) autodiff.Value) autodiff.Builder {
	return func(s *autodiff.Session) ([]autodiff.ID, autodiff.Value) {
		x, y := s.Input(), s.Input()
		return autodiff.IDs(x, y), body(s, x, y)
	}
}

func single(shape []int, data []float64) func(tensor.DataType) []*tensor.RawTensor {
	return func(dtype tensor.DataType) []*tensor.RawTensor {
		return []*tensor.RawTensor{values(dtype, shape, data...)}
	}
}

func pair(shapeA []int, a []float64, shapeB []int, b []float64) func(tensor.DataType) []*tensor.RawTensor {
	return func(dtype tensor.DataType) []*tensor.RawTensor {
		return []*tensor.RawTensor{values(dtype, shapeA, a...), values(dtype, shapeB, b...)}
	}
}

// values builds a tensor of the requested element type.
func values(dtype tensor.DataType, shape []int, data ...float64) *tensor.RawTensor {
	if dtype == tensor.Float64 {
		return tensor.MustFromSlice(data, tensor.Shape(shape))
	}
	f32 := make([]float32, len(data))
	for i, v := range data {
		f32[i] = float32(v)
	}
	return tensor.MustFromSlice(f32, tensor.Shape(shape))
}
