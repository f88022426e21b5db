// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense tensors tracegrad evaluates graphs on.
//
// # Overview
//
// A RawTensor is a contiguous row-major buffer with a shape and an element
// type. This package provides:
//   - Float32 and Float64 element types
//   - Typed constructors (FromSlice, Vector, Scalar, Zeros, Ones, Full)
//   - Zero-copy typed access (AsFloat32, AsFloat64, Data)
//   - NumPy-style broadcasting rules (BroadcastShapes)
//   - The Backend interface numeric backends implement
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/tracegrad/backend/cpu"
//	    "github.com/born-ml/tracegrad/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.MustFromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	    y := tensor.Ones(tensor.Shape{2}, tensor.Float32, tensor.CPU)
//
//	    z := backend.Add(x, y) // broadcasts y over the rows
//	    fmt.Println(z)         // float32(2, 2)[2 3 4 5]
//	}
package tensor
