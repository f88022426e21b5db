// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides a pure Go CPU backend for tensor operations.
//
// # Overview
//
// This package implements a CPU backend with:
//   - Pure Go element-wise kernels (no CGO)
//   - Matrix products through gonum's Dense.Mul
//   - Batched matrix products with broadcast batch dimensions
//   - Float32 and Float64 support
//   - NumPy-compatible broadcasting
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
//	    a := tensor.MustFromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2})
//	    c := backend.MatMul(a, a) // [[7, 10], [15, 22]]
//	}
//
// All shape violations panic with an error value; recover them with
// github.com/gomlx/exceptions.TryCatch.
package cpu
