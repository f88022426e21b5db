// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	internalcpu "github.com/born-ml/tracegrad/internal/backend/cpu"
	"github.com/born-ml/tracegrad/tensor"
)

// Backend represents the CPU backend implementation.
//
// The CPU backend provides pure Go element-wise kernels and runs matrix
// products through gonum BLAS.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	import (
//	    "github.com/born-ml/tracegrad/autodiff"
//	    "github.com/born-ml/tracegrad/backend/cpu"
//	)
//
//	func main() {
//	    f := autodiff.Trace(build, autodiff.WithBackend(cpu.New()))
//	}
func New() *Backend {
	return internalcpu.New()
}
