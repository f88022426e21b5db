// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "github.com/born-ml/tracegrad/internal/tensor"

// Backend defines the numeric operations graphs are evaluated with.
//
// Implementations:
//   - backend/cpu: Pure Go kernels with gonum GEMM
//
// Example:
//
//	import (
//	    "github.com/born-ml/tracegrad/autodiff"
//	    "github.com/born-ml/tracegrad/backend/cpu"
//	)
//
//	f := autodiff.Trace(build, autodiff.WithBackend(cpu.New()))
type Backend = tensor.Backend
