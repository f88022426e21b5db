// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor_test

import (
	"testing"

	"github.com/born-ml/tracegrad/internal/backend/cpu"
	"github.com/born-ml/tracegrad/tensor"
)

// TestBackendInterface verifies that cpu.CPUBackend implements tensor.Backend.
func TestBackendInterface(_ *testing.T) {
	var _ tensor.Backend = (*cpu.CPUBackend)(nil)
}

// TestRawTensorAPI verifies RawTensor type alias exposes expected API.
func TestRawTensorAPI(t *testing.T) {
	raw, err := tensor.NewRaw(tensor.Shape{2, 3}, tensor.Float32, tensor.CPU)
	if err != nil {
		t.Fatalf("NewRaw failed: %v", err)
	}

	if !raw.Shape().Equal(tensor.Shape{2, 3}) {
		t.Errorf("Shape() = %v, want (2, 3)", raw.Shape())
	}
	if raw.DType() != tensor.Float32 {
		t.Errorf("DType() = %v, want float32", raw.DType())
	}
	if len(raw.AsFloat32()) != 6 {
		t.Errorf("AsFloat32() length = %d, want 6", len(raw.AsFloat32()))
	}
}

func TestConstructors(t *testing.T) {
	v := tensor.Vector[float64](1, 2, 3)
	if got := tensor.Data[float64](v); len(got) != 3 || got[2] != 3 {
		t.Errorf("Vector data = %v", got)
	}

	full := tensor.Full(tensor.Shape{2}, 7, tensor.Float64, tensor.CPU)
	if full.At(1) != 7 {
		t.Errorf("Full(7).At(1) = %v", full.At(1))
	}

	if s := tensor.Scalar(4, tensor.Float32, tensor.CPU); s.Item() != 4 {
		t.Errorf("Scalar(4).Item() = %v", s.Item())
	}

	if _, err := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{2, 2}); err == nil {
		t.Error("FromSlice with wrong element count should fail")
	}

	out, _, err := tensor.BroadcastShapes(tensor.Shape{3, 1}, tensor.Shape{4})
	if err != nil || !out.Equal(tensor.Shape{3, 4}) {
		t.Errorf("BroadcastShapes = %v, %v", out, err)
	}
}
