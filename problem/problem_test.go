// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package problem

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func sumSquares(x []float64) float64 {
	var sum float64
	for _, xi := range x {
		sum += xi * xi
	}
	return sum
}

func TestValidate(t *testing.T) {
	check := func(name string, p Problem, wantErr bool) {
		t.Helper()
		err := p.Validate()
		if (err != nil) != wantErr {
			t.Errorf("%s: Validate() = %v, want error: %v", name, err, wantErr)
		}
	}
	check("ok", Problem{Fun: sumSquares, X0: []float64{1, 2}}, false)
	check("no objective", Problem{X0: []float64{1}}, true)
	check("empty x0", Problem{Fun: sumSquares}, true)
	check("bad bound length", Problem{Fun: sumSquares, X0: []float64{1, 2}, XL: []float64{0}}, true)
	check("bad matrix columns", Problem{
		Fun: sumSquares, X0: []float64{1, 2},
		AUb: mat.NewDense(1, 3, nil), BUb: []float64{0},
	}, true)
	check("bad rhs length", Problem{
		Fun: sumSquares, X0: []float64{1, 2},
		AUb: mat.NewDense(1, 2, nil), BUb: []float64{0, 0},
	}, true)
	check("negative count", Problem{Fun: sumSquares, X0: []float64{1}, MNonlinearUb: -1}, true)
}

func TestMaxCV(t *testing.T) {
	p := Problem{
		Fun: sumSquares,
		X0:  []float64{0, 0},
		XL:  []float64{0, 0},
		XU:  []float64{1, 1},
		// x[0] + x[1] <= 1
		AUb: mat.NewDense(1, 2, []float64{1, 1}),
		BUb: []float64{1},
		// x[0]^2 - 0.5 <= 0
		CUb:          func(x []float64) []float64 { return []float64{x[0]*x[0] - 0.5} },
		MNonlinearUb: 1,
	}

	cv, parts, err := p.MaxCV([]float64{0.5, 0.25})
	if err != nil {
		t.Fatal(err)
	}
	if cv != 0 || parts != (Violation{}) {
		t.Errorf("feasible point: cv = %v, parts = %+v, want zeros", cv, parts)
	}

	cv, parts, err = p.MaxCV([]float64{2, -1})
	if err != nil {
		t.Fatal(err)
	}
	// Bounds: x[0] over by 1, x[1] under by 1. Linear: 2-1 <= 1 holds
	// with slack 0. Nonlinear: 4-0.5 = 3.5.
	if parts.Bounds != 1 {
		t.Errorf("bound violation = %v, want 1", parts.Bounds)
	}
	if parts.Linear != 0 {
		t.Errorf("linear violation = %v, want 0", parts.Linear)
	}
	if parts.Nonlinear != 3.5 {
		t.Errorf("nonlinear violation = %v, want 3.5", parts.Nonlinear)
	}
	if cv != 3.5 {
		t.Errorf("cv = %v, want 3.5", cv)
	}

	_, _, err = p.MaxCV([]float64{1})
	var se *ShapeError
	if !errors.As(err, &se) {
		t.Errorf("short point: error %v is not a ShapeError", err)
	}
}

func TestMaxCVEquality(t *testing.T) {
	p := Problem{
		Fun: sumSquares,
		X0:  []float64{0, 0},
		AEq: mat.NewDense(1, 2, []float64{1, -1}),
		BEq: []float64{0},
		CEq: func(x []float64) []float64 { return []float64{x[1] - 2} },
	}
	_, parts, err := p.MaxCV([]float64{3, 1})
	if err != nil {
		t.Fatal(err)
	}
	if parts.Linear != 2 {
		t.Errorf("equality violation = %v, want |3-1| = 2", parts.Linear)
	}
	if parts.Nonlinear != 1 {
		t.Errorf("nonlinear equality violation = %v, want |1-2| = 1", parts.Nonlinear)
	}
}

func TestMaxCVUnbounded(t *testing.T) {
	p := Problem{Fun: sumSquares, X0: []float64{0, 0}}
	cv, _, err := p.MaxCV([]float64{math.Inf(1), -1e300})
	if err != nil {
		t.Fatal(err)
	}
	if cv != 0 {
		t.Errorf("unconstrained cv = %v, want 0", cv)
	}
}
