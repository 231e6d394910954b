// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package problem defines the optimization problem contract consumed
// by benchmark harnesses and the featured wrapper that perturbs how
// solvers observe a problem.
//
// A Problem is owned by the caller and treated as immutable. A
// Featured wraps a Problem with a feature.Feature: solvers drive its
// Fun/CUb/CEq entry points and observe the perturbed view, while the
// true objective values and constraint violations are recorded for
// scoring, subject to a strict evaluation budget.
package problem

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// A Problem is a bare optimization problem:
//
//	min fun(x)  s.t.  xl ≤ x ≤ xu,  aub·x ≤ bub,  aeq·x = beq,
//	                  cub(x) ≤ 0,  ceq(x) = 0.
//
// Only Fun and X0 are required. Nil bounds mean unbounded; nil
// matrices and constraint handles mean no constraints of that kind.
type Problem struct {
	// Fun evaluates the objective at x.
	Fun func(x []float64) float64

	// CUb and CEq evaluate the nonlinear inequality and equality
	// constraints at x.
	CUb func(x []float64) []float64
	CEq func(x []float64) []float64

	// X0 is the initial point. Its length fixes the dimension.
	X0 []float64

	// XL and XU are the lower and upper variable bounds.
	XL, XU []float64

	// AUb, BUb describe the linear inequality constraints
	// aub·x ≤ bub; AEq, BEq the linear equality constraints.
	AUb *mat.Dense
	BUb []float64
	AEq *mat.Dense
	BEq []float64

	// MNonlinearUb and MNonlinearEq are the lengths of the vectors
	// returned by CUb and CEq. Zero when the handles are absent.
	MNonlinearUb, MNonlinearEq int
}

// Dimension returns the number of variables.
func (p *Problem) Dimension() int { return len(p.X0) }

// Validate checks the problem for internal consistency.
func (p *Problem) Validate() error {
	if p.Fun == nil {
		return &ConfigError{"an objective function is required"}
	}
	n := p.Dimension()
	if n == 0 {
		return &ConfigError{"the initial point must not be empty"}
	}
	for _, b := range []struct {
		name string
		v    []float64
	}{{"lower bound", p.XL}, {"upper bound", p.XU}} {
		if b.v != nil && len(b.v) != n {
			return &ShapeError{b.name, n, len(b.v)}
		}
	}
	if err := checkLinear("inequality", p.AUb, p.BUb, n); err != nil {
		return err
	}
	if err := checkLinear("equality", p.AEq, p.BEq, n); err != nil {
		return err
	}
	if p.MNonlinearUb < 0 || p.MNonlinearEq < 0 {
		return &ConfigError{"nonlinear constraint counts must be nonnegative"}
	}
	return nil
}

func checkLinear(kind string, a *mat.Dense, b []float64, n int) error {
	if a == nil {
		if len(b) != 0 {
			return &ShapeError{"linear " + kind + " right-hand side", 0, len(b)}
		}
		return nil
	}
	r, c := a.Dims()
	if c != n {
		return &ShapeError{"linear " + kind + " matrix columns", n, c}
	}
	if len(b) != r {
		return &ShapeError{"linear " + kind + " right-hand side", r, len(b)}
	}
	return nil
}

// A Violation is a maximum constraint violation decomposed by
// constraint kind. Each contribution is zero at a point feasible for
// the constraints of that kind.
type Violation struct {
	Bounds    float64
	Linear    float64
	Nonlinear float64
}

// MaxCV returns the maximum constraint violation at x, decomposed
// into bound, linear, and nonlinear contributions. The x slice must
// be in the problem's own variable ordering.
func (p *Problem) MaxCV(x []float64) (float64, Violation, error) {
	if len(x) != p.Dimension() {
		return 0, Violation{}, &ShapeError{"point", p.Dimension(), len(x)}
	}

	var cv Violation
	for i, xi := range x {
		if p.XL != nil {
			cv.Bounds = math.Max(cv.Bounds, p.XL[i]-xi)
		}
		if p.XU != nil {
			cv.Bounds = math.Max(cv.Bounds, xi-p.XU[i])
		}
	}

	xv := mat.NewVecDense(len(x), x)
	if p.AUb != nil {
		r, _ := p.AUb.Dims()
		var ax mat.VecDense
		ax.MulVec(p.AUb, xv)
		for i := 0; i < r; i++ {
			cv.Linear = math.Max(cv.Linear, ax.AtVec(i)-p.BUb[i])
		}
	}
	if p.AEq != nil {
		r, _ := p.AEq.Dims()
		var ax mat.VecDense
		ax.MulVec(p.AEq, xv)
		for i := 0; i < r; i++ {
			cv.Linear = math.Max(cv.Linear, math.Abs(ax.AtVec(i)-p.BEq[i]))
		}
	}

	if p.CUb != nil {
		c := p.CUb(x)
		if p.MNonlinearUb > 0 && len(c) != p.MNonlinearUb {
			return 0, Violation{}, &ShapeError{"nonlinear inequality value", p.MNonlinearUb, len(c)}
		}
		for _, ci := range c {
			cv.Nonlinear = math.Max(cv.Nonlinear, ci)
		}
	}
	if p.CEq != nil {
		c := p.CEq(x)
		if p.MNonlinearEq > 0 && len(c) != p.MNonlinearEq {
			return 0, Violation{}, &ShapeError{"nonlinear equality value", p.MNonlinearEq, len(c)}
		}
		for _, ci := range c {
			cv.Nonlinear = math.Max(cv.Nonlinear, math.Abs(ci))
		}
	}

	return math.Max(cv.Bounds, math.Max(cv.Linear, cv.Nonlinear)), cv, nil
}
