// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package problem

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"

	"github.com/optiprofile/optiprofile/feature"
)

// A Featured wraps a Problem with a feature so that solvers observe a
// reproducibly perturbed view of it while the true objective values
// and constraint violations are recorded for scoring.
//
// A Featured is built fresh per (problem, feature, seed), driven
// through at most MaxEval evaluations, then discarded; its histories
// are the externally visible result. It is not safe for concurrent
// use: a harness running combinations in parallel must allocate one
// Featured per combination.
type Featured struct {
	problem Problem
	feature feature.Feature
	maxEval int
	seed    uint64

	// perm maps visible coordinate j to true coordinate perm[j];
	// inv is its inverse. Nil unless the feature permutes.
	perm, inv []int
	// scale maps visible x to true x by elementwise product. Nil
	// unless the feature rescales.
	scale []float64

	// The solver-visible frame, fixed at construction.
	x0, xl, xu []float64
	aub, aeq   *mat.Dense
	bub, beq   []float64

	funHist   []float64
	maxcvHist []float64
}

// NewFeatured wraps p with feat. maxEval is the evaluation budget and
// must be positive; seed drives every random draw of the feature and
// must be nonnegative. If the feature permutes, rescales, or perturbs
// the starting point, the transformation is drawn here and fixed for
// the lifetime of the Featured.
func NewFeatured(p Problem, feat feature.Feature, maxEval, seed int) (*Featured, error) {
	if feat == nil {
		return nil, &ConfigError{"a feature is required"}
	}
	if maxEval < 1 {
		return nil, &ConfigError{fmt.Sprintf("maximum evaluation count must be positive, got %d", maxEval)}
	}
	if seed < 0 {
		return nil, &ConfigError{fmt.Sprintf("seed must be nonnegative, got %d", seed)}
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := p.Dimension()
	fp := &Featured{
		problem: p,
		feature: feat,
		maxEval: maxEval,
		seed:    uint64(seed),
		x0:      cloneOr(p.X0, n, 0),
		xl:      cloneOr(p.XL, n, negInf),
		xu:      cloneOr(p.XU, n, posInf),
		bub:     clone(p.BUb),
		beq:     clone(p.BEq),
	}
	if p.AUb != nil {
		fp.aub = mat.DenseCopyOf(p.AUb)
	}
	if p.AEq != nil {
		fp.aeq = mat.DenseCopyOf(p.AEq)
	}

	switch ft := feat.(type) {
	case *feature.PermutedVariables:
		fp.perm = ft.Draw(fp.seed, n)
		fp.inv = make([]int, n)
		for j, pj := range fp.perm {
			fp.inv[pj] = j
		}
		fp.x0 = permute(fp.x0, fp.perm)
		fp.xl = permute(fp.xl, fp.perm)
		fp.xu = permute(fp.xu, fp.perm)
		fp.aub = permuteCols(fp.aub, fp.perm)
		fp.aeq = permuteCols(fp.aeq, fp.perm)
	case *feature.RandomizedScaling:
		fp.scale = ft.Draw(fp.seed, n)
		for j, s := range fp.scale {
			fp.x0[j] /= s
			fp.xl[j] /= s
			fp.xu[j] /= s
		}
		fp.aub = scaleCols(fp.aub, fp.scale)
		fp.aeq = scaleCols(fp.aeq, fp.scale)
	case *feature.PerturbedX0:
		for j, d := range ft.Draw(fp.seed, fp.x0) {
			fp.x0[j] += d
		}
	}

	return fp, nil
}

// Dimension returns the number of variables.
func (fp *Featured) Dimension() int { return len(fp.x0) }

// MaxEval returns the evaluation budget.
func (fp *Featured) MaxEval() int { return fp.maxEval }

// Feature returns the applied feature.
func (fp *Featured) Feature() feature.Feature { return fp.feature }

// NEval returns how many objective evaluations have been consumed.
func (fp *Featured) NEval() int { return len(fp.funHist) }

// FunHist returns a copy of the true objective values observed so
// far, in evaluation order.
func (fp *Featured) FunHist() []float64 { return clone(fp.funHist) }

// MaxCVHist returns a copy of the true maximum constraint violations
// observed so far, parallel to FunHist.
func (fp *Featured) MaxCVHist() []float64 { return clone(fp.maxcvHist) }

// X0 returns the starting point in the solver-visible frame.
func (fp *Featured) X0() []float64 { return clone(fp.x0) }

// XL returns the lower bounds in the solver-visible frame.
func (fp *Featured) XL() []float64 { return clone(fp.xl) }

// XU returns the upper bounds in the solver-visible frame.
func (fp *Featured) XU() []float64 { return clone(fp.xu) }

// AUb returns the linear inequality matrix in the solver-visible
// frame, or nil.
func (fp *Featured) AUb() *mat.Dense { return cloneDense(fp.aub) }

// BUb returns the linear inequality right-hand side.
func (fp *Featured) BUb() []float64 { return clone(fp.bub) }

// AEq returns the linear equality matrix in the solver-visible frame,
// or nil.
func (fp *Featured) AEq() *mat.Dense { return cloneDense(fp.aeq) }

// BEq returns the linear equality right-hand side.
func (fp *Featured) BEq() []float64 { return clone(fp.beq) }

// MNonlinearUb returns the nonlinear inequality count.
func (fp *Featured) MNonlinearUb() int { return fp.problem.MNonlinearUb }

// MNonlinearEq returns the nonlinear equality count.
func (fp *Featured) MNonlinearEq() int { return fp.problem.MNonlinearEq }

// Permutation returns a copy of the variable permutation, or nil if
// the feature does not permute.
func (fp *Featured) Permutation() []int {
	if fp.perm == nil {
		return nil
	}
	out := make([]int, len(fp.perm))
	copy(out, fp.perm)
	return out
}

// Fun evaluates the objective at the solver-visible point x. The true
// objective value and the true maximum constraint violation are
// appended to the histories exactly once per call; the returned value
// is the feature's perturbed view and is never stored. Once NEval
// reaches the budget, Fun returns a *BudgetError and leaves the
// histories untouched.
func (fp *Featured) Fun(x []float64) (float64, error) {
	if len(x) != fp.Dimension() {
		return 0, &ShapeError{"point", fp.Dimension(), len(x)}
	}
	if len(fp.funHist) >= fp.maxEval {
		return 0, &BudgetError{fp.maxEval}
	}

	xt := fp.trueP(x)
	f := fp.problem.Fun(xt)
	cv, parts, err := fp.problem.MaxCV(xt)
	if err != nil {
		return 0, err
	}
	fp.funHist = append(fp.funHist, f)
	fp.maxcvHist = append(fp.maxcvHist, cv)

	return fp.feature.Modify(x, f, fp.seed, parts.Bounds, parts.Linear, parts.Nonlinear)
}

// CUb evaluates the nonlinear inequality constraints at the
// solver-visible point x. It has no history side effect.
func (fp *Featured) CUb(x []float64) ([]float64, error) {
	return fp.nonlinear(x, fp.problem.CUb, fp.problem.MNonlinearUb, "nonlinear inequality value")
}

// CEq evaluates the nonlinear equality constraints at the
// solver-visible point x. It has no history side effect.
func (fp *Featured) CEq(x []float64) ([]float64, error) {
	return fp.nonlinear(x, fp.problem.CEq, fp.problem.MNonlinearEq, "nonlinear equality value")
}

func (fp *Featured) nonlinear(x []float64, eval func([]float64) []float64, m int, what string) ([]float64, error) {
	if len(x) != fp.Dimension() {
		return nil, &ShapeError{"point", fp.Dimension(), len(x)}
	}
	if eval == nil {
		return nil, nil
	}
	c := eval(fp.trueP(x))
	if m > 0 && len(c) != m {
		return nil, &ShapeError{what, m, len(c)}
	}
	return c, nil
}

// trueP maps a solver-visible point to the underlying problem's
// variable ordering and scaling.
func (fp *Featured) trueP(x []float64) []float64 {
	xt := make([]float64, len(x))
	switch {
	case fp.perm != nil:
		for j, pj := range fp.perm {
			xt[pj] = x[j]
		}
	case fp.scale != nil:
		for j, s := range fp.scale {
			xt[j] = s * x[j]
		}
	default:
		copy(xt, x)
	}
	return xt
}

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

func clone(v []float64) []float64 {
	if v == nil {
		return nil
	}
	out := make([]float64, len(v))
	copy(out, v)
	return out
}

// cloneOr copies v, or fills a fresh n-vector with def when v is nil.
func cloneOr(v []float64, n int, def float64) []float64 {
	out := make([]float64, n)
	if v == nil {
		for i := range out {
			out[i] = def
		}
		return out
	}
	copy(out, v)
	return out
}

func cloneDense(a *mat.Dense) *mat.Dense {
	if a == nil {
		return nil
	}
	return mat.DenseCopyOf(a)
}

// permute returns v reordered so out[j] = v[perm[j]].
func permute(v []float64, perm []int) []float64 {
	out := make([]float64, len(v))
	for j, pj := range perm {
		out[j] = v[pj]
	}
	return out
}

// permuteCols reorders the columns of a so column j holds the
// original column perm[j]. Right-hand sides are unaffected: only the
// variable ordering changes.
func permuteCols(a *mat.Dense, perm []int) *mat.Dense {
	if a == nil {
		return nil
	}
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	for j, pj := range perm {
		for i := 0; i < r; i++ {
			out.Set(i, j, a.At(i, pj))
		}
	}
	return out
}

// scaleCols multiplies column j of a by scale[j], matching the
// substitution of scaled variables into the linear constraints.
func scaleCols(a *mat.Dense, scale []float64) *mat.Dense {
	if a == nil {
		return nil
	}
	r, c := a.Dims()
	out := mat.NewDense(r, c, nil)
	for j, s := range scale {
		for i := 0; i < r; i++ {
			out.Set(i, j, a.At(i, j)*s)
		}
	}
	return out
}
