// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package profile reduces raw solver effort measurements to the
// standardized comparison curves of derivative-free optimization
// benchmarking: performance profiles, data profiles, and log-ratio
// profiles.
//
// The input is a Work tensor giving, for each (problem, solver, run),
// the effort the solver needed to reach the target accuracy on that
// problem, with a non-finite value when it never did. Performance and
// Data turn the tensor into piecewise-constant cumulative curves with
// explicit boundary points, ready for a rendering layer to draw;
// MeritValues and WorkTensor derive the tensor from recorded
// evaluation histories.
package profile

import (
	"fmt"
	"math"
	"sort"
)

// epsilon is the spacing between 1 and the next float64, the floor
// used for ratio maxima so log transforms stay finite.
const epsilon = 0x1p-52

// A Work tensor holds effort measurements indexed by
// [problem][solver][run]. Non-finite entries mark runs that never
// reached the target accuracy.
type Work [][][]float64

// Dims returns the (problems, solvers, runs) extents.
func (w Work) Dims() (nProblems, nSolvers, nRuns int) {
	nProblems = len(w)
	if nProblems > 0 {
		nSolvers = len(w[0])
		if nSolvers > 0 {
			nRuns = len(w[0][0])
		}
	}
	return
}

func (w Work) validate() error {
	nProblems, nSolvers, nRuns := w.Dims()
	if nProblems == 0 || nSolvers == 0 || nRuns == 0 {
		return fmt.Errorf("empty work tensor")
	}
	for i, ws := range w {
		if len(ws) != nSolvers {
			return fmt.Errorf("work tensor is ragged: problem %d has %d solvers, want %d", i, len(ws), nSolvers)
		}
		for s, wr := range ws {
			if len(wr) != nRuns {
				return fmt.Errorf("work tensor is ragged: problem %d solver %d has %d runs, want %d", i, s, len(wr), nRuns)
			}
		}
	}
	return nil
}

// Axes are the computed coordinates of one profile type.
//
// X[k][s] is the k-th abscissa of solver s's curve, nondecreasing in
// k and already log2-transformed. Y[k][s][r] is the cumulative solved
// fraction of solver s in run r at X[k][s], nondecreasing in k,
// within [0, 1], and 0 at k = 0. RatioMax is the transform of the
// largest finite ratio; the extended right edge of every curve sits
// at 1.1·RatioMax.
type Axes struct {
	X        [][]float64
	Y        [][][]float64
	RatioMax float64
}

// Performance computes performance-profile axes: each solver's effort
// on a (problem, run) pair is divided by the best effort among all
// solvers on that pair, and the curve of solver s is the cumulative
// fraction of pairs with ratio at most x. The returned abscissas are
// log2(ratio).
func Performance(work Work) (Axes, error) {
	if err := work.validate(); err != nil {
		return Axes{}, err
	}
	nProblems, _, _ := work.Dims()
	x, y, ratioMax := stepAxes(work, func(i, r int) float64 {
		best := math.Inf(1)
		for _, runs := range work[i] {
			if v := runs[r]; isFinite(v) && v < best {
				best = v
			}
		}
		return best
	})

	// Finite ratios are at least 1, so a ratioMax below 1 means
	// nothing was solved at all; clamp it so the edge still sits at
	// or past the leading point.
	if ratioMax < 1 {
		ratioMax = 1
	}
	// Unsolved pairs sit just past the worst finite ratio, and the
	// curves share a right edge there when several problems are
	// displayed together.
	edge := math.Pow(ratioMax, 1.1)
	replaceInf(x, edge)
	x, y = prepend(x, y, 1)
	if nProblems > 1 {
		x, y = appendEdge(x, y, edge)
	}
	logTransform(x, func(v float64) float64 { return math.Log2(v) })
	return Axes{x, y, math.Log2(ratioMax)}, nil
}

// Data computes data-profile axes: each solver's effort on problem i
// is divided by dims[i]+1 (the cost of one simplex gradient), and the
// curve is the cumulative fraction of (problem, run) pairs solved
// within that many simplex gradients. The returned abscissas are
// log2(1+x), which stays finite at x = 0.
func Data(work Work, dims []int) (Axes, error) {
	if err := work.validate(); err != nil {
		return Axes{}, err
	}
	nProblems, _, _ := work.Dims()
	if len(dims) != nProblems {
		return Axes{}, fmt.Errorf("got %d problem dimensions for %d problems", len(dims), nProblems)
	}
	x, y, ratioMax := stepAxes(work, func(i, r int) float64 {
		return float64(dims[i] + 1)
	})

	replaceInf(x, 1.1*ratioMax)
	x, y = prepend(x, y, 0)
	if nProblems > 1 {
		x, y = appendEdge(x, y, math.Pow(1+ratioMax, 1.1)-1)
	}
	logTransform(x, func(v float64) float64 { return math.Log2(1 + v) })
	return Axes{x, y, math.Log2(1 + ratioMax)}, nil
}

// stepAxes builds the shared step-function skeleton: per-solver
// sorted ratio columns and cumulative solved fractions. The
// denominator normalizes work[i][·][r]; ratios of unsolved entries
// are +Inf. ratioMax is the largest finite ratio, at least epsilon.
//
// Pairs unsolved by every solver still count toward the fraction
// denominator, so universally failed problems show zero credit
// instead of shrinking the denominator.
func stepAxes(work Work, denominator func(i, r int) float64) (x [][]float64, y [][][]float64, ratioMax float64) {
	nProblems, nSolvers, nRuns := work.Dims()
	nPoints := nProblems * nRuns
	ratioMax = epsilon

	// Ratios sorted across problems within each run, flattened so
	// row r*nProblems+k is the k-th smallest ratio of run r.
	flat := make([][]float64, nPoints)
	for row := range flat {
		flat[row] = make([]float64, nSolvers)
	}
	for s := 0; s < nSolvers; s++ {
		for r := 0; r < nRuns; r++ {
			col := make([]float64, nProblems)
			for i := 0; i < nProblems; i++ {
				v := work[i][s][r]
				if !isFinite(v) {
					col[i] = math.Inf(1)
					continue
				}
				ratio := v / denominator(i, r)
				if isFinite(ratio) && ratio > ratioMax {
					ratioMax = ratio
				}
				col[i] = ratio
			}
			sort.Float64s(col)
			for k, v := range col {
				flat[r*nProblems+k][s] = v
			}
		}
	}

	// Merge the runs of each solver into one nondecreasing column,
	// remembering where each row came from so the cumulative
	// fractions follow their ratios.
	x = make([][]float64, nPoints)
	y = make([][][]float64, nPoints)
	for row := range x {
		x[row] = make([]float64, nSolvers)
		y[row] = make([][]float64, nSolvers)
		for s := range y[row] {
			y[row][s] = make([]float64, nRuns)
		}
	}
	for s := 0; s < nSolvers; s++ {
		order := make([]int, nPoints)
		for m := range order {
			order[m] = m
		}
		sort.SliceStable(order, func(a, b int) bool {
			return flat[order[a]][s] < flat[order[b]][s]
		})
		for m, src := range order {
			x[m][s] = flat[src][s]
		}
		for r := 0; r < nRuns; r++ {
			// Row r*nProblems+k carries the (k+1)-th solved
			// fraction of run r; rows of other runs, and rows of
			// unsolved pairs, inherit the previous value so a
			// solver's curve never credits a pair it failed.
			frac := make([]float64, nPoints)
			for m := range frac {
				frac[m] = math.NaN()
			}
			for k := 0; k < nProblems; k++ {
				if isFinite(flat[r*nProblems+k][s]) {
					frac[r*nProblems+k] = float64(k+1) / float64(nProblems)
				}
			}
			prev := 0.0
			for m, src := range order {
				v := frac[src]
				if math.IsNaN(v) {
					v = prev
				}
				prev = v
				y[m][s][r] = v
			}
		}
	}
	return x, y, ratioMax
}

// replaceInf substitutes edge for every infinite abscissa.
func replaceInf(x [][]float64, edge float64) {
	for _, row := range x {
		for s, v := range row {
			if math.IsInf(v, 1) {
				row[s] = edge
			}
		}
	}
}

// prepend adds the synthetic first point (x0, 0): no solver has any
// credit at the best-possible ratio.
func prepend(x [][]float64, y [][][]float64, x0 float64) ([][]float64, [][][]float64) {
	nSolvers := len(x[0])
	nRuns := len(y[0][0])
	xRow := make([]float64, nSolvers)
	yRow := make([][]float64, nSolvers)
	for s := range yRow {
		xRow[s] = x0
		yRow[s] = make([]float64, nRuns)
	}
	return append([][]float64{xRow}, x...), append([][][]float64{yRow}, y...)
}

// appendEdge repeats the final solved fractions at the extended right
// boundary so all curves share a right edge.
func appendEdge(x [][]float64, y [][][]float64, edge float64) ([][]float64, [][][]float64) {
	nSolvers := len(x[0])
	last := y[len(y)-1]
	xRow := make([]float64, nSolvers)
	yRow := make([][]float64, nSolvers)
	for s := range yRow {
		xRow[s] = edge
		yRow[s] = append([]float64(nil), last[s]...)
	}
	return append(x, xRow), append(y, yRow)
}

func logTransform(x [][]float64, f func(float64) float64) {
	for _, row := range x {
		for s, v := range row {
			row[s] = f(v)
		}
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
