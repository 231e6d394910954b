// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profile

import (
	"fmt"
	"math"
	"sort"
)

// LogRatio computes the log-ratio profile of a two-solver work
// tensor: for each (problem, run) pair, log2 of the first solver's
// effort over the second's, sorted ascending. Positive bars favor the
// second solver.
//
// Pairs where only one solver converged are assigned ±2·ratioMax so
// they sit beyond every measured ratio; pairs where neither converged
// are 0. ratioMax is the largest absolute finite log-ratio, at least
// epsilon.
func LogRatio(work Work) (bars []float64, ratioMax float64, err error) {
	if err := work.validate(); err != nil {
		return nil, 0, err
	}
	nProblems, nSolvers, nRuns := work.Dims()
	if nSolvers != 2 {
		return nil, 0, fmt.Errorf("log-ratio profiles need exactly 2 solvers, got %d", nSolvers)
	}

	bars = make([]float64, 0, nProblems*nRuns)
	ratioMax = epsilon
	for i := 0; i < nProblems; i++ {
		for r := 0; r < nRuns; r++ {
			w0, w1 := work[i][0][r], work[i][1][r]
			if isFinite(w0) && isFinite(w1) {
				v := math.Log2(w0 / w1)
				if a := math.Abs(v); a > ratioMax {
					ratioMax = a
				}
				bars = append(bars, v)
			} else {
				bars = append(bars, math.NaN())
			}
		}
	}

	idx := 0
	for i := 0; i < nProblems; i++ {
		for r := 0; r < nRuns; r++ {
			if !math.IsNaN(bars[idx]) {
				idx++
				continue
			}
			w0, w1 := work[i][0][r], work[i][1][r]
			switch {
			case isFinite(w1):
				bars[idx] = 2 * ratioMax
			case isFinite(w0):
				bars[idx] = -2 * ratioMax
			default:
				bars[idx] = 0
			}
			idx++
		}
	}
	sort.Float64s(bars)
	return bars, ratioMax, nil
}
