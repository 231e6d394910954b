// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profile

import (
	"fmt"
	"math"
)

// Feasibility thresholds of the merit function: points with maximum
// constraint violation past infeasibleCV get no credit at all, points
// between the two thresholds are penalized.
const (
	feasibleCV   = 1e-12
	infeasibleCV = 1e-6
	cvPenalty    = 1e8
)

// Merit combines an objective value and a maximum constraint
// violation into the single value used for convergence scoring.
// Infeasible or NaN evaluations score +Inf.
func Merit(f, maxcv float64) float64 {
	if maxcv >= infeasibleCV {
		return math.Inf(1)
	}
	if math.IsNaN(f) {
		return math.Inf(1)
	}
	if maxcv > feasibleCV {
		return f + cvPenalty*maxcv
	}
	return f
}

// MeritValues applies Merit elementwise to parallel
// [problem][solver][run][eval] histories.
func MeritValues(fun, maxcv [][][][]float64) [][][][]float64 {
	out := make([][][][]float64, len(fun))
	for i := range fun {
		out[i] = make([][][]float64, len(fun[i]))
		for s := range fun[i] {
			out[i][s] = make([][]float64, len(fun[i][s]))
			for r := range fun[i][s] {
				row := make([]float64, len(fun[i][s][r]))
				for k, f := range fun[i][s][r] {
					row[k] = Merit(f, maxcv[i][s][r][k])
				}
				out[i][s][r] = row
			}
		}
	}
	return out
}

// MeritMin returns, per problem, the least merit value reached by any
// solver in any run.
func MeritMin(merit [][][][]float64) []float64 {
	out := make([]float64, len(merit))
	for i := range merit {
		min := math.Inf(1)
		for _, runs := range merit[i] {
			for _, hist := range runs {
				for _, m := range hist {
					if m < min {
						min = m
					}
				}
			}
		}
		out[i] = min
	}
	return out
}

// WorkTensor reduces merit histories to a Work tensor at one
// tolerance. A run's work is the first evaluation count at which its
// merit dropped to
//
//	max(tol·meritInit + (1−tol)·meritMin, meritMin),
//
// and NaN if it never did. Problems whose least merit is not finite
// get an unreachable threshold, so every run on them counts as
// unsolved while still entering the profile denominators.
func WorkTensor(merit [][][][]float64, meritInit, meritMin []float64, tol float64) (Work, error) {
	if tol <= 0 || tol >= 1 || math.IsNaN(tol) {
		return nil, fmt.Errorf("tolerance must be in (0, 1), got %v", tol)
	}
	if len(meritInit) != len(merit) || len(meritMin) != len(merit) {
		return nil, fmt.Errorf("got %d initial and %d least merit values for %d problems", len(meritInit), len(meritMin), len(merit))
	}

	work := make(Work, len(merit))
	for i := range merit {
		threshold := math.Inf(-1)
		if isFinite(meritMin[i]) {
			threshold = math.Max(tol*meritInit[i]+(1-tol)*meritMin[i], meritMin[i])
		}
		work[i] = make([][]float64, len(merit[i]))
		for s := range merit[i] {
			work[i][s] = make([]float64, len(merit[i][s]))
			for r, hist := range merit[i][s] {
				work[i][s][r] = math.NaN()
				for k, m := range hist {
					if m <= threshold {
						work[i][s][r] = float64(k + 1)
						break
					}
				}
			}
		}
	}
	return work, nil
}
