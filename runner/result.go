// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runner

import (
	"fmt"
	"math"

	"github.com/optiprofile/optiprofile/feature"
	"github.com/optiprofile/optiprofile/profile"
	"github.com/optiprofile/optiprofile/profilemath"
)

// WorkTensor reduces the result's merit histories to a work tensor at
// one tolerance.
func (res *Result) WorkTensor(tol float64) (profile.Work, error) {
	return profile.WorkTensor(res.Merit, res.MeritInit, res.MeritMin, tol)
}

// Profiles computes the performance- and data-profile axes at one
// tolerance. For exactly two solvers it also returns the log-ratio
// bars; otherwise logRatio is nil.
func (res *Result) Profiles(tol float64) (perf, data profile.Axes, logRatio []float64, err error) {
	work, err := res.WorkTensor(tol)
	if err != nil {
		return profile.Axes{}, profile.Axes{}, nil, err
	}
	perf, err = profile.Performance(work)
	if err != nil {
		return profile.Axes{}, profile.Axes{}, nil, err
	}
	data, err = profile.Data(work, res.Dimensions)
	if err != nil {
		return profile.Axes{}, profile.Axes{}, nil, err
	}
	if len(res.SolverNames) == 2 {
		logRatio, _, err = profile.LogRatio(work)
		if err != nil {
			return profile.Axes{}, profile.Axes{}, nil, err
		}
	}
	return perf, data, logRatio, nil
}

// PlainBaseline reports whether profiles of feat should refine the
// per-problem least merit with a plain re-run: features that perturb
// observed objective values can hide the true optimum from every
// solver, which would make the convergence thresholds too loose.
func PlainBaseline(feat feature.Feature) bool {
	switch feat.(type) {
	case *feature.Noisy, *feature.Tough, *feature.Truncated, *feature.RandomNaN:
		return true
	}
	return false
}

// MergeMin lowers the result's per-problem least merit values using a
// second benchmark of the same problems, typically a plain baseline
// run (see PlainBaseline).
func (res *Result) MergeMin(baseline *Result) error {
	if len(baseline.MeritMin) != len(res.MeritMin) {
		return fmt.Errorf("baseline covers %d problems, want %d", len(baseline.MeritMin), len(res.MeritMin))
	}
	for i, m := range baseline.MeritMin {
		res.MeritMin[i] = math.Min(res.MeritMin[i], m)
	}
	return nil
}

// WorkSample collects solver s's finite work values at tolerance tol
// across all problems and runs into a profilemath sample.
func (res *Result) WorkSample(tol float64, s int, t *profilemath.Thresholds) (*profilemath.Sample, error) {
	if s < 0 || s >= len(res.SolverNames) {
		return nil, fmt.Errorf("no solver %d in a %d-solver result", s, len(res.SolverNames))
	}
	work, err := res.WorkTensor(tol)
	if err != nil {
		return nil, err
	}
	var values []float64
	for i := range work {
		values = append(values, work[i][s]...)
	}
	return profilemath.NewSample(values, t)
}

// CompareWork tests whether solvers s1 and s2 needed statistically
// distinguishable effort at tolerance tol, under the given
// distributional assumption.
func (res *Result) CompareWork(tol float64, s1, s2 int, a profilemath.Assumption) (profilemath.Comparison, error) {
	t := profilemath.DefaultThresholds
	x1, err := res.WorkSample(tol, s1, &t)
	if err != nil {
		return profilemath.Comparison{}, fmt.Errorf("solver %d: %w", s1, err)
	}
	x2, err := res.WorkSample(tol, s2, &t)
	if err != nil {
		return profilemath.Comparison{}, fmt.Errorf("solver %d: %w", s2, err)
	}
	return a.Compare(x1, x2), nil
}
