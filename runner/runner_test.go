// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package runner

import (
	"io"
	"log/slog"
	"math"
	"testing"

	"github.com/optiprofile/optiprofile/feature"
	"github.com/optiprofile/optiprofile/problem"
	"github.com/optiprofile/optiprofile/profilemath"
)

func plainFeature(t *testing.T) *feature.Plain {
	t.Helper()
	f, err := feature.NewPlain(0)
	if err != nil {
		t.Fatal(err)
	}
	return f
}

func sumSquares(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v * v
	}
	return s
}

func quadratic(x0 ...float64) problem.Problem {
	return problem.Problem{Fun: sumSquares, X0: x0}
}

// descentSolver walks from the starting point straight to the origin
// in a fixed number of steps, evaluating once per step. More steps
// mean more effort for the same final accuracy.
func descentSolver(name string, steps int) Solver {
	return Solver{
		Name: name,
		Solve: func(fp *problem.Featured) error {
			x0 := fp.X0()
			x := make([]float64, len(x0))
			for t := 0; t <= steps; t++ {
				a := 1 - float64(t)/float64(steps)
				for j := range x {
					x[j] = a * x0[j]
				}
				if _, err := fp.Fun(x); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func quietOptions() Options {
	return Options{
		MaxEvalFactor: 10,
		Logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func TestRunShapes(t *testing.T) {
	problems := []problem.Problem{
		quadratic(2, -3),
		quadratic(1, 1, 1),
	}
	solvers := []Solver{descentSolver("fast", 3), descentSolver("slow", 9)}
	res, err := Run(problems, solvers, plainFeature(t), quietOptions())
	if err != nil {
		t.Fatal(err)
	}

	if res.SolverNames[0] != "fast" || res.SolverNames[1] != "slow" {
		t.Errorf("SolverNames = %v", res.SolverNames)
	}
	if res.Dimensions[0] != 2 || res.Dimensions[1] != 3 {
		t.Errorf("Dimensions = %v, want [2 3]", res.Dimensions)
	}
	if res.NumRuns != 1 {
		t.Errorf("NumRuns = %d, want 1", res.NumRuns)
	}
	if res.MaxEval != 30 {
		t.Errorf("MaxEval = %d, want 30", res.MaxEval)
	}

	for i := range problems {
		for s := range solvers {
			hist := res.Fun[i][s][0]
			if len(hist) != res.MaxEval {
				t.Fatalf("problem %d solver %d: history length %d, want %d", i, s, len(hist), res.MaxEval)
			}
			if len(res.MaxCV[i][s][0]) != res.MaxEval {
				t.Fatalf("problem %d solver %d: maxcv length %d, want %d", i, s, len(res.MaxCV[i][s][0]), res.MaxEval)
			}
			// Both solvers finish at the origin and the padding
			// repeats that final value to the shared budget.
			if hist[res.MaxEval-1] != 0 {
				t.Errorf("problem %d solver %d: padded tail = %v, want 0", i, s, hist[res.MaxEval-1])
			}
			if hist[0] != sumSquares(problems[i].X0) {
				t.Errorf("problem %d solver %d: first value = %v, want %v", i, s, hist[0], sumSquares(problems[i].X0))
			}
		}
		if res.MeritInit[i] != sumSquares(problems[i].X0) {
			t.Errorf("MeritInit[%d] = %v", i, res.MeritInit[i])
		}
		if res.MeritMin[i] != 0 {
			t.Errorf("MeritMin[%d] = %v, want 0", i, res.MeritMin[i])
		}
	}
}

func TestRunValidation(t *testing.T) {
	problems := []problem.Problem{quadratic(1, 2)}
	solvers := []Solver{descentSolver("a", 3), descentSolver("b", 5)}
	feat := plainFeature(t)

	if _, err := Run(nil, solvers, feat, quietOptions()); err == nil {
		t.Error("no problems: no error")
	}
	if _, err := Run(problems, solvers[:1], feat, quietOptions()); err == nil {
		t.Error("one solver: no error")
	}
	if _, err := Run(problems, solvers, nil, quietOptions()); err == nil {
		t.Error("nil feature: no error")
	}
	if _, err := Run(problems, []Solver{{Name: "a"}, solvers[1]}, feat, quietOptions()); err == nil {
		t.Error("nil Solve: no error")
	}
	opts := quietOptions()
	opts.MaxEvalFactor = -1
	if _, err := Run(problems, solvers, feat, opts); err == nil {
		t.Error("negative budget factor: no error")
	}
	bad := []problem.Problem{{Fun: sumSquares}}
	if _, err := Run(bad, solvers, feat, quietOptions()); err == nil {
		t.Error("invalid problem: no error")
	}
}

func TestRunContainsPanics(t *testing.T) {
	problems := []problem.Problem{quadratic(2, -3)}
	solvers := []Solver{
		descentSolver("ok", 3),
		{Name: "crash", Solve: func(fp *problem.Featured) error { panic("boom") }},
	}
	res, err := Run(problems, solvers, plainFeature(t), quietOptions())
	if err != nil {
		t.Fatal(err)
	}
	// The crashing solver recorded nothing, so its history is NaN
	// throughout; the healthy solver is unaffected.
	for k, v := range res.Fun[0][1][0] {
		if !math.IsNaN(v) {
			t.Fatalf("crashed solver has value %v at eval %d", v, k)
		}
	}
	if res.Fun[0][0][0][0] != sumSquares(problems[0].X0) {
		t.Errorf("healthy solver history corrupted: %v", res.Fun[0][0][0][0])
	}
}

func TestWorkTensorOrdersSolvers(t *testing.T) {
	problems := []problem.Problem{
		quadratic(2, -3),
		quadratic(1, 1, 1),
		quadratic(-4, 0.5),
	}
	solvers := []Solver{descentSolver("fast", 3), descentSolver("slow", 9)}
	res, err := Run(problems, solvers, plainFeature(t), quietOptions())
	if err != nil {
		t.Fatal(err)
	}

	work, err := res.WorkTensor(1e-3)
	if err != nil {
		t.Fatal(err)
	}
	for i := range problems {
		fast, slow := work[i][0][0], work[i][1][0]
		if math.IsNaN(fast) || math.IsNaN(slow) {
			t.Fatalf("problem %d: unsolved work %v, %v", i, fast, slow)
		}
		if fast >= slow {
			t.Errorf("problem %d: fast solver used %v evaluations, slow used %v", i, fast, slow)
		}
	}

	if _, err := res.WorkTensor(0); err == nil {
		t.Error("tolerance 0: no error")
	}
}

func TestProfiles(t *testing.T) {
	problems := []problem.Problem{
		quadratic(2, -3),
		quadratic(1, 1, 1),
	}
	solvers := []Solver{descentSolver("fast", 3), descentSolver("slow", 9)}
	res, err := Run(problems, solvers, plainFeature(t), quietOptions())
	if err != nil {
		t.Fatal(err)
	}

	perf, data, logRatio, err := res.Profiles(1e-3)
	if err != nil {
		t.Fatal(err)
	}
	if len(perf.X) == 0 || len(data.X) == 0 {
		t.Fatal("empty profile axes")
	}
	if len(perf.X[0]) != 2 || len(data.X[0]) != 2 {
		t.Errorf("profile solver counts = %d, %d, want 2", len(perf.X[0]), len(data.X[0]))
	}
	// Two solvers, so log-ratio bars exist: one per (problem, run).
	if len(logRatio) != len(problems)*res.NumRuns {
		t.Errorf("got %d log-ratio bars, want %d", len(logRatio), len(problems)*res.NumRuns)
	}
	// The fast solver wins every pair, so every bar is negative.
	for k, v := range logRatio {
		if v >= 0 {
			t.Errorf("bar %d = %v, want < 0", k, v)
		}
	}
	// The fast solver's curve reaches full credit first: at its
	// final point every pair is solved.
	if got := perf.Y[len(perf.Y)-1][0][0]; got != 1 {
		t.Errorf("fast solver final fraction = %v, want 1", got)
	}
}

func TestPlainBaseline(t *testing.T) {
	noisy, err := feature.NewNoisy(feature.NoisyOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !PlainBaseline(noisy) {
		t.Error("noisy feature should request a plain baseline")
	}
	if PlainBaseline(plainFeature(t)) {
		t.Error("plain feature should not request a baseline")
	}
	perm, err := feature.NewPermutedVariables(0)
	if err != nil {
		t.Fatal(err)
	}
	if PlainBaseline(perm) {
		t.Error("permutation preserves observed values, no baseline needed")
	}
}

func TestMergeMin(t *testing.T) {
	problems := []problem.Problem{quadratic(2, -3), quadratic(1, 1)}
	solvers := []Solver{descentSolver("fast", 3), descentSolver("slow", 9)}
	res, err := Run(problems, solvers, plainFeature(t), quietOptions())
	if err != nil {
		t.Fatal(err)
	}

	baseline := &Result{MeritMin: []float64{-5, math.Inf(1)}}
	if err := res.MergeMin(baseline); err != nil {
		t.Fatal(err)
	}
	if res.MeritMin[0] != -5 {
		t.Errorf("MeritMin[0] = %v, want -5", res.MeritMin[0])
	}
	if res.MeritMin[1] != 0 {
		t.Errorf("MeritMin[1] = %v, want 0", res.MeritMin[1])
	}

	if err := res.MergeMin(&Result{MeritMin: []float64{1}}); err == nil {
		t.Error("mismatched baseline: no error")
	}
}

func TestCompareWork(t *testing.T) {
	problems := []problem.Problem{
		quadratic(2, -3),
		quadratic(1, 1, 1),
		quadratic(-4, 0.5),
		quadratic(3, 3),
	}
	solvers := []Solver{descentSolver("fast", 3), descentSolver("slow", 9)}
	res, err := Run(problems, solvers, plainFeature(t), quietOptions())
	if err != nil {
		t.Fatal(err)
	}

	c, err := res.CompareWork(1e-3, 0, 1, profilemath.AssumeNothing)
	if err != nil {
		t.Fatal(err)
	}
	if c.N1 != len(problems) || c.N2 != len(problems) {
		t.Errorf("sample sizes %d, %d, want %d", c.N1, c.N2, len(problems))
	}
	if c.Alpha != 0.05 {
		t.Errorf("Alpha = %v, want 0.05", c.Alpha)
	}

	if _, err := res.CompareWork(1e-3, 0, 5, profilemath.AssumeNothing); err == nil {
		t.Error("out-of-range solver: no error")
	}
}
