// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package runner drives a set of solvers over a suite of problems
// under a feature and reduces the recorded evaluation histories to
// profile inputs.
//
// For every (problem, solver, run) combination the runner builds a
// fresh problem.Featured, hands it to the solver adapter, and keeps
// the true histories it accumulated, padded to a shared evaluation
// budget. The resulting Result can produce work tensors and profile
// axes at any tolerance. Problem acquisition, solver construction,
// rendering, and persistence all stay with the caller.
package runner

import (
	"fmt"
	"log/slog"
	"math"
	"runtime"

	"github.com/sourcegraph/conc/pool"

	"github.com/optiprofile/optiprofile/feature"
	"github.com/optiprofile/optiprofile/problem"
	"github.com/optiprofile/optiprofile/profile"
)

// A Solver adapts one third-party solver to the benchmark. Solve
// drives the featured problem's Fun/CUb/CEq entry points from its
// starting point until it converges, gives up, or hits the evaluation
// budget. Solve errors and panics are contained per run: the run
// simply keeps whatever history it accumulated.
type Solver struct {
	Name  string
	Solve func(p *problem.Featured) error
}

// Options configures Run. The zero value selects the defaults noted
// on each field.
type Options struct {
	// MaxEvalFactor scales each problem's evaluation budget:
	// a problem of dimension n gets MaxEvalFactor·n evaluations.
	// 0 means 500.
	MaxEvalFactor int

	// Parallelism bounds how many problems are benchmarked
	// concurrently. 0 means GOMAXPROCS.
	Parallelism int

	// Logger receives progress logs. nil means slog.Default().
	Logger *slog.Logger
}

// DefaultTolerances returns the standard convergence tolerances
// 10⁻¹ … 10⁻¹⁰.
func DefaultTolerances() []float64 {
	tols := make([]float64, 10)
	for i := range tols {
		tols[i] = math.Pow(10, -float64(i+1))
	}
	return tols
}

// A Result holds the raw outcome of one benchmark: the true
// evaluation histories of every (problem, solver, run) combination,
// padded by their last value to a shared budget, and the merit data
// derived from them. Callers must treat the tensor fields as
// read-only.
type Result struct {
	// SolverNames are the labels of the benchmarked solvers, in
	// tensor order.
	SolverNames []string

	// Dimensions[i] is the dimension of problem i.
	Dimensions []int

	// NumRuns is the number of independent runs per combination,
	// taken from the feature.
	NumRuns int

	// MaxEval is the shared evaluation budget the histories are
	// padded to: MaxEvalFactor times the largest dimension.
	MaxEval int

	// Fun and MaxCV are the padded true histories, indexed by
	// [problem][solver][run][eval]. Entries past a run's recorded
	// history repeat its last value; runs with no history at all
	// are NaN throughout.
	Fun   [][][][]float64
	MaxCV [][][][]float64

	// Merit is the merit value of each history entry; MeritInit
	// and MeritMin are the per-problem merit at the initial point
	// and the least merit any solver reached.
	Merit     [][][][]float64
	MeritInit []float64
	MeritMin  []float64
}

// Run benchmarks solvers on problems under feat. It needs at least
// one problem and two solvers; problems are validated before any
// solver runs.
func Run(problems []problem.Problem, solvers []Solver, feat feature.Feature, opts Options) (*Result, error) {
	if len(problems) < 1 {
		return nil, fmt.Errorf("at least one problem is required")
	}
	if len(solvers) < 2 {
		return nil, fmt.Errorf("at least two solvers are required, got %d", len(solvers))
	}
	if feat == nil {
		return nil, fmt.Errorf("a feature is required")
	}
	for i, s := range solvers {
		if s.Solve == nil {
			return nil, fmt.Errorf("solver %d (%q) has no Solve function", i, s.Name)
		}
	}
	for i := range problems {
		if err := problems[i].Validate(); err != nil {
			return nil, fmt.Errorf("problem %d: %w", i, err)
		}
	}
	factor := opts.MaxEvalFactor
	if factor == 0 {
		factor = 500
	}
	if factor < 0 {
		return nil, fmt.Errorf("evaluation budget factor must be positive, got %d", factor)
	}
	parallelism := opts.Parallelism
	if parallelism <= 0 {
		parallelism = runtime.GOMAXPROCS(0)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	res := &Result{
		SolverNames: make([]string, len(solvers)),
		Dimensions:  make([]int, len(problems)),
		NumRuns:     feat.NumRuns(),
		Fun:         make([][][][]float64, len(problems)),
		MaxCV:       make([][][][]float64, len(problems)),
		MeritInit:   make([]float64, len(problems)),
	}
	for s, solver := range solvers {
		res.SolverNames[s] = solver.Name
	}
	maxDim := 0
	for i := range problems {
		res.Dimensions[i] = problems[i].Dimension()
		if res.Dimensions[i] > maxDim {
			maxDim = res.Dimensions[i]
		}
	}
	res.MaxEval = factor * maxDim

	logger.Info("starting benchmark", "feature", feat.Name(), "problems", len(problems), "solvers", len(solvers), "runs", res.NumRuns)
	workers := pool.New().WithMaxGoroutines(parallelism)
	for i := range problems {
		i := i
		workers.Go(func() {
			res.solveOne(i, &problems[i], solvers, feat, factor, logger)
		})
	}
	workers.Wait()

	res.Merit = profile.MeritValues(res.Fun, res.MaxCV)
	res.MeritMin = profile.MeritMin(res.Merit)
	return res, nil
}

// solveOne benchmarks every solver and run on problem i and fills the
// i-th slices of the result tensors. Goroutines for distinct problems
// touch disjoint indices.
func (res *Result) solveOne(i int, p *problem.Problem, solvers []Solver, feat feature.Feature, factor int, logger *slog.Logger) {
	fInit := p.Fun(p.X0)
	cvInit, _, err := p.MaxCV(p.X0)
	if err != nil {
		logger.Warn("initial point evaluation failed", "problem", i, "err", err)
		cvInit = math.NaN()
	}
	res.MeritInit[i] = profile.Merit(fInit, cvInit)

	budget := factor * p.Dimension()
	res.Fun[i] = make([][][]float64, len(solvers))
	res.MaxCV[i] = make([][][]float64, len(solvers))
	for s, solver := range solvers {
		res.Fun[i][s] = make([][]float64, res.NumRuns)
		res.MaxCV[i][s] = make([][]float64, res.NumRuns)
		for r := 0; r < res.NumRuns; r++ {
			logger.Info("solving", "problem", i, "solver", solver.Name, "run", r+1, "runs", res.NumRuns)
			fp, err := problem.NewFeatured(*p, feat, budget, r)
			if err != nil {
				// Construction arguments were validated up front,
				// so this is a problem definition issue.
				logger.Warn("featured problem construction failed", "problem", i, "err", err)
				res.Fun[i][s][r] = nanPad(nil, res.MaxEval)
				res.MaxCV[i][s][r] = nanPad(nil, res.MaxEval)
				continue
			}
			if err := runSolver(solver, fp); err != nil {
				logger.Debug("solver stopped with error", "problem", i, "solver", solver.Name, "run", r+1, "err", err)
			}
			res.Fun[i][s][r] = nanPad(fp.FunHist(), res.MaxEval)
			res.MaxCV[i][s][r] = nanPad(fp.MaxCVHist(), res.MaxEval)
		}
	}
}

// runSolver invokes the adapter, converting panics to errors so one
// crashing run cannot take down the benchmark.
func runSolver(solver Solver, fp *problem.Featured) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("solver %s panicked: %v", solver.Name, r)
		}
	}()
	return solver.Solve(fp)
}

// nanPad extends hist to length n, repeating the last recorded value,
// or NaN when there is no history at all.
func nanPad(hist []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, hist)
	pad := math.NaN()
	if len(hist) > 0 && len(hist) <= n {
		pad = hist[len(hist)-1]
	}
	for k := len(hist); k < n; k++ {
		out[k] = pad
	}
	return out
}
