// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package feature describes reproducible perturbations of how a
// solver observes an optimization problem.
//
// A Feature is an immutable descriptor: a kind (noisy objective,
// truncated digits, permuted variables, ...) plus the typed options
// of that kind, validated once at construction. Applying a feature to
// evaluations is a pure function of the descriptor, a seed, and the
// evaluation context, so independent benchmark runs diverge only
// through an explicit seed.
//
// Features that perturb the objective value implement the
// transformation in Modify. Features that instead transform the
// variable space (PermutedVariables, RandomizedScaling) or the
// starting point (PerturbedX0) leave Modify as the identity; the
// transformation itself is applied by problem.NewFeatured, which
// draws it from the feature's DefaultRNG.
package feature

import (
	"fmt"

	"golang.org/x/exp/rand"

	"github.com/optiprofile/optiprofile/randstream"
)

// A Feature is a named, reproducible transformation of how a solver
// observes a problem.
type Feature interface {
	// Name returns the feature's name, e.g. "noisy".
	Name() string

	// NumRuns returns how many independent runs a benchmark of
	// this feature should average over. Deterministic features
	// default to 1, randomized ones to 10.
	NumRuns() int

	// DefaultRNG returns a generator whose state is a pure
	// function of the feature name, seed, and ctx. The context is
	// typically the coordinates of the point being evaluated, or
	// empty for transformations drawn once per problem.
	DefaultRNG(seed uint64, ctx ...float64) *rand.Rand

	// Modify returns the objective value the solver observes for
	// the true value f at x. The cv arguments carry the decomposed
	// true maximum constraint violation at x (bound, linear, and
	// nonlinear contributions) for feasibility-aware modifiers.
	// Modify never mutates x.
	Modify(x []float64, f float64, seed uint64, cvBounds, cvLinear, cvNonlinear float64) (float64, error)
}

// A ConfigError reports an invalid option at feature construction.
type ConfigError struct {
	Feature string
	Msg     string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("feature %s: %s", e.Feature, e.Msg)
}

// base carries the fields common to every variant.
type base struct {
	name string
	runs int
}

func (b base) Name() string { return b.name }

func (b base) NumRuns() int { return b.runs }

func (b base) DefaultRNG(seed uint64, ctx ...float64) *rand.Rand {
	args := make([]float64, 0, 1+len(ctx))
	args = append(args, ordSum(b.name))
	args = append(args, ctx...)
	return randstream.New(seed, args...)
}

// checkRuns validates a run count, substituting def for the zero
// value.
func checkRuns(name string, runs, def int) (int, error) {
	if runs == 0 {
		return def, nil
	}
	if runs < 0 {
		return 0, &ConfigError{name, fmt.Sprintf("run count must be positive, got %d", runs)}
	}
	return runs, nil
}

// ordSum folds a string into a float so it can enter an RNG context.
func ordSum(s string) float64 {
	var sum float64
	for _, r := range s {
		sum += float64(r)
	}
	return sum
}

// rngContext prepends the fixed arguments to the coordinates of x.
func rngContext(fixed []float64, x []float64) []float64 {
	ctx := make([]float64, 0, len(fixed)+len(x))
	ctx = append(ctx, fixed...)
	ctx = append(ctx, x...)
	return ctx
}
