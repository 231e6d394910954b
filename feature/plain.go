// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Plain applies no perturbation. It is the baseline every other
// feature is compared against.
type Plain struct {
	base
}

// NewPlain returns the plain feature. runs is the run count, or 0 for
// the default of 1.
func NewPlain(runs int) (*Plain, error) {
	r, err := checkRuns("plain", runs, 1)
	if err != nil {
		return nil, err
	}
	return &Plain{base{"plain", r}}, nil
}

func (p *Plain) Modify(x []float64, f float64, seed uint64, cvBounds, cvLinear, cvNonlinear float64) (float64, error) {
	return f, nil
}

// A Modifier computes the observed objective value for the custom
// feature. It must be a pure function of its arguments.
type Modifier func(x []float64, f float64, seed uint64) float64

// Custom applies a caller-supplied modifier to every observed
// objective value.
type Custom struct {
	base
	modifier Modifier
}

// NewCustom returns a custom feature applying modifier. runs is the
// run count, or 0 for the default of 1.
func NewCustom(modifier Modifier, runs int) (*Custom, error) {
	if modifier == nil {
		return nil, &ConfigError{"custom", "a modifier is required"}
	}
	r, err := checkRuns("custom", runs, 1)
	if err != nil {
		return nil, err
	}
	return &Custom{base{"custom", r}, modifier}, nil
}

func (c *Custom) Modify(x []float64, f float64, seed uint64, cvBounds, cvLinear, cvNonlinear float64) (float64, error) {
	return c.modifier(x, f, seed), nil
}

// Regularized adds a norm penalty to the observed objective value, so
// solvers chase a regularized version of the true problem.
type Regularized struct {
	base
	order     float64
	parameter float64
}

// NewRegularized returns a regularized feature observing
// f + parameter·‖x‖_order. A zero order or parameter selects the
// defaults 2 and 1. runs is the run count, or 0 for the default of 1.
func NewRegularized(order, parameter float64, runs int) (*Regularized, error) {
	if order == 0 {
		order = 2
	}
	if parameter == 0 {
		parameter = 1
	}
	if order < 1 && !math.IsInf(order, 1) {
		return nil, &ConfigError{"regularized", "order must be at least 1"}
	}
	if parameter < 0 || math.IsNaN(parameter) {
		return nil, &ConfigError{"regularized", "parameter must be nonnegative"}
	}
	r, err := checkRuns("regularized", runs, 1)
	if err != nil {
		return nil, err
	}
	return &Regularized{base{"regularized", r}, order, parameter}, nil
}

func (g *Regularized) Modify(x []float64, f float64, seed uint64, cvBounds, cvLinear, cvNonlinear float64) (float64, error) {
	return f + g.parameter*floats.Norm(x, g.order), nil
}
