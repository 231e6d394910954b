// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import (
	"fmt"
	"math"
)

// PermutedVariables reorders the variables the solver sees. The
// permutation is drawn once per (problem, seed) from DefaultRNG with
// an empty context and applied consistently to the starting point,
// bounds, and linear-constraint columns by problem.NewFeatured.
// Observed objective values are unchanged.
type PermutedVariables struct {
	base
}

// NewPermutedVariables returns a permuted-variables feature. runs is
// the run count, or 0 for the default of 10.
func NewPermutedVariables(runs int) (*PermutedVariables, error) {
	r, err := checkRuns("permuted", runs, 10)
	if err != nil {
		return nil, err
	}
	return &PermutedVariables{base{"permuted", r}}, nil
}

func (p *PermutedVariables) Modify(x []float64, f float64, seed uint64, cvBounds, cvLinear, cvNonlinear float64) (float64, error) {
	return f, nil
}

// Draw returns a uniform permutation of {0..n-1} for seed.
func (p *PermutedVariables) Draw(seed uint64, n int) []int {
	return p.DefaultRNG(seed).Perm(n)
}

// PerturbedX0 offsets the starting point the solver sees by a seeded
// draw. The RNG context is x0's own coordinates, so the perturbation
// is reproducible per starting point rather than per call index.
type PerturbedX0 struct {
	base
	dist VectorDistribution
}

// PerturbedX0Options configures NewPerturbedX0. The zero value
// selects independent N(0, 1e-3²) offsets over 10 runs.
type PerturbedX0Options struct {
	Distribution VectorDistribution // nil for NormalVector(1e-3)
	Runs         int                // 0 for 10
}

// NewPerturbedX0 returns a perturbed-starting-point feature.
func NewPerturbedX0(o PerturbedX0Options) (*PerturbedX0, error) {
	if o.Distribution == nil {
		o.Distribution = NormalVector(1e-3)
	}
	r, err := checkRuns("perturbed_x0", o.Runs, 10)
	if err != nil {
		return nil, err
	}
	return &PerturbedX0{base{"perturbed_x0", r}, o.Distribution}, nil
}

func (p *PerturbedX0) Modify(x []float64, f float64, seed uint64, cvBounds, cvLinear, cvNonlinear float64) (float64, error) {
	return f, nil
}

// Draw returns the offset to add to the starting point x0 for seed.
func (p *PerturbedX0) Draw(seed uint64, x0 []float64) []float64 {
	return p.dist(p.DefaultRNG(seed, x0...), len(x0))
}

// RandomizedScaling rescales each variable the solver sees by a
// seeded power of two, so solvers face a badly scaled view of the
// same problem. The scaling is drawn once per (problem, seed) and
// applied consistently to the starting point, bounds, and
// linear-constraint columns by problem.NewFeatured. Observed
// objective values are unchanged.
type RandomizedScaling struct {
	base
	parameter float64
}

// NewRandomizedScaling returns a randomized-scaling feature whose
// per-variable scale factors are 2^u with u uniform in
// [-parameter, parameter]. A zero parameter selects the default 1.
// runs is the run count, or 0 for the default of 10.
func NewRandomizedScaling(parameter float64, runs int) (*RandomizedScaling, error) {
	if parameter == 0 {
		parameter = 1
	}
	if parameter < 0 || math.IsNaN(parameter) || math.IsInf(parameter, 0) {
		return nil, &ConfigError{"randomized_scaling", fmt.Sprintf("parameter must be a positive finite number, got %v", parameter)}
	}
	r, err := checkRuns("randomized_scaling", runs, 10)
	if err != nil {
		return nil, err
	}
	return &RandomizedScaling{base{"randomized_scaling", r}, parameter}, nil
}

func (s *RandomizedScaling) Modify(x []float64, f float64, seed uint64, cvBounds, cvLinear, cvNonlinear float64) (float64, error) {
	return f, nil
}

// Draw returns n positive scale factors for seed.
func (s *RandomizedScaling) Draw(seed uint64, n int) []float64 {
	rng := s.DefaultRNG(seed)
	u := Uniform(-s.parameter, s.parameter)
	scale := make([]float64, n)
	for i := range scale {
		scale[i] = math.Exp2(u(rng))
	}
	return scale
}
