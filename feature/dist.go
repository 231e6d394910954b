// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"
)

// A Distribution draws one value from rng. Noisy uses it to sample
// the noise added to each objective value.
type Distribution func(rng *rand.Rand) float64

// A VectorDistribution draws an n-vector from rng. PerturbedX0 uses
// it to sample the offset applied to the starting point.
type VectorDistribution func(rng *rand.Rand, n int) []float64

// Normal returns a Distribution drawing from N(0, sigma²).
func Normal(sigma float64) Distribution {
	return func(rng *rand.Rand) float64 {
		return distuv.Normal{Mu: 0, Sigma: sigma, Src: rng}.Rand()
	}
}

// Uniform returns a Distribution drawing uniformly from [min, max).
func Uniform(min, max float64) Distribution {
	return func(rng *rand.Rand) float64 {
		return distuv.Uniform{Min: min, Max: max, Src: rng}.Rand()
	}
}

// NormalVector returns a VectorDistribution with independent
// N(0, sigma²) coordinates.
func NormalVector(sigma float64) VectorDistribution {
	return func(rng *rand.Rand, n int) []float64 {
		d := distuv.Normal{Mu: 0, Sigma: sigma, Src: rng}
		v := make([]float64, n)
		for i := range v {
			v[i] = d.Rand()
		}
		return v
	}
}
