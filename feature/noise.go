// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package feature

import (
	"errors"
	"fmt"
	"math"
)

// A NoiseType selects how Noisy combines noise with the true value.
type NoiseType string

const (
	// Absolute noise is added to the true value.
	Absolute NoiseType = "absolute"
	// Relative noise scales the true value by 1 plus the draw.
	Relative NoiseType = "relative"
)

// Noisy perturbs every observed objective value with seeded noise.
type Noisy struct {
	base
	dist      Distribution
	noiseType NoiseType
}

// NoisyOptions configures NewNoisy. The zero value selects relative
// N(0, 1e-3²) noise over 10 runs.
type NoisyOptions struct {
	Distribution Distribution // nil for Normal(1e-3)
	Type         NoiseType    // empty for Relative
	Runs         int          // 0 for 10
}

// NewNoisy returns a noisy-objective feature.
func NewNoisy(o NoisyOptions) (*Noisy, error) {
	if o.Distribution == nil {
		o.Distribution = Normal(1e-3)
	}
	switch o.Type {
	case "":
		o.Type = Relative
	case Absolute, Relative:
	default:
		return nil, &ConfigError{"noisy", fmt.Sprintf("noise type must be %q or %q, got %q", Absolute, Relative, o.Type)}
	}
	r, err := checkRuns("noisy", o.Runs, 10)
	if err != nil {
		return nil, err
	}
	return &Noisy{base{"noisy", r}, o.Distribution, o.Type}, nil
}

func (n *Noisy) Modify(x []float64, f float64, seed uint64, cvBounds, cvLinear, cvNonlinear float64) (float64, error) {
	rng := n.DefaultRNG(seed, rngContext([]float64{f, ordSum(string(n.noiseType))}, x)...)
	if n.noiseType == Absolute {
		return f + n.dist(rng), nil
	}
	return f * (1 + n.dist(rng)), nil
}

// Truncated rounds every observed objective value to a fixed number
// of significant digits, then fills the truncated digits with seeded
// uniform noise so the observed value stays within one unit in the
// last kept digit of the true value.
type Truncated struct {
	base
	digits int
}

// NewTruncated returns a truncated-digits feature keeping digits
// significant digits (0 for the default of 6). runs is the run count,
// or 0 for the default of 10.
func NewTruncated(digits, runs int) (*Truncated, error) {
	if digits == 0 {
		digits = 6
	}
	if digits < 0 {
		return nil, &ConfigError{"truncated", fmt.Sprintf("significant digits must be positive, got %d", digits)}
	}
	r, err := checkRuns("truncated", runs, 10)
	if err != nil {
		return nil, err
	}
	return &Truncated{base{"truncated", r}, digits}, nil
}

func (t *Truncated) Modify(x []float64, f float64, seed uint64, cvBounds, cvLinear, cvNonlinear float64) (float64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f, nil
	}
	digits := t.digits - 1
	if f != 0 {
		digits = t.digits - int(math.Floor(math.Log10(math.Abs(f)))) - 1
	}
	rng := t.DefaultRNG(seed, rngContext([]float64{f, float64(t.digits)}, x)...)
	pow := math.Pow(10, float64(digits))
	round := math.Round(f*pow) / pow
	if f >= 0 {
		return round + rng.Float64()/pow, nil
	}
	return round - rng.Float64()/pow, nil
}

// RandomNaN replaces the observed objective value with NaN at a
// seeded rate. The true value is still recorded for scoring.
type RandomNaN struct {
	base
	rate float64
}

// NewRandomNaN returns a NaN-injection feature with the given NaN
// rate in [0, 1]. runs is the run count, or 0 for the default of 10.
func NewRandomNaN(rate float64, runs int) (*RandomNaN, error) {
	if rate < 0 || rate > 1 || math.IsNaN(rate) {
		return nil, &ConfigError{"random_nan", fmt.Sprintf("NaN rate must be in [0, 1], got %v", rate)}
	}
	r, err := checkRuns("random_nan", runs, 10)
	if err != nil {
		return nil, err
	}
	return &RandomNaN{base{"random_nan", r}, rate}, nil
}

func (n *RandomNaN) Modify(x []float64, f float64, seed uint64, cvBounds, cvLinear, cvNonlinear float64) (float64, error) {
	rng := n.DefaultRNG(seed, rngContext([]float64{f, n.rate}, x)...)
	if rng.Float64() < n.rate {
		return math.NaN(), nil
	}
	return f, nil
}

// ErrToughFailure is the evaluation failure injected by Tough. It
// propagates through FeaturedProblem.Fun to the solver adapter, which
// must cope the way it would with a crashing objective.
var ErrToughFailure = errors.New("injected evaluation failure")

// Tough makes evaluations fail outright or observe NaN at seeded
// rates, simulating objectives that crash or return garbage.
type Tough struct {
	base
	rateError float64
	rateNaN   float64
}

// NewTough returns a tough feature failing evaluations at rateError
// and observing NaN at rateNaN, both in [0, 1]. runs is the run
// count, or 0 for the default of 10.
func NewTough(rateError, rateNaN float64, runs int) (*Tough, error) {
	if rateError < 0 || rateError > 1 || math.IsNaN(rateError) {
		return nil, &ConfigError{"tough", fmt.Sprintf("error rate must be in [0, 1], got %v", rateError)}
	}
	if rateNaN < 0 || rateNaN > 1 || math.IsNaN(rateNaN) {
		return nil, &ConfigError{"tough", fmt.Sprintf("NaN rate must be in [0, 1], got %v", rateNaN)}
	}
	r, err := checkRuns("tough", runs, 10)
	if err != nil {
		return nil, err
	}
	return &Tough{base{"tough", r}, rateError, rateNaN}, nil
}

func (t *Tough) Modify(x []float64, f float64, seed uint64, cvBounds, cvLinear, cvNonlinear float64) (float64, error) {
	rng := t.DefaultRNG(seed, rngContext([]float64{f, t.rateError, t.rateNaN}, x)...)
	if rng.Float64() < t.rateError {
		return 0, ErrToughFailure
	}
	if rng.Float64() < t.rateNaN {
		return math.NaN(), nil
	}
	return f, nil
}
