// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profilemath

import (
	"math"
	"testing"
)

func TestNewSample(t *testing.T) {
	s, err := NewSample([]float64{3, 1, 2}, &DefaultThresholds)
	if err != nil {
		t.Fatal(err)
	}
	for i, want := range []float64{1, 2, 3} {
		if s.Values[i] != want {
			t.Errorf("Values[%d] = %v, want %v", i, s.Values[i], want)
		}
	}
	if len(s.Warnings) != 0 {
		t.Errorf("unexpected warnings: %v", s.Warnings)
	}

	// Non-finite measurements are dropped with a warning.
	s, err = NewSample([]float64{4, math.NaN(), 2, math.Inf(1)}, &DefaultThresholds)
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Values) != 2 {
		t.Errorf("got %d values, want 2", len(s.Values))
	}
	if len(s.Warnings) != 1 {
		t.Errorf("got %d warnings, want 1", len(s.Warnings))
	}

	// A solver that never converged has no distribution.
	if _, err := NewSample([]float64{math.NaN(), math.NaN()}, &DefaultThresholds); err == nil {
		t.Error("all-NaN sample: no error")
	}
	if _, err := NewSample(nil, &DefaultThresholds); err == nil {
		t.Error("empty sample: no error")
	}
}

func TestComparisonFormat(t *testing.T) {
	check := func(p float64, n1, n2 int, want string) {
		t.Helper()
		got := Comparison{P: p, N1: n1, N2: n2}.String()
		if got != want {
			t.Errorf("for %v,%v,%v, got %s, want %s", p, n1, n2, got, want)
		}
	}
	check(0.5, 1, 2, "p=0.500 n=1+2")
	check(0.5, 2, 2, "p=0.500 n=2")
	check(0, 1, 2, "n=1+2")
	check(0, 2, 2, "n=2")

	checkD := func(p, old, new, alpha float64, want string) {
		got := Comparison{P: p, Alpha: alpha}.FormatDelta(old, new)
		if got != want {
			t.Errorf("for p=%v %v=>%v @%v, got %s, want %s", p, old, new, alpha, got, want)
		}
	}
	checkD(0.5, 0, 0, 0.05, "~")
	checkD(0.01, 0, 0, 0.05, "0.00%")
	checkD(0.01, 1, 1, 0.05, "0.00%")
	checkD(0.01, 0, 1, 0.05, "?")
	checkD(0.01, 1, 1.5, 0.05, "+50.00%")
	checkD(0.01, 1, 0.5, 0.05, "-50.00%")
}
