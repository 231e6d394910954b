// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package profilemath

import "github.com/aclements/go-moremath/stats"

// AssumeNothing makes no distributional assumption: solver effort
// counts are discrete and often heavily skewed. The summary statistic
// is the sample median with percentile bounds and comparisons are
// done using the Mann-Whitney U-test.
var AssumeNothing = assumeNothing{}

type assumeNothing struct{}

var _ Assumption = assumeNothing{}

func (assumeNothing) SummaryLabel() string {
	return "median"
}

func (assumeNothing) Summary(s *Sample, confidence float64) Summary {
	sample := s.sample()
	tail := (1 - confidence) / 2
	return Summary{
		Center:     sample.Quantile(0.5),
		Lo:         sample.Quantile(tail),
		Hi:         sample.Quantile(1 - tail),
		Confidence: confidence,
	}
}

func (assumeNothing) Compare(s1, s2 *Sample) Comparison {
	u, err := stats.MannWhitneyUTest(s1.Values, s2.Values, stats.LocationDiffers)
	if err != nil {
		// The U-test failed, most likely because both samples
		// are identical single values. Report as if there's no
		// significant difference, along with the error.
		return Comparison{P: 1, N1: len(s1.Values), N2: len(s2.Values), Alpha: s1.Thresholds.CompareAlpha, Warnings: []error{err}}
	}
	return Comparison{P: u.P, N1: len(s1.Values), N2: len(s2.Values), Alpha: s1.Thresholds.CompareAlpha}
}
