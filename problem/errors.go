// Copyright 2024 The OptiProfile Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package problem

import "fmt"

// A ConfigError reports invalid construction arguments for a Problem
// or Featured.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return e.Msg }

// A BudgetError reports a Fun call past the evaluation budget. It is
// terminal for the Featured that returned it: the solver adapter must
// stop so the harness records non-convergence.
type BudgetError struct {
	MaxEval int
}

func (e *BudgetError) Error() string {
	return fmt.Sprintf("evaluation budget of %d exhausted", e.MaxEval)
}

// A ShapeError reports a length mismatch in an evaluation input or in
// a returned constraint vector.
type ShapeError struct {
	What string
	Want int
	Got  int
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("%s has length %d, want %d", e.What, e.Got, e.Want)
}
