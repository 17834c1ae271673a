// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linesearch

// Backtracking is an Armijo search: the step is halved from the initial
// trial until the sufficient decrease condition
//
//	f(λ) ≤ f(0) + ftol·λ·f′(0)
//
// holds. Only function values are used; the derivative fed to Iterate is
// ignored beyond the initial slope.
type Backtracking struct {
	state
	ftol float64
}

// NewBacktracking creates a backtracking search with sufficient-decrease
// tolerance ftol in [0, 1).
func NewBacktracking(ftol float64) (*Backtracking, error) {
	if ftol < 0 || ftol >= 1 {
		return nil, ErrInvalidTolerance
	}
	return &Backtracking{ftol: ftol}, nil
}

// Start implements Searcher.
func (b *Backtracking) Start(f0, df0, step, stepMin, stepMax float64) (float64, error) {
	return b.begin(f0, df0, step, stepMin, stepMax)
}

// Iterate implements Searcher.
func (b *Backtracking) Iterate(stp, f, _ float64) (Status, float64) {
	if b.status != Searching {
		return b.status, stp
	}
	if f <= b.f0+b.ftol*stp*b.df0 {
		b.status = Converged
		return b.status, stp
	}
	next := 0.5 * stp
	if next < b.stepMin {
		// No acceptable step above the lower bound.
		b.status = WarnStepMin
		return b.status, b.stepMin
	}
	return Searching, next
}
