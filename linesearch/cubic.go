// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linesearch

import "math"

const (
	trapLower = 1.1
	trapUpper = 4.0
)

const (
	stageArmijo = 1
	stageWolfe  = 2
)

// CubicWolfe is a safeguarded interpolation search finding a step that
// satisfies both the sufficient decrease condition
//
//	f(λ) ≤ f(0) + ftol·λ·f′(0)
//
// and the curvature condition
//
//	|f′(λ)| ≤ gtol·|f′(0)|
//
// Each Iterate updates a bracketing interval. The interval initially
// contains a minimizer of the modified function ψ(λ) = f(λ) - f(0) -
// ftol·λ·f′(0); once ψ(λ) ≤ 0 and f′(λ) ≥ 0 for some step, it contains a
// minimizer of f itself. If no step satisfying both conditions can be
// located the search stops with a warning and the step satisfies at least
// the sufficient decrease condition.
type CubicWolfe struct {
	state
	ftol, gtol, xtol float64

	stage         int
	brk           bracket
	width, width1 float64
}

// NewCubicWolfe creates a strong-Wolfe search with sufficient-decrease
// tolerance ftol, curvature tolerance gtol and relative bracket-width
// tolerance xtol. The tolerances must satisfy 0 ≤ ftol < gtol < 1 and
// 0 ≤ xtol < 1.
func NewCubicWolfe(ftol, gtol, xtol float64) (*CubicWolfe, error) {
	if ftol < 0 || ftol >= gtol || gtol >= 1 {
		return nil, ErrInvalidTolerance
	}
	if xtol < 0 || xtol >= 1 {
		return nil, ErrInvalidTolerance
	}
	return &CubicWolfe{ftol: ftol, gtol: gtol, xtol: xtol}, nil
}

// Start implements Searcher.
func (c *CubicWolfe) Start(f0, df0, step, stepMin, stepMax float64) (float64, error) {
	step, err := c.begin(f0, df0, step, stepMin, stepMax)
	if err != nil {
		return step, err
	}
	c.stage = stageArmijo
	c.width = stepMax - stepMin
	c.width1 = c.width / 0.5
	c.brk = bracket{
		stx: 0, fx: f0, dx: df0,
		sty: 0, fy: f0, dy: df0,
		lo: 0, hi: step + trapUpper*step,
	}
	return step, nil
}

// Iterate implements Searcher.
func (c *CubicWolfe) Iterate(stp, f, df float64) (Status, float64) {
	if c.status != Searching {
		return c.status, stp
	}

	gTest := c.ftol * c.df0
	fTest := c.f0 + stp*gTest

	// Test for convergence or warnings.
	switch {
	case c.brk.bracketed && (stp <= c.brk.lo || stp >= c.brk.hi):
		c.status = WarnRoundErr
	case c.brk.bracketed && c.brk.hi-c.brk.lo <= c.xtol*c.brk.hi:
		c.status = WarnXtol
	case stp == c.stepMax && f <= fTest && df <= gTest:
		c.status = WarnStepMax
	case stp == c.stepMin && (f > fTest || df >= gTest):
		c.status = WarnStepMin
	case f <= fTest && math.Abs(df) <= c.gtol*(-c.df0):
		c.status = Converged
	}
	if c.status != Searching {
		return c.status, stp
	}

	if c.stage == stageArmijo && f <= fTest && df >= 0 {
		c.stage = stageWolfe
	}

	if c.stage == stageArmijo && f <= c.brk.fx && f > fTest {
		// Interpolate on the modified function ψ until a step with ψ ≤ 0
		// and a non-negative derivative is found.
		b := &c.brk
		b.fx -= b.stx * gTest
		b.fy -= b.sty * gTest
		b.dx -= gTest
		b.dy -= gTest
		stp = b.next(stp, f-stp*gTest, df-gTest)
		b.fx += b.stx * gTest
		b.fy += b.sty * gTest
		b.dx += gTest
		b.dy += gTest
	} else {
		stp = c.brk.next(stp, f, df)
	}

	// Force a bisection step when the interval shrinks too slowly.
	if c.brk.bracketed {
		if math.Abs(c.brk.sty-c.brk.stx) >= 0.66*c.width1 {
			stp = c.brk.stx + 0.5*(c.brk.sty-c.brk.stx)
		}
		c.width1 = c.width
		c.width = math.Abs(c.brk.sty - c.brk.stx)
	}

	// Set the bounds for the next trial step.
	if c.brk.bracketed {
		c.brk.lo = math.Min(c.brk.stx, c.brk.sty)
		c.brk.hi = math.Max(c.brk.stx, c.brk.sty)
	} else {
		c.brk.lo = stp + trapLower*(stp-c.brk.stx)
		c.brk.hi = stp + trapUpper*(stp-c.brk.stx)
	}

	stp = math.Min(math.Max(stp, c.stepMin), c.stepMax)

	// Fall back to the best step obtained so far when no further progress
	// is possible.
	if c.brk.bracketed && (stp <= c.brk.lo || stp >= c.brk.hi ||
		c.brk.hi-c.brk.lo <= c.xtol*c.brk.hi) {
		stp = c.brk.stx
	}

	return Searching, stp
}
