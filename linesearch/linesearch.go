// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linesearch implements the 1-D step-search state machines used by
// the optimization engines. A Searcher consumes scalar (step, value, slope)
// triples and produces the next trial step together with a status, so the
// caller performs every objective evaluation itself.
package linesearch

import "errors"

// Status describes the state of a search after the last transition.
type Status int

const (
	// NotStarted is the state before Start succeeds.
	NotStarted Status = iota
	// Searching means another (step, f, df) triple is required at the
	// returned trial step.
	Searching
	// Converged means the last trial step satisfies the search criteria.
	Converged
	// WarnRoundErr means rounding errors prevent further progress.
	WarnRoundErr
	// WarnXtol means the bracket width dropped below the relative tolerance.
	WarnXtol
	// WarnStepMax means the search is pinned at the upper step bound.
	WarnStepMax
	// WarnStepMin means the search is pinned at the lower step bound.
	WarnStepMin
	// ErrNotDescent means the initial directional derivative was not negative.
	ErrNotDescent
	// ErrStepBounds means the trial step left the [stepMin, stepMax] interval.
	ErrStepBounds
	// ErrBracket means the bracketing interval became inconsistent.
	ErrBracket
)

// Finished reports whether the search reached a terminal state.
func (s Status) Finished() bool { return s >= Converged }

// Success reports whether the search converged to an acceptable step.
func (s Status) Success() bool { return s == Converged }

// HasWarnings reports whether the search stopped with a usable but
// not fully satisfactory step.
func (s Status) HasWarnings() bool { return s >= WarnRoundErr && s <= WarnStepMin }

// HasErrors reports whether the search failed.
func (s Status) HasErrors() bool { return s >= ErrNotDescent }

func (s Status) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Searching:
		return "Searching"
	case Converged:
		return "Converged"
	case WarnRoundErr:
		return "WarnRoundErr"
	case WarnXtol:
		return "WarnXtol"
	case WarnStepMax:
		return "WarnStepMax"
	case WarnStepMin:
		return "WarnStepMin"
	case ErrNotDescent:
		return "ErrNotDescent"
	case ErrStepBounds:
		return "ErrStepBounds"
	case ErrBracket:
		return "ErrBracket"
	}
	return "Unknown"
}

var (
	// ErrInvalidTolerance reports an illegal tolerance configuration.
	ErrInvalidTolerance = errors.New("linesearch: invalid tolerance")
	// ErrInvalidMemory reports a non-positive nonmonotone memory depth.
	ErrInvalidMemory = errors.New("linesearch: invalid memory depth")
	// ErrNotADescentDirection reports a non-negative initial slope.
	ErrNotADescentDirection = errors.New("linesearch: not a descent direction")
	// ErrInvalidStepBounds reports step bounds with stepMin < 0 or stepMax < stepMin.
	ErrInvalidStepBounds = errors.New("linesearch: invalid step bounds")
)

// Searcher is a reusable step-search state machine. One instance serves many
// outer iterations of one optimizer: Start resets the internal state and
// Iterate advances it.
type Searcher interface {
	// Start initializes the search at the current point with value f0 and
	// directional derivative df0 < 0, and returns the first trial step
	// (the initial step clipped to [stepMin, stepMax]).
	Start(f0, df0, step, stepMin, stepMax float64) (float64, error)
	// Iterate consumes the value and directional derivative measured at the
	// trial step and returns the new status plus the next trial step. When
	// the search finishes the returned step is the accepted one.
	Iterate(step, f, df float64) (Status, float64)
	// Status returns the state after the last transition.
	Status() Status
}

// state carries the bookkeeping shared by every search variant.
type state struct {
	status           Status
	f0, df0          float64
	stepMin, stepMax float64
}

func (s *state) Status() Status { return s.status }

// begin validates the common Start preconditions and records the origin.
// It returns the initial step clipped to the bounds.
func (s *state) begin(f0, df0, step, stepMin, stepMax float64) (float64, error) {
	if stepMin < 0 || stepMax < stepMin {
		s.status = ErrStepBounds
		return step, ErrInvalidStepBounds
	}
	if df0 >= 0 {
		s.status = ErrNotDescent
		return step, ErrNotADescentDirection
	}
	s.f0, s.df0 = f0, df0
	s.stepMin, s.stepMax = stepMin, stepMax
	s.status = Searching
	return min(max(step, stepMin), stepMax), nil
}
