// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optim

import (
	"errors"
	"fmt"
	"math"

	"github.com/curioloop/optimpack/linesearch"
	"github.com/curioloop/optimpack/vspace"
)

var (
	// ErrInvalidParameter reports a negative tolerance or an inconsistent
	// step bound.
	ErrInvalidParameter = errors.New("optim: invalid parameter")
	// ErrInvalidMethod reports an NLCG method with an unknown update rule.
	ErrInvalidMethod = errors.New("optim: invalid method")
	// ErrNotDescent reports a search direction that lost the descent
	// property even after a steepest-descent restart.
	ErrNotDescent = errors.New("optim: not a descent direction")
)

const (
	defaultGradRelTol = 1e-6
	defaultStepMin    = 1e-20
	defaultStepMax    = 1e+20
)

// Line search stages of an engine between two reverse-communication calls.
const (
	stageInit = iota
	stageSearch
	stageNewX
)

// engine carries the state shared by the NLCG and VMLM state machines:
// the space, the line search, convergence thresholds, counters and the
// origin of the current 1-D search.
type engine[T vspace.Float] struct {
	space  *vspace.Space[T]
	search linesearch.Searcher

	eval             Objective[T]
	maxIter, maxEval int
	logger           *Logger

	gatol, grtol   float64
	stpmin, stpmax float64

	task  Task
	stage int
	err   error

	iters, evals, restarts int

	gtest float64 // max(gatol, grtol·‖g₀‖₂), fixed at the first evaluation
	gnorm float64 // ‖g‖₂ at the last presented iterate

	step     float64 // current (or last accepted) line-search step
	f0, df0  float64 // value and slope at the search origin
	g0norm2 float64 // ‖g₀‖₂² at the search origin
	x0, g0  *vspace.Variable[T]
	d       *vspace.Variable[T] // search direction
}

func (e *engine[T]) init(p *Problem[T], search linesearch.Searcher) {
	e.space = p.Space
	e.search = search
	e.eval = p.Eval
	e.maxIter = p.Stop.MaxIterations
	e.maxEval = p.Stop.MaxEvaluations
	e.logger = p.Logger

	e.gatol, e.grtol = p.Stop.GradAbsTol, p.Stop.GradRelTol
	if e.gatol == 0 && e.grtol == 0 {
		e.grtol = defaultGradRelTol
	}
	e.stpmin, e.stpmax = defaultStepMin, defaultStepMax
	if p.Step != nil {
		e.stpmin, e.stpmax = p.Step.Min, p.Step.Max
	}

	e.x0 = p.Space.Create()
	e.g0 = p.Space.Create()
	e.d = p.Space.Create()
}

// Space returns the variable space the engine operates on.
func (e *engine[T]) Space() *vspace.Space[T] { return e.space }

// Task returns the pending reverse-communication task.
func (e *engine[T]) Task() Task { return e.task }

// Err returns the failure cause after TaskError.
func (e *engine[T]) Err() error { return e.err }

// Iterations returns the number of accepted steps.
func (e *engine[T]) Iterations() int { return e.iters }

// Evaluations returns the number of objective evaluations consumed.
func (e *engine[T]) Evaluations() int { return e.evals }

// Restarts returns the number of steepest-descent restarts.
func (e *engine[T]) Restarts() int { return e.restarts }

// GradNorm returns ‖g‖₂ at the last presented iterate.
func (e *engine[T]) GradNorm() float64 { return e.gnorm }

// GradTol returns the absolute and relative gradient thresholds.
func (e *engine[T]) GradTol() (gatol, grtol float64) { return e.gatol, e.grtol }

// SetGradTol updates the convergence thresholds. Both values must be
// non-negative. The combined threshold of a running engine is not revised
// until the next Start.
func (e *engine[T]) SetGradTol(gatol, grtol float64) error {
	if gatol < 0 || grtol < 0 {
		return fmt.Errorf("%w: gatol=%g grtol=%g", ErrInvalidParameter, gatol, grtol)
	}
	e.gatol, e.grtol = gatol, grtol
	return nil
}

// StepBoundsOf returns the line-search step bounds.
func (e *engine[T]) StepBoundsOf() (stpmin, stpmax float64) { return e.stpmin, e.stpmax }

// SetStepBounds updates the line-search step bounds, requiring
// 0 ≤ stpmin < stpmax.
func (e *engine[T]) SetStepBounds(stpmin, stpmax float64) error {
	if stpmin < 0 || stpmax <= stpmin {
		return fmt.Errorf("%w: stpmin=%g stpmax=%g", ErrInvalidParameter, stpmin, stpmax)
	}
	e.stpmin, e.stpmax = stpmin, stpmax
	return nil
}

// reset prepares the engine for a fresh run from x.
func (e *engine[T]) reset(x *vspace.Variable[T]) Task {
	if x.Space() != e.space {
		panic("optim: variable space mismatch")
	}
	e.task, e.stage = TaskComputeFG, stageInit
	e.err = nil
	e.iters, e.evals, e.restarts = 0, 0, 0
	e.gtest, e.gnorm = 0, 0
	e.step, e.f0, e.df0, e.g0norm2 = 0, 0, 0, 0
	return e.task
}

// first consumes the initial evaluation, fixes the convergence threshold
// and presents the starting point as an iterate.
func (e *engine[T]) first(g *vspace.Variable[T]) {
	e.evals++
	e.gnorm = g.Norm2()
	e.gtest = math.Max(e.gatol, e.grtol*e.gnorm)
	if e.gnorm <= e.gtest {
		e.task = TaskFinalX
	} else {
		e.task, e.stage = TaskNewX, stageNewX
	}
}

// advance feeds the evaluation at the current trial step to the line
// search. It either requests another trial point, reports acceptance, or
// terminates with a warning or error.
func (e *engine[T]) advance(x *vspace.Variable[T], f float64, g *vspace.Variable[T]) (accepted bool) {
	e.evals++
	df := vspace.Dot(e.d, g)
	st, next := e.search.Iterate(e.step, f, df)
	switch {
	case st == linesearch.Searching:
		e.step = next
		vspace.Combine(x, 1, e.x0, e.step, e.d)
		e.task = TaskComputeFG
	case st.Success():
		e.step = next
		accepted = true
	case st.HasWarnings():
		e.task = TaskWarn
	default:
		e.task = TaskError
		e.err = fmt.Errorf("optim: line search failed: %v", st)
	}
	return
}

// accept finalizes an accepted step and presents the new iterate.
func (e *engine[T]) accept(g *vspace.Variable[T]) {
	e.iters++
	e.gnorm = g.Norm2()
	if e.gnorm <= e.gtest {
		e.task = TaskFinalX
	} else {
		e.task, e.stage = TaskNewX, stageNewX
	}
}

// startSearch saves the search origin, starts the line search with the
// initial step alpha along e.d, and requests the first trial evaluation.
func (e *engine[T]) startSearch(x *vspace.Variable[T], f float64, g *vspace.Variable[T], df0, alpha float64) Task {
	vspace.Copy(e.x0, x)
	vspace.Copy(e.g0, g)
	e.f0, e.df0 = f, df0
	e.g0norm2 = e.gnorm * e.gnorm
	step, err := e.search.Start(f, df0, alpha, e.stpmin, e.stpmax)
	if err != nil {
		e.task, e.err = TaskError, err
		return e.task
	}
	e.step = step
	vspace.Combine(x, 1, e.x0, e.step, e.d)
	e.task, e.stage = TaskComputeFG, stageSearch
	return e.task
}
