// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optim

import (
	"math"

	"github.com/curioloop/optimpack/vspace"
)

// NLCG is a nonlinear conjugate gradient engine: each outer iteration
// computes a conjugacy coefficient β from inner products of gradient and
// direction differences, forms the direction d = -g + β·d₋ and searches a
// step along it. An unproductive β (non-finite, clipped by the Powell
// modifier, or yielding a non-descent direction) triggers a
// steepest-descent restart, counted by Restarts.
type NLCG[T vspace.Float] struct {
	engine[T]
	method Method
	y      *vspace.Variable[T] // gradient difference g - g₀
	w      *vspace.Variable[T] // Perry-Shanno recursion workspace
}

// Method returns the direction update selector.
func (o *NLCG[T]) Method() Method { return o.method }

// Start begins a fresh run from the point held by x and returns the first
// task, which is always TaskComputeFG. The variable must belong to the
// engine's space.
func (o *NLCG[T]) Start(x *vspace.Variable[T]) Task {
	return o.reset(x)
}

// Iterate consumes the outcome of the previous task and returns the next
// one. After TaskComputeFG the caller passes the objective value f and the
// gradient g evaluated at x; after TaskNewX the same triple is passed back
// unchanged.
func (o *NLCG[T]) Iterate(x *vspace.Variable[T], f float64, g *vspace.Variable[T]) Task {
	if x.Space() != o.space || g.Space() != o.space {
		panic("optim: variable space mismatch")
	}
	switch o.stage {
	case stageInit:
		o.first(g)
	case stageSearch:
		if o.advance(x, f, g) {
			o.accept(g)
		}
	case stageNewX:
		return o.direction(x, f, g)
	}
	return o.task
}

// direction forms the next search direction and launches the line search.
func (o *NLCG[T]) direction(x *vspace.Variable[T], f float64, g *vspace.Variable[T]) Task {
	prevStep, prevDf0 := o.step, o.df0

	restarted := o.iters == 0
	if !restarted && !o.update(g) {
		restarted = true
		o.restarts++
	}
	if restarted {
		vspace.Scale(o.d, -1, g)
	}

	df0 := vspace.Dot(o.d, g)
	if df0 >= 0 && !restarted {
		// The conjugate direction lost the descent property.
		vspace.Scale(o.d, -1, g)
		o.restarts++
		restarted = true
		df0 = vspace.Dot(o.d, g)
	}
	if df0 >= 0 {
		o.task, o.err = TaskError, ErrNotDescent
		return o.task
	}

	var alpha float64
	switch {
	case restarted:
		alpha = 1 / o.gnorm
	case o.method.ShannoPhua:
		// Preserve the step·slope scale of the previous iteration.
		alpha = prevStep * prevDf0 / df0
	default:
		alpha = prevStep
	}
	return o.startSearch(x, f, g, df0, alpha)
}

// update computes the new direction in o.d from the gradient g at the
// accepted iterate and the saved origin state. It reports false when a
// steepest-descent restart is required instead.
func (o *NLCG[T]) update(g *vspace.Variable[T]) bool {
	vspace.Combine(o.y, 1, g, -1, o.g0) // y = g - g₀
	gg := o.gnorm * o.gnorm

	var beta float64
	switch o.method.Rule {
	case FletcherReeves:
		beta = gg / o.g0norm2
	case HestenesStiefel:
		dy := vspace.Dot(o.d, o.y)
		if dy == 0 {
			return false
		}
		beta = vspace.Dot(g, o.y) / dy
	case PolakRibiere:
		beta = vspace.Dot(g, o.y) / o.g0norm2
	case Fletcher:
		beta = -gg / o.df0
	case LiuStorey:
		beta = -vspace.Dot(g, o.y) / o.df0
	case DaiYuan:
		dy := vspace.Dot(o.d, o.y)
		if dy == 0 {
			return false
		}
		beta = gg / dy
	case HagerZhang:
		dy := vspace.Dot(o.d, o.y)
		if dy == 0 {
			return false
		}
		beta = (vspace.Dot(o.y, g) - 2*vspace.Dot(o.d, g)*vspace.Dot(o.y, o.y)/dy) / dy
	case PerryShanno:
		return o.memorylessBFGS(g)
	}

	if math.IsNaN(beta) || math.IsInf(beta, 0) {
		return false
	}
	if o.method.Powell {
		beta = math.Max(beta, 0)
	}
	if beta == 0 {
		return false
	}
	vspace.Combine(o.d, beta, o.d, -1, g)
	return true
}

// memorylessBFGS forms the Perry-Shanno direction d = -H·g where H is the
// BFGS approximation built from the single latest (s,y) pair, s = step·d₋.
func (o *NLCG[T]) memorylessBFGS(g *vspace.Variable[T]) bool {
	sy := o.step * vspace.Dot(o.d, o.y)
	yy := vspace.Dot(o.y, o.y)
	if sy <= 0 || yy <= 0 {
		return false
	}
	rho := 1 / sy
	a := rho * o.step * vspace.Dot(o.d, g)
	vspace.Combine(o.w, 1, g, -a, o.y) // q = g - a·y
	gamma := sy / yy
	b := rho * gamma * vspace.Dot(o.y, o.w)
	// d = -(γ·q + (a-b)·s)
	vspace.Combine(o.d, -(a-b)*o.step, o.d, -gamma, o.w)
	return true
}

// Fit runs the reverse-communication loop to completion using the
// objective and budgets supplied by the Problem.
func (o *NLCG[T]) Fit(x0 []T) *Result[T] {
	return fit[T](o, &o.engine, x0)
}
