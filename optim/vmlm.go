// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optim

import (
	"github.com/curioloop/optimpack/vspace"
)

// VMLM is a limited-memory variable-metric engine: it keeps the last m
// accepted (s,y) = (x₊-x, g₊-g) pairs in a circular history and applies the
// two-loop recursion to compute d = -H·g without forming the approximate
// inverse Hessian H. Pairs with ⟨s,y⟩ ≤ 0 are silently skipped to keep the
// implied approximation positive definite.
type VMLM[T vspace.Float] struct {
	engine[T]
	scaling Scaling

	m         int // history capacity, clamped to the problem dimension
	mem, head int // stored pair count and next ring slot
	s, y      []*vspace.Variable[T]
	rho       []float64
	coef      []float64 // first-loop coefficients
}

// Mem returns the history capacity after clamping.
func (o *VMLM[T]) Mem() int { return o.m }

// ScalingMode returns the initial diagonal scaling selector.
func (o *VMLM[T]) ScalingMode() Scaling { return o.scaling }

// Start begins a fresh run from the point held by x. The stored history is
// discarded.
func (o *VMLM[T]) Start(x *vspace.Variable[T]) Task {
	o.mem, o.head = 0, 0
	return o.reset(x)
}

// Iterate consumes the outcome of the previous task and returns the next
// one, exactly as for NLCG.
func (o *VMLM[T]) Iterate(x *vspace.Variable[T], f float64, g *vspace.Variable[T]) Task {
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

// direction pushes the correction pair of the accepted step, forms the next
// quasi-Newton direction and launches the line search.
func (o *VMLM[T]) direction(x *vspace.Variable[T], f float64, g *vspace.Variable[T]) Task {
	if o.iters > 0 {
		o.push(x, g)
	}

	fresh := o.mem == 0
	if fresh {
		vspace.Scale(o.d, -1, g)
	} else {
		o.twoLoop(g)
	}

	df0 := vspace.Dot(o.d, g)
	if df0 >= 0 && !fresh {
		// The metric went bad: discard the history and restart.
		o.mem, o.head = 0, 0
		o.restarts++
		fresh = true
		vspace.Scale(o.d, -1, g)
		df0 = vspace.Dot(o.d, g)
	}
	if df0 >= 0 {
		o.task, o.err = TaskError, ErrNotDescent
		return o.task
	}

	alpha := 1.0 // the quasi-Newton step has natural unit scale
	if fresh {
		alpha = 1 / o.gnorm
	}
	return o.startSearch(x, f, g, df0, alpha)
}

// push stores the correction pair of the last accepted step, evicting the
// oldest pair when the history is full. A pair with non-positive curvature
// is skipped without touching the history.
func (o *VMLM[T]) push(x, g *vspace.Variable[T]) {
	slot := o.head
	vspace.Combine(o.s[slot], 1, x, -1, o.x0)
	vspace.Combine(o.y[slot], 1, g, -1, o.g0)
	sy := vspace.Dot(o.s[slot], o.y[slot])
	if sy <= 0 {
		return
	}
	o.rho[slot] = 1 / sy
	o.head = (o.head + 1) % o.m
	if o.mem < o.m {
		o.mem++
	}
}

// twoLoop computes d = -H·g with the limited-memory recursion, applying
// the selected initial scaling γ from the most recent pair.
func (o *VMLM[T]) twoLoop(g *vspace.Variable[T]) {
	vspace.Copy(o.d, g)

	for j := 0; j < o.mem; j++ { // newest to oldest
		i := (o.head - 1 - j + 2*o.m) % o.m
		a := o.rho[i] * vspace.Dot(o.s[i], o.d)
		o.coef[i] = a
		vspace.Combine(o.d, 1, o.d, -a, o.y[i])
	}

	last := (o.head - 1 + o.m) % o.m
	gamma := 1.0
	switch o.scaling {
	case ScaleNone:
	case BarzilaiBorwein:
		gamma = vspace.Dot(o.s[last], o.s[last]) * o.rho[last]
	default: // Oren-Spedicato
		if yy := vspace.Dot(o.y[last], o.y[last]); yy > 0 {
			gamma = 1 / (o.rho[last] * yy)
		}
	}
	if gamma != 1 {
		vspace.Scale(o.d, gamma, o.d)
	}

	for j := o.mem - 1; j >= 0; j-- { // oldest to newest
		i := (o.head - 1 - j + 2*o.m) % o.m
		b := o.rho[i] * vspace.Dot(o.y[i], o.d)
		vspace.Combine(o.d, 1, o.d, o.coef[i]-b, o.s[i])
	}

	vspace.Scale(o.d, -1, o.d)
}

// Fit runs the reverse-communication loop to completion using the
// objective and budgets supplied by the Problem.
func (o *VMLM[T]) Fit(x0 []T) *Result[T] {
	return fit[T](o, &o.engine, x0)
}
