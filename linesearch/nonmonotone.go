// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linesearch

import "math"

// Nonmonotone is an Armijo search with memory: sufficient decrease is
// measured against the maximum of the last mem iterate values instead of
// the immediately preceding one,
//
//	f(λ) ≤ max{f(x_k-j) : 0 ≤ j < mem} + ftol·λ·f′(0)
//
// which improves robustness on landscapes where monotone decrease stalls.
// A rejected step is replaced by the minimizer of the quadratic
// interpolating f(0), f′(0) and f(λ), safeguarded to [amin·λ, amax·λ].
// The memory is refreshed by Start, so one instance reused across outer
// iterations accumulates the iterate values automatically.
type Nonmonotone struct {
	state
	ftol, amin, amax float64

	ring []float64
	fill int
	idx  int
	fmax float64
}

// NewNonmonotone creates a nonmonotone search with memory depth mem ≥ 1,
// sufficient-decrease tolerance ftol in [0, 1), and safeguard bounds
// 0 < amin < amax < 1.
func NewNonmonotone(mem int, ftol, amin, amax float64) (*Nonmonotone, error) {
	if mem < 1 {
		return nil, ErrInvalidMemory
	}
	if ftol < 0 || ftol >= 1 {
		return nil, ErrInvalidTolerance
	}
	if amin <= 0 || amin >= amax || amax >= 1 {
		return nil, ErrInvalidTolerance
	}
	return &Nonmonotone{
		ftol: ftol, amin: amin, amax: amax,
		ring: make([]float64, mem),
	}, nil
}

// Start implements Searcher. The value f0 is recorded in the memory of
// iterate values.
func (n *Nonmonotone) Start(f0, df0, step, stepMin, stepMax float64) (float64, error) {
	step, err := n.begin(f0, df0, step, stepMin, stepMax)
	if err != nil {
		return step, err
	}
	n.ring[n.idx] = f0
	n.idx = (n.idx + 1) % len(n.ring)
	if n.fill < len(n.ring) {
		n.fill++
	}
	n.fmax = n.ring[0]
	for _, f := range n.ring[1:n.fill] {
		n.fmax = math.Max(n.fmax, f)
	}
	return step, nil
}

// Iterate implements Searcher.
func (n *Nonmonotone) Iterate(stp, f, _ float64) (Status, float64) {
	if n.status != Searching {
		return n.status, stp
	}
	if f <= n.fmax+n.ftol*stp*n.df0 {
		n.status = Converged
		return n.status, stp
	}

	// Quadratic interpolation of f(0), f′(0), f(λ), safeguarded by the
	// shrink bounds.
	next := stp * n.amax
	if denom := f - n.f0 - stp*n.df0; denom > 0 {
		q := -0.5 * n.df0 * stp * stp / denom
		next = math.Min(math.Max(q, n.amin*stp), n.amax*stp)
	}
	if next < n.stepMin {
		n.status = WarnStepMin
		return n.status, n.stepMin
	}
	return Searching, next
}
