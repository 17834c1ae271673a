// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linesearch

import "math"

// bracket holds the interval of the safeguarded interpolation search.
// stx is the endpoint with the least function value so far; once bracketed
// is set a minimizer lies between stx and sty. lo and hi bound the next
// trial step.
type bracket struct {
	stx, fx, dx float64
	sty, fy, dy float64
	lo, hi      float64
	bracketed   bool
}

// next computes a safeguarded trial step from the value fp and derivative dp
// measured at the current step stp, and updates the interval. The derivative
// at stx is negative in the direction of the step, so dx and stp-stx have
// opposite signs on entry.
func (b *bracket) next(stp, fp, dp float64) float64 {
	var stpf float64
	sgnd := dp * (b.dx / math.Abs(b.dx))

	switch {
	case fp > b.fx:
		// A higher function value: the minimum is bracketed. Take the cubic
		// step if it is closer to stx than the quadratic step, otherwise the
		// average of the two.
		theta := 3*(b.fx-fp)/(stp-b.stx) + b.dx + dp
		s := math.Max(math.Max(math.Abs(theta), math.Abs(b.dx)), math.Abs(dp))
		gamma := s * math.Sqrt((theta/s)*(theta/s)-(b.dx/s)*(dp/s))
		if stp < b.stx {
			gamma = -gamma
		}
		p := (gamma - b.dx) + theta
		q := ((gamma - b.dx) + gamma) + dp
		r := p / q
		stpc := b.stx + r*(stp-b.stx)
		stpq := b.stx + ((b.dx/((b.fx-fp)/(stp-b.stx)+b.dx))/2)*(stp-b.stx)
		if math.Abs(stpc-b.stx) < math.Abs(stpq-b.stx) {
			stpf = stpc
		} else {
			stpf = stpc + (stpq-stpc)/2
		}
		b.bracketed = true

	case sgnd < 0:
		// A lower function value and derivatives of opposite sign: the
		// minimum is bracketed. Take the cubic step if it is farther from
		// stp than the secant step, otherwise the secant step.
		theta := 3*(b.fx-fp)/(stp-b.stx) + b.dx + dp
		s := math.Max(math.Max(math.Abs(theta), math.Abs(b.dx)), math.Abs(dp))
		gamma := s * math.Sqrt((theta/s)*(theta/s)-(b.dx/s)*(dp/s))
		if stp > b.stx {
			gamma = -gamma
		}
		p := (gamma - dp) + theta
		q := ((gamma - dp) + gamma) + b.dx
		r := p / q
		stpc := stp + r*(b.stx-stp)
		stpq := stp + (dp/(dp-b.dx))*(b.stx-stp)
		if math.Abs(stpc-stp) > math.Abs(stpq-stp) {
			stpf = stpc
		} else {
			stpf = stpq
		}
		b.bracketed = true

	case math.Abs(dp) < math.Abs(b.dx):
		// A lower function value, derivatives of the same sign, decreasing
		// magnitude. The cubic step is used only if it tends to infinity in
		// the direction of the step or its minimum is beyond stp.
		theta := 3*(b.fx-fp)/(stp-b.stx) + b.dx + dp
		s := math.Max(math.Max(math.Abs(theta), math.Abs(b.dx)), math.Abs(dp))
		// gamma = 0 only arises if the cubic does not tend to infinity in
		// the direction of the step.
		gamma := s * math.Sqrt(math.Max(0, (theta/s)*(theta/s)-(b.dx/s)*(dp/s)))
		if stp > b.stx {
			gamma = -gamma
		}
		p := (gamma - dp) + theta
		q := (gamma + (b.dx - dp)) + gamma
		r := p / q
		var stpc float64
		switch {
		case r < 0 && gamma != 0:
			stpc = stp + r*(b.stx-stp)
		case stp > b.stx:
			stpc = b.hi
		default:
			stpc = b.lo
		}
		stpq := stp + (dp/(dp-b.dx))*(b.stx-stp)
		if b.bracketed {
			if math.Abs(stpc-stp) < math.Abs(stpq-stp) {
				stpf = stpc
			} else {
				stpf = stpq
			}
			if stp > b.stx {
				stpf = math.Min(stp+0.66*(b.sty-stp), stpf)
			} else {
				stpf = math.Max(stp+0.66*(b.sty-stp), stpf)
			}
		} else {
			if math.Abs(stpc-stp) > math.Abs(stpq-stp) {
				stpf = stpc
			} else {
				stpf = stpq
			}
			stpf = math.Min(b.hi, stpf)
			stpf = math.Max(b.lo, stpf)
		}

	default:
		// A lower function value, derivatives of the same sign, magnitude
		// not decreasing. Without a bracket the step goes to a bound,
		// otherwise the cubic step from the far endpoint is taken.
		if b.bracketed {
			theta := 3*(fp-b.fy)/(b.sty-stp) + b.dy + dp
			s := math.Max(math.Max(math.Abs(theta), math.Abs(b.dy)), math.Abs(dp))
			gamma := s * math.Sqrt((theta/s)*(theta/s)-(b.dy/s)*(dp/s))
			if stp > b.sty {
				gamma = -gamma
			}
			p := (gamma - dp) + theta
			q := ((gamma - dp) + gamma) + b.dy
			r := p / q
			stpf = stp + r*(b.sty-stp)
		} else if stp > b.stx {
			stpf = b.hi
		} else {
			stpf = b.lo
		}
	}

	// Update the interval which contains a minimizer.
	if fp > b.fx {
		b.sty, b.fy, b.dy = stp, fp, dp
	} else {
		if sgnd < 0 {
			b.sty, b.fy, b.dy = b.stx, b.fx, b.dx
		}
		b.stx, b.fx, b.dx = stp, fp, dp
	}

	return stpf
}
