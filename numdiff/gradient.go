// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package numdiff estimates gradients of scalar objectives by finite
// differences.
//
// # Reference:
//
//   - https://en.wikipedia.org/wiki/Finite_difference
package numdiff

import (
	"errors"
	"math"

	"github.com/curioloop/optimpack/vspace"
)

var sqrtEps = math.Sqrt(math.Nextafter(1, 2) - 1)
var cubeEps = math.Pow(math.Nextafter(1, 2)-1, float64(1)/3)

type Method int

const (
	// Forward use the first order accuracy forward difference.
	Forward Method = iota
	// Central use the second order accuracy central difference.
	Central
)

// Func evaluates a scalar objective at x.
type Func[T vspace.Float] func(x []T) float64

// Objective evaluates a scalar objective at x and writes its analytic
// gradient into g.
type Objective[T vspace.Float] func(x, g []T) float64

// Gradient approximates the gradient of f at x and stores it in g.
// The point x is perturbed in place and restored before returning.
// The step size is h = sign(x)·eps·max(1, |x|) per component, with eps
// matched to the truncation order of the method.
func Gradient[T vspace.Float](f Func[T], x, g []T, method Method) error {
	switch {
	case f == nil:
		return errors.New("numdiff: object function is required")
	case len(x) == 0:
		return errors.New("numdiff: empty point")
	case len(x) != len(g):
		return errors.New("numdiff: invalid gradient dimensions")
	}

	var eps float64
	switch method {
	case Forward:
		eps = sqrtEps
	case Central:
		eps = cubeEps
	default:
		return errors.New("numdiff: unknown method")
	}

	var f0 float64
	if method == Forward {
		f0 = f(x)
	}

	for i := range x {
		t := x[i]
		v := float64(t)
		s := T(math.Copysign(eps, v) * math.Max(1, math.Abs(v)))
		switch method {
		case Forward:
			x[i] = t + s
			g[i] = T((f(x) - f0) / float64(s))
		case Central:
			x[i] = t - s
			f1 := f(x)
			x[i] = t + s
			f2 := f(x)
			g[i] = T((f2 - f1) / (2 * float64(s)))
		}
		x[i] = t
	}
	return nil
}

// Check compares the analytic gradient of obj at x against a
// finite-difference approximation and returns the worst relative
// component error, scaled by max(1, |analytic|).
func Check[T vspace.Float](obj Objective[T], x []T, method Method) (maxRelErr float64, err error) {
	if obj == nil {
		return 0, errors.New("numdiff: object function is required")
	}

	analytic := make([]T, len(x))
	numeric := make([]T, len(x))
	scratch := make([]T, len(x))
	obj(x, analytic)

	f := func(p []T) float64 { return obj(p, scratch) }
	if err := Gradient(f, x, numeric, method); err != nil {
		return 0, err
	}

	for i := range analytic {
		a, n := float64(analytic[i]), float64(numeric[i])
		if d := math.Abs(a - n); d > 0 {
			if e := d / math.Max(1, math.Abs(a)); e > maxRelErr {
				maxRelErr = e
			}
		}
	}
	return maxRelErr, nil
}
