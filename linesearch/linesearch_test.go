// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linesearch

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scalar is a 1-D objective with derivative, for driving a Searcher.
type scalar func(a float64) (f, df float64)

// quad is f(α) = (α - m)², minimized at m.
func quad(m float64) scalar {
	return func(a float64) (float64, float64) {
		return (a - m) * (a - m), 2 * (a - m)
	}
}

// drive runs the search loop until a terminal status, returning the final
// status and step. It fails the test after maxIter evaluations.
func drive(t *testing.T, s Searcher, fn scalar, step float64) (Status, float64) {
	t.Helper()
	f0, df0 := fn(0)
	step, err := s.Start(f0, df0, step, 1e-20, 1e20)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		f, df := fn(step)
		st, next := s.Iterate(step, f, df)
		if st.Finished() {
			return st, next
		}
		step = next
	}
	t.Fatal("search did not terminate")
	return NotStarted, 0
}

func TestStatusPredicates(t *testing.T) {
	assert.False(t, Searching.Finished())
	assert.True(t, Converged.Finished())
	assert.True(t, Converged.Success())
	assert.False(t, Converged.HasWarnings())
	assert.True(t, WarnXtol.Finished())
	assert.True(t, WarnXtol.HasWarnings())
	assert.False(t, WarnXtol.HasErrors())
	assert.True(t, ErrBracket.HasErrors())
	assert.False(t, ErrBracket.HasWarnings())
}

func TestBeginValidation(t *testing.T) {
	s, err := NewBacktracking(1e-4)
	require.NoError(t, err)

	_, err = s.Start(1, -1, 1, -1, 10)
	assert.ErrorIs(t, err, ErrInvalidStepBounds)
	_, err = s.Start(1, -1, 1, 10, 1)
	assert.ErrorIs(t, err, ErrInvalidStepBounds)
	_, err = s.Start(1, 0, 1, 0, 10)
	assert.ErrorIs(t, err, ErrNotADescentDirection)
	assert.Equal(t, ErrNotDescent, s.Status())

	// The initial step is clipped into the bounds.
	step, err := s.Start(1, -1, 100, 0.5, 10)
	require.NoError(t, err)
	assert.Equal(t, 10.0, step)
	step, err = s.Start(1, -1, 0.1, 0.5, 10)
	require.NoError(t, err)
	assert.Equal(t, 0.5, step)
}

func TestCubicWolfeArgs(t *testing.T) {
	for _, c := range []struct{ ftol, gtol, xtol float64 }{
		{-1e-4, 0.9, 1e-17},
		{0.5, 0.5, 1e-17}, // ftol must be < gtol
		{0.9, 0.1, 1e-17},
		{1e-4, 1, 1e-17},
		{1e-4, 0.9, -1},
		{1e-4, 0.9, 1},
	} {
		_, err := NewCubicWolfe(c.ftol, c.gtol, c.xtol)
		assert.ErrorIs(t, err, ErrInvalidTolerance, "ftol=%g gtol=%g xtol=%g", c.ftol, c.gtol, c.xtol)
	}
	s, err := NewCubicWolfe(1e-4, 0.9, 1e-17)
	require.NoError(t, err)
	assert.Equal(t, NotStarted, s.Status())
}

func TestCubicWolfeQuadratic(t *testing.T) {
	const ftol, gtol = 1e-4, 0.9
	s, err := NewCubicWolfe(ftol, gtol, 1e-17)
	require.NoError(t, err)

	for _, init := range []float64{1e-3, 0.5, 1, 7, 100} {
		fn := quad(1)
		st, step := drive(t, s, fn, init)
		assert.Equal(t, Converged, st, "init=%g", init)

		f0, df0 := fn(0)
		f, df := fn(step)
		assert.LessOrEqual(t, f, f0+ftol*step*df0, "sufficient decrease, init=%g", init)
		assert.LessOrEqual(t, math.Abs(df), gtol*math.Abs(df0), "curvature, init=%g", init)
	}
}

func TestCubicWolfeReuse(t *testing.T) {
	s, err := NewCubicWolfe(1e-4, 0.1, 1e-17)
	require.NoError(t, err)

	// One instance serves many searches; Start resets the bracket.
	for _, m := range []float64{0.5, 2, 10} {
		st, step := drive(t, s, quad(m), 1)
		assert.Equal(t, Converged, st)
		assert.InDelta(t, m, step, 0.1*m+1e-8)
	}
}

func TestBacktrackingHalves(t *testing.T) {
	s, err := NewBacktracking(0.9)
	require.NoError(t, err)

	// With a demanding ftol the unit step on (α-1)² is rejected and halved
	// until the Armijo test passes.
	fn := quad(1)
	f0, df0 := fn(0)
	step, err := s.Start(f0, df0, 1, 1e-20, 1e20)
	require.NoError(t, err)
	assert.Equal(t, 1.0, step)

	seen := []float64{}
	for i := 0; i < 100; i++ {
		f, _ := fn(step)
		st, next := s.Iterate(step, f, 0)
		if st.Finished() {
			require.Equal(t, Converged, st)
			break
		}
		assert.Equal(t, 0.5*step, next)
		seen = append(seen, next)
		step = next
	}
	assert.NotEmpty(t, seen)

	f, _ := fn(step)
	assert.LessOrEqual(t, f, f0+0.9*step*df0)
}

func TestBacktrackingStepMin(t *testing.T) {
	s, err := NewBacktracking(0.5)
	require.NoError(t, err)

	// f increases along the direction beyond the origin slope info, so the
	// search shrinks into the lower bound.
	fn := func(a float64) (float64, float64) { return 1 + a, -1 }
	f0, df0 := fn(0)
	step, err := s.Start(f0, df0, 1, 0.25, 10)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		f, df := fn(step)
		st, next := s.Iterate(step, f, df)
		if st.Finished() {
			assert.Equal(t, WarnStepMin, st)
			assert.Equal(t, 0.25, next)
			return
		}
		step = next
	}
	t.Fatal("search did not terminate")
}

func TestNonmonotoneArgs(t *testing.T) {
	_, err := NewNonmonotone(0, 1e-4, 0.1, 0.9)
	assert.ErrorIs(t, err, ErrInvalidMemory)
	for _, c := range []struct{ ftol, amin, amax float64 }{
		{-1, 0.1, 0.9},
		{1, 0.1, 0.9},
		{1e-4, 0, 0.9},
		{1e-4, 0.9, 0.1},
		{1e-4, 0.5, 0.5},
		{1e-4, 0.1, 1},
	} {
		_, err := NewNonmonotone(5, c.ftol, c.amin, c.amax)
		assert.ErrorIs(t, err, ErrInvalidTolerance, "ftol=%g amin=%g amax=%g", c.ftol, c.amin, c.amax)
	}
}

func TestNonmonotoneAcceptsAgainstMemory(t *testing.T) {
	n, err := NewNonmonotone(3, 1e-4, 0.1, 0.9)
	require.NoError(t, err)

	// Seed the memory with a high value: a step that increases f relative
	// to the current iterate but stays below the memory max is accepted.
	_, err = n.Start(10, -1, 1, 1e-20, 1e20)
	require.NoError(t, err)
	st, _ := n.Iterate(1, 9, 0)
	require.Equal(t, Converged, st)

	_, err = n.Start(5, -1, 1, 1e-20, 1e20)
	require.NoError(t, err)
	st, step := n.Iterate(1, 8, 0) // above 5, below max(10, 5)
	assert.Equal(t, Converged, st)
	assert.Equal(t, 1.0, step)
}

func TestNonmonotoneSafeguardedShrink(t *testing.T) {
	n, err := NewNonmonotone(1, 0.5, 0.1, 0.9)
	require.NoError(t, err)

	fn := quad(0.25)
	f0, df0 := fn(0)
	step, err := n.Start(f0, df0, 1, 1e-20, 1e20)
	require.NoError(t, err)

	prev := step
	for i := 0; i < 100; i++ {
		f, df := fn(step)
		st, next := n.Iterate(step, f, df)
		if st.Finished() {
			require.Equal(t, Converged, st)
			f, _ := fn(next)
			assert.LessOrEqual(t, f, f0+0.5*next*df0)
			return
		}
		// Each rejected trial shrinks within the safeguard bounds.
		assert.GreaterOrEqual(t, next, 0.1*prev)
		assert.LessOrEqual(t, next, 0.9*prev)
		prev, step = next, next
	}
	t.Fatal("search did not terminate")
}
