// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package numdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sphere(x []float64) float64 {
	f := 0.0
	for _, v := range x {
		f += v * v
	}
	return f
}

func rosenbrock(x, g []float64) float64 {
	a, b := x[0], x[1]
	if g != nil {
		g[0] = -400*a*(b-a*a) - 2*(1-a)
		g[1] = 200 * (b - a*a)
	}
	t1, t2 := 1-a, b-a*a
	return t1*t1 + 100*t2*t2
}

func TestGradientCheckArgs(t *testing.T) {
	x := []float64{1, 2}
	g := []float64{0, 0}
	assert.Error(t, Gradient[float64](nil, x, g, Forward))
	assert.Error(t, Gradient(sphere, nil, nil, Forward))
	assert.Error(t, Gradient(sphere, x, g[:1], Forward))
	assert.Error(t, Gradient(sphere, x, g, Method(42)))
}

func TestGradientSphere(t *testing.T) {
	x := []float64{1, -2, 3.5, 0}
	g := make([]float64, len(x))

	for method, tol := range map[Method]float64{Forward: 1e-6, Central: 1e-9} {
		saved := append([]float64(nil), x...)
		require.NoError(t, Gradient(sphere, x, g, method))
		assert.Equal(t, saved, x, "x must be restored")
		for i := range x {
			assert.InDelta(t, 2*x[i], g[i], tol*(1+2*absf(x[i])))
		}
	}
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func TestGradientFloat32(t *testing.T) {
	x := []float32{0.5, -1.5}
	g := make([]float32, 2)
	require.NoError(t, Gradient(func(p []float32) float64 {
		return float64(p[0]*p[0] + p[1]*p[1])
	}, x, g, Central))
	assert.InDelta(t, 1.0, float64(g[0]), 1e-3)
	assert.InDelta(t, -3.0, float64(g[1]), 1e-3)
}

func TestCheckRosenbrock(t *testing.T) {
	x := []float64{-1.2, 1}
	err, e := Check(rosenbrock, x, Central)
	require.NoError(t, e)
	assert.Less(t, err, 1e-6)

	// A broken gradient must be flagged.
	broken := func(x, g []float64) float64 {
		f := rosenbrock(x, g)
		g[0] += 1
		return f
	}
	err, e = Check(broken, x, Central)
	require.NoError(t, e)
	assert.Greater(t, err, 1e-3)
}
