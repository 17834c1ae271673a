// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vspace

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSpace(t *testing.T) {
	s, err := NewSpace[float64](3, 4)
	require.NoError(t, err)
	assert.Equal(t, 12, s.Len())
	assert.Equal(t, []int{3, 4}, s.Shape())

	// The returned shape is a copy.
	s.Shape()[0] = 99
	assert.Equal(t, []int{3, 4}, s.Shape())

	_, err = NewSpace[float64]()
	assert.ErrorIs(t, err, ErrInvalidDimension)
	_, err = NewSpace[float64](3, 0)
	assert.ErrorIs(t, err, ErrInvalidDimension)
	_, err = NewSpace[float32](-1)
	assert.ErrorIs(t, err, ErrInvalidDimension)
}

func TestCreateAndWrap(t *testing.T) {
	s, err := NewSpace[float64](5)
	require.NoError(t, err)

	v := s.Create()
	assert.True(t, v.Owned())
	assert.Same(t, s, v.Space())
	assert.Equal(t, make([]float64, 5), v.Data())

	buf := []float64{1, 2, 3, 4, 5}
	w, err := s.Wrap(buf)
	require.NoError(t, err)
	assert.False(t, w.Owned())

	// A wrapped variable aliases the caller's buffer both ways.
	buf[0] = -1
	assert.Equal(t, -1.0, w.Data()[0])
	w.Fill(7)
	assert.Equal(t, []float64{7, 7, 7, 7, 7}, buf)

	_, err = s.Wrap(buf[:4])
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestRewrap(t *testing.T) {
	s, err := NewSpace[float64](3)
	require.NoError(t, err)

	v := s.Create()
	assert.True(t, v.Owned())

	buf := []float64{1, 2, 3}
	require.NoError(t, v.Rewrap(buf))
	assert.False(t, v.Owned())
	assert.Equal(t, buf, v.Data())

	v.Zero()
	assert.Equal(t, []float64{0, 0, 0}, buf)

	assert.ErrorIs(t, v.Rewrap(make([]float64, 4)), ErrShapeMismatch)
	// A failed rewrap leaves the variable untouched.
	assert.Equal(t, buf, v.Data())
}

func TestNorms(t *testing.T) {
	s, err := NewSpace[float64](4)
	require.NoError(t, err)
	v, err := s.Wrap([]float64{3, -4, 0, 0})
	require.NoError(t, err)

	assert.Equal(t, 7.0, v.Norm1())
	assert.Equal(t, 5.0, v.Norm2())
	assert.Equal(t, 4.0, v.NormInf())

	v.Zero()
	assert.Equal(t, 0.0, v.Norm1())
	assert.Equal(t, 0.0, v.Norm2())
	assert.Equal(t, 0.0, v.NormInf())
}
