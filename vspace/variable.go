// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vspace

import (
	"fmt"
	"math"
)

// Variable is a vector belonging to a Space. It either owns private storage
// (Space.Create) or aliases a caller-provided contiguous buffer (Space.Wrap).
// All scalar reductions accumulate and return float64 regardless of the
// element type.
type Variable[T Float] struct {
	space *Space[T]
	data  []T
	owned bool
}

// Space returns the space the variable belongs to.
func (v *Variable[T]) Space() *Space[T] { return v.space }

// Data returns the backing buffer. For a wrapped variable this is the
// caller's own memory.
func (v *Variable[T]) Data() []T { return v.data }

// Owned reports whether the variable owns its storage.
func (v *Variable[T]) Owned() bool { return v.owned }

// Rewrap swaps the aliased buffer without reallocating.
// The new buffer length must equal the space length.
func (v *Variable[T]) Rewrap(buf []T) error {
	if len(buf) != v.space.size {
		return fmt.Errorf("%w: buffer length %d, space length %d", ErrShapeMismatch, len(buf), v.space.size)
	}
	v.data = buf
	v.owned = false
	return nil
}

// Zero sets every element to zero.
func (v *Variable[T]) Zero() {
	for i := range v.data {
		v.data[i] = 0
	}
}

// Fill sets every element to a.
func (v *Variable[T]) Fill(a float64) {
	e := T(a)
	for i := range v.data {
		v.data[i] = e
	}
}

// Norm1 returns the sum of the absolute values of the elements.
func (v *Variable[T]) Norm1() float64 {
	sum := 0.0
	for _, e := range v.data {
		sum += math.Abs(float64(e))
	}
	return sum
}

// Norm2 returns the Euclidean norm.
func (v *Variable[T]) Norm2() float64 {
	sum := 0.0
	for _, e := range v.data {
		f := float64(e)
		sum += f * f
	}
	return math.Sqrt(sum)
}

// NormInf returns the maximum absolute value of the elements.
func (v *Variable[T]) NormInf() float64 {
	norm := 0.0
	for _, e := range v.data {
		norm = math.Max(norm, math.Abs(float64(e)))
	}
	return norm
}
