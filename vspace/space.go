// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package vspace provides the dense vector-space primitives shared by the
// optimization engines: spaces describing a finite-dimensional real vector
// space, variables belonging to one space, and the fused linear-algebra
// operations the algorithms are built from.
package vspace

import (
	"errors"
	"fmt"
)

// Float is the set of element types a Space may carry.
type Float interface {
	~float32 | ~float64
}

var (
	// ErrInvalidDimension reports a space constructed with a non-positive dimension.
	ErrInvalidDimension = errors.New("vspace: invalid dimension")
	// ErrShapeMismatch reports a buffer whose size disagrees with the space length.
	ErrShapeMismatch = errors.New("vspace: shape mismatch")
)

// Space describes a finite-dimensional real vector space with a fixed shape.
// A Space is immutable after creation and may be shared by any number of
// Variables. The element type is carried by the type parameter.
type Space[T Float] struct {
	shape []int
	size  int
}

// NewSpace creates a space with the given shape.
// Every dimension must be positive and at least one dimension is required.
func NewSpace[T Float](shape ...int) (*Space[T], error) {
	if len(shape) == 0 {
		return nil, fmt.Errorf("%w: empty shape", ErrInvalidDimension)
	}
	size := 1
	for i, dim := range shape {
		if dim <= 0 {
			return nil, fmt.Errorf("%w: shape[%d] = %d", ErrInvalidDimension, i, dim)
		}
		size *= dim
	}
	s := &Space[T]{
		shape: append([]int(nil), shape...),
		size:  size,
	}
	return s, nil
}

// Len returns the total number of elements.
func (s *Space[T]) Len() int { return s.size }

// Shape returns a copy of the dimension tuple.
func (s *Space[T]) Shape() []int { return append([]int(nil), s.shape...) }

// Create returns a new variable with owned zero-initialized storage.
func (s *Space[T]) Create() *Variable[T] {
	return &Variable[T]{
		space: s,
		data:  make([]T, s.size),
		owned: true,
	}
}

// Wrap returns a new variable aliasing the caller-provided buffer.
// The buffer length must equal the space length.
func (s *Space[T]) Wrap(buf []T) (*Variable[T], error) {
	if len(buf) != s.size {
		return nil, fmt.Errorf("%w: buffer length %d, space length %d", ErrShapeMismatch, len(buf), s.size)
	}
	return &Variable[T]{space: s, data: buf}, nil
}
