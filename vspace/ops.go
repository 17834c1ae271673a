// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package vspace

// Operations over two or three variables require all operands to belong to
// the same space; mixing spaces is a programming error and panics. The
// destination may alias any input: inputs are read element-wise before the
// destination element is written.

func sameSpace[T Float](vs ...*Variable[T]) {
	s := vs[0].space
	for _, v := range vs[1:] {
		if v.space != s {
			panic("vspace: operands from different spaces")
		}
	}
}

// Copy copies src into dst.
func Copy[T Float](dst, src *Variable[T]) {
	sameSpace(dst, src)
	copy(dst.data, src.data)
}

// Scale computes dst = a*src.
func Scale[T Float](dst *Variable[T], a float64, src *Variable[T]) {
	sameSpace(dst, src)
	d, s := dst.data, src.data
	for i, e := range s {
		d[i] = T(a * float64(e))
	}
}

// Swap exchanges the contents of x and y.
func Swap[T Float](x, y *Variable[T]) {
	sameSpace(x, y)
	a, b := x.data, y.data
	for i := range a {
		a[i], b[i] = b[i], a[i]
	}
}

// Dot returns the inner product of x and y.
func Dot[T Float](x, y *Variable[T]) float64 {
	sameSpace(x, y)
	a, b := x.data, y.data
	sum := 0.0
	for i, e := range a {
		sum += float64(e) * float64(b[i])
	}
	return sum
}

// Combine computes dst = a*x + b*y.
func Combine[T Float](dst *Variable[T], a float64, x *Variable[T], b float64, y *Variable[T]) {
	sameSpace(dst, x, y)
	d, p, q := dst.data, x.data, y.data
	for i := range d {
		d[i] = T(a*float64(p[i]) + b*float64(q[i]))
	}
}

// Combine3 computes dst = a*x + b*y + c*z.
func Combine3[T Float](dst *Variable[T], a float64, x *Variable[T], b float64, y *Variable[T], c float64, z *Variable[T]) {
	sameSpace(dst, x, y, z)
	d, p, q, r := dst.data, x.data, y.data, z.data
	for i := range d {
		d[i] = T(a*float64(p[i]) + b*float64(q[i]) + c*float64(r[i]))
	}
}
