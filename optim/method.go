// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optim

import "strings"

// UpdateRule selects the conjugacy coefficient formula used by NLCG.
type UpdateRule int

const (
	// FletcherReeves β = ⟨g,g⟩ / ⟨g₀,g₀⟩
	FletcherReeves UpdateRule = iota
	// HestenesStiefel β = ⟨g,y⟩ / ⟨d,y⟩
	HestenesStiefel
	// PolakRibiere β = ⟨g,y⟩ / ⟨g₀,g₀⟩ (Polak-Ribière-Polyak)
	PolakRibiere
	// Fletcher β = -⟨g,g⟩ / ⟨d,g₀⟩ (conjugate descent)
	Fletcher
	// LiuStorey β = -⟨g,y⟩ / ⟨d,g₀⟩
	LiuStorey
	// DaiYuan β = ⟨g,g⟩ / ⟨d,y⟩
	DaiYuan
	// PerryShanno forms the memoryless BFGS direction from the latest
	// (s,y) pair instead of a plain β update.
	PerryShanno
	// HagerZhang β = ⟨y - 2d⟨y,y⟩/⟨d,y⟩, g⟩ / ⟨d,y⟩
	HagerZhang
)

func (r UpdateRule) String() string {
	switch r {
	case FletcherReeves:
		return "FletcherReeves"
	case HestenesStiefel:
		return "HestenesStiefel"
	case PolakRibiere:
		return "PolakRibiere"
	case Fletcher:
		return "Fletcher"
	case LiuStorey:
		return "LiuStorey"
	case DaiYuan:
		return "DaiYuan"
	case PerryShanno:
		return "PerryShanno"
	case HagerZhang:
		return "HagerZhang"
	}
	return "Unknown"
}

// Method selects the NLCG direction update: one base formula plus two
// independent modifiers.
type Method struct {
	Rule UpdateRule
	// Powell clips β at zero, forcing a steepest-descent restart instead of
	// a negative conjugacy coefficient.
	Powell bool
	// ShannoPhua rescales the initial step of each line search using the
	// accepted step and slope of the previous iteration.
	ShannoPhua bool
}

// DefaultMethod is Hager-Zhang with the Shanno-Phua initial-step scaling.
func DefaultMethod() Method {
	return Method{Rule: HagerZhang, ShannoPhua: true}
}

func (m Method) valid() bool {
	return m.Rule >= FletcherReeves && m.Rule <= HagerZhang
}

func (m Method) String() string {
	var b strings.Builder
	b.WriteString(m.Rule.String())
	if m.Powell {
		b.WriteString("+Powell")
	}
	if m.ShannoPhua {
		b.WriteString("+ShannoPhua")
	}
	return b.String()
}

// Scaling selects the initial diagonal multiplier γ applied before the
// VMLM two-loop recursion.
type Scaling int

const (
	// ScaleDefault selects OrenSpedicato.
	ScaleDefault Scaling = iota
	// ScaleNone applies γ = 1.
	ScaleNone
	// OrenSpedicato applies γ = ⟨s,y⟩ / ⟨y,y⟩.
	OrenSpedicato
	// BarzilaiBorwein applies γ = ⟨s,s⟩ / ⟨s,y⟩.
	BarzilaiBorwein
)

func (s Scaling) String() string {
	switch s {
	case ScaleDefault:
		return "Default"
	case ScaleNone:
		return "None"
	case OrenSpedicato:
		return "OrenSpedicato"
	case BarzilaiBorwein:
		return "BarzilaiBorwein"
	}
	return "Unknown"
}
