// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package optim implements reverse-communication nonlinear optimization
// engines over the vspace vector primitives: nonlinear conjugate gradient
// (NLCG) and a limited-memory variable-metric method (VMLM), both driven by
// a step-search from the linesearch package. The engines never evaluate the
// objective themselves: each Start/Iterate call returns a Task telling the
// caller what to do next.
package optim

// Task tells the caller of a reverse-communication engine what to do next.
type Task int

const (
	// TaskStart is the state before Start is called.
	TaskStart Task = iota
	// TaskComputeFG requests the objective value and gradient at x.
	TaskComputeFG
	// TaskProjectX requests projection of x onto the feasible set.
	// Reserved for constrained variants; the unconstrained engines never
	// emit it and drivers treat it as identity.
	TaskProjectX
	// TaskProjectD requests projection of the search direction.
	// Reserved for constrained variants.
	TaskProjectD
	// TaskFreeVars requests the set of unbound variables.
	// Reserved for constrained variants.
	TaskFreeVars
	// TaskNewX signals an available iterate: x, f and g hold consistent
	// values the caller may inspect before re-entering Iterate. The initial
	// point is presented this way too, before the first step is taken.
	TaskNewX
	// TaskFinalX signals convergence: x holds the minimizer.
	TaskFinalX
	// TaskWarn signals termination with a usable but not fully converged
	// iterate.
	TaskWarn
	// TaskError signals failure; Err describes the cause.
	TaskError
)

// Final reports whether the task is terminal.
func (t Task) Final() bool { return t >= TaskFinalX }

func (t Task) String() string {
	switch t {
	case TaskStart:
		return "Start"
	case TaskComputeFG:
		return "ComputeFG"
	case TaskProjectX:
		return "ProjectX"
	case TaskProjectD:
		return "ProjectD"
	case TaskFreeVars:
		return "FreeVars"
	case TaskNewX:
		return "NewX"
	case TaskFinalX:
		return "FinalX"
	case TaskWarn:
		return "Warn"
	case TaskError:
		return "Error"
	}
	return "Unknown"
}
