// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optim

import (
	"errors"
	"fmt"
	"slices"

	"github.com/curioloop/optimpack/linesearch"
	"github.com/curioloop/optimpack/vspace"
)

// Objective evaluates the function value at x and writes the gradient into
// g in place. It must be deterministic given x.
type Objective[T vspace.Float] func(x, g []T) (f float64)

// Termination specifies the stopping criteria enforced by the driver. The
// engine state machines themselves never stop on budgets: they keep
// iterating as long as the driver re-enters them.
type Termination struct {
	// MaxIterations stops the driver once the iteration count reaches the
	// limit. Negative means unbounded; zero stops at the initial iterate.
	MaxIterations int
	// MaxEvaluations stops the driver once the number of objective
	// evaluations reaches the limit, tested at each presented iterate.
	// Negative means unbounded.
	MaxEvaluations int
	// GradAbsTol and GradRelTol define convergence as
	//   ‖g‖₂ ≤ max(gatol, grtol·‖g₀‖₂)
	// Leaving both zero selects the defaults 0 and 1e-6.
	GradAbsTol float64
	GradRelTol float64
}

// StepBounds bounds the line-search step, requiring 0 ≤ Min < Max.
type StepBounds struct {
	Min, Max float64
}

// Problem specifies a minimization problem for the NLCG and VMLM engines.
type Problem[T vspace.Float] struct {
	// Space describes the variables (required).
	Space *vspace.Space[T]
	// Eval is the objective and gradient (required).
	Eval Objective[T]
	// Stop holds the driver stopping criteria.
	Stop Termination
	// Method selects the NLCG direction update; nil selects Hager-Zhang
	// with Shanno-Phua scaling.
	Method *Method
	// Mem is the VMLM history depth, silently clamped to the problem
	// dimension; zero selects 3.
	Mem int
	// Scaling selects the VMLM initial diagonal scaling.
	Scaling Scaling
	// Search overrides the default strong-Wolfe line search.
	Search linesearch.Searcher
	// Step overrides the default step bounds 1e-20 and 1e+20.
	Step *StepBounds
	// Logger receives progress output.
	Logger *Logger
}

func (p *Problem[T]) check() error {
	switch {
	case p.Space == nil:
		return errors.New("optim: variable space is required")
	case p.Eval == nil:
		return errors.New("optim: evaluation target is required")
	case p.Stop.GradAbsTol < 0 || p.Stop.GradRelTol < 0:
		return fmt.Errorf("%w: negative gradient tolerance", ErrInvalidParameter)
	case p.Step != nil && (p.Step.Min < 0 || p.Step.Max <= p.Step.Min):
		return fmt.Errorf("%w: step bounds [%g, %g]", ErrInvalidParameter, p.Step.Min, p.Step.Max)
	}
	return nil
}

// NLCG creates a nonlinear conjugate gradient engine for the problem.
func (p *Problem[T]) NLCG() (*NLCG[T], error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	method := DefaultMethod()
	if p.Method != nil {
		method = *p.Method
	}
	if !method.valid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMethod, method.Rule)
	}
	search := p.Search
	if search == nil {
		// Conjugate directions need the strict curvature tolerance.
		search, _ = linesearch.NewCubicWolfe(1e-4, 0.1, 1e-17)
	}
	o := &NLCG[T]{method: method}
	o.init(p, search)
	o.y = p.Space.Create()
	o.w = p.Space.Create()
	return o, nil
}

// VMLM creates a limited-memory variable-metric engine for the problem.
func (p *Problem[T]) VMLM() (*VMLM[T], error) {
	if err := p.check(); err != nil {
		return nil, err
	}
	if p.Mem < 0 {
		return nil, fmt.Errorf("%w: mem=%d", ErrInvalidParameter, p.Mem)
	}
	if p.Scaling < ScaleDefault || p.Scaling > BarzilaiBorwein {
		return nil, fmt.Errorf("%w: scaling=%d", ErrInvalidParameter, p.Scaling)
	}
	m := p.Mem
	if m == 0 {
		m = 3
	}
	if n := p.Space.Len(); m > n {
		m = n // cap the history at the problem dimension
	}
	search := p.Search
	if search == nil {
		search, _ = linesearch.NewCubicWolfe(1e-4, 0.9, 1e-17)
	}
	o := &VMLM[T]{scaling: p.Scaling, m: m}
	o.init(p, search)
	o.s = make([]*vspace.Variable[T], m)
	o.y = make([]*vspace.Variable[T], m)
	for i := 0; i < m; i++ {
		o.s[i] = p.Space.Create()
		o.y[i] = p.Space.Create()
	}
	o.rho = make([]float64, m)
	o.coef = make([]float64, m)
	return o, nil
}

// Outcome classifies why the driver stopped.
type Outcome int

const (
	// ConvGradNorm the gradient norm threshold was reached.
	ConvGradNorm Outcome = 1 + iota
	// OverIterLimit the iteration budget was exhausted.
	OverIterLimit
	// OverEvalLimit the evaluation budget was exhausted.
	OverEvalLimit
	// StopWarning the engine stopped with a usable iterate and a warning.
	StopWarning
	// StopError the engine failed; Result.Err holds the cause.
	StopError
	// HaltEvalPanic the objective evaluation panicked.
	HaltEvalPanic
)

func (o Outcome) String() string {
	switch o {
	case ConvGradNorm:
		return "ConvGradNorm"
	case OverIterLimit:
		return "OverIterLimit"
	case OverEvalLimit:
		return "OverEvalLimit"
	case StopWarning:
		return "StopWarning"
	case StopError:
		return "StopError"
	case HaltEvalPanic:
		return "HaltEvalPanic"
	}
	return "Unknown"
}

// Result contains the final state of a driver run.
type Result[T vspace.Float] struct {
	OK   bool      // Whether the run converged.
	F    float64   // Final function value.
	X, G []T       // Final iterate and gradient.
	Err  error     // Failure cause when Status is StopError.
	Summary
}

// Summary contains the run statistics.
type Summary struct {
	Status     Outcome // Why the driver stopped.
	NumIter    int     // Accepted steps.
	NumEval    int     // Objective evaluations.
	NumRestart int     // Steepest-descent restarts.
	GradNorm   float64 // ‖g‖₂ at the final iterate.
}

// rc is the reverse-communication surface the driver loop needs.
type rc[T vspace.Float] interface {
	Start(x *vspace.Variable[T]) Task
	Iterate(x *vspace.Variable[T], f float64, g *vspace.Variable[T]) Task
}

func (e *engine[T]) safeEval(x, g []T) (f float64, halted bool) {
	defer func() {
		if r := recover(); r != nil {
			halted = true
		}
	}()
	f = e.eval(x, g)
	return
}

// fit drives the reverse-communication loop end-to-end: evaluations on
// TaskComputeFG, budget checks and progress rows on each presented iterate,
// identity handling of the projection hooks, and outcome classification.
func fit[T vspace.Float](e rc[T], core *engine[T], x0 []T) *Result[T] {
	if len(x0) != core.space.Len() {
		panic("optim: initial x dimension not match space")
	}

	buf := slices.Clone(x0)
	x, _ := core.space.Wrap(buf)
	g := core.space.Create()

	log := core.logger
	if log.enable(LogIter) {
		log.log("%5s %6s %9s %24s %14s\n", "ITER", "EVAL", "RESTARTS", "F", "GNORM")
	}

	var f float64
	var outcome Outcome
	task := e.Start(x)

loop:
	for {
		switch task {
		case TaskComputeFG:
			var halted bool
			if f, halted = core.safeEval(buf, g.Data()); halted {
				outcome = HaltEvalPanic
				break loop
			}

		case TaskProjectX, TaskProjectD, TaskFreeVars:
			// Unconstrained problem: the hooks are the identity.

		case TaskNewX, TaskFinalX:
			if log.enable(LogIter) {
				log.log("%5d %6d %9d %24.16e %14.6e\n",
					core.iters, core.evals, core.restarts, f, core.gnorm)
			}
			if task == TaskFinalX {
				outcome = ConvGradNorm
				break loop
			}
			if core.maxIter >= 0 && core.iters >= core.maxIter {
				outcome = OverIterLimit
				break loop
			}
			if core.maxEval >= 0 && core.evals >= core.maxEval {
				outcome = OverEvalLimit
				break loop
			}

		case TaskWarn:
			outcome = StopWarning
			break loop

		case TaskError:
			outcome = StopError
			break loop
		}
		task = e.Iterate(x, f, g)
	}

	if log.enable(LogLast) {
		log.log("%s: iter=%d eval=%d restarts=%d f=%.9e |g|=%.3e\n",
			outcome, core.iters, core.evals, core.restarts, f, core.gnorm)
	}

	return &Result[T]{
		OK: outcome == ConvGradNorm,
		F:  f, X: buf, G: g.Data(),
		Err: core.err,
		Summary: Summary{
			Status:     outcome,
			NumIter:    core.iters,
			NumEval:    core.evals,
			NumRestart: core.restarts,
			GradNorm:   core.gnorm,
		},
	}
}
