// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/curioloop/optimpack/numdiff"
	"github.com/curioloop/optimpack/optim"
	"github.com/curioloop/optimpack/vspace"
)

var (
	problem   string
	dim       int
	engine    string
	rule      string
	powell    bool
	shanno    bool
	mem       int
	scaling   string
	maxIters  int
	maxEvals  int
	gatol     float64
	grtol     float64
	trace     bool
	checkGrad bool
)

var minimizeCmd = &cobra.Command{
	Use:   "minimize",
	Short: "Minimize a built-in test problem",
	Long:  `Runs one of the built-in objectives and reports the solution.`,
	RunE:  runMinimize,
}

func init() {
	minimizeCmd.Flags().StringVar(&problem, "problem", "rosenbrock", "Objective: rosenbrock, quadratic, sumsq")
	minimizeCmd.Flags().IntVar(&dim, "dim", 10, "Problem dimension")
	minimizeCmd.Flags().StringVar(&engine, "engine", "vmlm", "Engine: nlcg, vmlm")
	minimizeCmd.Flags().StringVar(&rule, "rule", "hz", "NLCG update rule: fr, hs, prp, cd, ls, dy, ps, hz")
	minimizeCmd.Flags().BoolVar(&powell, "powell", false, "Apply the Powell restart modifier")
	minimizeCmd.Flags().BoolVar(&shanno, "shanno-phua", true, "Apply the Shanno-Phua step scaling")
	minimizeCmd.Flags().IntVar(&mem, "mem", 0, "VMLM history depth (0 = default)")
	minimizeCmd.Flags().StringVar(&scaling, "scaling", "os", "VMLM scaling: none, os, bb")
	minimizeCmd.Flags().IntVar(&maxIters, "max-iters", 500, "Iteration budget (negative = unbounded)")
	minimizeCmd.Flags().IntVar(&maxEvals, "max-evals", -1, "Evaluation budget (negative = unbounded)")
	minimizeCmd.Flags().Float64Var(&gatol, "gatol", 0, "Absolute gradient tolerance")
	minimizeCmd.Flags().Float64Var(&grtol, "grtol", 1e-6, "Relative gradient tolerance")
	minimizeCmd.Flags().BoolVar(&trace, "trace", false, "Print one progress row per iterate")
	minimizeCmd.Flags().BoolVar(&checkGrad, "check-grad", false, "Verify the analytic gradient before minimizing")

	rootCmd.AddCommand(minimizeCmd)
}

func runMinimize(cmd *cobra.Command, args []string) error {
	obj, x0, err := buildProblem(problem, dim)
	if err != nil {
		return err
	}

	if checkGrad {
		maxErr, err := numdiff.Check(numdiff.Objective[float64](obj), x0, numdiff.Central)
		if err != nil {
			return fmt.Errorf("gradient check failed: %w", err)
		}
		slog.Info("Gradient check", "problem", problem, "maxRelErr", maxErr)
	}

	space, err := vspace.NewSpace[float64](len(x0))
	if err != nil {
		return err
	}

	level := optim.LogLast
	if trace {
		level = optim.LogIter
	}

	p := &optim.Problem[float64]{
		Space: space,
		Eval:  obj,
		Stop: optim.Termination{
			MaxIterations:  maxIters,
			MaxEvaluations: maxEvals,
			GradAbsTol:     gatol,
			GradRelTol:     grtol,
		},
		Logger: &optim.Logger{Level: level, Out: os.Stderr},
	}

	slog.Info("Starting minimization", "problem", problem, "dim", len(x0), "engine", engine)
	start := time.Now()

	var result *optim.Result[float64]
	switch engine {
	case "nlcg":
		r, err := parseRule(rule)
		if err != nil {
			return err
		}
		p.Method = &optim.Method{Rule: r, Powell: powell, ShannoPhua: shanno}
		o, err := p.NLCG()
		if err != nil {
			return err
		}
		result = o.Fit(x0)
	case "vmlm":
		s, err := parseScaling(scaling)
		if err != nil {
			return err
		}
		p.Mem, p.Scaling = mem, s
		o, err := p.VMLM()
		if err != nil {
			return err
		}
		result = o.Fit(x0)
	default:
		return fmt.Errorf("unknown engine: %s", engine)
	}

	elapsed := time.Since(start)
	slog.Info("Minimization finished",
		"status", result.Status.String(),
		"f", result.F,
		"gnorm", result.GradNorm,
		"iters", result.NumIter,
		"evals", result.NumEval,
		"restarts", result.NumRestart,
		"elapsed", elapsed.String())

	if !result.OK && result.Err != nil {
		return result.Err
	}
	if len(result.X) <= 16 {
		fmt.Printf("x = %v\n", result.X)
	}
	return nil
}

func parseRule(name string) (optim.UpdateRule, error) {
	switch name {
	case "fr":
		return optim.FletcherReeves, nil
	case "hs":
		return optim.HestenesStiefel, nil
	case "prp":
		return optim.PolakRibiere, nil
	case "cd":
		return optim.Fletcher, nil
	case "ls":
		return optim.LiuStorey, nil
	case "dy":
		return optim.DaiYuan, nil
	case "ps":
		return optim.PerryShanno, nil
	case "hz":
		return optim.HagerZhang, nil
	}
	return 0, fmt.Errorf("unknown update rule: %s", name)
}

func parseScaling(name string) (optim.Scaling, error) {
	switch name {
	case "none":
		return optim.ScaleNone, nil
	case "os":
		return optim.OrenSpedicato, nil
	case "bb":
		return optim.BarzilaiBorwein, nil
	}
	return 0, fmt.Errorf("unknown scaling: %s", name)
}

// buildProblem returns the objective and the conventional starting point of
// one of the built-in test functions.
func buildProblem(name string, n int) (optim.Objective[float64], []float64, error) {
	if n < 2 {
		return nil, nil, fmt.Errorf("dimension too small: %d", n)
	}
	switch name {
	case "rosenbrock":
		if n%2 != 0 {
			return nil, nil, fmt.Errorf("rosenbrock needs an even dimension: %d", n)
		}
		x0 := make([]float64, n)
		for i := 0; i < n; i += 2 {
			x0[i], x0[i+1] = -1.2, 1
		}
		return rosenbrock, x0, nil
	case "quadratic":
		return tridiag(n), make([]float64, n), nil
	case "sumsq":
		return sumsq, make([]float64, n), nil
	}
	return nil, nil, fmt.Errorf("unknown problem: %s", name)
}

// rosenbrock is the extended Rosenbrock function over consecutive pairs.
func rosenbrock(x, g []float64) float64 {
	f := 0.0
	for i := 0; i < len(x); i += 2 {
		a, b := x[i], x[i+1]
		t1, t2 := 1-a, b-a*a
		f += t1*t1 + 100*t2*t2
		g[i] = -400*a*t2 - 2*t1
		g[i+1] = 200 * t2
	}
	return f
}

// sumsq is f(x) = Σ (x_i - i - 1)², minimized at x = (1, 2, ..., n).
func sumsq(x, g []float64) float64 {
	f := 0.0
	for i, v := range x {
		r := v - float64(i+1)
		f += r * r
		g[i] = 2 * r
	}
	return f
}

// tridiag builds f(x) = ½⟨Ax,x⟩ - ⟨b,x⟩ for the second-difference matrix
// A = tridiag(-1, 2, -1) with b = 1, a strictly convex quadratic.
func tridiag(n int) optim.Objective[float64] {
	return func(x, g []float64) float64 {
		f := 0.0
		for i, v := range x {
			av := 2 * v
			if i > 0 {
				av -= x[i-1]
			}
			if i < n-1 {
				av -= x[i+1]
			}
			g[i] = av - 1
			f += v * (0.5*av - 1)
		}
		return f
	}
}
