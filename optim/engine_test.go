// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package optim

import (
	"math"
	"testing"

	"github.com/curioloop/optimpack/vspace"
)

// TestReverseCommunication drives an engine through the raw task loop the
// way an external caller owning the evaluation would.
func TestReverseCommunication(t *testing.T) {

	const n = 6
	space, err := vspace.NewSpace[float64](n)
	if err != nil {
		t.Fatal(err)
	}
	p := &Problem[float64]{
		Space: space,
		Eval:  shifted,
		Stop:  Termination{MaxIterations: 100, MaxEvaluations: 500},
	}
	o, err := p.VMLM()
	if err != nil {
		t.Fatal(err)
	}

	buf := make([]float64, n)
	x, err := space.Wrap(buf)
	if err != nil {
		t.Fatal(err)
	}
	g := space.Create()

	task := o.Start(x)
	if task != TaskComputeFG {
		t.Fatal("Wrong First Task:", task)
	}

	var f float64
	iterates := 0
	for i := 0; i < 10000 && !task.Final(); i++ {
		switch task {
		case TaskComputeFG:
			f = shifted(buf, g.Data())
		case TaskNewX:
			iterates++
		}
		task = o.Iterate(x, f, g)
	}

	switch {
	case task != TaskFinalX:
		t.Fatal("Not Converge:", task, o.Err())
	case iterates < 2:
		t.Fatal("Too Few Iterates:", iterates)
	case o.Iterations() == 0 || o.Evaluations() == 0:
		t.Fatal("Counters Not Advanced")
	case o.GradNorm() > 1e-3:
		t.Fatal("Gradient Too Large:", o.GradNorm())
	}
	for i, v := range buf {
		if math.Abs(v-float64(i+1)) > 1e-4 {
			t.Fatal("Inaccurate Solution:", buf)
		}
	}
}

func TestEngineSetters(t *testing.T) {

	space, err := vspace.NewSpace[float64](3)
	if err != nil {
		t.Fatal(err)
	}
	p := &Problem[float64]{Space: space, Eval: shifted}
	o, err := p.NLCG()
	if err != nil {
		t.Fatal(err)
	}

	if o.Space() != space {
		t.Fatal("Wrong Space")
	}
	if gatol, grtol := o.GradTol(); gatol != 0 || grtol != 1e-6 {
		t.Fatal("Wrong Default Tolerances:", gatol, grtol)
	}
	if stpmin, stpmax := o.StepBoundsOf(); stpmin != 1e-20 || stpmax != 1e+20 {
		t.Fatal("Wrong Default Step Bounds:", stpmin, stpmax)
	}

	if err := o.SetGradTol(-1, 0); err == nil {
		t.Fatal("Negative Tolerance Not Rejected")
	}
	if err := o.SetGradTol(1e-8, 1e-5); err != nil {
		t.Fatal(err)
	}
	if gatol, grtol := o.GradTol(); gatol != 1e-8 || grtol != 1e-5 {
		t.Fatal("Tolerances Not Updated:", gatol, grtol)
	}

	if err := o.SetStepBounds(1, 1); err == nil {
		t.Fatal("Empty Step Bounds Not Rejected")
	}
	if err := o.SetStepBounds(1e-10, 1e10); err != nil {
		t.Fatal(err)
	}
	if stpmin, stpmax := o.StepBoundsOf(); stpmin != 1e-10 || stpmax != 1e10 {
		t.Fatal("Step Bounds Not Updated:", stpmin, stpmax)
	}
}

func TestSpaceMismatchPanics(t *testing.T) {

	s1, err := vspace.NewSpace[float64](3)
	if err != nil {
		t.Fatal(err)
	}
	s2, err := vspace.NewSpace[float64](3)
	if err != nil {
		t.Fatal(err)
	}
	p := &Problem[float64]{Space: s1, Eval: shifted}
	o, err := p.NLCG()
	if err != nil {
		t.Fatal(err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("Foreign Variable Not Rejected")
		}
	}()
	o.Start(s2.Create())
}
