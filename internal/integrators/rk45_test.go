package integrators

import (
	"math"
	"testing"

	"github.com/SineadMorris/trainings/internal/ode"
)

func TestRK45Step(t *testing.T) {
	integ := NewRK45()
	sys := &harmonicOscillator{}
	y := ode.State{1.0, 0.0}

	h := 0.01
	for i := 0; i < 1000; i++ {
		y = integ.Step(sys, y, nil, float64(i)*h, h)
	}

	if !y.IsFinite() {
		t.Error("RK45 produced a non-finite state")
	}
	if math.Abs(y[0]-math.Cos(10)) > 1e-6 {
		t.Errorf("position error too large: got %.8f, expected %.8f", y[0], math.Cos(10))
	}
}

func TestRK45EnergyConservation(t *testing.T) {
	integ := NewRK45()
	sys := &harmonicOscillator{}
	y0 := ode.State{1.0, 0.0}

	initialEnergy := sys.Energy(y0)
	y := y0.Clone()
	h := 0.01

	for i := 0; i < 10000; i++ {
		y = integ.Step(sys, y, nil, float64(i)*h, h)
	}

	drift := math.Abs(sys.Energy(y)-initialEnergy) / initialEnergy
	if drift > 1e-6 {
		t.Errorf("RK45 energy drift too high: %e", drift)
	}
}

func TestRK45StepAdaptive(t *testing.T) {
	integ := NewRK45()
	sys := &harmonicOscillator{}
	y0 := ode.State{1.0, 0.0}

	y, ratio, hNext := integ.StepAdaptive(sys, y0, nil, 0, 0.1, 1e-8, 1e-8)

	if !y.IsFinite() {
		t.Error("StepAdaptive produced a non-finite state")
	}
	if ratio < 0 {
		t.Errorf("negative error ratio: %f", ratio)
	}
	if hNext <= 0 {
		t.Errorf("StepAdaptive suggested invalid step: %f", hNext)
	}
}

func TestRK45GrowsEasySteps(t *testing.T) {
	integ := NewRK45()
	sys := &harmonicOscillator{}
	// A tiny step on a smooth problem is far inside tolerance, so the
	// suggestion should grow it.
	_, ratio, hNext := integ.StepAdaptive(sys, ode.State{1.0, 0.0}, nil, 0, 1e-4, 1e-6, 1e-6)
	if ratio > 1 {
		t.Fatalf("tiny step rejected, ratio %f", ratio)
	}
	if hNext <= 1e-4 {
		t.Errorf("expected growth beyond 1e-4, got %e", hNext)
	}
}

func TestRK45ShrinksHardSteps(t *testing.T) {
	integ := NewRK45()
	sys := &harmonicOscillator{}
	// A quarter period in one step cannot meet a tight tolerance.
	_, ratio, hNext := integ.StepAdaptive(sys, ode.State{1.0, 0.0}, nil, 0, 1.5, 1e-12, 1e-12)
	if ratio <= 1 {
		t.Fatalf("oversized step accepted, ratio %f", ratio)
	}
	if hNext >= 1.5 {
		t.Errorf("expected shrink below 1.5, got %e", hNext)
	}
}

func TestRK45AdaptiveSolveAccuracy(t *testing.T) {
	sys := ode.FuncSystem{
		Names: []string{"y"},
		Fn: func(t float64, y ode.State, p ode.Params) ode.State {
			return ode.State{-y[0]}
		},
	}
	grid := []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10}
	cfg := ode.Config{Adaptive: true, ATol: 1e-10, RTol: 1e-8}
	tr, err := ode.Solve(sys, NewRK45(), ode.State{1}, grid, nil, cfg)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}
	for i, tt := range grid {
		exact := math.Exp(-tt)
		if relErr := math.Abs(tr.States[i][0]-exact) / exact; relErr > 1e-6 {
			t.Errorf("t=%v: rel error %e", tt, relErr)
		}
	}
}

func TestRK45VsRK4Accuracy(t *testing.T) {
	rk4 := NewRK4()
	rk45 := NewRK45()
	sys := &harmonicOscillator{}
	y4 := ode.State{1.0, 0.0}
	y45 := ode.State{1.0, 0.0}
	h := 0.1

	for i := 0; i < 100; i++ {
		y4 = rk4.Step(sys, y4, nil, float64(i)*h, h)
		y45 = rk45.Step(sys, y45, nil, float64(i)*h, h)
	}

	e4 := math.Abs(sys.Energy(y4) - 0.5)
	e45 := math.Abs(sys.Energy(y45) - 0.5)
	if e45 > e4 {
		t.Errorf("fifth-order drift %e exceeds fourth-order drift %e", e45, e4)
	}
}
