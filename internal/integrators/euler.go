package integrators

import "github.com/SineadMorris/trainings/internal/ode"

// Euler is the explicit first-order method. Mostly useful as a baseline
// for accuracy comparisons.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Step(sys ode.System, y ode.State, p ode.Params, t, h float64) ode.State {
	k := sys.Derive(t, y, p)
	result := make(ode.State, len(y))
	for i := range y {
		result[i] = y[i] + h*k[i]
	}
	return result
}
