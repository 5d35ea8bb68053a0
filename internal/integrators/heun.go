package integrators

import "github.com/SineadMorris/trainings/internal/ode"

// Heun is the explicit trapezoidal predictor-corrector, second order.
type Heun struct {
	predicted ode.State
}

func NewHeun() *Heun {
	return &Heun{}
}

func (hn *Heun) Step(sys ode.System, y ode.State, p ode.Params, t, h float64) ode.State {
	n := len(y)
	if len(hn.predicted) != n {
		hn.predicted = make(ode.State, n)
	}

	k1 := sys.Derive(t, y, p)
	for i := 0; i < n; i++ {
		hn.predicted[i] = y[i] + h*k1[i]
	}
	k2 := sys.Derive(t+h, hn.predicted, p)

	result := make(ode.State, n)
	for i := 0; i < n; i++ {
		result[i] = y[i] + h*0.5*(k1[i]+k2[i])
	}
	return result
}
