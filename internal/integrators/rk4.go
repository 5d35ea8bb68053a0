package integrators

import "github.com/SineadMorris/trainings/internal/ode"

// RK4 is the classic fourth-order Runge-Kutta method. Scratch buffers
// are reused between steps, so an RK4 value must not be shared across
// goroutines.
type RK4 struct {
	k1, k2, k3, k4 ode.State
	scratch        ode.State
}

func NewRK4() *RK4 {
	return &RK4{}
}

func (r *RK4) ensureScratch(n int) {
	if len(r.k1) != n {
		r.k1 = make(ode.State, n)
		r.k2 = make(ode.State, n)
		r.k3 = make(ode.State, n)
		r.k4 = make(ode.State, n)
		r.scratch = make(ode.State, n)
	}
}

func (r *RK4) Step(sys ode.System, y ode.State, p ode.Params, t, h float64) ode.State {
	n := len(y)
	r.ensureScratch(n)

	k1 := sys.Derive(t, y, p)
	copy(r.k1, k1)

	for i := 0; i < n; i++ {
		r.scratch[i] = y[i] + h*0.5*r.k1[i]
	}
	k2 := sys.Derive(t+h*0.5, r.scratch, p)
	copy(r.k2, k2)

	for i := 0; i < n; i++ {
		r.scratch[i] = y[i] + h*0.5*r.k2[i]
	}
	k3 := sys.Derive(t+h*0.5, r.scratch, p)
	copy(r.k3, k3)

	for i := 0; i < n; i++ {
		r.scratch[i] = y[i] + h*r.k3[i]
	}
	k4 := sys.Derive(t+h, r.scratch, p)
	copy(r.k4, k4)

	result := make(ode.State, n)
	h6 := h / 6.0
	for i := 0; i < n; i++ {
		result[i] = y[i] + h6*(r.k1[i]+2*r.k2[i]+2*r.k3[i]+r.k4[i])
	}

	return result
}
