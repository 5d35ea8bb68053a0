package epi

import (
	"fmt"

	"github.com/SineadMorris/trainings/internal/ode"
)

// SIRS is the waning-immunity variant: recovered individuals return to
// the susceptible pool at rate xi = 1/immune_period, which lets the
// disease settle into an endemic equilibrium instead of burning out.
// State: [S, I, R]
// Equations:
//
//	dS/dt = -beta*S*I + xi*R
//	dI/dt = beta*S*I - gamma*I
//	dR/dt = gamma*I - xi*R
type SIRS struct {
	R0               float64
	InfectiousPeriod float64 // days
	ImmunePeriod     float64 // days
	Population       float64
	Infected0        float64
}

func NewSIRS() *SIRS {
	return &SIRS{
		R0:               2.0,
		InfectiousPeriod: 3.0,
		ImmunePeriod:     90.0,
		Population:       10000,
		Infected0:        1,
	}
}

func (m *SIRS) Dim() int { return 3 }

func (m *SIRS) Vars() []string { return []string{"S", "I", "R"} }

func (m *SIRS) Derive(_ float64, y ode.State, p ode.Params) ode.State {
	infection := p["beta"] * y[0] * y[1]
	recovery := p["gamma"] * y[1]
	waning := p["xi"] * y[2]
	return ode.State{-infection + waning, infection - recovery, recovery - waning}
}

func (m *SIRS) Rates() ode.Params {
	gamma := 1.0 / m.InfectiousPeriod
	return ode.Params{
		"beta":  m.R0 * gamma / m.Population,
		"gamma": gamma,
		"xi":    1.0 / m.ImmunePeriod,
	}
}

func (m *SIRS) InitialState() ode.State {
	return ode.State{m.Population - m.Infected0, m.Infected0, 0}
}

func (m *SIRS) Params() map[string]float64 {
	return map[string]float64{
		"r0":                m.R0,
		"infectious_period": m.InfectiousPeriod,
		"immune_period":     m.ImmunePeriod,
		"population":        m.Population,
		"initial_infected":  m.Infected0,
	}
}

func (m *SIRS) SetParam(name string, value float64) error {
	switch name {
	case "r0":
		m.R0 = value
	case "infectious_period":
		m.InfectiousPeriod = value
	case "immune_period":
		m.ImmunePeriod = value
	case "population":
		m.Population = value
	case "initial_infected":
		m.Infected0 = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return nil
}
