package epi

import (
	"fmt"

	"github.com/SineadMorris/trainings/internal/ode"
)

// SIR is the classic susceptible-infectious-recovered model.
// State: [S, I, R]
// Equations:
//
//	dS/dt = -beta*S*I
//	dI/dt = beta*S*I - gamma*I
//	dR/dt = gamma*I
//
// beta absorbs the population normalization: beta = r0*gamma/N, so the
// product S*I needs no further scaling.
type SIR struct {
	R0               float64
	InfectiousPeriod float64 // days
	Population       float64
	Infected0        float64
}

func NewSIR() *SIR {
	return &SIR{
		R0:               2.0,
		InfectiousPeriod: 3.0,
		Population:       10000,
		Infected0:        1,
	}
}

func (m *SIR) Dim() int { return 3 }

func (m *SIR) Vars() []string { return []string{"S", "I", "R"} }

func (m *SIR) Derive(_ float64, y ode.State, p ode.Params) ode.State {
	infection := p["beta"] * y[0] * y[1]
	recovery := p["gamma"] * y[1]
	return ode.State{-infection, infection - recovery, recovery}
}

func (m *SIR) Rates() ode.Params {
	gamma := 1.0 / m.InfectiousPeriod
	return ode.Params{
		"beta":  m.R0 * gamma / m.Population,
		"gamma": gamma,
	}
}

func (m *SIR) InitialState() ode.State {
	return ode.State{m.Population - m.Infected0, m.Infected0, 0}
}

func (m *SIR) Params() map[string]float64 {
	return map[string]float64{
		"r0":                m.R0,
		"infectious_period": m.InfectiousPeriod,
		"population":        m.Population,
		"initial_infected":  m.Infected0,
	}
}

func (m *SIR) SetParam(name string, value float64) error {
	switch name {
	case "r0":
		m.R0 = value
	case "infectious_period":
		m.InfectiousPeriod = value
	case "population":
		m.Population = value
	case "initial_infected":
		m.Infected0 = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return nil
}
