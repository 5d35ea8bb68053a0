package epi

import (
	"fmt"

	"github.com/SineadMorris/trainings/internal/ode"
)

// SEIR adds a latent (exposed) stage between infection and
// infectiousness.
// State: [S, E, I, R]
// Equations:
//
//	dS/dt = -beta*S*I
//	dE/dt = beta*S*I - sigma*E
//	dI/dt = sigma*E - gamma*I
//	dR/dt = gamma*I
//
// sigma = 1/latent_period; the seed case starts in I, so an epidemic
// launched from a single case dips before the first latent cohort
// matures.
type SEIR struct {
	R0               float64
	InfectiousPeriod float64 // days
	LatentPeriod     float64 // days
	Population       float64
	Infected0        float64
}

func NewSEIR() *SEIR {
	return &SEIR{
		R0:               2.0,
		InfectiousPeriod: 3.0,
		LatentPeriod:     2.0,
		Population:       10000,
		Infected0:        1,
	}
}

func (m *SEIR) Dim() int { return 4 }

func (m *SEIR) Vars() []string { return []string{"S", "E", "I", "R"} }

func (m *SEIR) Derive(_ float64, y ode.State, p ode.Params) ode.State {
	infection := p["beta"] * y[0] * y[2]
	onset := p["sigma"] * y[1]
	recovery := p["gamma"] * y[2]
	return ode.State{-infection, infection - onset, onset - recovery, recovery}
}

func (m *SEIR) Rates() ode.Params {
	gamma := 1.0 / m.InfectiousPeriod
	return ode.Params{
		"beta":  m.R0 * gamma / m.Population,
		"gamma": gamma,
		"sigma": 1.0 / m.LatentPeriod,
	}
}

func (m *SEIR) InitialState() ode.State {
	return ode.State{m.Population - m.Infected0, 0, m.Infected0, 0}
}

func (m *SEIR) Params() map[string]float64 {
	return map[string]float64{
		"r0":                m.R0,
		"infectious_period": m.InfectiousPeriod,
		"latent_period":     m.LatentPeriod,
		"population":        m.Population,
		"initial_infected":  m.Infected0,
	}
}

func (m *SEIR) SetParam(name string, value float64) error {
	switch name {
	case "r0":
		m.R0 = value
	case "infectious_period":
		m.InfectiousPeriod = value
	case "latent_period":
		m.LatentPeriod = value
	case "population":
		m.Population = value
	case "initial_infected":
		m.Infected0 = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return nil
}
