package epi

import (
	"fmt"

	"github.com/SineadMorris/trainings/internal/ode"
)

// SEIRV stratifies the SEIR model by vaccination status. Susceptibles
// are vaccinated at a constant per-capita rate v and move into a
// parallel set of compartments where a leaky vaccine scales the force
// of infection by (1-f); vaccinated cases progress and transmit like
// unvaccinated ones.
// State: [S, E, I, R, Sv, Ev, Iv, Rv]
// Equations:
//
//	force  = beta*(I + Iv)
//	dS/dt  = -force*S - v*S
//	dE/dt  = force*S - sigma*E
//	dI/dt  = sigma*E - gamma*I
//	dR/dt  = gamma*I
//	dSv/dt = v*S - (1-f)*force*Sv
//	dEv/dt = (1-f)*force*Sv - sigma*Ev
//	dIv/dt = sigma*Ev - gamma*Iv
//	dRv/dt = gamma*Iv
type SEIRV struct {
	R0               float64
	InfectiousPeriod float64 // days
	LatentPeriod     float64 // days
	Population       float64
	Infected0        float64
	VaccRate         float64 // per-capita vaccinations per day
	Protection       float64 // vaccine effectiveness in [0,1]
}

func NewSEIRV() *SEIRV {
	return &SEIRV{
		R0:               2.0,
		InfectiousPeriod: 3.0,
		LatentPeriod:     2.0,
		Population:       10000,
		Infected0:        1,
		VaccRate:         0.01,
		Protection:       0.4,
	}
}

func (m *SEIRV) Dim() int { return 8 }

func (m *SEIRV) Vars() []string {
	return []string{"S", "E", "I", "R", "Sv", "Ev", "Iv", "Rv"}
}

func (m *SEIRV) Derive(_ float64, y ode.State, p ode.Params) ode.State {
	s, e, i := y[0], y[1], y[2]
	sv, ev, iv := y[4], y[5], y[6]

	force := p["beta"] * (i + iv)
	vaccination := p["v"] * s
	leakyForce := (1 - p["f"]) * force

	return ode.State{
		-force*s - vaccination,
		force*s - p["sigma"]*e,
		p["sigma"]*e - p["gamma"]*i,
		p["gamma"] * i,
		vaccination - leakyForce*sv,
		leakyForce*sv - p["sigma"]*ev,
		p["sigma"]*ev - p["gamma"]*iv,
		p["gamma"] * iv,
	}
}

func (m *SEIRV) Rates() ode.Params {
	gamma := 1.0 / m.InfectiousPeriod
	return ode.Params{
		"beta":  m.R0 * gamma / m.Population,
		"gamma": gamma,
		"sigma": 1.0 / m.LatentPeriod,
		"v":     m.VaccRate,
		"f":     m.Protection,
	}
}

func (m *SEIRV) InitialState() ode.State {
	return ode.State{m.Population - m.Infected0, 0, m.Infected0, 0, 0, 0, 0, 0}
}

func (m *SEIRV) Params() map[string]float64 {
	return map[string]float64{
		"r0":                m.R0,
		"infectious_period": m.InfectiousPeriod,
		"latent_period":     m.LatentPeriod,
		"population":        m.Population,
		"initial_infected":  m.Infected0,
		"vacc_rate":         m.VaccRate,
		"protection":        m.Protection,
	}
}

func (m *SEIRV) SetParam(name string, value float64) error {
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
	case "vacc_rate":
		m.VaccRate = value
	case "protection":
		m.Protection = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownParameter, name)
	}
	return nil
}
