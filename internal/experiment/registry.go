package experiment

import (
	"fmt"
	"sort"

	"github.com/SineadMorris/trainings/internal/epi"
	"github.com/SineadMorris/trainings/internal/integrators"
	"github.com/SineadMorris/trainings/internal/metrics"
	"github.com/SineadMorris/trainings/internal/ode"
	"github.com/SineadMorris/trainings/internal/sim"
)

type Registry struct {
	models      map[string]func() epi.Model
	integrators map[string]func() ode.Integrator
}

func NewRegistry() *Registry {
	r := &Registry{
		models:      make(map[string]func() epi.Model),
		integrators: make(map[string]func() ode.Integrator),
	}

	r.models["sir"] = func() epi.Model { return epi.NewSIR() }
	r.models["seir"] = func() epi.Model { return epi.NewSEIR() }
	r.models["seirv"] = func() epi.Model { return epi.NewSEIRV() }
	r.models["sirs"] = func() epi.Model { return epi.NewSIRS() }

	r.integrators["euler"] = func() ode.Integrator { return integrators.NewEuler() }
	r.integrators["heun"] = func() ode.Integrator { return integrators.NewHeun() }
	r.integrators["rk4"] = func() ode.Integrator { return integrators.NewRK4() }
	r.integrators["rk45"] = func() ode.Integrator { return integrators.NewRK45() }

	return r
}

// GetModel builds a fresh model with its classic parameters.
func (r *Registry) GetModel(name string) (epi.Model, error) {
	fn, ok := r.models[name]
	if !ok {
		return nil, fmt.Errorf("unknown model: %s", name)
	}
	return fn(), nil
}

// GetIntegrator builds a fresh integrator. Integrators carry scratch
// buffers, so every simulator needs its own.
func (r *Registry) GetIntegrator(name string) (ode.Integrator, error) {
	fn, ok := r.integrators[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s", name)
	}
	return fn(), nil
}

func (r *Registry) ListModels() []string {
	names := make([]string, 0, len(r.models))
	for name := range r.models {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) ListIntegrators() []string {
	names := make([]string, 0, len(r.integrators))
	for name := range r.integrators {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultMetrics wires the standard epidemic metrics for a model,
// classifying its compartments by naming convention.
func (r *Registry) DefaultMetrics(model epi.Model) []sim.Metric {
	vars := model.Vars()
	return []sim.Metric{
		metrics.NewPeakPrevalence(vars, epi.InfectiousVars(vars)),
		metrics.NewPeakDay(vars, epi.InfectiousVars(vars)),
		metrics.NewAttackRate(vars, epi.SusceptibleVars(vars)),
		metrics.NewConservationDrift(),
	}
}
