package epi

import (
	"errors"
	"strings"

	"github.com/SineadMorris/trainings/internal/ode"
)

// ErrUnknownParameter indicates a parameter name a model does not have.
var ErrUnknownParameter = errors.New("epi: unknown parameter")

// Model is a compartmental transmission model: an ODE system plus the
// epidemiology around it. Models hold human-facing inputs (reproduction
// number, periods in days, counts) and derive the per-capita rates the
// kernel consumes.
type Model interface {
	ode.System

	// Rates converts the model's inputs into the flat rate set passed
	// to every derivative evaluation.
	Rates() ode.Params

	// InitialState builds the seeded compartment vector.
	InitialState() ode.State

	// Params reports the inputs by name, for display and sweeps.
	Params() map[string]float64

	// SetParam adjusts one input. Unknown names wrap
	// [ErrUnknownParameter].
	SetParam(name string, value float64) error
}

// Compartment naming convention: susceptible compartments start with
// "S", infectious with "I", recovered with "R". Vaccinated strata carry
// a "v" suffix (Sv, Iv), so prefix matching classifies them with their
// unvaccinated counterparts.

func varsWithPrefix(vars []string, prefix string) []string {
	var out []string
	for _, v := range vars {
		if strings.HasPrefix(v, prefix) {
			out = append(out, v)
		}
	}
	return out
}

// SusceptibleVars selects the susceptible compartments of a variable
// list.
func SusceptibleVars(vars []string) []string { return varsWithPrefix(vars, "S") }

// InfectiousVars selects the infectious compartments.
func InfectiousVars(vars []string) []string { return varsWithPrefix(vars, "I") }

// RecoveredVars selects the recovered compartments.
func RecoveredVars(vars []string) []string { return varsWithPrefix(vars, "R") }
