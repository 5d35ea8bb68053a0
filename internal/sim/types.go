package sim

import "github.com/SineadMorris/trainings/internal/ode"

// Metric accumulates a scalar over the rows of a run. Reset is called
// at the start of each run; Value is read at the end.
type Metric interface {
	Name() string
	Observe(t float64, y ode.State)
	Value() float64
	Reset()
}

// Observer is notified of every completed reporting row, including the
// initial one.
type Observer interface {
	OnRow(t float64, y ode.State)
}

// Result couples a trajectory with the metric values collected while
// producing it.
type Result struct {
	Trajectory *ode.Trajectory
	Metrics    map[string]float64
}
