package ode

import "fmt"

// Trajectory is the result of a [Solve] call: one state row per
// reporting grid point, in grid order.
type Trajectory struct {
	Vars   []string
	Times  []float64
	States []State

	// Steps counts accepted sub-steps across all intervals.
	Steps int

	// Incomplete marks a trajectory cut short by a numerical failure.
	// The rows present are still valid.
	Incomplete bool
}

// Len is the number of completed rows.
func (tr *Trajectory) Len() int {
	return len(tr.Times)
}

// At returns the time and state of row i.
func (tr *Trajectory) At(i int) (float64, State) {
	return tr.Times[i], tr.States[i]
}

// Final returns the last completed state, or nil for an empty
// trajectory.
func (tr *Trajectory) Final() State {
	if len(tr.States) == 0 {
		return nil
	}
	return tr.States[len(tr.States)-1]
}

// VarIndex returns the column index of the named variable, or -1.
func (tr *Trajectory) VarIndex(name string) int {
	for i, v := range tr.Vars {
		if v == name {
			return i
		}
	}
	return -1
}

// Series extracts the named variable as a time series.
func (tr *Trajectory) Series(name string) ([]float64, error) {
	idx := tr.VarIndex(name)
	if idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVariable, name)
	}
	out := make([]float64, len(tr.States))
	for i, row := range tr.States {
		out[i] = row[idx]
	}
	return out, nil
}

// Totals returns the per-row component sums, one per completed row.
func (tr *Trajectory) Totals() []float64 {
	out := make([]float64, len(tr.States))
	for i, row := range tr.States {
		out[i] = row.Sum()
	}
	return out
}
