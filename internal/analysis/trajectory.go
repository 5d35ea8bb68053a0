package analysis

import (
	"errors"
	"fmt"
	"math"

	"github.com/SineadMorris/trainings/internal/ode"
)

// ErrInsufficientData indicates a trajectory too short for the
// requested statistic.
var ErrInsufficientData = errors.New("analysis: insufficient data")

// combined sums the named columns row by row.
func combined(tr *ode.Trajectory, names []string) ([]float64, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no variables named", ErrInsufficientData)
	}
	total := make([]float64, tr.Len())
	for _, name := range names {
		series, err := tr.Series(name)
		if err != nil {
			return nil, err
		}
		for i, v := range series {
			total[i] += v
		}
	}
	return total, nil
}

// Peak locates the maximum of the named columns' sum and returns its
// time and value.
func Peak(tr *ode.Trajectory, names ...string) (day, value float64, err error) {
	if tr.Len() == 0 {
		return 0, 0, ErrInsufficientData
	}
	series, err := combined(tr, names)
	if err != nil {
		return 0, 0, err
	}
	idx := 0
	for i, v := range series {
		if v > series[idx] {
			idx = i
		}
	}
	return tr.Times[idx], series[idx], nil
}

// AttackRate is the fraction of the initial pool in the named columns
// (typically the susceptible compartments) that has left it by the end
// of the run.
func AttackRate(tr *ode.Trajectory, names ...string) (float64, error) {
	if tr.Len() == 0 {
		return 0, ErrInsufficientData
	}
	series, err := combined(tr, names)
	if err != nil {
		return 0, err
	}
	if series[0] == 0 {
		return 0, nil
	}
	return 1 - series[len(series)-1]/series[0], nil
}

// FinalSize is the share of the total population sitting in the named
// columns (typically the recovered compartments) at the final row.
func FinalSize(tr *ode.Trajectory, names ...string) (float64, error) {
	if tr.Len() == 0 {
		return 0, ErrInsufficientData
	}
	series, err := combined(tr, names)
	if err != nil {
		return 0, err
	}
	final := tr.Final()
	total := final.Sum()
	if total == 0 {
		return 0, nil
	}
	return series[len(series)-1] / total, nil
}

// GrowthRate fits the initial exponential phase of the named columns'
// sum: the least-squares slope of its logarithm against time, over the
// rows before the series first reaches a tenth of its peak. At least
// two usable rows are required.
func GrowthRate(tr *ode.Trajectory, names ...string) (float64, error) {
	series, err := combined(tr, names)
	if err != nil {
		return 0, err
	}
	peak := 0.0
	for _, v := range series {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		return 0, fmt.Errorf("%w: series never positive", ErrInsufficientData)
	}

	var ts, logs []float64
	for i, v := range series {
		if v >= 0.1*peak && len(ts) >= 3 {
			break
		}
		if v > 0 {
			ts = append(ts, tr.Times[i])
			logs = append(logs, math.Log(v))
		}
	}
	if len(ts) < 2 {
		return 0, fmt.Errorf("%w: growth window has %d rows", ErrInsufficientData, len(ts))
	}
	return slope(ts, logs), nil
}

// slope is the least-squares regression slope of ys against xs.
func slope(xs, ys []float64) float64 {
	n := float64(len(xs))
	var sumX, sumY, sumXY, sumXX float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
		sumXY += xs[i] * ys[i]
		sumXX += xs[i] * xs[i]
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}
	return (n*sumXY - sumX*sumY) / denom
}

// ConservationDrift is the worst relative deviation of the population
// total across the trajectory.
func ConservationDrift(tr *ode.Trajectory) float64 {
	totals := tr.Totals()
	if len(totals) == 0 || totals[0] == 0 {
		return 0
	}
	initial := totals[0]
	max := 0.0
	for _, v := range totals {
		drift := math.Abs(v-initial) / math.Abs(initial)
		max = math.Max(max, drift)
	}
	return max
}
