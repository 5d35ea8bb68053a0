package analysis

import (
	"math"

	"github.com/SineadMorris/trainings/internal/ode"
)

// Report collects the headline statistics of one epidemic run.
type Report struct {
	PeakDay           float64
	PeakValue         float64
	AttackRate        float64
	FinalSize         float64
	GrowthRate        float64
	ConservationDrift float64
}

// Summarize computes a [Report] from a trajectory, given the variable
// names of the susceptible, infectious and recovered compartments.
// GrowthRate is NaN when the run is too short or too flat to fit.
func Summarize(tr *ode.Trajectory, susceptible, infectious, recovered []string) (*Report, error) {
	peakDay, peakValue, err := Peak(tr, infectious...)
	if err != nil {
		return nil, err
	}
	attack, err := AttackRate(tr, susceptible...)
	if err != nil {
		return nil, err
	}
	final, err := FinalSize(tr, recovered...)
	if err != nil {
		return nil, err
	}
	growth, err := GrowthRate(tr, infectious...)
	if err != nil {
		growth = math.NaN()
	}
	return &Report{
		PeakDay:           peakDay,
		PeakValue:         peakValue,
		AttackRate:        attack,
		FinalSize:         final,
		GrowthRate:        growth,
		ConservationDrift: ConservationDrift(tr),
	}, nil
}
