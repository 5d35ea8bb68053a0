// Package analysis summarizes epidemic trajectories.
//
// The package computes the headline statistics of a finished run:
//
//   - [Peak]: timing and height of the infection peak
//   - [AttackRate]: fraction of the susceptible pool ever infected
//   - [FinalSize]: share of the population recovered at the end
//   - [GrowthRate]: fitted exponential growth rate of the early phase
//   - [ConservationDrift]: worst relative error in the population total
//   - [HerdImmunityThreshold]: immune fraction needed to halt spread
//
// # Summaries
//
// [Summarize] bundles the statistics into a [Report] given the
// compartment roles:
//
//	report, err := analysis.Summarize(tr,
//	    []string{"S"}, []string{"I"}, []string{"R"})
//	if err != nil {
//	    return err
//	}
//	fmt.Printf("peak %.0f on day %.1f\n", report.PeakValue, report.PeakDay)
package analysis
