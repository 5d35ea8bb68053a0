package analysis

// HerdImmunityThreshold is the fraction of the population that must be
// immune for an epidemic with basic reproduction number r0 to stop
// growing: 1 - 1/r0. Below r0 = 1 no outbreak is possible and the
// threshold is zero.
func HerdImmunityThreshold(r0 float64) float64 {
	if r0 <= 1 {
		return 0
	}
	return 1 - 1/r0
}

// EffectiveReproduction scales the basic reproduction number by the
// susceptible fraction of the population.
func EffectiveReproduction(r0, susceptibleFraction float64) float64 {
	return r0 * susceptibleFraction
}
