package metrics

import "github.com/SineadMorris/trainings/internal/ode"

// AttackRate is the cumulative infection fraction: the share of the
// initially susceptible pool that has left it by the latest observed
// row. With a leaky vaccine both susceptible strata count.
type AttackRate struct {
	name    string
	indices []int
	initial float64
	latest  float64
	samples int
}

// NewAttackRate tracks the named susceptible columns.
func NewAttackRate(vars, track []string) *AttackRate {
	return &AttackRate{
		name:    "attack_rate",
		indices: resolve(vars, track),
	}
}

func (a *AttackRate) Name() string { return a.name }

func (a *AttackRate) Observe(t float64, y ode.State) {
	v := sumAt(y, a.indices)
	if a.samples == 0 {
		a.initial = v
	}
	a.latest = v
	a.samples++
}

func (a *AttackRate) Value() float64 {
	if a.samples == 0 || a.initial == 0 {
		return 0
	}
	return 1 - a.latest/a.initial
}

func (a *AttackRate) Reset() {
	a.initial = 0
	a.latest = 0
	a.samples = 0
}
