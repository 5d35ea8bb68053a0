package metrics

import "github.com/SineadMorris/trainings/internal/ode"

// resolve maps tracked variable names onto column indices, keeping only
// the ones present.
func resolve(vars, track []string) []int {
	var idx []int
	for _, name := range track {
		for i, v := range vars {
			if v == name {
				idx = append(idx, i)
				break
			}
		}
	}
	return idx
}

func sumAt(y ode.State, idx []int) float64 {
	total := 0.0
	for _, i := range idx {
		total += y[i]
	}
	return total
}

// PeakPrevalence tracks the maximum combined size of the tracked
// compartments over a run.
type PeakPrevalence struct {
	name    string
	indices []int
	peak    float64
	samples int
}

// NewPeakPrevalence tracks the named columns, typically the infectious
// compartments.
func NewPeakPrevalence(vars, track []string) *PeakPrevalence {
	return &PeakPrevalence{
		name:    "peak_prevalence",
		indices: resolve(vars, track),
	}
}

func (p *PeakPrevalence) Name() string { return p.name }

func (p *PeakPrevalence) Observe(t float64, y ode.State) {
	v := sumAt(y, p.indices)
	if p.samples == 0 || v > p.peak {
		p.peak = v
	}
	p.samples++
}

func (p *PeakPrevalence) Value() float64 {
	return p.peak
}

func (p *PeakPrevalence) Reset() {
	p.peak = 0
	p.samples = 0
}

// PeakDay reports the time at which the tracked compartments peak.
type PeakDay struct {
	name    string
	indices []int
	peak    float64
	day     float64
	samples int
}

func NewPeakDay(vars, track []string) *PeakDay {
	return &PeakDay{
		name:    "peak_day",
		indices: resolve(vars, track),
	}
}

func (p *PeakDay) Name() string { return p.name }

func (p *PeakDay) Observe(t float64, y ode.State) {
	v := sumAt(y, p.indices)
	if p.samples == 0 || v > p.peak {
		p.peak = v
		p.day = t
	}
	p.samples++
}

func (p *PeakDay) Value() float64 {
	return p.day
}

func (p *PeakDay) Reset() {
	p.peak = 0
	p.day = 0
	p.samples = 0
}
