package ode

import "math"

// State is a vector of compartment values at one instant.
type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

// IsFinite reports whether every component is a finite number.
func (s State) IsFinite() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Sum returns the total of all components. For closed compartmental
// models this is the conserved population size.
func (s State) Sum() float64 {
	total := 0.0
	for _, v := range s {
		total += v
	}
	return total
}

// Params holds named scalar parameters. The kernel never inspects the
// contents; it passes the same set, unmodified, to every derivative
// evaluation of a run.
type Params map[string]float64

func (p Params) Clone() Params {
	if p == nil {
		return nil
	}
	c := make(Params, len(p))
	for k, v := range p {
		c[k] = v
	}
	return c
}

// System is a first-order ODE system dY/dt = f(t, Y, p).
type System interface {
	// Derive evaluates the derivative at time t. It must not modify y
	// and must return a vector of the same length.
	Derive(t float64, y State, p Params) State

	// Dim is the number of state components.
	Dim() int

	// Vars names the state components, in order.
	Vars() []string
}

// FuncSystem adapts a plain derivative function to [System].
type FuncSystem struct {
	Names []string
	Fn    func(t float64, y State, p Params) State
}

func (f FuncSystem) Derive(t float64, y State, p Params) State { return f.Fn(t, y, p) }

func (f FuncSystem) Dim() int { return len(f.Names) }

func (f FuncSystem) Vars() []string { return f.Names }

// Integrator advances a state by one step of fixed size. Step must
// leave y untouched and return a freshly allocated state; callers store
// returned states directly.
type Integrator interface {
	Step(sys System, y State, p Params, t, h float64) State
}

// AdaptiveIntegrator augments [Integrator] with trial steps carrying a
// local error estimate.
type AdaptiveIntegrator interface {
	Integrator

	// StepAdaptive attempts a single step of size h. It returns the
	// candidate state, the estimated error ratio against the mixed
	// tolerance atol + rtol*|y| (ratio <= 1 means acceptable), and a
	// recommended size for the next attempt. The caller decides whether
	// to accept the candidate.
	StepAdaptive(sys System, y State, p Params, t, h, atol, rtol float64) (State, float64, float64)
}

// Config controls how intervals of the reporting grid are traversed.
type Config struct {
	// MaxStep caps the internal sub-step size. Fixed-step integrators
	// divide each reporting interval into equal sub-steps no larger
	// than this; <= 0 means one step per interval.
	MaxStep float64

	// Adaptive enables error-controlled stepping when the integrator
	// supports it. Ignored otherwise.
	Adaptive bool

	// ATol and RTol are the absolute and relative error tolerances for
	// adaptive stepping.
	ATol float64
	RTol float64

	// MinStep is the smallest sub-step adaptive control may take before
	// the run fails with [ErrStepTooSmall].
	MinStep float64

	// MaxSubsteps bounds the number of step attempts within a single
	// reporting interval.
	MaxSubsteps int
}

func DefaultConfig() Config {
	return Config{
		MaxStep:     0.25,
		Adaptive:    false,
		ATol:        1e-8,
		RTol:        1e-6,
		MinStep:     1e-8,
		MaxSubsteps: 10000,
	}
}

// WithDefaults fills unset tolerance and guard fields from
// [DefaultConfig]. [Solve] applies it automatically; grid walkers
// calling [AdvanceInterval] directly should apply it once up front.
func (c Config) WithDefaults() Config {
	d := DefaultConfig()
	if c.ATol <= 0 {
		c.ATol = d.ATol
	}
	if c.RTol <= 0 {
		c.RTol = d.RTol
	}
	if c.MinStep <= 0 {
		c.MinStep = d.MinStep
	}
	if c.MaxSubsteps <= 0 {
		c.MaxSubsteps = d.MaxSubsteps
	}
	return c
}
