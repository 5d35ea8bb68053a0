package experiment

import (
	"context"
	"fmt"

	"github.com/SineadMorris/trainings/internal/config"
	"github.com/SineadMorris/trainings/internal/epi"
	"github.com/SineadMorris/trainings/internal/ode"
	"github.com/SineadMorris/trainings/internal/sim"
)

// Experiment assembles one configured run: model, integrator,
// simulator and metrics.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	model     epi.Model
	simulator *sim.Simulator
}

func New(cfg *config.Config) *Experiment {
	return &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
	}
}

// Setup validates the config, builds the model with its parameters
// applied, and wires a simulator with the default metrics.
func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return err
	}
	model, err := e.registry.GetModel(e.cfg.Model)
	if err != nil {
		return err
	}
	for name, value := range e.cfg.ModelParams() {
		if err := model.SetParam(name, value); err != nil {
			return err
		}
	}
	integ, err := e.registry.GetIntegrator(e.cfg.Integrator)
	if err != nil {
		return err
	}

	e.model = model
	e.simulator = sim.New(model, integ)
	for _, m := range e.registry.DefaultMetrics(model) {
		e.simulator.AddMetric(m)
	}
	return nil
}

// Run executes the configured simulation. The initial state and rates
// are rebuilt from the model at call time, so parameter tweaks between
// Setup and Run take effect.
func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not set up")
	}
	return e.simulator.Run(ctx,
		e.model.InitialState(),
		e.model.Rates(),
		Grid(e.cfg.Days, e.cfg.Step),
		e.SolverConfig(),
	)
}

// SolverConfig translates the config's stepping fields for the kernel.
func (e *Experiment) SolverConfig() ode.Config {
	return ode.Config{
		MaxStep:  e.cfg.Substep,
		Adaptive: e.cfg.Adaptive,
		ATol:     e.cfg.ATol,
		RTol:     e.cfg.RTol,
	}
}

// GetModel returns the configured model, valid after Setup.
func (e *Experiment) GetModel() epi.Model {
	return e.model
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// Grid builds the reporting times: multiples of step from zero, with
// the final row landing exactly on days.
func Grid(days, step float64) []float64 {
	grid := []float64{0}
	for i := 1; ; i++ {
		t := float64(i) * step
		if t >= days-step*1e-9 {
			break
		}
		grid = append(grid, t)
	}
	return append(grid, days)
}

// Linspace builds n evenly spaced values from min to max inclusive.
func Linspace(min, max float64, n int) []float64 {
	if n <= 1 {
		return []float64{min}
	}
	out := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	return out
}

// RunSweep runs one experiment per value, overriding the named model
// parameter on a fresh copy each time.
func RunSweep(ctx context.Context, cfg *config.Config, param string, values []float64, workers int) ([]*sim.Result, error) {
	sweep := sim.Sweep{Param: param, Values: values, Workers: workers}
	return sweep.Run(ctx, func(ctx context.Context, value float64) (*sim.Result, error) {
		e := New(cfg)
		if err := e.Setup(); err != nil {
			return nil, err
		}
		if err := e.model.SetParam(param, value); err != nil {
			return nil, err
		}
		return e.Run(ctx)
	})
}
