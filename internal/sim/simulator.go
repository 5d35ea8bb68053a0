package sim

import (
	"context"
	"errors"

	"github.com/SineadMorris/trainings/internal/ode"
)

// Simulator walks a reporting grid interval by interval, feeding each
// completed row to metrics and observers. It produces exactly the rows
// [ode.Solve] would, with cancellation checked between intervals.
type Simulator struct {
	sys       ode.System
	integ     ode.Integrator
	metrics   []Metric
	observers []Observer
}

func New(sys ode.System, integ ode.Integrator) *Simulator {
	return &Simulator{
		sys:       sys,
		integ:     integ,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run integrates across the grid. On failure or cancellation the rows
// completed so far come back in the result, marked incomplete, with
// metrics reflecting the observed rows.
func (s *Simulator) Run(ctx context.Context, y0 ode.State, params ode.Params, grid []float64, cfg ode.Config) (*Result, error) {
	if err := ode.ValidateInputs(s.sys, s.integ, y0, grid, params); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()

	for _, m := range s.metrics {
		m.Reset()
	}

	tr := &ode.Trajectory{
		Vars:   append([]string(nil), s.sys.Vars()...),
		Times:  make([]float64, 0, len(grid)),
		States: make([]ode.State, 0, len(grid)),
	}
	result := &Result{Trajectory: tr, Metrics: make(map[string]float64)}

	y := y0.Clone()
	tr.Times = append(tr.Times, grid[0])
	tr.States = append(tr.States, y.Clone())
	s.observe(grid[0], y)

	for i := 1; i < len(grid); i++ {
		select {
		case <-ctx.Done():
			tr.Incomplete = true
			s.collect(result)
			return result, ctx.Err()
		default:
		}

		next, n, err := ode.AdvanceInterval(s.sys, s.integ, y, params, grid[i-1], grid[i], cfg)
		tr.Steps += n
		if err != nil {
			var ne *ode.NumericalError
			if errors.As(err, &ne) {
				ne.Row = i
			}
			tr.Incomplete = true
			s.collect(result)
			return result, err
		}

		y = next
		tr.Times = append(tr.Times, grid[i])
		tr.States = append(tr.States, y)
		s.observe(grid[i], y)
	}

	s.collect(result)
	return result, nil
}

// RunWithCallback streams rows without storing them; the callback
// returns false to stop early.
func (s *Simulator) RunWithCallback(ctx context.Context, y0 ode.State, params ode.Params, grid []float64, cfg ode.Config, callback func(t float64, y ode.State) bool) error {
	if err := ode.ValidateInputs(s.sys, s.integ, y0, grid, params); err != nil {
		return err
	}
	cfg = cfg.WithDefaults()

	y := y0.Clone()
	if !callback(grid[0], y) {
		return nil
	}
	for i := 1; i < len(grid); i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		next, _, err := ode.AdvanceInterval(s.sys, s.integ, y, params, grid[i-1], grid[i], cfg)
		if err != nil {
			var ne *ode.NumericalError
			if errors.As(err, &ne) {
				ne.Row = i
			}
			return err
		}
		y = next
		if !callback(grid[i], y) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) observe(t float64, y ode.State) {
	for _, m := range s.metrics {
		m.Observe(t, y)
	}
	for _, obs := range s.observers {
		obs.OnRow(t, y)
	}
}

func (s *Simulator) collect(result *Result) {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
}
