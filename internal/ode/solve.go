package ode

import (
	"errors"
	"fmt"
	"math"
)

// Solve integrates sys from y0 across the reporting grid and returns one
// state row per grid point. The first row is y0 itself at grid[0]; each
// later row is reached by sub-stepping the preceding interval according
// to cfg. The same params set is passed, unmodified, to every
// derivative evaluation, so the call is deterministic: identical inputs
// produce identical trajectories.
//
// On a numerical failure the rows completed so far are returned with
// Incomplete set, alongside a [*NumericalError] locating the failure.
func Solve(sys System, integ Integrator, y0 State, grid []float64, params Params, cfg Config) (*Trajectory, error) {
	if err := ValidateInputs(sys, integ, y0, grid, params); err != nil {
		return nil, err
	}
	cfg = cfg.WithDefaults()

	tr := &Trajectory{
		Vars:   append([]string(nil), sys.Vars()...),
		Times:  make([]float64, 0, len(grid)),
		States: make([]State, 0, len(grid)),
	}
	y := y0.Clone()
	tr.Times = append(tr.Times, grid[0])
	tr.States = append(tr.States, y.Clone())

	for i := 1; i < len(grid); i++ {
		next, n, err := AdvanceInterval(sys, integ, y, params, grid[i-1], grid[i], cfg)
		tr.Steps += n
		if err != nil {
			var ne *NumericalError
			if errors.As(err, &ne) {
				ne.Row = i
			}
			tr.Incomplete = true
			return tr, err
		}
		y = next
		tr.Times = append(tr.Times, grid[i])
		tr.States = append(tr.States, y)
	}
	return tr, nil
}

// AdvanceInterval carries y from t0 to t1 with as many sub-steps as cfg
// demands, returning the state at t1 and the number of accepted
// sub-steps. Callers that walk a grid themselves (to interleave
// cancellation checks or per-row observers) get results identical to
// [Solve], which uses the same traversal.
func AdvanceInterval(sys System, integ Integrator, y State, params Params, t0, t1 float64, cfg Config) (State, int, error) {
	if ad, ok := integ.(AdaptiveIntegrator); ok && cfg.Adaptive {
		return advanceAdaptive(sys, ad, y, params, t0, t1, cfg)
	}
	return advanceFixed(sys, integ, y, params, t0, t1, cfg)
}

func advanceFixed(sys System, integ Integrator, y State, params Params, t0, t1 float64, cfg Config) (State, int, error) {
	span := t1 - t0
	n := 1
	if cfg.MaxStep > 0 && span > cfg.MaxStep {
		n = int(math.Ceil(span / cfg.MaxStep))
	}
	h := span / float64(n)
	for i := 0; i < n; i++ {
		t := t0 + float64(i)*h
		y = integ.Step(sys, y, params, t, h)
		if idx := nonFiniteIndex(y); idx >= 0 {
			return nil, i + 1, &NumericalError{
				Row:   -1,
				Time:  t + h,
				Var:   varName(sys, idx),
				Index: idx,
				Err:   ErrNonFinite,
			}
		}
	}
	return y, n, nil
}

func advanceAdaptive(sys System, ad AdaptiveIntegrator, y State, params Params, t0, t1 float64, cfg Config) (State, int, error) {
	span := t1 - t0
	h := span
	if cfg.MaxStep > 0 && h > cfg.MaxStep {
		h = cfg.MaxStep
	}
	t := t0
	steps := 0
	for attempts := 0; ; attempts++ {
		remaining := t1 - t
		if remaining <= 1e-12*span {
			return y, steps, nil
		}
		if attempts >= cfg.MaxSubsteps {
			return nil, steps, &NumericalError{
				Row: -1, Time: t, Index: -1,
				Err: ErrTooManySteps,
			}
		}
		hTry := math.Min(h, remaining)
		candidate, ratio, hNext := ad.StepAdaptive(sys, y, params, t, hTry, cfg.ATol, cfg.RTol)
		if ratio <= 1 {
			if idx := nonFiniteIndex(candidate); idx >= 0 {
				return nil, steps, &NumericalError{
					Row: -1, Time: t + hTry, Var: varName(sys, idx), Index: idx,
					Err: ErrNonFinite,
				}
			}
			t += hTry
			y = candidate
			steps++
		} else if hTry <= cfg.MinStep {
			// Tolerance unreachable even at the floor. Distinguish a
			// blow-up from a stiffness stall for the caller.
			wrapped := ErrStepTooSmall
			idx := nonFiniteIndex(candidate)
			if idx >= 0 {
				wrapped = ErrNonFinite
			}
			return nil, steps, &NumericalError{
				Row: -1, Time: t, Var: varName(sys, idx), Index: idx,
				Err: wrapped,
			}
		}
		h = math.Max(hNext, cfg.MinStep)
		if cfg.MaxStep > 0 && h > cfg.MaxStep {
			h = cfg.MaxStep
		}
	}
}

// ValidateInputs runs the pre-flight checks [Solve] performs, including
// one probing derivative evaluation. Grid walkers built on
// [AdvanceInterval] should call it once up front.
func ValidateInputs(sys System, integ Integrator, y0 State, grid []float64, params Params) error {
	if integ == nil {
		return ErrNilIntegrator
	}
	if sys == nil {
		return fmt.Errorf("%w: nil system", ErrInvalidInput)
	}
	if len(grid) == 0 {
		return ErrEmptyGrid
	}
	for i := 1; i < len(grid); i++ {
		if grid[i] <= grid[i-1] {
			return fmt.Errorf("%w (index %d: %g after %g)", ErrGridOrder, i, grid[i], grid[i-1])
		}
	}
	if len(y0) == 0 {
		return ErrEmptyState
	}
	if idx := nonFiniteIndex(y0); idx >= 0 {
		return fmt.Errorf("%w: non-finite initial state (component %d)", ErrInvalidInput, idx)
	}
	if d := sys.Dim(); d != len(y0) {
		return fmt.Errorf("%w: system dimension %d, state length %d", ErrDimensionMismatch, d, len(y0))
	}
	probe := sys.Derive(grid[0], y0, params)
	if len(probe) != len(y0) {
		return fmt.Errorf("%w: derivative length %d, state length %d", ErrDimensionMismatch, len(probe), len(y0))
	}
	return nil
}

func nonFiniteIndex(y State) int {
	for i, v := range y {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

func varName(sys System, idx int) string {
	if idx < 0 {
		return ""
	}
	vars := sys.Vars()
	if idx < len(vars) {
		return vars[idx]
	}
	return fmt.Sprintf("y[%d]", idx)
}
