package ode

import (
	"errors"
	"fmt"
)

// Domain errors for integration. The invalid-input family all wrap
// [ErrInvalidInput]; numerical failures are reported through
// [NumericalError].
var (
	// ErrInvalidInput is the class of errors raised before any stepping
	// happens: malformed grids, states, or systems.
	ErrInvalidInput = errors.New("ode: invalid input")

	// ErrEmptyGrid indicates a reporting grid with no points.
	ErrEmptyGrid = fmt.Errorf("%w: empty time grid", ErrInvalidInput)

	// ErrGridOrder indicates a grid that is not strictly increasing.
	ErrGridOrder = fmt.Errorf("%w: time grid not strictly increasing", ErrInvalidInput)

	// ErrEmptyState indicates an initial state with no components.
	ErrEmptyState = fmt.Errorf("%w: empty initial state", ErrInvalidInput)

	// ErrDimensionMismatch indicates disagreement between the state
	// length and the system's declared or evaluated dimension.
	ErrDimensionMismatch = fmt.Errorf("%w: dimension mismatch between state and system", ErrInvalidInput)

	// ErrNilIntegrator indicates a missing integrator.
	ErrNilIntegrator = fmt.Errorf("%w: nil integrator", ErrInvalidInput)

	// ErrNonFinite indicates a NaN or Inf produced during stepping.
	ErrNonFinite = errors.New("ode: non-finite value (NaN or Inf)")

	// ErrStepTooSmall indicates adaptive control could not meet the
	// tolerance above the minimum step size.
	ErrStepTooSmall = errors.New("ode: adaptive step below minimum")

	// ErrTooManySteps indicates a reporting interval exceeded the
	// sub-step budget.
	ErrTooManySteps = errors.New("ode: substep limit exceeded")

	// ErrUnknownVariable indicates a variable name absent from a
	// trajectory.
	ErrUnknownVariable = errors.New("ode: unknown variable")
)

// NumericalError reports a failure during stepping, located on the
// reporting grid and, when known, at the offending component.
type NumericalError struct {
	Row   int     // index of the grid row being computed; -1 if unattributed
	Time  float64 // time at which the failure was detected
	Var   string  // offending variable name, "" if not applicable
	Index int     // offending component index, -1 if not applicable
	Err   error
}

func (e *NumericalError) Error() string {
	msg := e.Err.Error()
	if e.Var != "" {
		msg = fmt.Sprintf("%s in %s", msg, e.Var)
	}
	return fmt.Sprintf("%s, row %d (t=%.4g)", msg, e.Row, e.Time)
}

func (e *NumericalError) Unwrap() error {
	return e.Err
}
