// Package ode is the integration kernel: it advances systems of
// ordinary differential equations across a caller-supplied reporting
// grid.
//
// The package defines the contract shared by models and integrators:
//
//   - [State]: vector of compartment values
//   - [Params]: named parameters, passed through to every evaluation
//   - [System]: interface for ODE systems (dY/dt = f(t, Y, p))
//   - [Integrator]: fixed-step numerical method
//   - [AdaptiveIntegrator]: method with local error estimates
//   - [Solve]: grid traversal producing a [Trajectory]
//
// # Example
//
//	sys := epi.NewSIR()
//	integ := integrators.NewRK4()
//	tr, err := ode.Solve(sys, integ, sys.InitialState(), grid, sys.Rates(), ode.DefaultConfig())
//
// # Determinism
//
// Solve performs no I/O, uses no randomness, and never mutates its
// inputs. Two calls with identical arguments return identical
// trajectories. There is no cancellation built in; callers that need it
// should walk the grid themselves with [AdvanceInterval], which yields
// the same numbers row for row.
package ode
