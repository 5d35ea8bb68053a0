// Package epi provides compartmental epidemic models for the
// integration kernel.
//
// Each model implements [Model], pairing the [ode.System] derivative
// with epidemiological inputs (reproduction number, periods in days,
// population counts) and the conversion to per-capita rates:
//
//   - [SIR]: classic susceptible-infectious-recovered
//   - [SEIR]: adds a latent stage
//   - [SIRS]: waning immunity, endemic equilibria
//   - [SEIRV]: SEIR stratified by vaccination with a leaky vaccine
//
// All models describe closed populations: no births, deaths, or
// migration, so compartment totals are conserved along any trajectory.
// Time is measured in days throughout.
package epi
