package config

import "sort"

var Presets = map[string]map[string]*Config{
	"sir": {
		"textbook": {
			Model: "sir", Integrator: "rk4", Days: 120, Step: 1, Substep: 0.25,
			Params: ParamConfig{R0: 2, InfectiousPeriod: 3, Population: 10000, InitialInfected: 1},
		},
		"measles": {
			Model: "sir", Integrator: "rk4", Days: 60, Step: 0.5, Substep: 0.1,
			Params: ParamConfig{R0: 15, InfectiousPeriod: 8, Population: 100000, InitialInfected: 10},
		},
		"mild": {
			Model: "sir", Integrator: "rk4", Days: 365, Step: 1, Substep: 0.25,
			Params: ParamConfig{R0: 1.3, InfectiousPeriod: 5, Population: 10000, InitialInfected: 5},
		},
	},
	"seir": {
		"textbook": {
			Model: "seir", Integrator: "rk4", Days: 150, Step: 1, Substep: 0.25,
			Params: ParamConfig{R0: 2, InfectiousPeriod: 3, LatentPeriod: 2, Population: 10000, InitialInfected: 1},
		},
		"influenza": {
			Model: "seir", Integrator: "rk4", Days: 180, Step: 1, Substep: 0.25,
			Params: ParamConfig{R0: 1.4, InfectiousPeriod: 4, LatentPeriod: 1.5, Population: 50000, InitialInfected: 10},
		},
		"rapid": {
			Model: "seir", Integrator: "rk4", Days: 90, Step: 0.5, Substep: 0.1,
			Params: ParamConfig{R0: 3, InfectiousPeriod: 2, LatentPeriod: 1, Population: 10000, InitialInfected: 1},
		},
	},
	"seirv": {
		"campaign": {
			Model: "seirv", Integrator: "rk4", Days: 150, Step: 1, Substep: 0.25,
			Params: ParamConfig{
				R0: 2, InfectiousPeriod: 3, LatentPeriod: 2, Population: 10000,
				InitialInfected: 1, VaccRate: 0.01, Protection: 0.4,
			},
		},
		"strong": {
			Model: "seirv", Integrator: "rk4", Days: 150, Step: 1, Substep: 0.25,
			Params: ParamConfig{
				R0: 2, InfectiousPeriod: 3, LatentPeriod: 2, Population: 10000,
				InitialInfected: 1, VaccRate: 0.02, Protection: 0.95,
			},
		},
	},
	"sirs": {
		"endemic": {
			Model: "sirs", Integrator: "rk4", Days: 1000, Step: 1, Substep: 0.25,
			Params: ParamConfig{R0: 2, InfectiousPeriod: 3, ImmunePeriod: 90, Population: 10000, InitialInfected: 1},
		},
		"seasonal": {
			Model: "sirs", Integrator: "rk4", Days: 730, Step: 1, Substep: 0.25,
			Params: ParamConfig{R0: 1.8, InfectiousPeriod: 3, ImmunePeriod: 30, Population: 10000, InitialInfected: 1},
		},
	},
}

// GetPreset returns a copy of the named preset, or nil if the model or
// preset does not exist. Callers may overwrite fields freely.
func GetPreset(model, preset string) *Config {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	cfg, ok := modelPresets[preset]
	if !ok {
		return nil
	}
	cp := *cfg
	return &cp
}

func ListPresets(model string) []string {
	modelPresets, ok := Presets[model]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(modelPresets))
	for name := range modelPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
