package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDays             = 120.0
	DefaultStep             = 1.0
	DefaultSubstep          = 0.25
	DefaultR0               = 2.0
	DefaultInfectiousPeriod = 3.0
	DefaultLatentPeriod     = 2.0
	DefaultPopulation       = 10000.0
	DefaultInitialInfected  = 1.0
	DefaultImmunePeriod     = 90.0
)

type Config struct {
	Model      string      `yaml:"model"`
	Integrator string      `yaml:"integrator"`
	Days       float64     `yaml:"days"`
	Step       float64     `yaml:"step"`
	Substep    float64     `yaml:"substep"`
	Adaptive   bool        `yaml:"adaptive"`
	ATol       float64     `yaml:"atol"`
	RTol       float64     `yaml:"rtol"`
	Params     ParamConfig `yaml:"params"`
}

// ParamConfig holds model parameters in human units: reproduction
// numbers, periods in days, and head counts.
type ParamConfig struct {
	R0               float64 `yaml:"r0"`
	InfectiousPeriod float64 `yaml:"infectious_period"`
	LatentPeriod     float64 `yaml:"latent_period"`
	Population       float64 `yaml:"population"`
	InitialInfected  float64 `yaml:"initial_infected"`
	VaccRate         float64 `yaml:"vacc_rate"`
	Protection       float64 `yaml:"protection"`
	ImmunePeriod     float64 `yaml:"immune_period"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "sir",
		Integrator: "rk4",
		Days:       DefaultDays,
		Step:       DefaultStep,
		Substep:    DefaultSubstep,
		Params: ParamConfig{
			R0:               DefaultR0,
			InfectiousPeriod: DefaultInfectiousPeriod,
			LatentPeriod:     DefaultLatentPeriod,
			Population:       DefaultPopulation,
			InitialInfected:  DefaultInitialInfected,
			ImmunePeriod:     DefaultImmunePeriod,
		},
	}
}

// Load reads a YAML config. Fields absent from the file keep their
// defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ModelParams maps the config onto the parameter keys the named model
// accepts.
func (c *Config) ModelParams() map[string]float64 {
	p := map[string]float64{
		"r0":                c.Params.R0,
		"infectious_period": c.Params.InfectiousPeriod,
		"population":        c.Params.Population,
		"initial_infected":  c.Params.InitialInfected,
	}
	switch c.Model {
	case "seir":
		p["latent_period"] = c.Params.LatentPeriod
	case "seirv":
		p["latent_period"] = c.Params.LatentPeriod
		p["vacc_rate"] = c.Params.VaccRate
		p["protection"] = c.Params.Protection
	case "sirs":
		p["immune_period"] = c.Params.ImmunePeriod
	}
	return p
}

// Validate checks the numeric fields. Model and integrator names are
// checked at lookup time by the experiment registry.
func (c *Config) Validate() error {
	if c.Days <= 0 {
		return fmt.Errorf("config: days must be positive, got %g", c.Days)
	}
	if c.Step <= 0 {
		return fmt.Errorf("config: step must be positive, got %g", c.Step)
	}
	if c.Step > c.Days {
		return fmt.Errorf("config: step %g exceeds duration %g", c.Step, c.Days)
	}
	if c.Substep <= 0 {
		return fmt.Errorf("config: substep must be positive, got %g", c.Substep)
	}
	if c.ATol < 0 || c.RTol < 0 {
		return fmt.Errorf("config: tolerances must be nonnegative")
	}
	return c.validateParams()
}

func (c *Config) validateParams() error {
	p := c.Params
	if p.Population <= 0 {
		return fmt.Errorf("config: population must be positive, got %g", p.Population)
	}
	if p.InitialInfected < 0 || p.InitialInfected > p.Population {
		return fmt.Errorf("config: initial_infected %g outside [0, population]", p.InitialInfected)
	}
	if p.R0 < 0 {
		return fmt.Errorf("config: r0 must be nonnegative, got %g", p.R0)
	}
	if p.InfectiousPeriod <= 0 {
		return fmt.Errorf("config: infectious_period must be positive, got %g", p.InfectiousPeriod)
	}
	switch c.Model {
	case "seir", "seirv":
		if p.LatentPeriod <= 0 {
			return fmt.Errorf("config: latent_period must be positive, got %g", p.LatentPeriod)
		}
	}
	switch c.Model {
	case "seirv":
		if p.VaccRate < 0 {
			return fmt.Errorf("config: vacc_rate must be nonnegative, got %g", p.VaccRate)
		}
		if p.Protection < 0 || p.Protection > 1 {
			return fmt.Errorf("config: protection %g outside [0, 1]", p.Protection)
		}
	case "sirs":
		if p.ImmunePeriod <= 0 {
			return fmt.Errorf("config: immune_period must be positive, got %g", p.ImmunePeriod)
		}
	}
	return nil
}
