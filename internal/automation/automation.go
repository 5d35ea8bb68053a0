package automation

import (
	"context"
	"fmt"
	"math/rand"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/SineadMorris/trainings/internal/config"
	"github.com/SineadMorris/trainings/internal/experiment"
	"github.com/SineadMorris/trainings/internal/sim"
	"github.com/SineadMorris/trainings/internal/storage"
)

// Scenario defines a scripted sequence of runs, typically a baseline
// and its variations.
type Scenario struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Steps       []Step `yaml:"steps"`
}

// Step is one run in a scenario. Its config fields sit at the same
// YAML level as name and save_as; fields absent from the file keep
// their defaults.
type Step struct {
	Name   string
	SaveAs string
	Config config.Config
}

func (s *Step) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Name   string `yaml:"name"`
		SaveAs string `yaml:"save_as"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	cfg := *config.DefaultConfig()
	if err := value.Decode(&cfg); err != nil {
		return err
	}
	s.Name = raw.Name
	s.SaveAs = raw.SaveAs
	s.Config = cfg
	return nil
}

// LoadScenario loads a scenario from a YAML file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}

	return &scenario, nil
}

// RunScenario executes all steps in order. Steps with a save_as name
// are persisted under that run ID when a store is given. Completed
// results are returned even when a later step fails.
func RunScenario(ctx context.Context, scenario *Scenario, st *storage.Store, compress bool) ([]*sim.Result, error) {
	results := make([]*sim.Result, 0, len(scenario.Steps))

	for i := range scenario.Steps {
		step := &scenario.Steps[i]
		label := step.Name
		if label == "" {
			label = step.Config.Model
		}
		fmt.Printf("running step %d/%d: %s\n", i+1, len(scenario.Steps), label)

		exp := experiment.New(&step.Config)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		if st != nil && step.SaveAs != "" {
			meta := storage.RunMetadata{
				ID:         step.SaveAs,
				Model:      step.Config.Model,
				Integrator: step.Config.Integrator,
				Days:       step.Config.Days,
				Step:       step.Config.Step,
				Substep:    step.Config.Substep,
				Adaptive:   step.Config.Adaptive,
				Params:     exp.GetModel().Params(),
				Metrics:    result.Metrics,
			}
			if _, err := st.Save(meta, result.Trajectory, compress); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// Ensemble repeats a run with one parameter jittered uniformly around
// its configured value, for sensitivity analysis.
type Ensemble struct {
	Param  string
	Spread float64
	Trials int
	Seed   int64
}

// EnsembleResult records one trial.
type EnsembleResult struct {
	Value      float64
	Peak       float64
	PeakDay    float64
	AttackRate float64
}

// RunEnsemble executes the trials sequentially so a fixed seed
// reproduces the same draw sequence.
func RunEnsemble(ctx context.Context, cfg *config.Config, ens *Ensemble) ([]EnsembleResult, error) {
	if ens.Trials <= 0 {
		return nil, fmt.Errorf("ensemble needs at least one trial")
	}
	base, ok := cfg.ModelParams()[ens.Param]
	if !ok {
		return nil, fmt.Errorf("model %s has no parameter %s", cfg.Model, ens.Param)
	}

	seed := ens.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	results := make([]EnsembleResult, 0, ens.Trials)
	for trial := 0; trial < ens.Trials; trial++ {
		value := base + (rng.Float64()-0.5)*2*ens.Spread

		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			return nil, err
		}
		if err := exp.GetModel().SetParam(ens.Param, value); err != nil {
			return nil, err
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("trial %d (%s=%g): %w", trial+1, ens.Param, value, err)
		}

		results = append(results, EnsembleResult{
			Value:      value,
			Peak:       result.Metrics["peak_prevalence"],
			PeakDay:    result.Metrics["peak_day"],
			AttackRate: result.Metrics["attack_rate"],
		})
	}

	return results, nil
}

// EnsembleStats summarizes the trials' peak prevalence.
func EnsembleStats(results []EnsembleResult) (mean, min, max float64) {
	if len(results) == 0 {
		return 0, 0, 0
	}
	min, max = results[0].Peak, results[0].Peak
	for _, r := range results {
		mean += r.Peak
		if r.Peak < min {
			min = r.Peak
		}
		if r.Peak > max {
			max = r.Peak
		}
	}
	mean /= float64(len(results))
	return mean, min, max
}
