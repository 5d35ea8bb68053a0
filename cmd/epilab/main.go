package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/SineadMorris/trainings/internal/analysis"
	"github.com/SineadMorris/trainings/internal/automation"
	"github.com/SineadMorris/trainings/internal/config"
	"github.com/SineadMorris/trainings/internal/epi"
	"github.com/SineadMorris/trainings/internal/experiment"
	"github.com/SineadMorris/trainings/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	days       float64
	step       float64
	substep    float64
	integrator string
	adaptive   bool
	atol       float64
	rtol       float64
	// Model parameters
	r0         float64
	infectious float64
	latent     float64
	population float64
	infected   float64
	vaccRate   float64
	protection float64
	immune     float64
	// Config file and preset
	configFile string
	preset     string
	// Sweep controls
	sweepParam  string
	sweepValues string
	sweepFrom   float64
	sweepTo     float64
	sweepPoints int
	workers     int
	saveRuns    bool
	compress    bool
	// Ensemble controls
	spread float64
	trials int
	seed   int64
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "epilab",
		Short: "compartmental epidemic simulation lab",
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".epilab", "data directory")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run simulation",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().BoolVar(&compress, "compress", false, "compress the stored trajectory")

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "sweep one parameter across values",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "r0", "parameter to sweep")
	sweepCmd.Flags().StringVar(&sweepValues, "values", "", "comma-separated values")
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0, "range start (with --to and --points)")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 0, "range end")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 0, "number of range points")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "parallel workers (0 = num cpu)")
	sweepCmd.Flags().BoolVar(&saveRuns, "save", false, "save each run")
	sweepCmd.Flags().BoolVar(&compress, "compress", false, "compress stored trajectories")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [integrator1] [integrator2] ...",
		Short: "compare integrators on the same model",
		Args:  cobra.MinimumNArgs(2),
		RunE:  compareIntegrators,
	}
	addRunFlags(compareCmd)

	summaryCmd := &cobra.Command{
		Use:   "summary [run_id]",
		Short: "epidemic summary of a saved run",
		Args:  cobra.ExactArgs(1),
		RunE:  summarizeRun,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "benchmark model",
		Args:  cobra.ExactArgs(1),
		RunE:  benchModel,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario file",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().BoolVar(&compress, "compress", false, "compress stored trajectories")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "repeat a run with one parameter jittered",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().StringVar(&sweepParam, "param", "r0", "parameter to jitter")
	ensembleCmd.Flags().Float64Var(&spread, "spread", 0.1, "half-width of the uniform jitter")
	ensembleCmd.Flags().IntVar(&trials, "trials", 20, "number of trials")
	ensembleCmd.Flags().Int64Var(&seed, "seed", 0, "rng seed (0 = time-based)")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	modelsCmd := &cobra.Command{
		Use:   "models",
		Short: "list models and integrators",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := experiment.NewRegistry()
			fmt.Println("models:")
			for _, name := range registry.ListModels() {
				fmt.Printf("  %s\n", name)
			}
			fmt.Println("integrators:")
			for _, name := range registry.ListIntegrators() {
				fmt.Printf("  %s\n", name)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, compareCmd, summaryCmd, listCmd,
		exportCmd, exportCSVCmd, exportJSONCmd, benchCmd, scenarioCmd,
		ensembleCmd, presetsCmd, modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&days, "days", config.DefaultDays, "simulated days")
	cmd.Flags().Float64Var(&step, "step", config.DefaultStep, "reporting interval (days)")
	cmd.Flags().Float64Var(&substep, "substep", config.DefaultSubstep, "integrator step (days)")
	cmd.Flags().StringVar(&integrator, "integrator", "rk4", "integrator")
	cmd.Flags().BoolVar(&adaptive, "adaptive", false, "adaptive stepping (rk45)")
	cmd.Flags().Float64Var(&atol, "atol", 0, "absolute tolerance (0 = default)")
	cmd.Flags().Float64Var(&rtol, "rtol", 0, "relative tolerance (0 = default)")
	cmd.Flags().Float64Var(&r0, "r0", config.DefaultR0, "basic reproduction number")
	cmd.Flags().Float64Var(&infectious, "infectious", config.DefaultInfectiousPeriod, "infectious period (days)")
	cmd.Flags().Float64Var(&latent, "latent", config.DefaultLatentPeriod, "latent period (days, seir/seirv)")
	cmd.Flags().Float64Var(&population, "population", config.DefaultPopulation, "population size")
	cmd.Flags().Float64Var(&infected, "infected", config.DefaultInitialInfected, "initially infected")
	cmd.Flags().Float64Var(&vaccRate, "vacc", 0, "daily vaccination rate (seirv)")
	cmd.Flags().Float64Var(&protection, "protection", 0, "vaccine protection 0..1 (seirv)")
	cmd.Flags().Float64Var(&immune, "immune", config.DefaultImmunePeriod, "immunity duration (days, sirs)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig resolves preset, config file and flags, in rising
// precedence.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		loaded.Model = model
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("days") {
		cfg.Days = days
	}
	if flags.Changed("step") {
		cfg.Step = step
	}
	if flags.Changed("substep") {
		cfg.Substep = substep
	}
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("adaptive") {
		cfg.Adaptive = adaptive
	}
	if flags.Changed("atol") {
		cfg.ATol = atol
	}
	if flags.Changed("rtol") {
		cfg.RTol = rtol
	}
	if flags.Changed("r0") {
		cfg.Params.R0 = r0
	}
	if flags.Changed("infectious") {
		cfg.Params.InfectiousPeriod = infectious
	}
	if flags.Changed("latent") {
		cfg.Params.LatentPeriod = latent
	}
	if flags.Changed("population") {
		cfg.Params.Population = population
	}
	if flags.Changed("infected") {
		cfg.Params.InitialInfected = infected
	}
	if flags.Changed("vacc") {
		cfg.Params.VaccRate = vaccRate
	}
	if flags.Changed("protection") {
		cfg.Params.Protection = protection
	}
	if flags.Changed("immune") {
		cfg.Params.ImmunePeriod = immune
	}

	return cfg, nil
}

func runMetadata(cfg *config.Config, exp *experiment.Experiment, metrics map[string]float64) storage.RunMetadata {
	return storage.RunMetadata{
		Model:      cfg.Model,
		Integrator: cfg.Integrator,
		Days:       cfg.Days,
		Step:       cfg.Step,
		Substep:    cfg.Substep,
		Adaptive:   cfg.Adaptive,
		Params:     exp.GetModel().Params(),
		Metrics:    metrics,
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg)
	if err := exp.Setup(); err != nil {
		return err
	}

	fmt.Printf("running %s simulation...\n", cfg.Model)
	start := time.Now()

	result, runErr := exp.Run(context.Background())
	if runErr != nil && (result == nil || result.Trajectory.Len() == 0) {
		return runErr
	}

	elapsed := time.Since(start)

	runID, err := st.Save(runMetadata(cfg, exp, result.Metrics), result.Trajectory, compress)
	if err != nil {
		return err
	}

	if runErr != nil {
		fmt.Printf("run id: %s (partial, %d rows)\n", runID, result.Trajectory.Len())
		return runErr
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("rows: %d\n", result.Trajectory.Len())
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	return nil
}

func printMetrics(metrics map[string]float64) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, metrics[name])
	}
}

func parseFloats(s string) ([]float64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("no values given")
	}
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q", p)
		}
		out = append(out, v)
	}
	return out, nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	var values []float64
	switch {
	case sweepValues != "":
		values, err = parseFloats(sweepValues)
		if err != nil {
			return fmt.Errorf("--values: %w", err)
		}
	case sweepPoints > 0:
		values = experiment.Linspace(sweepFrom, sweepTo, sweepPoints)
	default:
		return fmt.Errorf("need --values or --from/--to/--points")
	}

	fmt.Printf("sweeping %s over %d values...\n", sweepParam, len(values))
	start := time.Now()

	results, err := experiment.RunSweep(context.Background(), cfg, sweepParam, values, workers)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPEAK\tPEAK_DAY\tATTACK_RATE\tDRIFT\n", strings.ToUpper(sweepParam))
	for i, r := range results {
		fmt.Fprintf(w, "%g\t%.1f\t%.1f\t%.4f\t%.2e\n",
			values[i],
			r.Metrics["peak_prevalence"],
			r.Metrics["peak_day"],
			r.Metrics["attack_rate"],
			r.Metrics["conservation_drift"],
		)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if !saveRuns {
		return nil
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	stamp := time.Now().Unix()
	for i, r := range results {
		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			return err
		}
		if err := exp.GetModel().SetParam(sweepParam, values[i]); err != nil {
			return err
		}
		meta := runMetadata(cfg, exp, r.Metrics)
		meta.ID = fmt.Sprintf("%s_%s_%g_%d", cfg.Model, sweepParam, values[i], stamp)
		if _, err := st.Save(meta, r.Trajectory, compress); err != nil {
			return err
		}
	}
	fmt.Printf("\nsaved %d runs\n", len(results))

	return nil
}

func compareIntegrators(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("comparing integrators for %s (days=%.0f, substep=%.3f)\n\n",
		cfg.Model, cfg.Days, cfg.Substep)
	fmt.Printf("%-12s  %-8s  %-10s  %-12s  %-12s  %-10s\n",
		"integrator", "rows", "peak", "attack_rate", "drift", "time_ms")
	fmt.Println(strings.Repeat("-", 72))

	for _, name := range args[1:] {
		runCfg := *cfg
		runCfg.Integrator = name

		exp := experiment.New(&runCfg)
		if err := exp.Setup(); err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		elapsed := time.Since(start)

		if err != nil {
			fmt.Printf("%-12s  error: %v\n", name, err)
			continue
		}

		fmt.Printf("%-12s  %-8d  %10.2f  %12.4f  %12.2e  %10.2f\n",
			name,
			result.Trajectory.Len(),
			result.Metrics["peak_prevalence"],
			result.Metrics["attack_rate"],
			result.Metrics["conservation_drift"],
			float64(elapsed.Microseconds())/1000,
		)
	}

	return nil
}

func summarizeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(runID)
	if err != nil {
		return err
	}

	report, err := analysis.Summarize(tr,
		epi.SusceptibleVars(tr.Vars),
		epi.InfectiousVars(tr.Vars),
		epi.RecoveredVars(tr.Vars))
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s (%s)\n\n", meta.Model, meta.Integrator)
	fmt.Printf("peak prevalence: %.1f on day %.1f\n", report.PeakValue, report.PeakDay)
	fmt.Printf("attack rate: %.1f%%\n", report.AttackRate*100)
	fmt.Printf("final size: %.1f%%\n", report.FinalSize*100)
	if math.IsNaN(report.GrowthRate) {
		fmt.Println("growth rate: n/a")
	} else {
		fmt.Printf("growth rate: %.4f per day\n", report.GrowthRate)
	}
	fmt.Printf("conservation drift: %.2e\n", report.ConservationDrift)

	if r0, ok := meta.Params["r0"]; ok {
		fmt.Printf("\nherd immunity threshold: %.1f%%\n", analysis.HerdImmunityThreshold(r0)*100)

		var susceptible float64
		for _, name := range epi.SusceptibleVars(tr.Vars) {
			series, err := tr.Series(name)
			if err != nil {
				return err
			}
			susceptible += series[len(series)-1]
		}
		if total := tr.Final().Sum(); total > 0 {
			rEff := analysis.EffectiveReproduction(r0, susceptible/total)
			fmt.Printf("effective r at end: %.2f\n", rEff)
		}
	}

	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tDAYS\tSTEP\tINTEG\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Incomplete {
			status = "partial"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%.0f\t%.2f\t%s\t%s\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Days,
			run.Step,
			run.Integrator,
			status,
		)
	}

	return w.Flush()
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	return storage.WriteCSV(os.Stdout, tr)
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	tr, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	return storage.ExportJSONStdout(meta, tr)
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return fmt.Errorf("failed to load scenario: %w", err)
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	if scenario.Name != "" {
		fmt.Printf("scenario: %s\n", scenario.Name)
	}
	if scenario.Description != "" {
		fmt.Println(scenario.Description)
	}

	results, err := automation.RunScenario(context.Background(), scenario, st, compress)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tMODEL\tPEAK\tPEAK_DAY\tATTACK_RATE")
	for i, r := range results {
		step := scenario.Steps[i]
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step %d", i+1)
		}
		fmt.Fprintf(w, "%s\t%s\t%.1f\t%.1f\t%.4f\n",
			name,
			step.Config.Model,
			r.Metrics["peak_prevalence"],
			r.Metrics["peak_day"],
			r.Metrics["attack_rate"],
		)
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	ens := &automation.Ensemble{
		Param:  sweepParam,
		Spread: spread,
		Trials: trials,
		Seed:   seed,
	}

	fmt.Printf("running %d trials with %s jittered by %g...\n", trials, sweepParam, spread)
	results, err := automation.RunEnsemble(context.Background(), cfg, ens)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPEAK\tPEAK_DAY\tATTACK_RATE\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.1f\t%.1f\t%.4f\n", r.Value, r.Peak, r.PeakDay, r.AttackRate)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	mean, min, max := automation.EnsembleStats(results)
	fmt.Printf("\npeak prevalence: mean %.1f, range %.1f to %.1f\n", mean, min, max)
	return nil
}

func benchModel(cmd *cobra.Command, args []string) error {
	model := args[0]

	allDays := []float64{30, 120, 365}
	substeps := []float64{0.5, 0.25, 0.1}

	fmt.Printf("benchmarking %s\n\n", model)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DAYS\tSUBSTEP\tSTEPS\tTIME\tSTEPS/SEC")

	for _, d := range allDays {
		for _, s := range substeps {
			cfg := config.DefaultConfig()
			cfg.Model = model
			cfg.Days = d
			cfg.Substep = s

			exp := experiment.New(cfg)
			if err := exp.Setup(); err != nil {
				return err
			}

			start := time.Now()
			if _, err := exp.Run(context.Background()); err != nil {
				return err
			}
			elapsed := time.Since(start)

			steps := int(math.Ceil(d / s))
			stepsPerSec := float64(steps) / elapsed.Seconds()

			fmt.Fprintf(w, "%.0f\t%.2f\t%d\t%v\t%.0f\n",
				d, s, steps, elapsed, stepsPerSec)
		}
	}

	return w.Flush()
}
