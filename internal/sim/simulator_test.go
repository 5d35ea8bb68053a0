package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/SineadMorris/trainings/internal/ode"
)

type testSystem struct{}

func (*testSystem) Derive(t float64, y ode.State, p ode.Params) ode.State {
	return ode.State{-p["k"] * y[0]}
}

func (*testSystem) Dim() int { return 1 }

func (*testSystem) Vars() []string { return []string{"y"} }

type testIntegrator struct{}

func (testIntegrator) Step(sys ode.System, y ode.State, p ode.Params, t, h float64) ode.State {
	k := sys.Derive(t, y, p)
	out := make(ode.State, len(y))
	for i := range y {
		out[i] = y[i] + h*k[i]
	}
	return out
}

type testMetric struct {
	count int
	sum   float64
}

func (m *testMetric) Name() string { return "mean" }

func (m *testMetric) Observe(t float64, y ode.State) {
	m.count++
	m.sum += y[0]
}

func (m *testMetric) Value() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

func (m *testMetric) Reset() {
	m.count = 0
	m.sum = 0
}

type testObserver struct {
	times []float64
}

func (o *testObserver) OnRow(t float64, y ode.State) {
	o.times = append(o.times, t)
}

func grid01(n int) []float64 {
	g := make([]float64, n+1)
	for i := range g {
		g[i] = float64(i) * 0.1
	}
	return g
}

func TestSimulatorRun(t *testing.T) {
	s := New(&testSystem{}, testIntegrator{})
	grid := grid01(10)
	params := ode.Params{"k": 1}

	result, err := s.Run(context.Background(), ode.State{1}, params, grid, ode.Config{MaxStep: 0.01})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	tr := result.Trajectory
	if tr.Len() != 11 {
		t.Errorf("expected 11 rows, got %d", tr.Len())
	}
	final := tr.Final()[0]
	expected := math.Exp(-1)
	if math.Abs(final-expected) > 0.01 {
		t.Errorf("expected final state ~%.4f, got %.4f", expected, final)
	}
}

func TestSimulatorMatchesSolve(t *testing.T) {
	sys := &testSystem{}
	params := ode.Params{"k": 0.7}
	grid := grid01(20)
	cfg := ode.Config{MaxStep: 0.025}

	want, err := ode.Solve(sys, testIntegrator{}, ode.State{2}, grid, params, cfg)
	if err != nil {
		t.Fatalf("Solve failed: %v", err)
	}

	result, err := New(sys, testIntegrator{}).Run(context.Background(), ode.State{2}, params, grid, cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	got := result.Trajectory
	if got.Len() != want.Len() {
		t.Fatalf("row counts differ: %d vs %d", got.Len(), want.Len())
	}
	for i := range want.States {
		if got.States[i][0] != want.States[i][0] {
			t.Fatalf("row %d differs: %v vs %v", i, got.States[i][0], want.States[i][0])
		}
	}
	if got.Steps != want.Steps {
		t.Errorf("step counts differ: %d vs %d", got.Steps, want.Steps)
	}
}

func TestSimulatorRejectsBadInput(t *testing.T) {
	s := New(&testSystem{}, testIntegrator{})
	tests := []struct {
		name string
		y0   ode.State
		grid []float64
	}{
		{"empty grid", ode.State{1}, nil},
		{"unsorted grid", ode.State{1}, []float64{0, 2, 1}},
		{"empty state", ode.State{}, []float64{0, 1}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.Run(context.Background(), tc.y0, nil, tc.grid, ode.Config{})
			if !errors.Is(err, ode.ErrInvalidInput) {
				t.Errorf("error = %v, want invalid input", err)
			}
		})
	}
}

func TestSimulatorMetrics(t *testing.T) {
	s := New(&testSystem{}, testIntegrator{})
	metric := &testMetric{}
	s.AddMetric(metric)

	result, err := s.Run(context.Background(), ode.State{1}, ode.Params{"k": 1}, grid01(10), ode.Config{})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if _, ok := result.Metrics["mean"]; !ok {
		t.Error("metric not found in result")
	}
	// Every row is observed, the initial and final ones included.
	if metric.count != 11 {
		t.Errorf("expected 11 observations, got %d", metric.count)
	}
}

func TestSimulatorObservers(t *testing.T) {
	s := New(&testSystem{}, testIntegrator{})
	obs := &testObserver{}
	s.AddObserver(obs)

	grid := grid01(10)
	if _, err := s.Run(context.Background(), ode.State{1}, ode.Params{"k": 1}, grid, ode.Config{}); err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if len(obs.times) != len(grid) {
		t.Fatalf("observer saw %d rows, want %d", len(obs.times), len(grid))
	}
	for i, want := range grid {
		if obs.times[i] != want {
			t.Errorf("row %d observed at t=%g, want %g", i, obs.times[i], want)
		}
	}
}

func TestSimulatorMetricsResetBetweenRuns(t *testing.T) {
	s := New(&testSystem{}, testIntegrator{})
	metric := &testMetric{}
	s.AddMetric(metric)

	params := ode.Params{"k": 1}
	if _, err := s.Run(context.Background(), ode.State{1}, params, grid01(10), ode.Config{}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	if _, err := s.Run(context.Background(), ode.State{1}, params, grid01(10), ode.Config{}); err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if metric.count != 11 {
		t.Errorf("metric not reset: %d observations after second run", metric.count)
	}
}

func TestSimulatorCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(&testSystem{}, testIntegrator{})
	metric := &testMetric{}
	s.AddMetric(metric)

	result, err := s.Run(ctx, ode.State{1}, ode.Params{"k": 1}, grid01(10), ode.Config{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
	if result == nil {
		t.Fatal("expected partial result alongside cancellation")
	}
	if result.Trajectory.Len() != 1 {
		t.Errorf("expected only the initial row, got %d", result.Trajectory.Len())
	}
	if !result.Trajectory.Incomplete {
		t.Error("canceled run not marked incomplete")
	}
	if _, ok := result.Metrics["mean"]; !ok {
		t.Error("metrics not collected on cancellation")
	}
}

func TestSimulatorNumericalFailure(t *testing.T) {
	sys := ode.FuncSystem{
		Names: []string{"y"},
		Fn: func(t float64, y ode.State, p ode.Params) ode.State {
			if t >= 0.5 {
				return ode.State{math.NaN()}
			}
			return ode.State{0}
		},
	}
	s := New(sys, testIntegrator{})
	result, err := s.Run(context.Background(), ode.State{1}, nil, grid01(10), ode.Config{MaxStep: 0.05})

	var ne *ode.NumericalError
	if !errors.As(err, &ne) {
		t.Fatalf("error = %v, want NumericalError", err)
	}
	if ne.Row != 6 {
		t.Errorf("failure attributed to row %d, want 6", ne.Row)
	}
	if result.Trajectory.Len() != 6 {
		t.Errorf("expected 6 completed rows, got %d", result.Trajectory.Len())
	}
	if !result.Trajectory.Incomplete {
		t.Error("failed run not marked incomplete")
	}
}

func TestRunWithCallback(t *testing.T) {
	s := New(&testSystem{}, testIntegrator{})
	params := ode.Params{"k": 1}

	var rows int
	err := s.RunWithCallback(context.Background(), ode.State{1}, params, grid01(10), ode.Config{},
		func(t float64, y ode.State) bool {
			rows++
			return true
		})
	if err != nil {
		t.Fatalf("callback run failed: %v", err)
	}
	if rows != 11 {
		t.Errorf("callback saw %d rows, want 11", rows)
	}

	rows = 0
	err = s.RunWithCallback(context.Background(), ode.State{1}, params, grid01(10), ode.Config{},
		func(t float64, y ode.State) bool {
			rows++
			return rows < 3
		})
	if err != nil {
		t.Fatalf("early stop reported error: %v", err)
	}
	if rows != 3 {
		t.Errorf("callback saw %d rows after early stop, want 3", rows)
	}
}
